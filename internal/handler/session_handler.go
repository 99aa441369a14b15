package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/etutplan/etut-api/internal/models"
	"github.com/etutplan/etut-api/internal/service"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
	"github.com/etutplan/etut-api/pkg/response"
)

// SessionHandler exposes the booking endpoints.
type SessionHandler struct {
	bookings *service.BookingService
	metrics  *service.MetricsService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(bookings *service.BookingService, metrics *service.MetricsService) *SessionHandler {
	return &SessionHandler{bookings: bookings, metrics: metrics}
}

// List godoc
// @Summary List study sessions
// @Tags Sessions
// @Produce json
// @Param teacherId query string false "Filter by teacher"
// @Param studentId query string false "Filter by student"
// @Param classroomId query string false "Filter by classroom"
// @Param slotId query string false "Filter by slot"
// @Param from query string false "Date from (YYYY-MM-DD)"
// @Param to query string false "Date to (YYYY-MM-DD)"
// @Param status query string false "Attendance status filter"
// @Param mode query string false "Session mode filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var filter models.SessionFilter
	filter.TeacherID = c.Query("teacherId")
	filter.StudentID = c.Query("studentId")
	filter.ClassroomID = c.Query("classroomId")
	filter.SlotID = c.Query("slotId")
	filter.Status = models.AttendanceStatus(strings.ToUpper(c.Query("status")))
	filter.Mode = models.SessionMode(strings.ToUpper(c.Query("mode")))
	if from, err := time.Parse(time.DateOnly, c.Query("from")); err == nil {
		filter.DateFrom = &from
	}
	if to, err := time.Parse(time.DateOnly, c.Query("to")); err == nil {
		filter.DateTo = &to
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	sessions, pagination, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Book godoc
// @Summary Book one individual session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.BookSingleRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Book(c *gin.Context) {
	var req service.BookSingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.bookings.BookSingle(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordBookingOutcome(appErrors.FromError(err).Code)
		response.Error(c, err)
		return
	}
	h.metrics.RecordBookingOutcome("COMMITTED")

	var meta map[string]interface{}
	if result.ClassroomBusy {
		meta = map[string]interface{}{"classroom_busy": true}
	}
	response.JSON(c, http.StatusCreated, result.Session, nil, meta)
}

// BookBulk godoc
// @Summary Book several students into one slot
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.BookBulkRequest true "Bulk booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/bulk [post]
func (h *SessionHandler) BookBulk(c *gin.Context) {
	var req service.BookBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.bookings.BookBulk(c.Request.Context(), req)
	if err != nil {
		h.metrics.RecordBookingOutcome(appErrors.FromError(err).Code)
		response.Error(c, err)
		return
	}
	h.metrics.RecordBookingOutcome("COMMITTED")
	h.metrics.RecordBulkSkips(len(result.Skipped))
	response.JSON(c, http.StatusCreated, result, nil)
}

// Move godoc
// @Summary Reschedule a session to a new date and slot
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.MoveSessionRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/move [put]
func (h *SessionHandler) Move(c *gin.Context) {
	var req service.MoveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.bookings.Move(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// UpdateAttendance godoc
// @Summary Set the attendance label on a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.UpdateAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance [put]
func (h *SessionHandler) UpdateAttendance(c *gin.Context) {
	var req service.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.bookings.UpdateAttendance(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary Cancel a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.bookings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// TeacherCalendar godoc
// @Summary Weekly calendar view for one teacher
// @Tags Sessions
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{teacherId}/calendar [get]
func (h *SessionHandler) TeacherCalendar(c *gin.Context) {
	from, err := time.Parse(time.DateOnly, c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD"))
		return
	}
	to, err := time.Parse(time.DateOnly, c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD"))
		return
	}
	calendar, err := h.bookings.TeacherCalendar(c.Request.Context(), c.Param("teacherId"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendar, nil)
}
