package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/etutplan/etut-api/internal/service"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
	"github.com/etutplan/etut-api/pkg/response"
)

// ReportHandler exposes reporting and export endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func reportRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := time.Parse(time.DateOnly, c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD")
	}
	to, err := time.Parse(time.DateOnly, c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "to must not precede from")
	}
	return from, to, nil
}

// AttendanceSummary godoc
// @Summary Per-student attendance aggregates for a date range
// @Tags Reports
// @Produce json
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) AttendanceSummary(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.reports.AttendanceSummary(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ScheduleExport godoc
// @Summary Download the schedule as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Router /reports/schedule/export [get]
func (h *ReportHandler) ScheduleExport(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.reports.ScheduleExport(c.Request.Context(), from, to, service.ReportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.FileName)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// AttendanceExport godoc
// @Summary Download the attendance summary as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param from query string true "Range start (YYYY-MM-DD)"
// @Param to query string true "Range end (YYYY-MM-DD)"
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Router /reports/attendance/export [get]
func (h *ReportHandler) AttendanceExport(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.reports.AttendanceExport(c.Request.Context(), from, to, service.ReportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+file.FileName)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
