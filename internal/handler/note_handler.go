package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/etutplan/etut-api/internal/models"
	"github.com/etutplan/etut-api/internal/service"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
	"github.com/etutplan/etut-api/pkg/response"
)

// NoteHandler exposes per-student study note endpoints.
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler constructs NoteHandler.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

func noteActor(c *gin.Context) (service.NoteActor, error) {
	claims, err := currentUser(c)
	if err != nil {
		return service.NoteActor{}, err
	}
	return service.NoteActor{UserID: claims.UserID, Admin: claims.Role == models.RoleAdmin}, nil
}

func noteFilter(c *gin.Context) models.NoteFilter {
	var filter models.NoteFilter
	filter.Category = c.Query("category")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// List godoc
// @Summary List study notes
// @Tags Notes
// @Produce json
// @Param student query string false "Filter by student ID"
// @Param category query string false "Filter by category"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	actor, err := noteActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := noteFilter(c)
	filter.StudentID = c.Query("student")

	notes, pagination, err := h.notes.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, pagination)
}

// ListForStudent godoc
// @Summary List study notes for one student
// @Tags Notes
// @Produce json
// @Param id path string true "Student ID"
// @Param category query string false "Filter by category"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/notes [get]
func (h *NoteHandler) ListForStudent(c *gin.Context) {
	actor, err := noteActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := noteFilter(c)
	filter.StudentID = c.Param("id")

	notes, pagination, err := h.notes.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes, pagination)
}

// Get godoc
// @Summary Get one study note
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} response.Envelope
// @Router /notes/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	actor, err := noteActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	note, err := h.notes.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, note, nil)
}

// Create godoc
// @Summary Create a study note for a student
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.NoteRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/notes [post]
func (h *NoteHandler) Create(c *gin.Context) {
	actor, err := noteActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	note, err := h.notes.Create(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// Update godoc
// @Summary Update a study note
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param payload body service.NoteRequest true "Note payload"
// @Success 200 {object} response.Envelope
// @Router /notes/{id} [put]
func (h *NoteHandler) Update(c *gin.Context) {
	actor, err := noteActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	note, err := h.notes.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, note, nil)
}

// Delete godoc
// @Summary Delete a study note
// @Tags Notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 204
// @Router /notes/{id} [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	actor, err := noteActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.notes.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Categories godoc
// @Summary List note categories
// @Tags Notes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notes/categories [get]
func (h *NoteHandler) Categories(c *gin.Context) {
	categories, err := h.notes.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}
