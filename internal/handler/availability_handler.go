package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/etutplan/etut-api/internal/service"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
	"github.com/etutplan/etut-api/pkg/response"
)

// AvailabilityHandler exposes weekly template endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// List godoc
// @Summary List a teacher's weekly availability template
// @Tags Availability
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{teacherId}/availability [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	template, err := h.availability.WeeklyTemplate(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}

// Add godoc
// @Summary Declare the teacher available for a weekday and slot
// @Tags Availability
// @Accept json
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param payload body service.AvailabilityEntryRequest true "Availability entry"
// @Success 201 {object} response.Envelope
// @Router /teachers/{teacherId}/availability [post]
func (h *AvailabilityHandler) Add(c *gin.Context) {
	var req service.AvailabilityEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.availability.Add(c.Request.Context(), c.Param("teacherId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Remove godoc
// @Summary Withdraw a weekday and slot from the template
// @Tags Availability
// @Accept json
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param payload body service.AvailabilityEntryRequest true "Availability entry"
// @Success 204
// @Router /teachers/{teacherId}/availability [delete]
func (h *AvailabilityHandler) Remove(c *gin.Context) {
	var req service.AvailabilityEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.availability.Remove(c.Request.Context(), c.Param("teacherId"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Replace godoc
// @Summary Replace the teacher's whole weekly template
// @Tags Availability
// @Accept json
// @Produce json
// @Param teacherId path string true "Teacher ID"
// @Param payload body service.ReplaceAvailabilityRequest true "Full template"
// @Success 200 {object} response.Envelope
// @Router /teachers/{teacherId}/availability [put]
func (h *AvailabilityHandler) Replace(c *gin.Context) {
	var req service.ReplaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entries, err := h.availability.Replace(c.Request.Context(), c.Param("teacherId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
