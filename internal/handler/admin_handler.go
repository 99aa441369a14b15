package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/etutplan/etut-api/internal/service"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
	"github.com/etutplan/etut-api/pkg/response"
)

// AdminHandler exposes administrative endpoints.
type AdminHandler struct {
	seed *service.SeedService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(seed *service.SeedService) *AdminHandler {
	return &AdminHandler{seed: seed}
}

// Seed godoc
// @Summary Populate a reproducible demo dataset
// @Tags Admin
// @Produce json
// @Param weekStart query string true "Monday the demo week starts on (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /admin/seed [post]
func (h *AdminHandler) Seed(c *gin.Context) {
	if h.seed == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "seeding is disabled"))
		return
	}
	weekStart, err := time.Parse(time.DateOnly, c.Query("weekStart"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekStart must be formatted YYYY-MM-DD"))
		return
	}
	summary, err := h.seed.Run(c.Request.Context(), weekStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
