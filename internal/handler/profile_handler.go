package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarthealthy/tracker-api/internal/middleware"
	"github.com/smarthealthy/tracker-api/internal/service"
	"github.com/smarthealthy/tracker-api/pkg/response"
)

// ProfileHandler serves the caller's stats and badge wall.
type ProfileHandler struct {
	ledger *service.LedgerService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(ledger *service.LedgerService) *ProfileHandler {
	return &ProfileHandler{ledger: ledger}
}

// Get godoc
// @Summary Current student profile: points, level, badges
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	claims := middleware.Claims(c)

	profile, err := h.ledger.Profile(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Badges godoc
// @Summary Badge wall for the current student
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile/badges [get]
func (h *ProfileHandler) Badges(c *gin.Context) {
	claims := middleware.Claims(c)

	profile, err := h.ledger.Profile(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile.Badges, nil)
}
