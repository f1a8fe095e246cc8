package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarthealthy/tracker-api/internal/service"
	"github.com/smarthealthy/tracker-api/pkg/response"
)

// LeaderboardHandler serves the school-wide ranking.
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
}

// NewLeaderboardHandler constructs LeaderboardHandler.
func NewLeaderboardHandler(leaderboard *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// List godoc
// @Summary School-wide leaderboard
// @Tags Leaderboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaderboard [get]
func (h *LeaderboardHandler) List(c *gin.Context) {
	entries, err := h.leaderboard.Leaderboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
