package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarthealthy/tracker-api/internal/models"
	"github.com/smarthealthy/tracker-api/internal/service"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
	"github.com/smarthealthy/tracker-api/pkg/response"
)

// AuthHandler exposes the login and teacher-unlock endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Student login (upserts the student record)
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Student identity"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil && !service.IsPersistWarning(err) {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil, response.PersistMeta(err))
}

// TeacherUnlock godoc
// @Summary Unlock the teacher panel
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.TeacherUnlockRequest true "Teacher password"
// @Success 200 {object} response.Envelope
// @Router /auth/teacher [post]
func (h *AuthHandler) TeacherUnlock(c *gin.Context) {
	var req models.TeacherUnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.auth.TeacherUnlock(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
