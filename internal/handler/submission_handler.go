package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smarthealthy/tracker-api/internal/middleware"
	"github.com/smarthealthy/tracker-api/internal/service"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
	"github.com/smarthealthy/tracker-api/pkg/response"
	"github.com/smarthealthy/tracker-api/pkg/storage"
)

// SubmissionHandler records photo-documented food posts and serves the
// student history.
type SubmissionHandler struct {
	ledger   *service.LedgerService
	photos   *storage.PhotoStore
	maxBytes int64
}

// NewSubmissionHandler constructs SubmissionHandler.
func NewSubmissionHandler(ledger *service.LedgerService, photos *storage.PhotoStore, maxBytes int64) *SubmissionHandler {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &SubmissionHandler{ledger: ledger, photos: photos, maxBytes: maxBytes}
}

// Create godoc
// @Summary Submit a healthy-food post
// @Tags Posts
// @Accept multipart/form-data
// @Produce json
// @Param food_type formData string true "Food category"
// @Param from_cafeteria formData bool false "Bought at the cafeteria"
// @Param note formData string false "Free-text note"
// @Param image formData file true "Photo documenting the choice"
// @Success 201 {object} response.Envelope
// @Router /posts [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	claims := middleware.Claims(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a photo is required to document the submission"))
		return
	}
	if fileHeader.Size > h.maxBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo exceeds the size limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read photo"))
		return
	}
	defer file.Close() //nolint:errcheck

	imageRef, err := h.photos.Save(fileHeader.Filename, file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo"))
		return
	}

	fromCafeteria, _ := strconv.ParseBool(c.DefaultPostForm("from_cafeteria", "false"))
	req := service.SubmitFoodRequest{
		FoodType:      c.PostForm("food_type"),
		FromCafeteria: fromCafeteria,
		Note:          c.PostForm("note"),
		ImageRef:      imageRef,
	}

	resp, err := h.ledger.SubmitFood(c.Request.Context(), claims.StudentID, req)
	if err != nil && !service.IsPersistWarning(err) {
		// The submission never happened; drop the orphaned photo.
		_ = h.photos.Delete(imageRef)
		response.Error(c, err)
		return
	}
	response.Created(c, resp, response.PersistMeta(err))
}

// History godoc
// @Summary List the caller's posts, newest first
// @Tags Posts
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /profile/posts [get]
func (h *SubmissionHandler) History(c *gin.Context) {
	claims := middleware.Claims(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	posts, pagination, err := h.ledger.History(c.Request.Context(), claims.StudentID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, pagination)
}
