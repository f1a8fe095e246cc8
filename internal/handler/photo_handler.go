package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
	"github.com/smarthealthy/tracker-api/pkg/response"
	"github.com/smarthealthy/tracker-api/pkg/storage"
)

// PhotoHandler streams stored submission photos back to authenticated users.
type PhotoHandler struct {
	photos *storage.PhotoStore
}

// NewPhotoHandler constructs PhotoHandler.
func NewPhotoHandler(photos *storage.PhotoStore) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

// Get godoc
// @Summary Fetch a submission photo by reference
// @Tags Photos
// @Produce octet-stream
// @Param ref path string true "Photo reference"
// @Success 200 {file} binary
// @Router /photos/{ref} [get]
func (h *PhotoHandler) Get(c *gin.Context) {
	ref := strings.TrimPrefix(c.Param("ref"), "/")

	file, err := h.photos.Open(ref)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "photo not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read photo"))
		return
	}
	http.ServeContent(c.Writer, c.Request, ref, info.ModTime(), file)
}
