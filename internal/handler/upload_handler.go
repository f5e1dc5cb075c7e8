package handler

import (
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sms-go-api/pkg/errors"
	"github.com/noah-isme/sms-go-api/pkg/response"
	"github.com/noah-isme/sms-go-api/pkg/storage"
)

// UploadHandler serves stored photo and signature assets.
type UploadHandler struct {
	store *storage.UploadStore
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(store *storage.UploadStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// Serve streams a previously uploaded asset by its URL path.
func (h *UploadHandler) Serve(c *gin.Context) {
	data, err := h.store.Read("/" + c.Param("kind") + "/" + c.Param("file"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
