package server

import (
	"net/http"

	"github.com/kylejryan/image-upload-service/internal/api"
	"github.com/kylejryan/image-upload-service/internal/httpx"
	"github.com/kylejryan/image-upload-service/internal/images"

	"github.com/gin-gonic/gin"
)

// Handler translates HTTP requests into Service calls.
type Handler struct {
	svc *images.Service
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	httpx.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Initiate handles POST /v1/images.
func (h *Handler) Initiate(c *gin.Context) {
	var req api.InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	up, err := h.svc.Initiate(c.Request.Context(), req)
	if err != nil {
		httpx.ServiceError(c, err)
		return
	}
	httpx.JSON(c, http.StatusCreated, api.InitiateResponse{
		ImageID:   up.ImageID,
		UploadURL: up.UploadURL,
		ExpiresIn: int(up.ExpiresIn.Seconds()),
	})
}

// Complete handles POST /v1/images/:image_id/complete.
func (h *Handler) Complete(c *gin.Context) {
	v, err := h.svc.Complete(c.Request.Context(), c.Param("image_id"))
	if err != nil {
		httpx.ServiceError(c, err)
		return
	}
	httpx.JSON(c, http.StatusOK, api.NewRecordView(v.Image, v.URL))
}

// Fetch handles GET /v1/images/:image_id?download=true.
func (h *Handler) Fetch(c *gin.Context) {
	download := images.ParseDownload(c.Query("download"))
	v, err := h.svc.Fetch(c.Request.Context(), c.Param("image_id"), download)
	if err != nil {
		httpx.ServiceError(c, err)
		return
	}
	httpx.JSON(c, http.StatusOK, api.NewRecordView(v.Image, v.URL))
}

// List handles GET /v1/images?user_id=&content_type=&tag=.
func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), images.Filter{
		UserID:      c.Query("user_id"),
		ContentType: c.Query("content_type"),
		Tag:         c.Query("tag"),
	})
	if err != nil {
		httpx.ServiceError(c, err)
		return
	}
	httpx.JSON(c, http.StatusOK, api.NewListResponse(items))
}

// Delete handles DELETE /v1/images/:image_id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := h.svc.Delete(c.Request.Context(), c.Param("image_id"))
	if err != nil {
		httpx.ServiceError(c, err)
		return
	}
	httpx.JSON(c, http.StatusOK, api.DeleteResponse{Deleted: id})
}
