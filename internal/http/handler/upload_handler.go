package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/leadforge/crm-api/internal/config"
	"github.com/leadforge/crm-api/internal/storage"
	"go.uber.org/zap"
)

// allowedPhotoTypes restricts uploads to image formats the frontends render
var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type UploadHandler struct {
	store  storage.Storage
	cfg    *config.StorageConfig
	logger *zap.Logger
}

func NewUploadHandler(store storage.Storage, cfg *config.StorageConfig, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{store: store, cfg: cfg, logger: logger}
}

type uploadResponse struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// UploadPhoto godoc
// @Summary Upload a note photo
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Image file"
// @Success 201 {object} domain.APIResponse
// @Failure 400 {object} domain.APIResponse
// @Failure 413 {object} domain.APIResponse
// @Security BearerAuth
// @Router /upload/photo [post]
func (h *UploadHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.MaxUploadSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "Upload too large")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing photo file")
		return
	}
	defer file.Close()

	// Sniff the real content type instead of trusting the client header
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedPhotoTypes[contentType] {
		respondError(w, http.StatusBadRequest, "Unsupported file type")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	key, size, err := h.store.Save(r.Context(), header.Filename, contentType, file)
	if err != nil {
		h.logger.Error("failed to store upload",
			zap.String("filename", header.Filename),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	respondSuccess(w, http.StatusCreated, uploadResponse{
		Key:  key,
		URL:  "/uploads/" + key,
		Size: size,
	})
}

// ServePhoto streams a previously stored upload back to the client
func (h *UploadHandler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" || strings.Contains(key, "..") {
		respondError(w, http.StatusBadRequest, "Invalid file key")
		return
	}

	reader, err := h.store.Open(r.Context(), key)
	if err != nil {
		respondError(w, http.StatusNotFound, "Resource not found")
		return
	}
	defer reader.Close()

	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream upload", zap.String("key", key), zap.Error(err))
	}
}
