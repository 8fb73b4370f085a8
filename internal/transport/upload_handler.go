package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"food-catalog/internal/domain"
	"food-catalog/internal/middleware"
	"food-catalog/internal/service"
	"food-catalog/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const uploadField = "image"

// UploadResponse describes a stored image. Image is set when the upload was attached to a product.
type UploadResponse struct {
	URL         string               `json:"url"`
	ContentType string               `json:"content_type"`
	Size        int                  `json:"size"`
	Image       *domain.ProductImage `json:"image,omitempty"`
}

// UploadHandler accepts multipart image uploads and stores them in object storage
type UploadHandler struct {
	storage  storage.Storage
	products service.ProductService
	maxBytes int64
	logger   *zap.Logger
}

// NewUploadHandler creates an UploadHandler. A nil store disables uploads.
func NewUploadHandler(store storage.Storage, products service.ProductService, maxBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		storage:  store,
		products: products,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

func (h *UploadHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.With(guards.Staff).Post("/uploads/images", h.UploadImage)
}

// UploadImage handles POST /uploads/images. The optional product and alt_text
// form fields attach the stored image to that product's gallery.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "uploaded file is too large")
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		middleware.RespondWithFieldErrors(w, map[string]string{uploadField: "No file was submitted."})
		return
	}
	defer file.Close()

	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if !storage.AllowedContentTypes[contentType] {
		middleware.RespondWithFieldErrors(w, map[string]string{uploadField: "Upload a valid image."})
		return
	}

	data, encodedType, err := storage.ProcessImage(file)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	url, err := h.storage.Upload(r.Context(), data, encodedType)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response := UploadResponse{URL: url, ContentType: encodedType, Size: len(data)}

	if slug := r.FormValue("product"); slug != "" {
		image, err := h.products.AddImage(r.Context(), slug, &domain.ProductImage{
			ImageURL: url,
			AltText:  r.FormValue("alt_text"),
		})
		if err != nil {
			h.discard(url)
			respondError(w, h.logger, err)
			return
		}
		response.Image = image
	}

	h.logger.Info("Image uploaded", zap.String("url", url), zap.Int("bytes", len(data)))
	middleware.RespondWithJSON(w, http.StatusCreated, response)
}

// discard removes an object that could not be attached
func (h *UploadHandler) discard(url string) {
	if err := h.storage.Delete(context.Background(), url); err != nil {
		h.logger.Warn("Failed to remove orphaned upload", zap.String("url", url), zap.Error(err))
	}
}
