package vod

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// HTTPHandler exposes REST endpoints for the vod service.
type HTTPHandler struct {
	service      *Service
	logger       *zap.Logger
	maxSizeBytes int64
	formMemBytes int64
	router       chi.Router
}

// NewHTTPHandler constructs the HTTP handler and wires routes.
func NewHTTPHandler(service *Service, logger *zap.Logger, maxSizeBytes, formMemBytes int64) *HTTPHandler {
	h := &HTTPHandler{
		service:      service,
		logger:       logger,
		maxSizeBytes: maxSizeBytes,
		formMemBytes: formMemBytes,
	}
	h.buildRouter()
	return h
}

func (h *HTTPHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/healthz", h.handleHealth)
	r.Post("/api/v1/videos", h.handleUpload)
	r.Get("/api/v1/videos/{id}", h.handleDetail)
	r.Post("/api/v1/videos/{id}/process", h.handleReprocess)

	h.router = r
}

// Router exposes the configured chi router.
func (h *HTTPHandler) Router() http.Handler {
	return h.router
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *HTTPHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > 0 && r.ContentLength > h.maxSizeBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	if err := r.ParseMultipartForm(h.formMemBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxSizeBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds max size limit")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.service.ProcessUpload(r.Context(), file, header.Size, UploadOptions{
		Filename:    header.Filename,
		ContentType: contentType,
	})
	if err != nil {
		h.logger.Error("upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"asset_id":    result.AssetID,
		"source_key":  result.SourceKey,
		"checksum":    result.Checksum,
		"size_bytes":  result.Size,
		"uploaded_at": result.UploadedAt,
	})
}

func (h *HTTPHandler) handleDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.service.Asset(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	// Fields stay absent until a run reaches done; clients render that
	// as "processing".
	writeJSON(w, http.StatusOK, map[string]any{
		"asset_id":     rec.ID,
		"source_key":   rec.SourceKey,
		"filename":     rec.Filename,
		"content_type": rec.ContentType,
		"size_bytes":   rec.SizeBytes,
		"fields":       rec.Fields,
		"created_at":   rec.CreatedAt,
		"updated_at":   rec.UpdatedAt,
	})
}

func (h *HTTPHandler) handleReprocess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Reprocess(r.Context(), id); err != nil {
		h.logger.Error("reprocess failed", zap.String("asset_id", id), zap.Error(err))
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"asset_id": id,
		"status":   "processing",
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
