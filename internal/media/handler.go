package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/podcastify/podcastify-api/internal/respond"
	"github.com/podcastify/podcastify-api/internal/store"
)

// multipart parts above this size spill to temp files
const memoryLimit = 32 << 20

// ObjectStore defines the interface for cover/audio file storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (*store.Blob, error)
	Remove(ctx context.Context, key string) error
}

// VideoStore defines the interface for video blob storage.
type VideoStore interface {
	Upload(filename, contentType string, r io.Reader) (string, error)
	Open(filename string) (*store.Blob, error)
}

// Handler holds the binary upload/download handlers.
type Handler struct {
	objects   ObjectStore
	videos    VideoStore
	maxUpload int64
	log       *zap.Logger
}

func NewHandler(objects ObjectStore, videos VideoStore, maxUpload int64, log *zap.Logger) *Handler {
	return &Handler{objects: objects, videos: videos, maxUpload: maxUpload, log: log}
}

// UploadVideo stores the multipart "video" file under its original name.
func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("video")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id, err := h.videos.Upload(name, contentType, file)
	if err != nil {
		respond.ServerError(w, r, h.log, "Failed to upload video", err)
		return
	}
	h.log.Info("video uploaded", zap.String("filename", name), zap.String("id", id), zap.Int64("size", header.Size))
	respond.JSON(w, http.StatusOK, map[string]string{
		"message":  "Video uploaded successfully!",
		"id":       id,
		"filename": name,
	})
}

// StreamVideo serves a stored video by filename, honouring Range requests.
func (h *Handler) StreamVideo(w http.ResponseWriter, r *http.Request) {
	blob, err := h.videos.Open(chi.URLParam(r, "filename"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "No video found")
			return
		}
		respond.ServerError(w, r, h.log, "Failed to open video", err)
		return
	}
	defer blob.Close()
	serveBlob(w, r, blob)
}

// ServeUpload serves an uploaded cover image or audio file from object storage.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" || strings.Contains(key, "..") {
		respond.Error(w, http.StatusNotFound, "File not found")
		return
	}
	blob, err := h.objects.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "File not found")
			return
		}
		respond.ServerError(w, r, h.log, "Failed to open file", err)
		return
	}
	defer blob.Close()
	serveBlob(w, r, blob)
}

func serveBlob(w http.ResponseWriter, r *http.Request, blob *store.Blob) {
	if blob.ContentType != "" {
		w.Header().Set("Content-Type", blob.ContentType)
	}
	http.ServeContent(w, r, blob.Name, blob.ModTime, blob)
}
