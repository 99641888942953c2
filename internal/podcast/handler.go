package podcast

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/podcastify/podcastify-api/internal/media"
	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/resource"
	"github.com/podcastify/podcastify-api/internal/respond"
	"github.com/podcastify/podcastify-api/internal/store"
)

const memoryLimit = 32 << 20

// FileStore defines where uploaded cover images and audio files go.
type FileStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
}

// Handler holds podcast HTTP handlers.
type Handler struct {
	crud      *resource.Controller[models.Podcast]
	files     FileStore
	maxUpload int64
	now       func() time.Time
	log       *zap.Logger
}

func NewHandler(podcasts resource.Store[models.Podcast], files FileStore, maxUpload int64, log *zap.Logger) *Handler {
	return &Handler{
		crud:      resource.New[models.Podcast]("Podcast", podcasts, log),
		files:     files,
		maxUpload: maxUpload,
		now:       time.Now,
		log:       log,
	}
}

// List returns podcasts matching search/category/language, newest first.
// With page or limit present the response is {podcasts, total}.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := SearchFilter(r.URL.Query())
	if resource.HasPage(r) {
		h.crud.Page(w, r, filter, "podcasts")
		return
	}
	h.crud.List(w, r, filter, store.FindOptions{Sort: resource.NewestFirst})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.crud.Get(w, r)
}

// Manage pages through one owner's podcasts.
func (h *Handler) Manage(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("userEmail")
	if email == "" {
		respond.Error(w, http.StatusBadRequest, "Email is required")
		return
	}
	h.crud.Page(w, r, bson.M{"userEmail": email}, "podcasts")
}

// Create stores a new podcast from a JSON or multipart body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, keys, ok := h.readInput(w, r)
	if !ok {
		return
	}
	doc := in.Podcast()
	id, err := h.crud.Store.Insert(r.Context(), &doc)
	if err != nil {
		h.removeFiles(r.Context(), keys)
		respond.ServerError(w, r, h.log, "Failed to upload podcast", err)
		return
	}
	respond.JSON(w, http.StatusOK, resource.Inserted{Message: "Podcast uploaded successfully", InsertedID: &id})
}

// Update replaces every field of the {id} podcast, creating it when missing.
// Files uploaded with a failed update are removed.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	in, keys, ok := h.readInput(w, r)
	if !ok {
		return
	}
	res, err := h.crud.Store.UpdateByID(r.Context(), chi.URLParam(r, "id"), in.Podcast(), true)
	if err != nil {
		h.removeFiles(r.Context(), keys)
		h.crud.Fail(w, r, err, "update")
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.crud.Delete(w, r)
}

// readInput decodes the body. For multipart bodies the coverImage and
// audioFile parts are stored and replaced by their served URLs; the stored
// keys are returned so a failed insert can clean them up.
func (h *Handler) readInput(w http.ResponseWriter, r *http.Request) (Input, []string, bool) {
	var in Input
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return in, nil, respond.Decode(w, r, &in)
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid multipart body")
		return in, nil, false
	}
	defer r.MultipartForm.RemoveAll()

	in = Input{
		Title:       r.FormValue("title"),
		Musician:    r.FormValue("musician"),
		Description: r.FormValue("description"),
		CoverImage:  r.FormValue("coverImage"),
		AudioFile:   r.FormValue("audioFile"),
		ReleaseDate: r.FormValue("releaseDate"),
		Category:    r.FormValue("category"),
		UserEmail:   r.FormValue("userEmail"),
	}
	switch values := r.MultipartForm.Value["tags"]; len(values) {
	case 0:
		in.Tags = TagList{}
	case 1:
		in.Tags = NormalizeTags(values[0])
	default:
		in.Tags = NormalizeTags(values)
	}

	var keys []string
	for _, part := range []struct {
		field, dir string
		dst        *string
	}{
		{"coverImage", "images", &in.CoverImage},
		{"audioFile", "audios", &in.AudioFile},
	} {
		file, header, err := r.FormFile(part.field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			h.removeFiles(r.Context(), keys)
			respond.Error(w, http.StatusBadRequest, "invalid "+part.field+" file")
			return in, nil, false
		}

		key := media.ObjectKey(part.dir, header.Filename, h.now())
		err = h.files.Put(r.Context(), key, file, header.Size, header.Header.Get("Content-Type"))
		file.Close()
		if err != nil {
			h.removeFiles(r.Context(), keys)
			respond.ServerError(w, r, h.log, "Failed to upload podcast", err)
			return in, nil, false
		}
		keys = append(keys, key)
		*part.dst = media.URL(key)
	}
	return in, keys, true
}

func (h *Handler) removeFiles(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := h.files.Remove(ctx, key); err != nil {
			h.log.Warn("orphaned upload", zap.String("key", key), zap.Error(err))
		}
	}
}
