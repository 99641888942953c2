package community

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/resource"
	"github.com/podcastify/podcastify-api/internal/respond"
	"github.com/podcastify/podcastify-api/internal/store"
)

func (h *Handler) Announce(w http.ResponseWriter, r *http.Request) {
	var a models.Announcement
	if !respond.Decode(w, r, &a) {
		return
	}
	h.stamp(&a.CreatedAt)
	h.announcements.Create(w, r, &a)
}

func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	h.announcements.List(w, r, bson.M{}, store.FindOptions{Sort: resource.NewestFirst})
}

// GetAnnouncement returns the announcement together with its author's
// profile. findPerson is {} when the announcement has no email or the
// author has no profile.
func (h *Handler) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	a, err := h.announcements.Store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.announcements.Fail(w, r, err, "fetch")
		return
	}

	var person interface{} = struct{}{}
	if a.Email != "" {
		u, err := h.users.FindOne(r.Context(), bson.M{"email": a.Email})
		switch {
		case err == nil:
			person = u
		case !errors.Is(err, store.ErrNotFound):
			respond.ServerError(w, r, h.log, "Failed to fetch Announcement", err)
			return
		}
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"findAnnouncement": a,
		"findPerson":       person,
	})
}

// React records a reaction to an announcement.
func (h *Handler) React(w http.ResponseWriter, r *http.Request) {
	var re models.Reaction
	if !respond.Decode(w, r, &re) {
		return
	}
	h.stamp(&re.CreatedAt)
	h.reactions.Create(w, r, &re)
}

// Reactions lists the reactions whose postId is the {id} announcement.
func (h *Handler) Reactions(w http.ResponseWriter, r *http.Request) {
	h.reactions.List(w, r, bson.M{"postId": chi.URLParam(r, "id")}, store.FindOptions{Sort: resource.NewestFirst})
}
