package community

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/respond"
)

// AddToPlaylist saves a podcast to a user's playlist once.
func (h *Handler) AddToPlaylist(w http.ResponseWriter, r *http.Request) {
	var e models.PlaylistEntry
	if !respond.Decode(w, r, &e) {
		return
	}
	h.stamp(&e.CreatedAt)
	key := bson.M{"user_email": e.UserEmail, "music_id": e.MusicID}
	h.playlist.CreateUnique(w, r, &e, key, "Podcast already exists in playlist.")
}

// ManagePlaylist pages through one user's playlist.
func (h *Handler) ManagePlaylist(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("userEmail")
	if email == "" {
		respond.Error(w, http.StatusBadRequest, "Email is required")
		return
	}
	h.playlist.Page(w, r, bson.M{"user_email": email}, "playlist")
}

func (h *Handler) RemoveFromPlaylist(w http.ResponseWriter, r *http.Request) {
	h.playlist.Delete(w, r)
}
