// Package community serves the listener-facing collections: playlists,
// reviews, announcements with their reactions, and subscriptions.
package community

import (
	"time"

	"go.uber.org/zap"

	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/resource"
)

// Stores groups the collections the community handlers read and write.
type Stores struct {
	Playlist      resource.Store[models.PlaylistEntry]
	Reviews       resource.Store[models.Review]
	Announcements resource.Store[models.Announcement]
	Reactions     resource.Store[models.Reaction]
	Subscriptions resource.Store[models.Subscription]
	Users         resource.Store[models.User]
}

type Handler struct {
	playlist      *resource.Controller[models.PlaylistEntry]
	reviews       *resource.Controller[models.Review]
	announcements *resource.Controller[models.Announcement]
	reactions     *resource.Controller[models.Reaction]
	subscriptions *resource.Controller[models.Subscription]
	users         resource.Store[models.User]
	now           func() time.Time
	log           *zap.Logger
}

func NewHandler(s Stores, log *zap.Logger) *Handler {
	return &Handler{
		playlist:      resource.New[models.PlaylistEntry]("Playlist podcast", s.Playlist, log),
		reviews:       resource.New[models.Review]("Review", s.Reviews, log),
		announcements: resource.New[models.Announcement]("Announcement", s.Announcements, log),
		reactions:     resource.New[models.Reaction]("Reaction", s.Reactions, log),
		subscriptions: resource.New[models.Subscription]("Subscription", s.Subscriptions, log),
		users:         s.Users,
		now:           time.Now,
		log:           log,
	}
}

func (h *Handler) stamp(t *time.Time) {
	if t.IsZero() {
		*t = h.now().UTC()
	}
}
