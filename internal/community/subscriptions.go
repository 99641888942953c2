package community

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/resource"
	"github.com/podcastify/podcastify-api/internal/respond"
	"github.com/podcastify/podcastify-api/internal/store"
)

// Subscribe follows a podcaster once per subscriber.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var s models.Subscription
	if !respond.Decode(w, r, &s) {
		return
	}
	h.stamp(&s.CreatedAt)
	key := bson.M{"podcasterId": s.PodcasterID, "subscriberEmail": s.SubscriberEmail}
	h.subscriptions.CreateUnique(w, r, &s, key, "Already subscribed")
}

// MySubscriptions lists everything the {email} subscriber follows.
func (h *Handler) MySubscriptions(w http.ResponseWriter, r *http.Request) {
	h.subscriptions.List(w, r, bson.M{"subscriberEmail": chi.URLParam(r, "email")}, store.FindOptions{Sort: resource.NewestFirst})
}
