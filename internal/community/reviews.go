package community

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/resource"
	"github.com/podcastify/podcastify-api/internal/respond"
	"github.com/podcastify/podcastify-api/internal/store"
)

// AddReview stores the body as submitted. A client-supplied _id is dropped.
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	review := models.Review{}
	if !respond.Decode(w, r, &review) {
		return
	}
	delete(review, "_id")
	h.reviews.Create(w, r, &review)
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	h.reviews.List(w, r, bson.M{}, store.FindOptions{Sort: resource.NewestFirst})
}
