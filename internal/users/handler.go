// Package users serves user profiles: first-login registration, profile
// edits, podcaster-role requests and admin deletion.
package users

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/resource"
	"github.com/podcastify/podcastify-api/internal/respond"
	"github.com/podcastify/podcastify-api/internal/store"
)

// IdentityProvider removes the login account linked to a profile.
type IdentityProvider interface {
	DeleteAccount(ctx context.Context, uid string) error
}

type Handler struct {
	crud     *resource.Controller[models.User]
	identity IdentityProvider
	now      func() time.Time
	log      *zap.Logger
}

func NewHandler(users resource.Store[models.User], identity IdentityProvider, log *zap.Logger) *Handler {
	return &Handler{
		crud:     resource.New[models.User]("User", users, log),
		identity: identity,
		now:      time.Now,
		log:      log,
	}
}

// Save stores the profile sent on login unless one with the same email exists.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if !respond.Decode(w, r, &u) {
		return
	}
	u.Email = strings.TrimSpace(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = h.now().UTC()
	}
	h.crud.CreateUnique(w, r, &u, bson.M{"email": u.Email}, "User already exists")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.crud.List(w, r, bson.M{}, store.FindOptions{Sort: resource.NewestFirst})
}

// PodcasterRequests lists users waiting for the podcaster role.
func (h *Handler) PodcasterRequests(w http.ResponseWriter, r *http.Request) {
	h.crud.List(w, r, bson.M{"flag": true}, store.FindOptions{Sort: resource.NewestFirst})
}

func (h *Handler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	u, err := h.crud.Store.FindOne(r.Context(), bson.M{"email": chi.URLParam(r, "email")})
	if err != nil {
		h.crud.Fail(w, r, err, "fetch")
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

// UpdateProfile sets name, username and phoneNumber only.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body models.ProfileUpdate
	if !respond.Decode(w, r, &body) {
		return
	}
	h.updateByEmail(w, r, body)
}

// ResolveRequest sets role and flag together, approving or declining a
// podcaster-role request.
func (h *Handler) ResolveRequest(w http.ResponseWriter, r *http.Request) {
	var body models.RoleRequest
	if !respond.Decode(w, r, &body) {
		return
	}
	h.updateByEmail(w, r, body)
}

func (h *Handler) updateByEmail(w http.ResponseWriter, r *http.Request, set any) {
	res, err := h.crud.Store.UpdateOne(r.Context(), bson.M{"email": chi.URLParam(r, "email")}, set)
	if err != nil {
		respond.ServerError(w, r, h.log, "Error updating user", err)
		return
	}
	if res.MatchedCount == 0 {
		respond.Error(w, http.StatusNotFound, "User not found")
		return
	}
	respond.Message(w, http.StatusOK, "User updated successfully")
}

// Delete removes the profile, then the linked identity-provider account.
// The account removal is best effort: a failure is logged and the profile
// stays deleted.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, err := h.crud.Store.FindByID(r.Context(), id)
	if err != nil {
		h.crud.Fail(w, r, err, "delete")
		return
	}
	if err := h.crud.Store.DeleteByID(r.Context(), id); err != nil {
		h.crud.Fail(w, r, err, "delete")
		return
	}

	if u.UID == "" {
		h.log.Warn("user has no linked account", zap.String("id", id), zap.String("email", u.Email))
	} else if err := h.identity.DeleteAccount(r.Context(), u.UID); err != nil {
		h.log.Warn("failed to delete linked account", zap.String("uid", u.UID), zap.Error(err))
	}

	respond.Message(w, http.StatusOK, "User deleted successfully")
}

// Stats reports the approximate user count.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	n, err := h.crud.Store.EstimatedCount(r.Context())
	if err != nil {
		respond.ServerError(w, r, h.log, "Failed to fetch stats", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int64{"users": n})
}
