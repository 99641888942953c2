// Package resource implements the create/read/update/delete/list operations
// every entity shares, on top of a typed document collection.
package resource

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/podcastify/podcastify-api/internal/respond"
	"github.com/podcastify/podcastify-api/internal/store"
)

// Store is the collection surface a Controller needs. *store.Collection[T]
// satisfies it.
type Store[T any] interface {
	Find(ctx context.Context, filter bson.M, opts store.FindOptions) ([]T, error)
	FindOne(ctx context.Context, filter bson.M) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, doc *T) (string, error)
	UpdateByID(ctx context.Context, id string, set any, upsert bool) (*store.UpdateResult, error)
	UpdateOne(ctx context.Context, filter bson.M, set any) (*store.UpdateResult, error)
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context, filter bson.M) (int64, error)
	EstimatedCount(ctx context.Context) (int64, error)
}

// Controller binds one entity's store to HTTP. Name is used in response messages.
type Controller[T any] struct {
	Name   string
	Store  Store[T]
	Log    *zap.Logger
	Upsert bool
}

func New[T any](name string, s Store[T], log *zap.Logger) *Controller[T] {
	return &Controller[T]{Name: name, Store: s, Log: log.With(zap.String("resource", name))}
}

// Inserted is the response to a create. InsertedID is nil when a duplicate short-circuited the insert.
type Inserted struct {
	Message    string  `json:"message"`
	InsertedID *string `json:"insertedId"`
}

// List writes every document matching filter.
func (c *Controller[T]) List(w http.ResponseWriter, r *http.Request, filter bson.M, opts store.FindOptions) {
	docs, err := c.Store.Find(r.Context(), filter, opts)
	if err != nil {
		respond.ServerError(w, r, c.Log, fmt.Sprintf("Failed to fetch %s", c.Name), err)
		return
	}
	respond.JSON(w, http.StatusOK, docs)
}

// Page writes {key: docs, total: n} for one page of documents matching filter,
// newest first. The count is a separate query.
func (c *Controller[T]) Page(w http.ResponseWriter, r *http.Request, filter bson.M, key string) {
	page, err := ParsePage(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, err := c.Store.Find(r.Context(), filter, store.FindOptions{
		Sort:  NewestFirst,
		Skip:  page.Skip(),
		Limit: page.Limit,
	})
	if err != nil {
		respond.ServerError(w, r, c.Log, fmt.Sprintf("Failed to fetch %s", c.Name), err)
		return
	}
	total, err := c.Store.Count(r.Context(), filter)
	if err != nil {
		respond.ServerError(w, r, c.Log, fmt.Sprintf("Failed to fetch %s", c.Name), err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]interface{}{key: docs, "total": total})
}

// Get writes the document named by the {id} URL param.
func (c *Controller[T]) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := c.Store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.Fail(w, r, err, "fetch")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// Create inserts doc.
func (c *Controller[T]) Create(w http.ResponseWriter, r *http.Request, doc *T) {
	id, err := c.Store.Insert(r.Context(), doc)
	if err != nil {
		respond.ServerError(w, r, c.Log, fmt.Sprintf("Failed to add %s", c.Name), err)
		return
	}
	respond.JSON(w, http.StatusOK, Inserted{
		Message:    fmt.Sprintf("%s added successfully", c.Name),
		InsertedID: &id,
	})
}

// CreateUnique inserts doc unless a document matching key already exists, in
// which case it answers 200 with existsMsg and a null insertedId. The lookup
// and the insert are not atomic.
func (c *Controller[T]) CreateUnique(w http.ResponseWriter, r *http.Request, doc *T, key bson.M, existsMsg string) {
	_, err := c.Store.FindOne(r.Context(), key)
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, Inserted{Message: existsMsg})
		return
	case !errors.Is(err, store.ErrNotFound):
		respond.ServerError(w, r, c.Log, fmt.Sprintf("Failed to add %s", c.Name), err)
		return
	}
	c.Create(w, r, doc)
}

// Replace $sets every field of set on the {id} document, upserting when the
// controller allows it.
func (c *Controller[T]) Replace(w http.ResponseWriter, r *http.Request, set any) {
	res, err := c.Store.UpdateByID(r.Context(), chi.URLParam(r, "id"), set, c.Upsert)
	if err != nil {
		c.Fail(w, r, err, "update")
		return
	}
	if !c.Upsert && res.MatchedCount == 0 {
		respond.Error(w, http.StatusNotFound, fmt.Sprintf("%s not found", c.Name))
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// Delete removes the {id} document.
func (c *Controller[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.Store.DeleteByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		c.Fail(w, r, err, "delete")
		return
	}
	respond.Message(w, http.StatusOK, fmt.Sprintf("%s deleted successfully", c.Name))
}

// Fail maps a store error to 404, 400 or a logged 500.
func (c *Controller[T]) Fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respond.Error(w, http.StatusNotFound, fmt.Sprintf("%s not found", c.Name))
	case errors.Is(err, store.ErrInvalidID):
		respond.Error(w, http.StatusBadRequest, "invalid id")
	default:
		respond.ServerError(w, r, c.Log, fmt.Sprintf("Failed to %s %s", op, c.Name), err)
	}
}
