package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
)

// FindOptions controls ordering and paging of a Find call. Zero values mean unset.
type FindOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

// UpdateResult mirrors the counts reported by an updateOne.
type UpdateResult struct {
	Acknowledged  bool   `json:"acknowledged"`
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	UpsertedID    string `json:"upsertedId,omitempty"`
}

// Collection is a typed pass-through to one MongoDB collection.
type Collection[T any] struct {
	col *mongo.Collection
}

func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{col: db.Collection(name)}
}

// ObjectID parses a hex id, reporting ErrInvalidID on malformed input.
func ObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func (c *Collection[T]) Find(ctx context.Context, filter bson.M, opts FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	fo := options.Find()
	if len(opts.Sort) > 0 {
		fo.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}

	cur, err := c.col.Find(ctx, filter, fo)
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", c.col.Name(), err)
	}
	defer cur.Close(ctx)

	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", c.col.Name(), err)
	}
	return docs, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	if err := c.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find one %s: %w", c.col.Name(), err)
	}
	return &doc, nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}
	return c.FindOne(ctx, bson.M{"_id": oid})
}

// Insert stores doc and returns the store-generated id as hex.
func (c *Collection[T]) Insert(ctx context.Context, doc *T) (string, error) {
	res, err := c.col.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("mongo insert %s: %w", c.col.Name(), err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprint(res.InsertedID), nil
	}
	return oid.Hex(), nil
}

// UpdateByID applies {$set: set} to the document with the given id.
func (c *Collection[T]) UpdateByID(ctx context.Context, id string, set any, upsert bool) (*UpdateResult, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}
	return c.update(ctx, bson.M{"_id": oid}, set, upsert)
}

func (c *Collection[T]) UpdateOne(ctx context.Context, filter bson.M, set any) (*UpdateResult, error) {
	return c.update(ctx, filter, set, false)
}

func (c *Collection[T]) update(ctx context.Context, filter bson.M, set any, upsert bool) (*UpdateResult, error) {
	res, err := c.col.UpdateOne(ctx, filter, bson.M{"$set": set}, options.Update().SetUpsert(upsert))
	if err != nil {
		return nil, fmt.Errorf("mongo update %s: %w", c.col.Name(), err)
	}
	out := &UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		out.UpsertedID = oid.Hex()
	}
	return out, nil
}

// DeleteByID removes one document, reporting ErrNotFound when nothing matched.
func (c *Collection[T]) DeleteByID(ctx context.Context, id string) error {
	oid, err := ObjectID(id)
	if err != nil {
		return err
	}
	res, err := c.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete %s: %w", c.col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := c.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongo count %s: %w", c.col.Name(), err)
	}
	return n, nil
}

func (c *Collection[T]) EstimatedCount(ctx context.Context) (int64, error) {
	n, err := c.col.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("mongo estimated count %s: %w", c.col.Name(), err)
	}
	return n, nil
}
