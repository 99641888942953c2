// Package storetest provides an in-memory stand-in for store.Collection that
// evaluates the subset of bson filters the handlers build: field equality and
// primitive.Regex, matched element-wise against arrays.
package storetest

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/podcastify/podcastify-api/internal/store"
)

type Memory[T any] struct {
	mu   sync.Mutex
	docs []bson.M // insertion order
	Err  error    // when set, every call fails with it
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{}
}

// Seed inserts docs directly and returns their ids.
func (m *Memory[T]) Seed(t interface{ Fatalf(string, ...any) }, docs ...T) []string {
	ids := make([]string, 0, len(docs))
	for i := range docs {
		id, err := m.Insert(context.Background(), &docs[i])
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of stored documents.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *Memory[T]) Find(_ context.Context, filter bson.M, opts store.FindOptions) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var matched []bson.M
	for _, d := range m.docs {
		if matches(d, filter) {
			matched = append(matched, d)
		}
	}
	if descending(opts.Sort) {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	if opts.Skip > 0 {
		if opts.Skip >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(matched)) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	out := []T{}
	for _, d := range matched {
		v, err := decode[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *Memory[T]) FindOne(_ context.Context, filter bson.M) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, d := range m.docs {
		if matches(d, filter) {
			v, err := decode[T](d)
			return &v, err
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := store.ObjectID(id)
	if err != nil {
		return nil, err
	}
	return m.FindOne(ctx, bson.M{"_id": oid})
}

func (m *Memory[T]) Insert(_ context.Context, doc *T) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	d, err := toM(doc)
	if err != nil {
		return "", err
	}
	oid, ok := d["_id"].(primitive.ObjectID)
	if !ok || oid.IsZero() {
		oid = primitive.NewObjectID()
		d["_id"] = oid
	}
	m.docs = append(m.docs, d)
	return oid.Hex(), nil
}

func (m *Memory[T]) UpdateByID(_ context.Context, id string, set any, upsert bool) (*store.UpdateResult, error) {
	oid, err := store.ObjectID(id)
	if err != nil {
		return nil, err
	}
	return m.update(bson.M{"_id": oid}, set, upsert)
}

func (m *Memory[T]) UpdateOne(_ context.Context, filter bson.M, set any) (*store.UpdateResult, error) {
	return m.update(filter, set, false)
}

func (m *Memory[T]) update(filter bson.M, set any, upsert bool) (*store.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	fields, err := toM(set)
	if err != nil {
		return nil, err
	}
	delete(fields, "_id")

	for _, d := range m.docs {
		if !matches(d, filter) {
			continue
		}
		modified := int64(0)
		for k, v := range fields {
			if !reflect.DeepEqual(d[k], v) {
				d[k] = v
				modified = 1
			}
		}
		return &store.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}, nil
	}

	res := &store.UpdateResult{Acknowledged: true}
	if upsert {
		d := bson.M{}
		for k, v := range filter {
			if _, isRegex := v.(primitive.Regex); !isRegex {
				d[k] = v
			}
		}
		for k, v := range fields {
			d[k] = v
		}
		oid, ok := d["_id"].(primitive.ObjectID)
		if !ok {
			oid = primitive.NewObjectID()
			d["_id"] = oid
		}
		m.docs = append(m.docs, d)
		res.UpsertedID = oid.Hex()
	}
	return res, nil
}

func (m *Memory[T]) DeleteByID(_ context.Context, id string) error {
	oid, err := store.ObjectID(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, d := range m.docs {
		if d["_id"] == oid {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *Memory[T]) Count(_ context.Context, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for _, d := range m.docs {
		if matches(d, filter) {
			n++
		}
	}
	return n, nil
}

func (m *Memory[T]) EstimatedCount(ctx context.Context) (int64, error) {
	return m.Count(ctx, nil)
}

func matches(doc, filter bson.M) bool {
	for key, want := range filter {
		got := doc[key]
		if re, ok := want.(primitive.Regex); ok {
			if !matchRegex(got, re) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func matchRegex(v any, re primitive.Regex) bool {
	expr := re.Pattern
	if re.Options != "" {
		expr = "(?" + re.Options + ")" + expr
	}
	rx := regexp.MustCompile(expr)
	switch val := v.(type) {
	case string:
		return rx.MatchString(val)
	case primitive.A:
		for _, el := range val {
			if s, ok := el.(string); ok && rx.MatchString(s) {
				return true
			}
		}
	}
	return false
}

func descending(sort bson.D) bool {
	for _, e := range sort {
		if e.Key == "_id" {
			return fmt.Sprint(e.Value) == "-1"
		}
	}
	return false
}

func toM(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("storetest marshal: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("storetest unmarshal: %w", err)
	}
	return m, nil
}

func decode[T any](d bson.M) (T, error) {
	var out T
	raw, err := bson.Marshal(d)
	if err != nil {
		return out, fmt.Errorf("storetest marshal: %w", err)
	}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("storetest decode: %w", err)
	}
	return out, nil
}
