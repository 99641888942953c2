package resource

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultLimit = 5
	MaxLimit     = 100
)

// NewestFirst orders by store-generated id, descending.
var NewestFirst = bson.D{{Key: "_id", Value: -1}}

// PageQuery is the page/limit pair read from the query string.
type PageQuery struct {
	Page  int64 `query:"page"  validate:"gte=0"`
	Limit int64 `query:"limit" validate:"gte=1,lte=100"`
}

// Skip is page*limit.
func (p PageQuery) Skip() int64 {
	return p.Page * p.Limit
}

// ParsePage reads page (default 0) and limit (default 5).
func ParsePage(r *http.Request) (PageQuery, error) {
	q := PageQuery{Page: 0, Limit: DefaultLimit}
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return q, fmt.Errorf("page must be an integer")
		}
		q.Page = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return q, fmt.Errorf("limit must be an integer")
		}
		q.Limit = n
	}
	return q, Validate(q)
}

// HasPage reports whether the request asked for pagination.
func HasPage(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("page") || q.Has("limit")
}

// ContainsFold matches values containing s, ignoring case. s is matched literally.
func ContainsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
