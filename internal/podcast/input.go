package podcast

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/podcastify/podcastify-api/internal/models"
	"github.com/podcastify/podcastify-api/internal/resource"
)

// TagList accepts either a JSON array of strings or one comma-joined string.
type TagList []string

func (t *TagList) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*t = NormalizeTags(raw)
	return nil
}

// NormalizeTags turns a list or a comma-joined string into trimmed tags,
// keeping their order, so "" yields [""]. Anything else yields an empty list.
func NormalizeTags(v interface{}) []string {
	tags := []string{}
	switch x := v.(type) {
	case []string:
		for _, s := range x {
			tags = append(tags, strings.TrimSpace(s))
		}
	case []interface{}:
		for _, el := range x {
			if s, ok := el.(string); ok {
				tags = append(tags, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(x, ",") {
			tags = append(tags, strings.TrimSpace(s))
		}
	}
	return tags
}

// Input is the create/update body. coverImage and audioFile hold URLs.
type Input struct {
	Title       string  `json:"title"`
	Musician    string  `json:"musician"`
	Description string  `json:"description"`
	CoverImage  string  `json:"coverImage"`
	AudioFile   string  `json:"audioFile"`
	ReleaseDate string  `json:"releaseDate"`
	Category    string  `json:"category"`
	UserEmail   string  `json:"userEmail"`
	Tags        TagList `json:"tags"`
}

// Podcast maps the input onto the stored field set.
func (in Input) Podcast() models.Podcast {
	tags := []string(in.Tags)
	if tags == nil {
		tags = []string{}
	}
	return models.Podcast{
		Title:         in.Title,
		Musician:      in.Musician,
		Description:   in.Description,
		CoverImageURL: in.CoverImage,
		AudioFileURL:  in.AudioFile,
		ReleaseDate:   ParseReleaseDate(in.ReleaseDate),
		Category:      in.Category,
		UserEmail:     in.UserEmail,
		Tags:          tags,
	}
}

// ParseReleaseDate accepts RFC 3339 or YYYY-MM-DD. Anything else is nil.
func ParseReleaseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// SearchFilter ANDs the search (title), category and language (tags) query params.
func SearchFilter(q url.Values) bson.M {
	filter := bson.M{}
	if v := q.Get("search"); v != "" {
		filter["title"] = resource.ContainsFold(v)
	}
	if v := q.Get("category"); v != "" {
		filter["category"] = resource.ContainsFold(v)
	}
	if v := q.Get("language"); v != "" {
		filter["tags"] = resource.ContainsFold(v)
	}
	return filter
}
