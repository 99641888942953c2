package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Podcast is a single audio record in the podcast collection.
type Podcast struct {
	ID            primitive.ObjectID `json:"_id,omitempty"  bson:"_id,omitempty"`
	Title         string             `json:"title"          bson:"title"`
	Musician      string             `json:"musician"       bson:"musician"`
	Description   string             `json:"description"    bson:"description"`
	CoverImageURL string             `json:"coverImageUrl"  bson:"coverImageUrl"`
	AudioFileURL  string             `json:"audioFileUrl"   bson:"audioFileUrl"`
	ReleaseDate   *time.Time         `json:"releaseDate"    bson:"releaseDate"`
	Category      string             `json:"category"       bson:"category"`
	UserEmail     string             `json:"userEmail"      bson:"userEmail"`
	Tags          []string           `json:"tags"           bson:"tags"`
}
