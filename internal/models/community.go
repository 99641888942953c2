package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlaylistEntry links a user to a saved podcast. (UserEmail, MusicID) is unique.
type PlaylistEntry struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserEmail string             `json:"user_email"    bson:"user_email"`
	MusicID   string             `json:"music_id"      bson:"music_id"`
	Title     string             `json:"title"         bson:"title"`
	CreatedAt time.Time          `json:"createdAt"     bson:"createdAt"`
}

// Review is stored exactly as submitted.
type Review map[string]interface{}

// Announcement is a message posted by a user.
type Announcement struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Email     string             `json:"email"         bson:"email"`
	Title     string             `json:"title"         bson:"title"`
	Message   string             `json:"message"       bson:"message"`
	CreatedAt time.Time          `json:"createdAt"     bson:"createdAt"`
}

// Reaction is a user's reaction to an announcement.
type Reaction struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	PostID    string             `json:"postId"        bson:"postId"`
	Email     string             `json:"email"         bson:"email"`
	Name      string             `json:"name"          bson:"name"`
	Reaction  string             `json:"reaction"      bson:"reaction"`
	CreatedAt time.Time          `json:"createdAt"     bson:"createdAt"`
}

// Subscription records a listener following a podcaster. (PodcasterID, SubscriberEmail) is unique.
type Subscription struct {
	ID              primitive.ObjectID `json:"_id,omitempty"   bson:"_id,omitempty"`
	PodcasterID     string             `json:"podcasterId"     bson:"podcasterId"`
	SubscriberEmail string             `json:"subscriberEmail" bson:"subscriberEmail"`
	CreatedAt       time.Time          `json:"createdAt"       bson:"createdAt"`
}
