package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a profile document in the users collection. Email is the natural key.
type User struct {
	ID          primitive.ObjectID `json:"_id,omitempty"       bson:"_id,omitempty"`
	Email       string             `json:"email"               bson:"email"`
	Name        string             `json:"name"                bson:"name"`
	Username    string             `json:"username,omitempty"  bson:"username,omitempty"`
	PhoneNumber string             `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Photo       string             `json:"photo,omitempty"     bson:"photo,omitempty"`
	UID         string             `json:"uid,omitempty"       bson:"uid,omitempty"` // identity-provider account id
	Role        string             `json:"role,omitempty"      bson:"role,omitempty"`
	Flag        bool               `json:"flag"                bson:"flag"` // wants the podcaster role
	CreatedAt   time.Time          `json:"createdAt"           bson:"createdAt"`
}

// ProfileUpdate is the JSON body for PUT /users/email/{email}.
type ProfileUpdate struct {
	Name        string `json:"name"        bson:"name"`
	Username    string `json:"username"    bson:"username"`
	PhoneNumber string `json:"phoneNumber" bson:"phoneNumber"`
}

// RoleRequest is the JSON body for PUT /users/request/{email}.
type RoleRequest struct {
	Flag bool   `json:"flag" bson:"flag"`
	Role string `json:"role" bson:"role"`
}
