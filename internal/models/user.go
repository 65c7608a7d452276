package models

import (
	"time"
)

// User represents a platform account. Characters, worlds and affiliations all
// reference their owning user by ID.
type User struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Username       string    `bson:"username" json:"username"`
	Email          string    `bson:"email" json:"email"`
	HashedPassword string    `bson:"hashed_password" json:"-"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
	LastActiveAt   time.Time `bson:"last_active_at,omitempty" json:"last_active_at,omitempty"`
}

type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile aggregates a user with the characters they own.
type Profile struct {
	User       PublicUser  `json:"user"`
	Characters []Character `json:"characters"`
}
