package models

import "time"

// Agent represents an authenticated listing owner.
type Agent struct {
	ID           string    `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}
