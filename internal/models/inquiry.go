package models

import "time"

// Inquiry represents a buyer message about a property.
// Inquiries are append-only: the API never mutates or deletes them.
type Inquiry struct {
	ID         string    `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string    `bson:"name" json:"name"`
	Email      string    `bson:"email" json:"email"`
	Message    string    `bson:"message" json:"message"`
	PropertyID string    `bson:"property_id" json:"propertyId"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	Notified   bool      `bson:"notified" json:"-"` // set by the background email task
}
