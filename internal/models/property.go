package models

import "time"

// PropertyStatus defines the lifecycle state of a listing.
type PropertyStatus string

const (
	StatusActive  PropertyStatus = "active"
	StatusPending PropertyStatus = "pending"
	StatusSold    PropertyStatus = "sold"
)

// ValidStatus reports whether s is one of the allowed listing statuses.
func ValidStatus(s PropertyStatus) bool {
	switch s {
	case StatusActive, StatusPending, StatusSold:
		return true
	}
	return false
}

// Property represents a real-estate listing owned by an agent.
// ID is server-assigned (UUID) and immutable once set.
type Property struct {
	ID             string         `bson:"_id,omitempty" json:"id,omitempty"`
	AgentID        string         `bson:"agent_id" json:"agentId,omitempty"`
	Title          string         `bson:"title" json:"title"`
	Price          float64        `bson:"price" json:"price"`
	StreetAddress1 string         `bson:"street_address_1" json:"streetAddress1"`
	StreetAddress2 string         `bson:"street_address_2,omitempty" json:"streetAddress2,omitempty"`
	City           string         `bson:"city" json:"city"`
	State          string         `bson:"state" json:"state"`
	Zipcode        string         `bson:"zipcode" json:"zipcode"`
	Bedrooms       int            `bson:"bedrooms" json:"bedrooms"`
	Bathrooms      float64        `bson:"bathrooms" json:"bathrooms"`
	Description    string         `bson:"description" json:"description"`
	Status         PropertyStatus `bson:"status" json:"status"`
	ImageURL       string         `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	CreatedAt      time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updatedAt"`
}
