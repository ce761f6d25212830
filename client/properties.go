package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// PropertyInput is the request body for creating or updating a listing.
// Nil fields are omitted, so an update only touches what the caller set.
type PropertyInput struct {
	Title          *string  `json:"title,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	StreetAddress1 *string  `json:"streetAddress1,omitempty"`
	StreetAddress2 *string  `json:"streetAddress2,omitempty"`
	City           *string  `json:"city,omitempty"`
	State          *string  `json:"state,omitempty"`
	Zipcode        *string  `json:"zipcode,omitempty"`
	Bedrooms       *int     `json:"bedrooms,omitempty"`
	Bathrooms      *float64 `json:"bathrooms,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Status         *string  `json:"status,omitempty"`
}

// Inquiry is a buyer inquiry as the API returns it.
type Inquiry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	PropertyID string    `json:"propertyId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// InquiryInput is a buyer inquiry to submit. All fields are required.
type InquiryInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	PropertyID string `json:"propertyId"`
}

// Validate checks the required fields locally, so an incomplete inquiry
// never leaves the client.
func (in InquiryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email is invalid")
	}
	if strings.TrimSpace(in.Message) == "" {
		return fmt.Errorf("message is required")
	}
	if strings.TrimSpace(in.PropertyID) == "" {
		return fmt.Errorf("propertyId is required")
	}
	return nil
}

// sessionWriter is implemented by session stores that can record a login.
type sessionWriter interface {
	Login(credential string, identity Identity) error
}

// Login authenticates against POST /login and records the session.
func (c *Client) Login(ctx context.Context, email, password string) (*Identity, error) {
	raw, err := c.Request(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if err != nil || raw == nil {
		return nil, err
	}

	var resp struct {
		Token string   `json:"token"`
		Agent Identity `json:"agent"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	if w, ok := c.Session.(sessionWriter); ok {
		if err := w.Login(resp.Token, resp.Agent); err != nil {
			return nil, err
		}
	}
	return &resp.Agent, nil
}

// ListProperties fetches all public listings, normalized.
func (c *Client) ListProperties(ctx context.Context) ([]PropertyView, error) {
	return c.fetchListings(ctx, "/properties")
}

// AgentProperties fetches the signed-in agent's listings, normalized.
func (c *Client) AgentProperties(ctx context.Context) ([]PropertyView, error) {
	return c.fetchListings(ctx, "/agent-properties")
}

func (c *Client) fetchListings(ctx context.Context, path string) ([]PropertyView, error) {
	raw, err := c.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil || raw == nil {
		return nil, err
	}
	var listings []Listing
	if err := json.Unmarshal(raw, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return NormalizeAll(listings), nil
}

// GetProperty fetches one listing by id, normalized.
func (c *Client) GetProperty(ctx context.Context, id string) (*PropertyView, error) {
	raw, err := c.Request(ctx, http.MethodGet, "/properties/"+id, nil, nil)
	if err != nil || raw == nil {
		return nil, err
	}
	var listing Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	view := Normalize(listing)
	return &view, nil
}

// CreateProperty submits a new listing and returns the server's view of it.
func (c *Client) CreateProperty(ctx context.Context, input PropertyInput) (*PropertyView, error) {
	raw, err := c.Request(ctx, http.MethodPost, "/properties", input, &RequestOptions{
		SuccessMessage: "Property created",
		ErrorMessage:   "Failed to create property",
	})
	if err != nil || raw == nil {
		return nil, err
	}
	var listing Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode created listing: %w", err)
	}
	view := Normalize(listing)
	return &view, nil
}

// UpdateProperty submits listing changes and returns the updated view.
func (c *Client) UpdateProperty(ctx context.Context, id string, input PropertyInput) (*PropertyView, error) {
	raw, err := c.Request(ctx, http.MethodPut, "/properties/"+id, input, &RequestOptions{
		SuccessMessage: "Property updated",
		ErrorMessage:   "Failed to update property",
	})
	if err != nil || raw == nil {
		return nil, err
	}
	var listing Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode updated listing: %w", err)
	}
	view := Normalize(listing)
	return &view, nil
}

// DeleteProperty deletes a listing by id.
func (c *Client) DeleteProperty(ctx context.Context, id string) error {
	_, err := c.Request(ctx, http.MethodDelete, "/properties/"+id, nil, &RequestOptions{
		ErrorMessage: "Failed to delete property",
	})
	return err
}

// ListInquiries fetches the signed-in agent's inquiries.
func (c *Client) ListInquiries(ctx context.Context) ([]Inquiry, error) {
	raw, err := c.Request(ctx, http.MethodGet, "/inquiries", nil, nil)
	if err != nil || raw == nil {
		return nil, err
	}
	var inquiries []Inquiry
	if err := json.Unmarshal(raw, &inquiries); err != nil {
		return nil, fmt.Errorf("failed to decode inquiries: %w", err)
	}
	return inquiries, nil
}

// SubmitInquiry validates the inquiry locally and submits it. A validation
// failure returns without making a request.
func (c *Client) SubmitInquiry(ctx context.Context, input InquiryInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	_, err := c.Request(ctx, http.MethodPost, "/inquiries", input, &RequestOptions{
		SuccessMessage: "Inquiry sent",
		ErrorMessage:   "Failed to send inquiry",
	})
	return err
}
