package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"greendrake/haven/internal/config"
	"greendrake/haven/internal/db"
	"greendrake/haven/internal/models"
)

// IInquiryService defines the interface for inquiry operations.
type IInquiryService interface {
	Create(ctx context.Context, name, email, message, propertyID string) (*models.Inquiry, error)
	FindByID(ctx context.Context, id string) (*models.Inquiry, error)
	List(ctx context.Context) ([]models.Inquiry, error)
	MarkNotified(ctx context.Context, inquiryID string) error
}

// inquiryService implements IInquiryService.
type inquiryService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewInquiryService creates a new InquiryService.
func NewInquiryService(database *mongo.Database, cfg *config.Config) IInquiryService {
	return &inquiryService{db: database, cfg: cfg}
}

// Create inserts a new inquiry. Inquiries are append-only.
func (s *inquiryService) Create(ctx context.Context, name, email, message, propertyID string) (*models.Inquiry, error) {
	if name == "" || email == "" || message == "" || propertyID == "" {
		return nil, fmt.Errorf("inquiry requires name, email, message and propertyId")
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}

	// The referenced listing must exist.
	count, err := s.db.Collection(db.PropertiesCollection).CountDocuments(ctx, bson.M{"_id": propertyID})
	if err != nil {
		return nil, fmt.Errorf("error checking property %s: %w", propertyID, err)
	}
	if count == 0 {
		return nil, mongo.ErrNoDocuments
	}

	collection := s.db.Collection(db.InquiriesCollection)
	var inquiry *models.Inquiry
	operation := func() error {
		inquiry = &models.Inquiry{
			ID:         uuid.NewString(),
			Name:       name,
			Email:      email,
			Message:    message,
			PropertyID: propertyID,
			CreatedAt:  time.Now().UTC(),
			Notified:   false,
		}
		_, insertErr := collection.InsertOne(ctx, inquiry)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert inquiry for property %s: %w", propertyID, err)
	}
	return inquiry, nil
}

// FindByID returns a single inquiry by id.
func (s *inquiryService) FindByID(ctx context.Context, id string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := s.db.Collection(db.InquiriesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&inquiry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding inquiry %s: %w", id, err)
	}
	return &inquiry, nil
}

// List returns all inquiries, newest first.
func (s *inquiryService) List(ctx context.Context) ([]models.Inquiry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(db.InquiriesCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan inquiries: %w", err)
	}
	inquiries := []models.Inquiry{}
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, fmt.Errorf("failed to decode inquiries: %w", err)
	}
	return inquiries, nil
}

// MarkNotified flags an inquiry after the notification email task has run.
func (s *inquiryService) MarkNotified(ctx context.Context, inquiryID string) error {
	res, err := s.db.Collection(db.InquiriesCollection).UpdateOne(ctx,
		bson.M{"_id": inquiryID},
		bson.M{"$set": bson.M{"notified": true}},
	)
	if err != nil {
		return fmt.Errorf("error marking inquiry %s notified: %w", inquiryID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
