package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"greendrake/haven/internal/config"
	"greendrake/haven/internal/db"
	"greendrake/haven/internal/models"
)

// ErrNotOwner is returned when an agent tries to mutate a listing they do not own.
var ErrNotOwner = errors.New("listing is owned by another agent")

// IPropertyService defines the interface for property listing operations.
type IPropertyService interface {
	List(ctx context.Context) ([]models.Property, error)
	FindByID(ctx context.Context, id string) (*models.Property, error)
	Create(ctx context.Context, agentID string, input *models.Property) (*models.Property, error)
	Update(ctx context.Context, id, agentID string, updates map[string]interface{}) (*models.Property, error)
	Delete(ctx context.Context, id, agentID string) error
	ListByAgent(ctx context.Context, agentID string) ([]models.Property, error)
	SetImageURL(ctx context.Context, id, imageURL string) error
}

const listingCacheKey = "haven:properties:all"

// propertyService implements IPropertyService.
type propertyService struct {
	db  *mongo.Database
	cfg *config.Config
	rdb *redis.Client // nil disables the public listing cache
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(database *mongo.Database, cfg *config.Config, rdb *redis.Client) IPropertyService {
	return &propertyService{db: database, cfg: cfg, rdb: rdb}
}

// List returns every listing (the public browse surface). Results are cached
// in Redis for ListingCacheTTL and invalidated by every mutation.
func (s *propertyService) List(ctx context.Context) ([]models.Property, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, listingCacheKey).Result(); err == nil {
			var properties []models.Property
			if err := json.Unmarshal([]byte(cached), &properties); err == nil {
				return properties, nil
			}
			// Corrupt cache entry; fall through to Mongo and rewrite it.
		} else if err != redis.Nil {
			log.Printf("Listing cache read failed: %v", err)
		}
	}

	cursor, err := s.db.Collection(db.PropertiesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to scan properties: %w", err)
	}
	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}

	if s.rdb != nil {
		if encoded, err := json.Marshal(properties); err == nil {
			if err := s.rdb.Set(ctx, listingCacheKey, encoded, s.cfg.ListingCacheTTL).Err(); err != nil {
				log.Printf("Listing cache write failed: %v", err)
			}
		}
	}
	return properties, nil
}

// FindByID returns a single listing by id.
func (s *propertyService) FindByID(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	err := s.db.Collection(db.PropertiesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding property %s: %w", id, err)
	}
	return &property, nil
}

// Create inserts a new listing. The server assigns the id; any id supplied by
// the caller is ignored.
func (s *propertyService) Create(ctx context.Context, agentID string, input *models.Property) (*models.Property, error) {
	collection := s.db.Collection(db.PropertiesCollection)
	now := time.Now().UTC()

	var property *models.Property
	operation := func() error {
		p := *input
		p.ID = uuid.NewString()
		p.AgentID = agentID
		if p.Status == "" {
			p.Status = models.StatusActive
		}
		p.CreatedAt = now
		p.UpdatedAt = now
		property = &p
		_, insertErr := collection.InsertOne(ctx, property)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert property for agent %s: %w", agentID, err)
	}

	s.invalidateCache(ctx)
	return property, nil
}

// allowed update fields; id, agent_id and timestamps are never caller-writable.
var updatableFields = map[string]bool{
	"title": true, "price": true, "street_address_1": true, "street_address_2": true,
	"city": true, "state": true, "zipcode": true, "bedrooms": true, "bathrooms": true,
	"description": true, "status": true,
}

// Update applies the given field updates to a listing owned by agentID and
// returns the updated document.
func (s *propertyService) Update(ctx context.Context, id, agentID string, updates map[string]interface{}) (*models.Property, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	for field, value := range updates {
		if updatableFields[field] {
			set[field] = value
		}
	}

	var updated models.Property
	err := s.db.Collection(db.PropertiesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id, "agent_id": agentID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, s.classifyMissing(ctx, id)
		}
		return nil, fmt.Errorf("error updating property %s: %w", id, err)
	}

	s.invalidateCache(ctx)
	return &updated, nil
}

// Delete removes a listing owned by agentID.
func (s *propertyService) Delete(ctx context.Context, id, agentID string) error {
	res, err := s.db.Collection(db.PropertiesCollection).DeleteOne(ctx, bson.M{"_id": id, "agent_id": agentID})
	if err != nil {
		return fmt.Errorf("error deleting property %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return s.classifyMissing(ctx, id)
	}

	s.invalidateCache(ctx)
	return nil
}

// ListByAgent returns the listings owned by the given agent.
func (s *propertyService) ListByAgent(ctx context.Context, agentID string) ([]models.Property, error) {
	cursor, err := s.db.Collection(db.PropertiesCollection).Find(ctx, bson.M{"agent_id": agentID})
	if err != nil {
		return nil, fmt.Errorf("failed to scan properties for agent %s: %w", agentID, err)
	}
	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode agent properties: %w", err)
	}
	return properties, nil
}

// SetImageURL records the processed photo location for a listing.
// Called by the image background task, so no ownership check here.
func (s *propertyService) SetImageURL(ctx context.Context, id, imageURL string) error {
	res, err := s.db.Collection(db.PropertiesCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"image_url": imageURL, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("error setting image URL for property %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	s.invalidateCache(ctx)
	return nil
}

// classifyMissing distinguishes "no such listing" from "someone else's listing".
func (s *propertyService) classifyMissing(ctx context.Context, id string) error {
	count, err := s.db.Collection(db.PropertiesCollection).CountDocuments(ctx, bson.M{"_id": id})
	if err == nil && count > 0 {
		return ErrNotOwner
	}
	return mongo.ErrNoDocuments
}

func (s *propertyService) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, listingCacheKey).Err(); err != nil {
		log.Printf("Listing cache invalidation failed: %v", err)
	}
}
