package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"greendrake/haven/internal/config"
	"greendrake/haven/internal/db"
	"greendrake/haven/internal/models"
	"greendrake/haven/internal/utils"
)

func setupTestDBProperty(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, db.PropertiesCollection)
}

func TestPropertyService_CRUD(t *testing.T) {
	database := setupTestDBProperty(t, "testdb_property_service_crud")
	cfg := &config.Config{}
	svc := NewPropertyService(database, cfg, nil)
	ctx := context.Background()

	agentID := uuid.NewString()

	// Create a listing
	created, err := svc.Create(ctx, agentID, &models.Property{
		Title:    "Test Cottage",
		Price:    250000,
		City:     "Springfield",
		State:    "IL",
		Bedrooms: 3,
	})
	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, agentID, created.AgentID)
	assert.Equal(t, models.StatusActive, created.Status, "status defaults to active")

	// Find it
	found, err := svc.FindByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// Missing id
	_, err = svc.FindByID(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, mongo.ErrNoDocuments))

	// Update
	updated, err := svc.Update(ctx, created.ID, agentID, map[string]interface{}{
		"title": "Renamed Cottage",
		"price": 260000.0,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Renamed Cottage", updated.Title)
	assert.Equal(t, 260000.0, updated.Price)

	// Update by a different agent is rejected
	_, err = svc.Update(ctx, created.ID, uuid.NewString(), map[string]interface{}{"title": "Hijacked"})
	assert.True(t, errors.Is(err, ErrNotOwner))

	// Delete by a different agent is rejected
	err = svc.Delete(ctx, created.ID, uuid.NewString())
	assert.True(t, errors.Is(err, ErrNotOwner))

	// Delete by the owner
	err = svc.Delete(ctx, created.ID, agentID)
	assert.NoError(t, err)

	_, err = svc.FindByID(ctx, created.ID)
	assert.True(t, errors.Is(err, mongo.ErrNoDocuments))

	// Deleting again reports not found
	err = svc.Delete(ctx, created.ID, agentID)
	assert.True(t, errors.Is(err, mongo.ErrNoDocuments))
}

func TestPropertyService_ListByAgent(t *testing.T) {
	database := setupTestDBProperty(t, "testdb_property_service_list_by_agent")
	cfg := &config.Config{}
	svc := NewPropertyService(database, cfg, nil)
	ctx := context.Background()

	agentA := uuid.NewString()
	agentB := uuid.NewString()

	for _, input := range []struct {
		agent string
		title string
	}{
		{agentA, "A1"},
		{agentA, "A2"},
		{agentB, "B1"},
	} {
		_, err := svc.Create(ctx, input.agent, &models.Property{Title: input.title, Price: 100000})
		assert.NoError(t, err)
	}

	mine, err := svc.ListByAgent(ctx, agentA)
	assert.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPropertyService_SetImageURL(t *testing.T) {
	database := setupTestDBProperty(t, "testdb_property_service_image")
	cfg := &config.Config{}
	svc := NewPropertyService(database, cfg, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, uuid.NewString(), &models.Property{Title: "With photo", Price: 1})
	assert.NoError(t, err)

	err = svc.SetImageURL(ctx, created.ID, "https://cdn.example.com/p.jpg")
	assert.NoError(t, err)

	found, err := svc.FindByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/p.jpg", found.ImageURL)

	err = svc.SetImageURL(ctx, uuid.NewString(), "https://cdn.example.com/p.jpg")
	assert.True(t, errors.Is(err, mongo.ErrNoDocuments))
}

func TestPropertyService_InvalidStatusRejected(t *testing.T) {
	database := setupTestDBProperty(t, "testdb_property_service_status")
	cfg := &config.Config{}
	svc := NewPropertyService(database, cfg, nil)
	ctx := context.Background()

	agentID := uuid.NewString()
	created, err := svc.Create(ctx, agentID, &models.Property{Title: "Status check", Price: 1, Status: models.StatusPending})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)

	updated, err := svc.Update(ctx, created.ID, agentID, map[string]interface{}{"status": string(models.StatusSold)})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusSold, updated.Status)
}
