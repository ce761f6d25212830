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

	"greendrake/haven/internal/auth"
	"greendrake/haven/internal/db"
	"greendrake/haven/internal/models"
)

// ErrInvalidCredentials is returned when login email/password do not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// IAgentService defines the interface for agent account operations.
type IAgentService interface {
	Create(ctx context.Context, email, name, password string) (*models.Agent, error)
	Authenticate(ctx context.Context, email, password string) (*models.Agent, error)
	FindByID(ctx context.Context, id string) (*models.Agent, error)
	FindByEmail(ctx context.Context, email string) (*models.Agent, error)
}

// agentService implements IAgentService.
type agentService struct {
	db *mongo.Database
}

// NewAgentService creates a new AgentService.
func NewAgentService(database *mongo.Database) IAgentService {
	return &agentService{db: database}
}

// Create registers a new agent with a bcrypt-hashed password.
func (s *agentService) Create(ctx context.Context, email, name, password string) (*models.Agent, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("agent requires email and password")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	collection := s.db.Collection(db.AgentsCollection)
	agent := &models.Agent{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := collection.InsertOne(ctx, agent); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, fmt.Errorf("agent with email %s already exists", email)
		}
		return nil, fmt.Errorf("failed to insert agent: %w", err)
	}
	return agent, nil
}

// Authenticate verifies email/password and returns the matching agent.
// A missing account and a wrong password are indistinguishable to the caller.
func (s *agentService) Authenticate(ctx context.Context, email, password string) (*models.Agent, error) {
	agent, err := s.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, agent.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return agent, nil
}

// FindByID returns an agent by id.
func (s *agentService) FindByID(ctx context.Context, id string) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.Collection(db.AgentsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&agent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding agent %s: %w", id, err)
	}
	return &agent, nil
}

// FindByEmail returns an agent by email.
func (s *agentService) FindByEmail(ctx context.Context, email string) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.Collection(db.AgentsCollection).FindOne(ctx, bson.M{"email": email}).Decode(&agent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding agent by email: %w", err)
	}
	return &agent, nil
}
