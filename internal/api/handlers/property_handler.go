package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"

	"greendrake/haven/internal/api/middleware"
	"greendrake/haven/internal/models"
	"greendrake/haven/internal/services"
	"greendrake/haven/internal/storage"
	"greendrake/haven/internal/tasks"
)

// IAsynqClient abstracts the asynq client for testing.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PropertyHandler handles REST requests for property listings.
type PropertyHandler struct {
	propertyService services.IPropertyService
	storageService  storage.IS3Storage
	taskClient      IAsynqClient
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(propertyService services.IPropertyService, storageService storage.IS3Storage, taskClient IAsynqClient) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		storageService:  storageService,
		taskClient:      taskClient,
	}
}

// propertyInput is the request body for create/update operations.
// Field names mirror the JSON shape the web client sends.
type propertyInput struct {
	Title          *string  `json:"title"`
	Price          *float64 `json:"price"`
	StreetAddress1 *string  `json:"streetAddress1"`
	StreetAddress2 *string  `json:"streetAddress2"`
	City           *string  `json:"city"`
	State          *string  `json:"state"`
	Zipcode        *string  `json:"zipcode"`
	Bedrooms       *int     `json:"bedrooms"`
	Bathrooms      *float64 `json:"bathrooms"`
	Description    *string  `json:"description"`
	Status         *string  `json:"status"`
}

// ListProperties handles GET /properties
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	properties, err := h.propertyService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch properties"})
		return
	}
	c.JSON(http.StatusOK, properties)
}

// GetPropertyByID handles GET /properties/:id
func (h *PropertyHandler) GetPropertyByID(c *gin.Context) {
	property, err := h.propertyService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch property"})
		}
		return
	}
	c.JSON(http.StatusOK, property)
}

// CreateProperty handles POST /properties
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var input propertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if input.Title == nil || *input.Title == "" || input.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and price are required"})
		return
	}
	if input.Status != nil && !models.ValidStatus(models.PropertyStatus(*input.Status)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	property := &models.Property{
		Title:       *input.Title,
		Price:       *input.Price,
		Description: deref(input.Description),
		City:        deref(input.City),
		State:       deref(input.State),
		Zipcode:     deref(input.Zipcode),
	}
	property.StreetAddress1 = deref(input.StreetAddress1)
	property.StreetAddress2 = deref(input.StreetAddress2)
	if input.Bedrooms != nil {
		property.Bedrooms = *input.Bedrooms
	}
	if input.Bathrooms != nil {
		property.Bathrooms = *input.Bathrooms
	}
	if input.Status != nil {
		property.Status = models.PropertyStatus(*input.Status)
	}

	created, err := h.propertyService.Create(c.Request.Context(), c.GetString(middleware.ContextKeyAgentID), property)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateProperty handles PUT /properties/:id
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	var input propertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if input.Status != nil && !models.ValidStatus(models.PropertyStatus(*input.Status)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	updates := map[string]interface{}{}
	setIf(updates, "title", input.Title)
	setIf(updates, "street_address_1", input.StreetAddress1)
	setIf(updates, "street_address_2", input.StreetAddress2)
	setIf(updates, "city", input.City)
	setIf(updates, "state", input.State)
	setIf(updates, "zipcode", input.Zipcode)
	setIf(updates, "description", input.Description)
	setIf(updates, "status", input.Status)
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Bedrooms != nil {
		updates["bedrooms"] = *input.Bedrooms
	}
	if input.Bathrooms != nil {
		updates["bathrooms"] = *input.Bathrooms
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields supplied"})
		return
	}

	updated, err := h.propertyService.Update(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextKeyAgentID), updates)
	if err != nil {
		h.writeMutationError(c, err, "Failed to update property")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteProperty handles DELETE /properties/:id
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	err := h.propertyService.Delete(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextKeyAgentID))
	if err != nil {
		h.writeMutationError(c, err, "Failed to delete property")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property deleted"})
}

// ListAgentProperties handles GET /agent-properties
func (h *PropertyHandler) ListAgentProperties(c *gin.Context) {
	properties, err := h.propertyService.ListByAgent(c.Request.Context(), c.GetString(middleware.ContextKeyAgentID))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch agent properties"})
		return
	}
	c.JSON(http.StatusOK, properties)
}

// CreatePhotoUploadURL handles POST /properties/:id/photo-url.
// It returns a presigned S3 PUT URL and enqueues the resize task that will
// run once the upload lands.
func (h *PropertyHandler) CreatePhotoUploadURL(c *gin.Context) {
	var input struct {
		Filename    string `json:"filename"`
		ContentType string `json:"contentType"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}

	propertyID := c.Param("id")
	agentID := c.GetString(middleware.ContextKeyAgentID)

	// Ownership check before handing out an upload slot.
	property, err := h.propertyService.FindByID(c.Request.Context(), propertyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch property"})
		}
		return
	}
	if property.AgentID != agentID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this listing"})
		return
	}

	uploadURL, objectKey, err := h.storageService.GeneratePresignedPutURL(c.Request.Context(), agentID, propertyID, input.Filename, input.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload URL"})
		return
	}

	task, err := tasks.NewImageProcessTask(propertyID, objectKey)
	if err == nil {
		_, err = h.taskClient.EnqueueContext(c.Request.Context(), task, asynq.Queue(tasks.QueueImages), asynq.ProcessIn(tasks.ImageProcessDelay))
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule photo processing"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"uploadUrl": uploadURL, "key": objectKey})
}

func (h *PropertyHandler) writeMutationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this listing"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func setIf(updates map[string]interface{}, field string, value *string) {
	if value != nil {
		updates[field] = *value
	}
}
