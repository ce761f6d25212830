package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"greendrake/haven/internal/services"
	"greendrake/haven/internal/tasks"
)

// InquiryHandler handles REST requests for buyer inquiries.
type InquiryHandler struct {
	inquiryService services.IInquiryService
	taskClient     IAsynqClient
}

// NewInquiryHandler creates a new InquiryHandler.
func NewInquiryHandler(inquiryService services.IInquiryService, taskClient IAsynqClient) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService, taskClient: taskClient}
}

// CreateInquiry handles POST /inquiries
func (h *InquiryHandler) CreateInquiry(c *gin.Context) {
	var input struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Message    string `json:"message"`
		PropertyID string `json:"propertyId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	inquiry, err := h.inquiryService.Create(c.Request.Context(), input.Name, input.Email, input.Message, input.PropertyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		// Validation failures from the service read well enough to surface.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Notification delivery is best-effort; the inquiry itself is already stored.
	if task, taskErr := tasks.NewInquiryNotifyTask(inquiry.ID); taskErr == nil {
		if _, enqErr := h.taskClient.EnqueueContext(c.Request.Context(), task); enqErr != nil {
			log.Printf("Failed to enqueue inquiry notification for %s: %v", inquiry.ID, enqErr)
		}
	}

	c.JSON(http.StatusCreated, inquiry)
}

// ListInquiries handles GET /inquiries
func (h *InquiryHandler) ListInquiries(c *gin.Context) {
	inquiries, err := h.inquiryService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inquiries"})
		return
	}
	c.JSON(http.StatusOK, inquiries)
}
