package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"greendrake/haven/internal/api/handlers"
	"greendrake/haven/internal/api/middleware"
	"greendrake/haven/internal/config"
	"greendrake/haven/internal/services"
	"greendrake/haven/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient handlers.IAsynqClient) *gin.Engine {
	// Initialize services needed by API handlers here
	propertyService := services.NewPropertyService(db, cfg, rdb)
	inquiryService := services.NewInquiryService(db, cfg)
	agentService := services.NewAgentService(db)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}

	r := gin.Default()

	// Apply global middleware first (order matters)
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(agentService, cfg)
	propertyHandler := handlers.NewPropertyHandler(propertyService, s3StorageService, taskClient)
	inquiryHandler := handlers.NewInquiryHandler(inquiryService, taskClient)

	// Public routes (rate limiting already applied globally)
	r.POST("/login", authHandler.Login)
	r.GET("/properties", propertyHandler.ListProperties)
	r.GET("/properties/:id", propertyHandler.GetPropertyByID)
	r.POST("/inquiries", inquiryHandler.CreateInquiry)

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// Authenticated routes
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
	{
		authRequired.POST("/properties", propertyHandler.CreateProperty)
		authRequired.PUT("/properties/:id", propertyHandler.UpdateProperty)
		authRequired.DELETE("/properties/:id", propertyHandler.DeleteProperty)
		authRequired.GET("/agent-properties", propertyHandler.ListAgentProperties)
		authRequired.GET("/inquiries", inquiryHandler.ListInquiries)
		authRequired.POST("/properties/:id/photo-url", propertyHandler.CreatePhotoUploadURL)
	}

	return r
}
