package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"greendrake/haven/internal/config"
	"greendrake/haven/internal/email"
	"greendrake/haven/internal/services"
	"greendrake/haven/internal/storage"
)

// TaskType defines the type of a background task.
const (
	TypeInquiryNotify = "inquiry:notify"
	TypeImageProcess  = "image:process"
)

// QueueImages is the dedicated queue for image processing tasks.
const QueueImages = "images"

// ImageProcessDelay gives the browser time to finish the presigned upload
// before the first processing attempt.
const ImageProcessDelay = 30 * time.Second

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// InquiryNotifyPayload identifies the inquiry the agent should be told about.
type InquiryNotifyPayload struct {
	InquiryID string `json:"inquiry_id"`
}

// NewInquiryNotifyTask creates a task to email the listing agent about a new inquiry.
func NewInquiryNotifyTask(inquiryID string) (*asynq.Task, error) {
	payload, err := json.Marshal(InquiryNotifyPayload{InquiryID: inquiryID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inquiry notify payload: %w", err)
	}
	return asynq.NewTask(TypeInquiryNotify, payload), nil
}

// ImageTaskPayload identifies the uploaded photo and the property it belongs to.
type ImageTaskPayload struct {
	PropertyID string `json:"property_id"`
	S3Key      string `json:"s3_key"`
}

// NewImageProcessTask creates a task to normalize an uploaded listing photo.
func NewImageProcessTask(propertyID, objectKey string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageTaskPayload{PropertyID: propertyID, S3Key: objectKey})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal image task payload: %w", err)
	}
	return asynq.NewTask(TypeImageProcess, payload), nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg             *config.Config
	emailSender     email.Sender
	storageService  storage.IS3Storage
	propertyService services.IPropertyService
	inquiryService  services.IInquiryService
	agentService    services.IAgentService
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	storageService storage.IS3Storage,
	propertyService services.IPropertyService,
	inquiryService services.IInquiryService,
	agentService services.IAgentService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:             cfg,
		emailSender:     emailSender,
		storageService:  storageService,
		propertyService: propertyService,
		inquiryService:  inquiryService,
		agentService:    agentService,
	}
}

// SetupServer configures and starts an Asynq server instance.
// The server runs in the background; callers own its Shutdown.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isImageWorker bool, isBgWorker bool) *asynq.Server {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"default":   3,
				QueueImages: 5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	// Register handlers based on worker type
	mux := asynq.NewServeMux()

	if isBgWorker {
		mux.HandleFunc(TypeInquiryNotify, processor.HandleInquiryNotifyTask)
		log.Println("Registered background task handlers.")
	}

	if isImageWorker {
		mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
		log.Println("Registered image processing task handlers.")
	}

	if !isBgWorker && !isImageWorker {
		log.Println("Running in API mode, no task server started.")
		return nil
	}

	if err := srv.Start(mux); err != nil {
		log.Fatalf("Could not start Asynq server: %v", err)
	}

	return srv
}

// --- Task Handlers ---

// HandleInquiryNotifyTask emails the listing agent about a new inquiry.
func (p *TaskProcessor) HandleInquiryNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload InquiryNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal inquiry notify payload: %v: %w", err, asynq.SkipRetry)
	}

	inquiry, err := p.inquiryService.FindByID(ctx, payload.InquiryID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("Inquiry %s no longer exists, dropping notification.", payload.InquiryID)
			return fmt.Errorf("inquiry not found: %w", asynq.SkipRetry)
		}
		return err
	}
	if inquiry.Notified {
		log.Printf("Inquiry %s already notified, skipping.", payload.InquiryID)
		return nil
	}

	property, err := p.propertyService.FindByID(ctx, inquiry.PropertyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("Property %s for inquiry %s no longer exists, dropping notification.", inquiry.PropertyID, payload.InquiryID)
			return fmt.Errorf("property not found: %w", asynq.SkipRetry)
		}
		return err
	}

	agent, err := p.agentService.FindByID(ctx, property.AgentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("Agent %s for property %s not found, dropping notification.", property.AgentID, property.ID)
			return fmt.Errorf("agent not found: %w", asynq.SkipRetry)
		}
		return err
	}

	subject := fmt.Sprintf("New inquiry for %s", property.Title)

	// Basic plain-text message with essential headers.
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", agent.Email))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", p.cfg.SmtpFromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(fmt.Sprintf("Hi %s,\r\n\r\n", agent.Name))
	sb.WriteString(fmt.Sprintf("You have a new inquiry on your listing \"%s\".\r\n\r\n", property.Title))
	sb.WriteString(fmt.Sprintf("From: %s <%s>\r\n\r\n", inquiry.Name, inquiry.Email))
	sb.WriteString(inquiry.Message)
	sb.WriteString("\r\n")

	if err := p.emailSender.Send(ctx, []string{agent.Email}, subject, []byte(sb.String())); err != nil {
		log.Printf("Failed to send inquiry notification for %s: %v", payload.InquiryID, err)
		return err
	}

	if err := p.inquiryService.MarkNotified(ctx, inquiry.ID); err != nil {
		// The email went out; a failure here would only risk a duplicate on retry.
		log.Printf("Failed to mark inquiry %s as notified: %v", inquiry.ID, err)
		return err
	}

	log.Printf("Inquiry notification sent: Inquiry=%s, Agent=%s", inquiry.ID, agent.Email)
	return nil
}

// HandleImageProcessTask normalizes an uploaded listing photo and publishes its URL.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Printf("Processing image task: S3Key=%s, PropertyID=%s", payload.S3Key, payload.PropertyID)

	// The object may not have landed yet; a plain error triggers a retry.
	imgData, err := p.storageService.Download(ctx, payload.S3Key)
	if err != nil {
		log.Printf("Error downloading %s from S3: %v", payload.S3Key, err)
		return fmt.Errorf("failed to download image from S3: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Printf("Error decoding image for key %s: %v", payload.S3Key, err)
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded image %s, format: %s, size: %dx%d", payload.S3Key, format, img.Bounds().Dx(), img.Bounds().Dy())

	maxWidth := uint(p.cfg.ImageMaxDimension)
	maxHeight := uint(p.cfg.ImageMaxDimension)
	needsResize := uint(img.Bounds().Dx()) > maxWidth || uint(img.Bounds().Dy()) > maxHeight

	if needsResize {
		log.Printf("Resizing image %s (original: %dx%d, max: %dx%d)", payload.S3Key, img.Bounds().Dx(), img.Bounds().Dy(), maxWidth, maxHeight)
		resizedImg := resize.Thumbnail(maxWidth, maxHeight, img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: 85}); err != nil {
			log.Printf("Error encoding resized image %s: %v", payload.S3Key, err)
			return fmt.Errorf("failed to re-encode resized image: %w", err)
		}

		// Overwrite the original with the normalized JPEG.
		if err := p.storageService.Upload(ctx, payload.S3Key, buf.Bytes(), "image/jpeg"); err != nil {
			log.Printf("Error uploading processed image %s to S3: %v", payload.S3Key, err)
			return fmt.Errorf("failed to upload processed image: %w", err)
		}
		log.Printf("Resized image %s to %dx%d", payload.S3Key, resizedImg.Bounds().Dx(), resizedImg.Bounds().Dy())
	}

	imageURL := p.storageService.PublicURL(payload.S3Key)
	if err := p.propertyService.SetImageURL(ctx, payload.PropertyID, imageURL); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("Property %s deleted before image %s finished processing.", payload.PropertyID, payload.S3Key)
			return fmt.Errorf("property not found: %w", asynq.SkipRetry)
		}
		log.Printf("Error setting image URL on property %s: %v", payload.PropertyID, err)
		return fmt.Errorf("failed to update property with processed image: %w", err)
	}

	log.Printf("Image task processed successfully: Key=%s, PropertyID=%s", payload.S3Key, payload.PropertyID)
	return nil
}
