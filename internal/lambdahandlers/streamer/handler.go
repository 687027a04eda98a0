package streamer

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/leadvet/prospectval/internal/adapter/s3materializedview"
	"github.com/leadvet/prospectval/internal/logger"
	"github.com/leadvet/prospectval/internal/service/applystream"
)

// DefaultDataKey is where the published record document lives when
// S3_DATA_KEY is not set.
const DefaultDataKey = "records/validations.json"

// Handler holds the dependencies for the streamer Lambda handler
type Handler struct {
	service *applystream.Service
	log     *slog.Logger
}

// NewHandler creates a new streamer handler with initialized dependencies
func NewHandler() (*Handler, error) {
	// Initialize logger with executable name for filtering
	log := logger.NewDefaultLogger()
	log = logger.WithExecutable(log, "streamer")
	logger.SetDefault(log)

	awsRegion := os.Getenv("AWS_REGION")
	if awsRegion == "" {
		return nil, fmt.Errorf("AWS_REGION environment variable is required")
	}
	log.Info("Using AWS region", slog.String("region", awsRegion))

	s3BucketName := os.Getenv("S3_BUCKET")
	if s3BucketName == "" {
		return nil, fmt.Errorf("S3_BUCKET environment variable is required")
	}
	log.Info("Using S3 bucket", slog.String("bucket", s3BucketName))

	s3DataKey := os.Getenv("S3_DATA_KEY")
	if s3DataKey == "" {
		s3DataKey = DefaultDataKey
	}
	log.Info("Using S3 key", slog.String("key", s3DataKey))

	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Error("Failed to load AWS config", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg)
	view := s3materializedview.New(s3Client, s3BucketName, s3DataKey)
	log.Info("S3 materialized view initialized",
		slog.String("bucket", s3BucketName),
		slog.String("key", s3DataKey))

	service := applystream.New(view)
	log.Info("Stream processing service initialized")

	return &Handler{
		service: service,
		log:     log,
	}, nil
}

// Handle processes DynamoDB stream events
func (h *Handler) Handle(ctx context.Context, event events.DynamoDBEvent) error {
	err := h.service.ProcessStreamBatch(ctx, event.Records)
	if err != nil {
		h.log.Error("Stream processing failed",
			slog.String("error", err.Error()),
			slog.Bool("notify", true))
	}
	return err
}
