package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/leadvet/prospectval/internal/fetch"
	"github.com/leadvet/prospectval/internal/logger"
	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/repository"
	"github.com/leadvet/prospectval/internal/target"
	"github.com/leadvet/prospectval/internal/validator"
)

// Validator runs the validation pipeline for a single URL.
type Validator interface {
	Validate(ctx context.Context, rawURL string) model.CompositeResult
}

// Handler holds the dependencies for the httpapi Lambda handler
type Handler struct {
	validator Validator
	repo      repository.RecordRepository
	log       *slog.Logger
	now       func() time.Time
}

// ValidateRequest represents the expected JSON payload for validation
type ValidateRequest struct {
	URL string `json:"url"`
}

// NewHandler creates a new httpapi handler with initialized dependencies.
//
// Persistence is optional: without DYNAMODB_TABLE the handler still
// validates, it just does not keep a record of the result.
func NewHandler() (*Handler, error) {
	// Initialize logger with executable name for filtering
	log := logger.NewDefaultLogger()
	log = logger.WithExecutable(log, "httpapi")
	logger.SetDefault(log)

	h := &Handler{
		validator: validator.New(fetch.DefaultConfig(), log),
		log:       log,
		now:       time.Now,
	}

	dynamoTable := os.Getenv("DYNAMODB_TABLE")
	if dynamoTable == "" {
		log.Info("DYNAMODB_TABLE not set, validation results will not be stored")
		return h, nil
	}
	log.Info("Using DynamoDB table", slog.String("table", dynamoTable))

	// Optional endpoint override for local development or testing
	dynamoEndpoint := os.Getenv("DYNAMODB_ENDPOINT")
	if dynamoEndpoint != "" {
		log.Info("Using custom DynamoDB endpoint", slog.String("endpoint", dynamoEndpoint))
	} else {
		// When not using a custom endpoint, AWS_REGION is required
		awsRegion := os.Getenv("AWS_REGION")
		if awsRegion == "" {
			return nil, fmt.Errorf("AWS_REGION environment variable is required when DYNAMODB_ENDPOINT is not set")
		}
		log.Info("Using AWS region", slog.String("region", awsRegion))
	}

	ctx := context.Background()

	repo, err := repository.NewRepository(ctx, repository.Config{
		DynamoTable:    dynamoTable,
		DynamoEndpoint: dynamoEndpoint,
	}, log)
	if err != nil {
		log.Error("Failed to initialize record repository", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to initialize record repository: %w", err)
	}

	// Verify DynamoDB connection
	records, err := repo.List(ctx)
	if err != nil {
		log.Warn("Failed to list records during startup", slog.String("error", err.Error()))
	} else {
		log.Info("Successfully connected to DynamoDB", slog.Int("record_count", len(records)))
	}

	h.repo = repo
	return h, nil
}

// Handle processes API Gateway HTTP requests
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	// Create a logger with Lambda context
	requestLogger := logger.WithLambda(h.log,
		os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
		os.Getenv("AWS_LAMBDA_FUNCTION_VERSION"),
		request.RequestContext.RequestID)

	requestLogger.Info("Incoming request",
		slog.String("method", request.RequestContext.HTTP.Method),
		slog.String("path", request.RequestContext.HTTP.Path),
		slog.String("raw_path", request.RawPath))

	// For API Gateway v2, the path is in RequestContext.HTTP.Path
	path := request.RequestContext.HTTP.Path
	if path == "" {
		path = request.RawPath
	}

	// Remove the /api prefix if present since we're matching on the API path
	path = strings.TrimPrefix(path, "/api")
	requestLogger.Debug("Processing path", slog.String("path", path))

	switch {
	case strings.HasSuffix(path, "/validate"):
		return h.handleValidate(ctx, request, requestLogger)
	default:
		requestLogger.Warn("Path not matched", slog.String("path", path))
		return errorResponseV2(404, fmt.Sprintf("Unknown endpoint: %s", path))
	}
}

func (h *Handler) handleValidate(ctx context.Context, request events.APIGatewayV2HTTPRequest, requestLogger *slog.Logger) (events.APIGatewayV2HTTPResponse, error) {
	// Validate HTTP method
	httpMethod := request.RequestContext.HTTP.Method
	if httpMethod != "POST" {
		requestLogger.Warn("Method validation failed", slog.String("received_method", httpMethod))
		return errorResponseV2(405, fmt.Sprintf("Method not allowed. Only POST is supported for this endpoint (received: %s)", httpMethod))
	}

	// Parse the request body. An empty or missing URL is a pipeline input
	// that yields a failed composite, not a request error.
	var validateReq ValidateRequest
	if err := json.Unmarshal([]byte(request.Body), &validateReq); err != nil {
		return errorResponseV2(400, fmt.Sprintf("Invalid request body: %v", err))
	}

	result := h.validator.Validate(ctx, validateReq.URL)

	if h.repo != nil {
		rec := model.NewValidationRecord(&result, target.DomainOf(result.URLChecked), h.now())
		if err := h.repo.UnconditionalStore(ctx, rec); err != nil {
			requestLogger.Warn("Failed to store validation record",
				slog.String("domain", rec.Domain),
				slog.String("error", err.Error()))
		}
	}

	responseBody, err := json.Marshal(result.Flatten())
	if err != nil {
		requestLogger.Error("Failed to marshal response", slog.String("error", err.Error()))
		return errorResponseV2(500, "failed to generate response")
	}

	requestLogger.Info("Validation complete",
		slog.String("url", result.URLChecked),
		slog.Int("overall_score", result.OverallScore),
		slog.Bool("overall_passed", result.OverallPassed))

	return events.APIGatewayV2HTTPResponse{
		StatusCode: 200,
		Body:       string(responseBody),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

// errorResponseV2 creates a standardized error response for API Gateway v2
func errorResponseV2(statusCode int, message string) (events.APIGatewayV2HTTPResponse, error) {
	errorBody := map[string]string{
		"error": message,
	}
	body, _ := json.Marshal(errorBody)

	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}
