package applystream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/leadvet/prospectval/internal/adapter/dynamostream"
	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/repository"
	"github.com/leadvet/prospectval/internal/repository/memrepo"
)

// View is the persistence boundary for the published record document.
// The S3 materialized view adapter is the production implementation.
type View interface {
	Load(ctx context.Context) (*memrepo.MemoryRepository, error)
	Save(ctx context.Context, repo *memrepo.MemoryRepository) error
}

// Service applies DynamoDB stream batches to the published record view
type Service struct {
	view View
}

// New creates a new applystream service
func New(view View) *Service {
	return &Service{
		view: view,
	}
}

// ProcessStreamBatch processes a batch of DynamoDB stream records by loading
// the current view, applying every change to an in-memory repository, and
// saving the updated view back.
//
// The read-modify-write is only safe because the stream consumer runs with
// reservedConcurrentExecutions=1, so one instance processes batches at a time.
func (s *Service) ProcessStreamBatch(ctx context.Context, records []events.DynamoDBEventRecord) error {
	slog.Info("Processing batch from DynamoDB stream", slog.Int("record_count", len(records)))

	memRepo := s.loadView(ctx)

	processedCount := 0
	for _, record := range records {
		if err := s.processRecord(ctx, memRepo, record); err != nil {
			// Log error but continue processing other records
			slog.Error("Error processing record",
				slog.String("event_id", record.EventID),
				slog.String("error", err.Error()))
			continue
		}
		processedCount++
	}

	if err := s.view.Save(ctx, memRepo); err != nil {
		return fmt.Errorf("failed to save view: %w", err)
	}

	allRecords, _ := memRepo.List(ctx)
	slog.Info("Successfully processed stream batch",
		slog.Int("processed", processedCount),
		slog.Int("total", len(records)),
		slog.Int("view_record_count", len(allRecords)))

	return nil
}

// loadView loads the current view state, starting empty when the published
// document does not exist yet
func (s *Service) loadView(ctx context.Context) *memrepo.MemoryRepository {
	memRepo, err := s.view.Load(ctx)
	if err != nil {
		slog.Warn("Error loading view", slog.String("error", err.Error()))
		slog.Info("Starting with empty view")
		return memrepo.NewMemoryRepository()
	}
	return memRepo
}

// processRecord applies a single DynamoDB stream record to the view
func (s *Service) processRecord(ctx context.Context, repo repository.RecordRepository, record events.DynamoDBEventRecord) error {
	slog.Debug("Processing record",
		slog.String("event_id", record.EventID),
		slog.String("event_name", record.EventName))

	switch record.EventName {
	case "INSERT", "MODIFY":
		return s.handleInsertOrModify(ctx, repo, record)
	case "REMOVE":
		return s.handleRemove(ctx, repo, record)
	default:
		slog.Warn("Unknown event type", slog.String("event_name", record.EventName))
		return fmt.Errorf("unknown event type: %s", record.EventName)
	}
}

// handleInsertOrModify handles INSERT and MODIFY stream events
func (s *Service) handleInsertOrModify(ctx context.Context, repo repository.RecordRepository, record events.DynamoDBEventRecord) error {
	rec, err := dynamostream.ConvertToValidationRecord(record.Change.NewImage)
	if err != nil {
		return fmt.Errorf("failed to convert stream record: %w", err)
	}

	// MODIFY events carry the same domain and check time as the record they
	// replace, so the store must be an upsert.
	if err := repo.UnconditionalStore(ctx, rec); err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}

	slog.Debug("Stored/Updated record",
		slog.String("domain", rec.Domain),
		slog.String("checked_at", model.TimeKey(rec.CheckedAt)))
	return nil
}

// handleRemove handles REMOVE stream events
func (s *Service) handleRemove(ctx context.Context, repo repository.RecordRepository, record events.DynamoDBEventRecord) error {
	domain := dynamostream.ExtractStringAttribute(record.Change.Keys, "pk")
	sk := dynamostream.ExtractStringAttribute(record.Change.Keys, "sk")

	if domain == "" || sk == "" {
		return fmt.Errorf("missing required keys: pk=%s, sk=%s", domain, sk)
	}
	checkedAt, err := model.ParseTimeKey(sk)
	if err != nil {
		return fmt.Errorf("invalid sk time key: %w", err)
	}

	if err := repo.Delete(ctx, domain, checkedAt); err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		// Record not found is not an error for delete operations
		slog.Debug("Record not found for deletion",
			slog.String("domain", domain),
			slog.String("checked_at", sk))
	} else {
		slog.Debug("Removed record",
			slog.String("domain", domain),
			slog.String("checked_at", sk))
	}

	return nil
}
