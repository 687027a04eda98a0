package repository

import (
	"context"
	"time"

	"github.com/leadvet/prospectval/internal/model"
)

// RecordRepository defines the interface for storing and retrieving
// validation records. Domain and check time form the composite key, so a
// domain's validation history accumulates instead of being overwritten.
type RecordRepository interface {
	// Store saves a validation record. It fails with model.ErrAlreadyExists
	// when a record with the same domain and check time is present.
	Store(ctx context.Context, rec *model.ValidationRecord) error

	// UnconditionalStore saves a validation record, replacing any existing
	// record with the same domain and check time.
	UnconditionalStore(ctx context.Context, rec *model.ValidationRecord) error

	// Get retrieves a record by domain and check time (the composite key)
	Get(ctx context.Context, domain string, checkedAt time.Time) (*model.ValidationRecord, error)

	// ListByDomain retrieves one domain's records, newest first
	ListByDomain(ctx context.Context, domain string) ([]*model.ValidationRecord, error)

	// List retrieves all records
	List(ctx context.Context) ([]*model.ValidationRecord, error)

	// Delete removes a record by domain and check time (the composite key)
	Delete(ctx context.Context, domain string, checkedAt time.Time) error
}
