// Package sqliterepo persists validation records in a local SQLite database.
// The full record is stored as a JSON column; domain, check time and the
// overall outcome are broken out into indexed columns for queries.
package sqliterepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/leadvet/prospectval/internal/model"
)

const createStmt = `
CREATE TABLE IF NOT EXISTS validation_records (
    domain TEXT NOT NULL,
    checked_at TEXT NOT NULL,
    url TEXT NOT NULL,
    overall_score INTEGER NOT NULL,
    overall_passed INTEGER NOT NULL,
    record TEXT NOT NULL,
    PRIMARY KEY (domain, checked_at)
);
`

// SQLiteRepository is a SQLite implementation of RecordRepository
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if necessary) the SQLite database at
// dbPath and ensures the records table exists
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Batch workers write concurrently; wait for locks instead of failing
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if _, err := db.Exec(createStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying database handle
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func marshalRecord(rec *model.ValidationRecord) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal validation record: %w", err)
	}
	return string(raw), nil
}

func unmarshalRecord(raw string) (*model.ValidationRecord, error) {
	var rec model.ValidationRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal validation record: %w", err)
	}
	return &rec, nil
}

// Store saves a validation record. It fails with model.ErrAlreadyExists when
// a record with the same domain and check time is present.
func (r *SQLiteRepository) Store(ctx context.Context, rec *model.ValidationRecord) error {
	if rec == nil {
		return errors.New("validation record cannot be nil")
	}

	raw, err := marshalRecord(rec)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
INSERT INTO validation_records (domain, checked_at, url, overall_score, overall_passed, record)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(domain, checked_at) DO NOTHING;
`, rec.Domain, model.TimeKey(rec.CheckedAt), rec.URL, rec.OverallScore, rec.OverallPassed, raw)
	if err != nil {
		return fmt.Errorf("failed to store validation record: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to store validation record: %w", err)
	}
	if inserted == 0 {
		return model.ErrAlreadyExists
	}

	return nil
}

// UnconditionalStore saves a validation record, replacing any existing row
// with the same domain and check time
func (r *SQLiteRepository) UnconditionalStore(ctx context.Context, rec *model.ValidationRecord) error {
	if rec == nil {
		return errors.New("validation record cannot be nil")
	}

	raw, err := marshalRecord(rec)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO validation_records (domain, checked_at, url, overall_score, overall_passed, record)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(domain, checked_at) DO UPDATE SET
    url=excluded.url,
    overall_score=excluded.overall_score,
    overall_passed=excluded.overall_passed,
    record=excluded.record;
`, rec.Domain, model.TimeKey(rec.CheckedAt), rec.URL, rec.OverallScore, rec.OverallPassed, raw)
	if err != nil {
		return fmt.Errorf("failed to store validation record: %w", err)
	}

	return nil
}

// Get retrieves a record by domain and check time
func (r *SQLiteRepository) Get(ctx context.Context, domain string, checkedAt time.Time) (*model.ValidationRecord, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		"SELECT record FROM validation_records WHERE domain = ? AND checked_at = ?",
		domain, model.TimeKey(checkedAt)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get validation record: %w", err)
	}

	return unmarshalRecord(raw)
}

func (r *SQLiteRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*model.ValidationRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation records: %w", err)
	}
	defer rows.Close()

	records := make([]*model.ValidationRecord, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to read validation record: %w", err)
		}
		rec, err := unmarshalRecord(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read validation records: %w", err)
	}

	return records, nil
}

// ListByDomain retrieves one domain's records, newest first.
// checked_at is lexically time-ordered, so ORDER BY works on the text column.
func (r *SQLiteRepository) ListByDomain(ctx context.Context, domain string) ([]*model.ValidationRecord, error) {
	return r.queryRecords(ctx,
		"SELECT record FROM validation_records WHERE domain = ? ORDER BY checked_at DESC",
		domain)
}

// List retrieves all records, newest first
func (r *SQLiteRepository) List(ctx context.Context) ([]*model.ValidationRecord, error) {
	return r.queryRecords(ctx,
		"SELECT record FROM validation_records ORDER BY checked_at DESC, domain ASC")
}

// Delete removes a record by domain and check time
func (r *SQLiteRepository) Delete(ctx context.Context, domain string, checkedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM validation_records WHERE domain = ? AND checked_at = ?",
		domain, model.TimeKey(checkedAt))
	if err != nil {
		return fmt.Errorf("failed to delete validation record: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete validation record: %w", err)
	}
	if deleted == 0 {
		return model.ErrNotFound
	}

	return nil
}
