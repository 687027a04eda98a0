package memrepo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/leadvet/prospectval/internal/model"
)

func testRecord(domain string, checkedAt time.Time, score int) *model.ValidationRecord {
	return &model.ValidationRecord{
		URL:           "https://" + domain,
		Domain:        domain,
		CheckedAt:     checkedAt,
		OverallScore:  score,
		OverallPassed: score >= 50,
		CheckScores:   map[string]int{"health": 100},
		CheckPassed:   map[string]bool{"health": true},
		Issues:        []string{},
	}
}

func TestMemoryRepository_JSONPersistence(t *testing.T) {
	// Create a temporary file for testing
	tmpFile, err := os.CreateTemp("", "test-records-*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	ctx := context.Background()
	checkedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	// Create first repository and add a record
	repo1, err := NewMemoryRepositoryWithPersistence(tmpPath)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	rec := testRecord("example.com", checkedAt, 82)
	if err := repo1.Store(ctx, rec); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}

	// Create second repository with same file path
	repo2, err := NewMemoryRepositoryWithPersistence(tmpPath)
	if err != nil {
		t.Fatalf("Failed to create second repository: %v", err)
	}

	// Verify the record was loaded from file
	retrieved, err := repo2.Get(ctx, "example.com", checkedAt)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}

	if retrieved.URL != rec.URL {
		t.Errorf("Expected URL %s, got %s", rec.URL, retrieved.URL)
	}
	if retrieved.Domain != rec.Domain {
		t.Errorf("Expected domain %s, got %s", rec.Domain, retrieved.Domain)
	}
	if retrieved.OverallScore != rec.OverallScore {
		t.Errorf("Expected overall score %d, got %d", rec.OverallScore, retrieved.OverallScore)
	}
	if !retrieved.CheckPassed["health"] {
		t.Error("Expected health check to be marked passed")
	}
}

func TestMemoryRepository_DeletePersistence(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "test-records-*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	ctx := context.Background()
	checkedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	repo, err := NewMemoryRepositoryWithPersistence(tmpPath)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}

	if err := repo.Store(ctx, testRecord("example.com", checkedAt, 60)); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}

	if err := repo.Delete(ctx, "example.com", checkedAt); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}

	// Create new repository to verify deletion was persisted
	repo2, err := NewMemoryRepositoryWithPersistence(tmpPath)
	if err != nil {
		t.Fatalf("Failed to create second repository: %v", err)
	}

	_, err = repo2.Get(ctx, "example.com", checkedAt)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepository_NonPersistent(t *testing.T) {
	ctx := context.Background()
	checkedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	// Create repository in memory-only mode
	repo := NewMemoryRepository()

	rec := testRecord("example.com", checkedAt, 75)
	if err := repo.Store(ctx, rec); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}

	retrieved, err := repo.Get(ctx, "example.com", checkedAt)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if retrieved.Domain != rec.Domain {
		t.Errorf("Expected domain %s, got %s", rec.Domain, retrieved.Domain)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 record, got %d", len(all))
	}

	if err := repo.Delete(ctx, "example.com", checkedAt); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}

	_, err = repo.Get(ctx, "example.com", checkedAt)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryRepository_DuplicateStore(t *testing.T) {
	ctx := context.Background()
	checkedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	repo := NewMemoryRepository()
	if err := repo.Store(ctx, testRecord("example.com", checkedAt, 40)); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}

	err := repo.Store(ctx, testRecord("example.com", checkedAt, 90))
	if !errors.Is(err, model.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}

	// UnconditionalStore replaces the existing record
	if err := repo.UnconditionalStore(ctx, testRecord("example.com", checkedAt, 90)); err != nil {
		t.Fatalf("Failed to replace record: %v", err)
	}

	retrieved, err := repo.Get(ctx, "example.com", checkedAt)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if retrieved.OverallScore != 90 {
		t.Errorf("Expected replaced score 90, got %d", retrieved.OverallScore)
	}
}

func TestMemoryRepository_HistoryAndListByDomain(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	older := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	if err := repo.Store(ctx, testRecord("example.com", older, 40)); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}
	if err := repo.Store(ctx, testRecord("example.com", newer, 70)); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}
	if err := repo.Store(ctx, testRecord("other.org", newer, 55)); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(all))
	}

	history, err := repo.ListByDomain(ctx, "example.com")
	if err != nil {
		t.Fatalf("Failed to list by domain: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 records for example.com, got %d", len(history))
	}
	if !history[0].CheckedAt.Equal(newer) || !history[1].CheckedAt.Equal(older) {
		t.Errorf("Expected newest-first order, got %v then %v", history[0].CheckedAt, history[1].CheckedAt)
	}
}
