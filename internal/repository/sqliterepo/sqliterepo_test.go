package sqliterepo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/leadvet/prospectval/internal/model"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

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

func TestSQLiteRepository_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	checkedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	rec := testRecord("example.com", checkedAt, 82)
	if err := repo.Store(ctx, rec); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}

	retrieved, err := repo.Get(ctx, "example.com", checkedAt)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}

	if retrieved.URL != rec.URL {
		t.Errorf("Expected URL %s, got %s", rec.URL, retrieved.URL)
	}
	if retrieved.OverallScore != rec.OverallScore {
		t.Errorf("Expected overall score %d, got %d", rec.OverallScore, retrieved.OverallScore)
	}
	if !retrieved.CheckedAt.Equal(checkedAt) {
		t.Errorf("Expected checked-at %v, got %v", checkedAt, retrieved.CheckedAt)
	}
	if retrieved.CheckScores["health"] != 100 {
		t.Errorf("Expected health score 100, got %d", retrieved.CheckScores["health"])
	}
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.Get(ctx, "missing.example.com", time.Now())
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRepository_DuplicateStore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	checkedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	if err := repo.Store(ctx, testRecord("example.com", checkedAt, 40)); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}

	err := repo.Store(ctx, testRecord("example.com", checkedAt, 90))
	if !errors.Is(err, model.ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}

	// UnconditionalStore replaces the existing row
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

func TestSQLiteRepository_ListByDomain(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

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

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 records, got %d", len(all))
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	checkedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	if err := repo.Store(ctx, testRecord("example.com", checkedAt, 60)); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}

	if err := repo.Delete(ctx, "example.com", checkedAt); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}

	_, err := repo.Get(ctx, "example.com", checkedAt)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, "example.com", checkedAt); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for second delete, got %v", err)
	}
}

func TestSQLiteRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "records.db")
	checkedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	repo1, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	if err := repo1.Store(ctx, testRecord("example.com", checkedAt, 82)); err != nil {
		t.Fatalf("Failed to store record: %v", err)
	}
	if err := repo1.Close(); err != nil {
		t.Fatalf("Failed to close repository: %v", err)
	}

	repo2, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen repository: %v", err)
	}
	defer repo2.Close()

	retrieved, err := repo2.Get(ctx, "example.com", checkedAt)
	if err != nil {
		t.Fatalf("Failed to get record after reopen: %v", err)
	}
	if retrieved.OverallScore != 82 {
		t.Errorf("Expected overall score 82, got %d", retrieved.OverallScore)
	}
}
