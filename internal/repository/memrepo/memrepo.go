package memrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/leadvet/prospectval/internal/model"
)

// MemoryRepository is an in-memory implementation of RecordRepository
// optionally backed by a JSON file
type MemoryRepository struct {
	mu       sync.RWMutex
	data     map[string]*model.ValidationRecord
	filePath string
}

// makeKey creates a composite key from domain and check time.
// This matches the DynamoDB schema where PK=domain and SK=check time.
func makeKey(domain string, checkedAt time.Time) string {
	return domain + "#" + model.TimeKey(checkedAt)
}

// NewMemoryRepository creates a new in-memory repository without persistence.
// Records are stored only in memory and will be lost when the process
// terminates.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data:     make(map[string]*model.ValidationRecord),
		filePath: "",
	}
}

// NewMemoryRepositoryWithPersistence creates a new in-memory repository backed
// by a JSON file. The repository will load existing records from the file on
// initialization and persist all changes (Store, Delete) to the file
// automatically.
func NewMemoryRepositoryWithPersistence(filePath string) (*MemoryRepository, error) {
	repo := &MemoryRepository{
		data:     make(map[string]*model.ValidationRecord),
		filePath: filePath,
	}

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	// Try to load existing records from file
	if err := repo.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return repo, nil
}

// NewMemoryRepositoryFromJsonString creates a new in-memory repository
// initialized with records from a JSON string. The repository will not be
// backed by a file and will not persist changes. The JSON string should
// contain an array of ValidationRecord objects.
func NewMemoryRepositoryFromJsonString(jsonString string) (*MemoryRepository, error) {
	repo := &MemoryRepository{
		data:     make(map[string]*model.ValidationRecord),
		filePath: "",
	}

	if err := repo.loadFromReader(strings.NewReader(jsonString)); err != nil {
		return nil, err
	}

	return repo, nil
}

// loadFromReader reads JSON records from a reader and populates the in-memory data
func (r *MemoryRepository) loadFromReader(reader io.Reader) error {
	var records []*model.ValidationRecord
	if err := json.NewDecoder(reader).Decode(&records); err != nil {
		return err
	}

	r.data = make(map[string]*model.ValidationRecord)
	for _, rec := range records {
		key := makeKey(rec.Domain, rec.CheckedAt)

		// Print a warning if the key already exists.
		// This will not be possible in Dynamo, where a PUT with the same PK
		// and SK will overwrite the existing item.
		if _, exists := r.data[key]; exists {
			fmt.Fprintf(os.Stderr, "Warning: duplicate entry found for Domain=%s, CheckedAt=%s (keeping last occurrence)\n",
				rec.Domain, model.TimeKey(rec.CheckedAt))
		}

		r.data[key] = rec
	}

	return nil
}

// load reads the JSON file and populates the in-memory data
func (r *MemoryRepository) load() error {
	file, err := os.Open(r.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	// Check if file is empty
	stat, err := file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() == 0 {
		return nil
	}

	return r.loadFromReader(file)
}

// save writes the in-memory records to the JSON file, newest first.
// If filePath is empty, this is a no-op.
func (r *MemoryRepository) save() error {
	if r.filePath == "" {
		return nil
	}

	records := make([]*model.ValidationRecord, 0, len(r.data))
	for _, rec := range r.data {
		records = append(records, rec)
	}
	model.SortRecords(records, "")

	file, err := os.Create(r.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// Store saves a validation record
func (r *MemoryRepository) Store(ctx context.Context, rec *model.ValidationRecord) error {
	if rec == nil {
		return errors.New("validation record cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := makeKey(rec.Domain, rec.CheckedAt)
	if _, exists := r.data[key]; exists {
		return model.ErrAlreadyExists
	}

	r.data[key] = rec
	return r.save()
}

// UnconditionalStore saves a validation record, replacing any existing record
// with the same domain and check time
func (r *MemoryRepository) UnconditionalStore(ctx context.Context, rec *model.ValidationRecord) error {
	if rec == nil {
		return errors.New("validation record cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[makeKey(rec.Domain, rec.CheckedAt)] = rec
	return r.save()
}

// Get retrieves a record by domain and check time
func (r *MemoryRepository) Get(ctx context.Context, domain string, checkedAt time.Time) (*model.ValidationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.data[makeKey(domain, checkedAt)]
	if !exists {
		return nil, model.ErrNotFound
	}

	return rec, nil
}

// ListByDomain retrieves one domain's records, newest first
func (r *MemoryRepository) ListByDomain(ctx context.Context, domain string) ([]*model.ValidationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.ValidationRecord, 0)
	for _, rec := range r.data {
		if rec.Domain == domain {
			result = append(result, rec)
		}
	}
	model.SortRecords(result, "")

	return result, nil
}

// List retrieves all records, newest first
func (r *MemoryRepository) List(ctx context.Context) ([]*model.ValidationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.ValidationRecord, 0, len(r.data))
	for _, rec := range r.data {
		result = append(result, rec)
	}
	model.SortRecords(result, "")

	return result, nil
}

// Delete removes a record by domain and check time
func (r *MemoryRepository) Delete(ctx context.Context, domain string, checkedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := makeKey(domain, checkedAt)
	if _, exists := r.data[key]; !exists {
		return model.ErrNotFound
	}

	delete(r.data, key)
	return r.save()
}
