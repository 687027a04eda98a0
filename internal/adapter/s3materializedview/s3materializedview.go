package s3materializedview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/leadvet/prospectval/internal/repository/memrepo"
)

// S3MaterializedView publishes the validation record store as a single JSON
// document in S3. Lead-qualification workflows read the document over plain
// HTTPS, so no AWS credentials are needed on the consuming side.
type S3MaterializedView struct {
	s3Client     *s3.Client
	bucketName   string
	key          string
	contentType  string
	cacheControl string
}

// New creates a new S3MaterializedView adapter
func New(s3Client *s3.Client, bucketName, key string) *S3MaterializedView {
	return &S3MaterializedView{
		s3Client:     s3Client,
		bucketName:   bucketName,
		key:          key,
		contentType:  "application/json",
		cacheControl: "max-age=60", // Cache for 1 minute
	}
}

// Load loads the published document from S3 into a new MemoryRepository.
// A missing document surfaces as an error; callers treat that as an empty
// view.
func (s *S3MaterializedView) Load(ctx context.Context) (*memrepo.MemoryRepository, error) {
	result, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucketName,
		Key:    &s.key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	bodyBytes, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}

	repo, err := memrepo.NewMemoryRepositoryFromJsonString(string(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create repository from JSON: %w", err)
	}

	return repo, nil
}

// Save publishes the repository contents to S3 as an array of validation
// records, newest first.
func (s *S3MaterializedView) Save(ctx context.Context, repo *memrepo.MemoryRepository) error {
	records, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list records from repository: %w", err)
	}

	jsonData, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	// Upload to S3 with appropriate headers for public access
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       &s.bucketName,
		Key:          &s.key,
		Body:         bytes.NewReader(jsonData),
		ContentType:  stringPtr(s.contentType),
		CacheControl: stringPtr(s.cacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	slog.Info("Successfully updated S3 data file",
		slog.String("bucket", s.bucketName),
		slog.String("key", s.key),
		slog.Int("record_count", len(records)))
	return nil
}

// stringPtr returns a pointer to a string
func stringPtr(s string) *string {
	return &s
}
