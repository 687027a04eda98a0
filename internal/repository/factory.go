package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/leadvet/prospectval/internal/repository/dynamorepo"
	"github.com/leadvet/prospectval/internal/repository/memrepo"
	"github.com/leadvet/prospectval/internal/repository/sqliterepo"
)

// Config holds configuration for creating a record repository.
// The backends are mutually exclusive; DynamoTable wins over SQLitePath,
// which wins over FilePath.
type Config struct {
	// FilePath for JSON file persistence
	FilePath string

	// SQLitePath is the SQLite database file for persistence
	SQLitePath string

	// DynamoTable is the DynamoDB table name for persistence
	DynamoTable string

	// DynamoEndpoint is an optional custom DynamoDB endpoint URL
	DynamoEndpoint string
}

// NewRepository creates a RecordRepository based on the provided
// configuration. It returns an error if no backend is configured or if
// repository creation fails.
//
// Informational messages about the selected backend go to the logger, never
// to stdout, which is reserved for result output.
func NewRepository(ctx context.Context, cfg Config, logger *slog.Logger) (RecordRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.DynamoTable != "" {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		var client *dynamodb.Client
		if cfg.DynamoEndpoint != "" {
			// Use custom endpoint if specified
			client = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
				o.BaseEndpoint = &cfg.DynamoEndpoint
			})
			logger.Info("using DynamoDB endpoint", "endpoint", cfg.DynamoEndpoint)
		} else {
			// Use default endpoint discovery
			client = dynamodb.NewFromConfig(awsCfg)
		}

		logger.Info("using DynamoDB table", "table", cfg.DynamoTable)
		return dynamorepo.NewDynamoRepository(client, cfg.DynamoTable), nil
	}

	if cfg.SQLitePath != "" {
		repo, err := sqliterepo.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create repository: %w", err)
		}
		logger.Info("using SQLite database", "path", cfg.SQLitePath)
		return repo, nil
	}

	if cfg.FilePath != "" {
		repo, err := memrepo.NewMemoryRepositoryWithPersistence(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create repository: %w", err)
		}
		logger.Info("using JSON persistence", "path", cfg.FilePath)
		return repo, nil
	}

	return nil, fmt.Errorf("must specify a FilePath, SQLitePath or DynamoTable in repository configuration")
}
