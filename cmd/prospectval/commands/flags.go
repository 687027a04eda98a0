package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadvet/prospectval/internal/fetch"
	"github.com/leadvet/prospectval/internal/repository"
	"github.com/leadvet/prospectval/internal/validator"
)

// SinkFlags holds the flags selecting a result store backend
type SinkFlags struct {
	File           string
	SQLite         string
	DynamoTable    string
	DynamoEndpoint string
}

// addSinkFlags adds the common store-selection flags to a command
func addSinkFlags(cmd *cobra.Command, flags *SinkFlags) {
	cmd.Flags().StringVarP(&flags.File, "store-file", "f", "", "Path to JSON file for storing results")
	cmd.Flags().StringVar(&flags.SQLite, "store-sqlite", "", "Path to SQLite database for storing results")
	cmd.Flags().StringVarP(&flags.DynamoTable, "store-dynamo-table", "t", "", "DynamoDB table name for storing results")
	cmd.Flags().StringVarP(&flags.DynamoEndpoint, "store-dynamo-endpoint", "e", "", "DynamoDB endpoint URL (optional, uses AWS SDK default if not specified)")
}

// repositoryConfig resolves the store selection: explicit flags win, the
// config file fills in when no backend flag was given.
func repositoryConfig(flags SinkFlags) (repository.Config, error) {
	cfg := repository.Config{
		FilePath:       flags.File,
		SQLitePath:     flags.SQLite,
		DynamoTable:    flags.DynamoTable,
		DynamoEndpoint: flags.DynamoEndpoint,
	}

	if cfg.FilePath == "" && cfg.SQLitePath == "" && cfg.DynamoTable == "" {
		store := rootConfig.Store
		cfg.FilePath = store.File
		cfg.SQLitePath = store.SQLite
		cfg.DynamoTable = store.DynamoTable
		if cfg.DynamoEndpoint == "" {
			cfg.DynamoEndpoint = store.DynamoEndpoint
		}
	}

	selected := 0
	for _, v := range []string{cfg.FilePath, cfg.SQLitePath, cfg.DynamoTable} {
		if v != "" {
			selected++
		}
	}
	if selected > 1 {
		return repository.Config{}, fmt.Errorf("at most one store backend may be selected")
	}

	return cfg, nil
}

// hasSink reports whether a store backend is configured
func hasSink(cfg repository.Config) bool {
	return cfg.FilePath != "" || cfg.SQLitePath != "" || cfg.DynamoTable != ""
}

// newValidator builds the pipeline service with fetch settings from the
// config file applied over the defaults
func newValidator() *validator.Service {
	return validator.New(rootConfig.Fetch.ApplyFetch(fetch.DefaultConfig()), rootLogger)
}
