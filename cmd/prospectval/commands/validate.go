package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/repository"
	"github.com/leadvet/prospectval/internal/target"
)

var validateFlags struct {
	SinkFlags
	Format string
	Store  bool
}

var validateCmd = &cobra.Command{
	Use:           "validate <url>",
	Short:         "Validate a single URL",
	GroupID:       "validation",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Validate runs the full check pipeline against one URL.

The page is fetched once and evaluated by five independent checks:
  health          - the URL is well-formed and the site responds
  legitimacy      - the page looks like a real business site
  seo             - basic on-page SEO hygiene
  contactability  - ways to reach the company are present
  maturity        - SSL, email setup, and tooling signals

Each check yields a 0-100 score; the overall verdict combines them with
fixed weights and requires health, legitimacy, and contactability to pass.

Examples:
  # Validate a domain (scheme is added automatically)
  prospectval validate example.com

  # Machine-readable flat result
  prospectval validate example.com --format json

  # Validate and record the result
  prospectval validate example.com --store --store-file ./records.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		result := newValidator().Validate(ctx, args[0])

		switch validateFlags.Format {
		case "json":
			out, err := json.MarshalIndent(result.Flatten(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Println(string(out))
		case "compact":
			displayResultCompact(&result)
		default: // "detailed" or empty
			displayResultDetailed(&result)
		}

		if validateFlags.Store {
			repoCfg, err := repositoryConfig(validateFlags.SinkFlags)
			if err != nil {
				return UsageError{err}
			}
			if !hasSink(repoCfg) {
				cmd.SilenceUsage = false
				return UsageError{fmt.Errorf("--store requires a store backend: set --store-file, --store-sqlite or --store-dynamo-table")}
			}
			repo, err := repository.NewRepository(ctx, repoCfg, rootLogger)
			if err != nil {
				return err
			}
			record := model.NewValidationRecord(&result, target.DomainOf(result.URLChecked), time.Now())
			if err := repo.UnconditionalStore(ctx, record); err != nil {
				return ExitWithCode(1, fmt.Errorf("failed to store result: %w", err))
			}
			fmt.Printf("\nResult stored in: %s\n", describeSink(repoCfg))
		}

		return nil
	},
}

// displayResultDetailed prints one block per check plus the overall verdict
func displayResultDetailed(result *model.CompositeResult) {
	fmt.Println("=== Validation Result ===")
	if result.URLChecked == "" {
		fmt.Println("URL: (none)")
	} else {
		fmt.Printf("URL: %s\n", result.URLChecked)
	}
	fmt.Println()

	for _, name := range model.CheckNames() {
		r := result.Check(name)
		marker := "✓"
		if !r.Passed {
			marker = "✗"
		}
		fmt.Printf("%s %-14s %3d/100\n", marker, string(name), r.Score)
		for _, issue := range r.Issues {
			fmt.Printf("    - %s\n", issue)
		}
	}

	fmt.Println()
	if result.OverallPassed {
		fmt.Printf("✓ Overall: PASSED (score %d)\n", result.OverallScore)
	} else {
		fmt.Printf("✗ Overall: FAILED (score %d)\n", result.OverallScore)
	}
}

// displayResultCompact prints the whole verdict on one line
func displayResultCompact(result *model.CompositeResult) {
	marker := "✓"
	if !result.OverallPassed {
		marker = "✗"
	}
	url := result.URLChecked
	if url == "" {
		url = "(none)"
	}
	fmt.Printf("%s %s overall=%d", marker, url, result.OverallScore)
	for _, name := range model.CheckNames() {
		fmt.Printf(" %s=%d", string(name), result.Check(name).Score)
	}
	fmt.Println()
}

// describeSink names the selected backend for user-facing confirmations
func describeSink(cfg repository.Config) string {
	switch {
	case cfg.DynamoTable != "":
		return fmt.Sprintf("DynamoDB table %s", cfg.DynamoTable)
	case cfg.SQLitePath != "":
		return fmt.Sprintf("SQLite database %s", cfg.SQLitePath)
	default:
		return cfg.FilePath
	}
}

func init() {
	addSinkFlags(validateCmd, &validateFlags.SinkFlags)
	validateCmd.Flags().StringVar(&validateFlags.Format, "format", "detailed", "Output format: detailed, compact, or json")
	validateCmd.Flags().BoolVar(&validateFlags.Store, "store", false, "Store the result in the configured backend")
}
