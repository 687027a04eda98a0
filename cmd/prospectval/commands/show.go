package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/presenter"
	"github.com/leadvet/prospectval/internal/repository"
)

var showFlags struct {
	SinkFlags
	Domain   string
	Passed   string
	MinScore int
	Format   string
	SortBy   string
}

var showCmd = &cobra.Command{
	Use:           "show",
	Short:         "Show stored validation records",
	GroupID:       "validation",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Display validation records from a store backend, newest first.

Records accumulate per domain and check time, so repeated validations of
the same site show up as history.

Examples:
  # Show all records
  prospectval show --store-file ./records.json

  # Show records for one domain
  prospectval show --store-sqlite ./records.db --domain example.com

  # Show only failing records with a decent score
  prospectval show --store-file ./records.json --passed=false --min-score 40

  # Compact table sorted by score
  prospectval show --store-file ./records.json --format compact --sort score`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		repoCfg, err := repositoryConfig(showFlags.SinkFlags)
		if err != nil {
			return UsageError{err}
		}
		if !hasSink(repoCfg) {
			cmd.SilenceUsage = false
			return UsageError{fmt.Errorf("no record store configured: set --store-file, --store-sqlite or --store-dynamo-table")}
		}

		repo, err := repository.NewRepository(ctx, repoCfg, rootLogger)
		if err != nil {
			return err
		}

		allRecords, err := repo.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		filter := model.RecordFilter{MinScore: showFlags.MinScore}
		if showFlags.Domain != "" {
			filter.Domains = []string{showFlags.Domain}
		}
		if showFlags.Passed != "" {
			passed, err := strconv.ParseBool(showFlags.Passed)
			if err != nil {
				cmd.SilenceUsage = false
				return UsageError{fmt.Errorf("invalid --passed value %q: use true or false", showFlags.Passed)}
			}
			filter.Passed = &passed
		}
		records := model.FilterRecords(allRecords, filter)

		model.SortRecords(records, showFlags.SortBy)

		if len(records) == 0 {
			fmt.Println("\nNo records found matching the specified criteria.")
			return nil
		}

		switch showFlags.Format {
		case "compact":
			displayRecordsCompact(records)
		default: // "detailed" or empty
			displayRecordsDetailed(records)
		}

		fmt.Printf("\nTotal records: %d\n", len(records))

		if showFlags.Domain != "" || showFlags.Passed != "" || showFlags.MinScore > 0 {
			fmt.Printf("Filters applied:\n")
			if showFlags.Domain != "" {
				fmt.Printf("  Domain: %s\n", showFlags.Domain)
			}
			if showFlags.Passed != "" {
				fmt.Printf("  Passed: %s\n", showFlags.Passed)
			}
			if showFlags.MinScore > 0 {
				fmt.Printf("  Min score: %d\n", showFlags.MinScore)
			}
		}

		return nil
	},
}

// displayRecordsDetailed displays records in detailed format
func displayRecordsDetailed(records []*model.ValidationRecord) {
	fmt.Println("\n=== Validation Records ===")

	for i, record := range records {
		verdict := "✓ PASSED"
		if !record.OverallPassed {
			verdict = "✗ FAILED"
		}

		fmt.Printf("\n%d. %s [%s] score %d\n", i+1, displayDomain(record), verdict, record.OverallScore)
		if record.URL != "" {
			fmt.Printf("   URL: %s\n", record.URL)
		}
		fmt.Printf("   Checked: %s\n", presenter.FormatTimeSince(record.CheckedAt))

		fmt.Printf("   Checks:")
		for _, name := range model.CheckNames() {
			fmt.Printf(" %s=%d", string(name), record.CheckScores[string(name)])
		}
		fmt.Println()

		if len(record.Issues) > 0 {
			fmt.Printf("   Issues (%d):\n", len(record.Issues))
			for _, issue := range record.Issues {
				fmt.Printf("     - %s\n", issue)
			}
		}
	}
}

// displayRecordsCompact displays records as a table
func displayRecordsCompact(records []*model.ValidationRecord) {
	fmt.Println("\n=== Validation Records (Compact) ===")
	fmt.Printf("%-40s %6s %-7s %s\n", "Domain", "Score", "Passed", "Checked")
	fmt.Println(strings.Repeat("-", 70))

	for _, record := range records {
		passed := "yes"
		if !record.OverallPassed {
			passed = "no"
		}

		fmt.Printf("%-40s %6d %-7s %s\n",
			truncateString(displayDomain(record), 38),
			record.OverallScore,
			passed,
			presenter.FormatTimeSinceCompact(record.CheckedAt))
	}
}

func displayDomain(record *model.ValidationRecord) string {
	if record.Domain == "" {
		return "(no domain)"
	}
	return record.Domain
}

// truncateString truncates a string to the specified length with ellipsis
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func init() {
	addSinkFlags(showCmd, &showFlags.SinkFlags)

	showCmd.Flags().StringVarP(&showFlags.Domain, "domain", "d", "", "Filter by registrable domain")
	showCmd.Flags().StringVar(&showFlags.Passed, "passed", "", "Filter by overall verdict: true or false")
	showCmd.Flags().IntVar(&showFlags.MinScore, "min-score", 0, "Keep only records with at least this overall score")

	showCmd.Flags().StringVar(&showFlags.Format, "format", "detailed", "Output format: detailed or compact")
	showCmd.Flags().StringVar(&showFlags.SortBy, "sort", "", "Sort by: url, domain, score, or checked-at (default newest first)")
}
