package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leadvet/prospectval/internal/batch"
	"github.com/leadvet/prospectval/internal/repository"
)

var batchFlags struct {
	SinkFlags
	Workers   int
	Rate      float64
	Output    string
	OutFormat string
}

var batchCmd = &cobra.Command{
	Use:           "batch <input-file>",
	Short:         "Validate many URLs from a file of work items",
	GroupID:       "validation",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Batch validates every item in an input file and writes the items back
with the validation fields merged in.

The input may be a JSON array, JSON Lines, or plain URLs one per line;
use "-" to read from stdin. Each item's URL is taken from the first
non-empty of: url_checked, url, website, company_url, domain. Items keep
all their original fields; validation fields win on collisions. Output
order always matches input order.

URLs are checked by a worker pool under a shared requests-per-second
limit so target sites are not hammered.

Examples:
  # Validate a CRM export and write CSV for a spreadsheet
  prospectval batch leads.json --output results.csv --out-format csv

  # Pipe JSONL through, four workers, one request per second
  cat leads.jsonl | prospectval batch - --rate 1 > results.jsonl

  # Record every result while processing
  prospectval batch leads.json --store-sqlite ./records.db`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		items, err := batch.ReadItemsFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		repoCfg, err := repositoryConfig(batchFlags.SinkFlags)
		if err != nil {
			return UsageError{err}
		}

		var sink batch.Sink
		if hasSink(repoCfg) {
			repo, err := repository.NewRepository(ctx, repoCfg, rootLogger)
			if err != nil {
				return err
			}
			sink = repo
		}

		runner := batch.NewRunner(newValidator(), sink, batchTuning(cmd), rootLogger)
		results, err := runner.Run(ctx, items)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		toFile := batchFlags.Output != "" && batchFlags.Output != "-"
		if toFile {
			f, err := os.Create(batchFlags.Output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		format := batch.OutFormat(batchFlags.OutFormat)
		if err := batch.WriteItems(w, results, format); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}

		if toFile {
			fmt.Printf("Wrote %d result(s) to %s\n", len(results), batchFlags.Output)
		}
		return nil
	},
}

// batchTuning resolves workers and rate: flags win, then the config file,
// then the package defaults.
func batchTuning(cmd *cobra.Command) batch.Config {
	cfg := batch.Config{Workers: batchFlags.Workers, Rate: batchFlags.Rate}
	if !cmd.Flags().Changed("workers") && rootConfig.Batch.Workers > 0 {
		cfg.Workers = rootConfig.Batch.Workers
	}
	if !cmd.Flags().Changed("rate") && rootConfig.Batch.Rate != 0 {
		cfg.Rate = rootConfig.Batch.Rate
	}
	return cfg
}

func init() {
	addSinkFlags(batchCmd, &batchFlags.SinkFlags)
	batchCmd.Flags().IntVar(&batchFlags.Workers, "workers", batch.DefaultWorkers, "Number of concurrent validation workers")
	batchCmd.Flags().Float64Var(&batchFlags.Rate, "rate", batch.DefaultRate, "Maximum validations per second across all workers (negative for unlimited)")
	batchCmd.Flags().StringVarP(&batchFlags.Output, "output", "o", "-", "Output file (\"-\" for stdout)")
	batchCmd.Flags().StringVar(&batchFlags.OutFormat, "out-format", "json", "Output format: json, jsonl, or csv")
}
