// Package batch validates many URLs concurrently while preserving input
// order. Work items are free-form JSON objects; each item's flattened
// validation result is overlaid onto the item, so upstream fields survive
// and result fields win on collision.
package batch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/target"
)

const (
	// DefaultWorkers is the worker pool size when none is configured
	DefaultWorkers = 4

	// DefaultRate is the shared request rate in requests per second
	DefaultRate = 2.0
)

// Item is one work item from the input file
type Item map[string]any

// urlFields are tried in order when picking an item's URL
var urlFields = []string{"url_checked", "url", "website", "company_url", "domain"}

// URLOf returns the first non-empty URL-carrying field of the item.
// Returns an empty string when the item has none, in which case validation
// still runs and reports the missing URL.
func URLOf(item Item) string {
	for _, field := range urlFields {
		if s, ok := item[field].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// Validator runs the validation pipeline for one raw URL
type Validator interface {
	Validate(ctx context.Context, raw string) model.CompositeResult
}

// Sink receives one record per validated item. Batch runs upsert so a rerun
// over the same input refreshes earlier records instead of failing.
type Sink interface {
	UnconditionalStore(ctx context.Context, rec *model.ValidationRecord) error
}

// Config tunes the batch run
type Config struct {
	// Workers is the worker pool size; DefaultWorkers when <= 0
	Workers int

	// Rate caps validations per second across all workers; DefaultRate
	// when 0, unlimited when negative
	Rate float64
}

// Runner fans work items out to a bounded worker pool
type Runner struct {
	validator Validator
	sink      Sink
	limiter   *rate.Limiter
	workers   int
	logger    *slog.Logger
	now       func() time.Time
}

// NewRunner creates a batch runner. sink may be nil when results are not
// persisted.
func NewRunner(validator Validator, sink Sink, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	perSecond := cfg.Rate
	if perSecond == 0 {
		perSecond = DefaultRate
	}
	var limiter *rate.Limiter
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return &Runner{
		validator: validator,
		sink:      sink,
		limiter:   limiter,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
	}
}

type job struct {
	idx  int
	item Item
}

// Run validates every item and returns the merged results in input order.
// A canceled context aborts the run and returns the context's error.
func (r *Runner) Run(ctx context.Context, items []Item) ([]Item, error) {
	if len(items) == 0 {
		return []Item{}, nil
	}

	started := r.now()
	results := make([]Item, len(items))
	jobs := make(chan job)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue
				}
				if r.limiter != nil {
					if err := r.limiter.Wait(ctx); err != nil {
						continue
					}
				}
				results[j.idx] = r.process(ctx, j.item)
			}
		}()
	}

	for i, item := range items {
		jobs <- job{idx: i, item: item}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.logger.Info("batch complete",
		"items", len(items),
		"passed", countPassed(results),
		"elapsed", time.Since(started))
	return results, nil
}

// process validates one item, stores the record when a sink is configured,
// and returns the item with the flattened result overlaid
func (r *Runner) process(ctx context.Context, item Item) Item {
	rawURL := URLOf(item)
	composite := r.validator.Validate(ctx, rawURL)

	if r.sink != nil {
		rec := model.NewValidationRecord(&composite, target.DomainOf(composite.URLChecked), r.now())
		if err := r.sink.UnconditionalStore(ctx, rec); err != nil {
			r.logger.Warn("failed to store batch record", "url", composite.URLChecked, "error", err)
		}
	}

	return overlay(item, composite.Flatten())
}

// overlay copies the item and lays the flattened result over it; result
// fields win on key collision
func overlay(item Item, flat map[string]any) Item {
	merged := make(Item, len(item)+len(flat))
	for k, v := range item {
		merged[k] = v
	}
	for k, v := range flat {
		merged[k] = v
	}
	return merged
}

func countPassed(items []Item) int {
	n := 0
	for _, item := range items {
		if passed, ok := item["overall_passed"].(bool); ok && passed {
			n++
		}
	}
	return n
}
