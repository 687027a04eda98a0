package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/target"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeValidator answers every URL with a canned passing composite and
// records what it was asked, safely across workers
type fakeValidator struct {
	mu    sync.Mutex
	asked []string
	delay map[string]time.Duration
}

func (f *fakeValidator) Validate(_ context.Context, raw string) model.CompositeResult {
	f.mu.Lock()
	f.asked = append(f.asked, raw)
	delay := f.delay[raw]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if strings.TrimSpace(raw) == "" {
		result := model.CompositeResult{
			Health:         model.ZeroCheckResult(),
			Legitimacy:     model.ZeroCheckResult(),
			SEO:            model.ZeroCheckResult(),
			Contactability: model.ZeroCheckResult(),
			Maturity:       model.ZeroCheckResult(),
		}
		result.Health.Issues = []string{"No URL provided"}
		return result
	}

	tgt := target.Normalize(raw)
	return model.CompositeResult{
		URLChecked:     tgt.URL,
		Health:         model.CheckResult{Passed: true, Score: 100, Issues: []string{}, Data: map[string]any{}},
		Legitimacy:     model.CheckResult{Passed: true, Score: 100, Issues: []string{}, Data: map[string]any{}},
		SEO:            model.CheckResult{Passed: true, Score: 75, Issues: []string{}, Data: map[string]any{}},
		Contactability: model.CheckResult{Passed: true, Score: 80, Issues: []string{}, Data: map[string]any{}},
		Maturity:       model.CheckResult{Passed: true, Score: 60, Issues: []string{}, Data: map[string]any{}},
		OverallScore:   82,
		OverallPassed:  true,
	}
}

type fakeSink struct {
	mu     sync.Mutex
	stored []*model.ValidationRecord
	err    error
}

func (f *fakeSink) UnconditionalStore(_ context.Context, rec *model.ValidationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, rec)
	return nil
}

func TestRunner_PreservesInputOrder(t *testing.T) {
	items := make([]Item, 6)
	for i := range items {
		items[i] = Item{"url": fmt.Sprintf("https://site-%d.example.com", i)}
	}

	// Slow down the early items so completion order differs from input order
	validator := &fakeValidator{delay: map[string]time.Duration{
		"https://site-0.example.com": 30 * time.Millisecond,
		"https://site-1.example.com": 20 * time.Millisecond,
	}}
	runner := NewRunner(validator, nil, Config{Workers: 3, Rate: -1}, discardLogger())

	results, err := runner.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(results) != len(items) {
		t.Fatalf("Expected %d results, got %d", len(items), len(results))
	}
	for i, result := range results {
		want := fmt.Sprintf("https://site-%d.example.com", i)
		if result["url_checked"] != want {
			t.Errorf("Result %d: Expected url_checked %s, got %v", i, want, result["url_checked"])
		}
	}
	if len(validator.asked) != len(items) {
		t.Errorf("Expected %d validations, got %d", len(items), len(validator.asked))
	}
}

func TestRunner_OverlayKeepsItemFieldsAndResultWins(t *testing.T) {
	items := []Item{{
		"company":       "Acme Corp",
		"url":           "https://acme.example.com",
		"overall_score": "stale",
	}}

	runner := NewRunner(&fakeValidator{}, nil, Config{Workers: 1, Rate: -1}, discardLogger())
	results, err := runner.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	result := results[0]
	if result["company"] != "Acme Corp" {
		t.Errorf("Expected upstream field to survive, got %v", result["company"])
	}
	if result["url"] != "https://acme.example.com" {
		t.Errorf("Expected original url field to survive, got %v", result["url"])
	}
	if result["overall_score"] != 82 {
		t.Errorf("Expected result field to win on collision, got %v", result["overall_score"])
	}
	if result["url_checked"] != "https://acme.example.com" {
		t.Errorf("Expected url_checked, got %v", result["url_checked"])
	}

	// The input item must not be mutated
	if items[0]["overall_score"] != "stale" {
		t.Errorf("Expected input item untouched, got %v", items[0]["overall_score"])
	}
}

func TestRunner_ItemWithoutURL(t *testing.T) {
	items := []Item{{"company": "No Website LLC"}}

	validator := &fakeValidator{}
	runner := NewRunner(validator, nil, Config{Workers: 1, Rate: -1}, discardLogger())
	results, err := runner.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(validator.asked) != 1 || validator.asked[0] != "" {
		t.Fatalf("Expected one empty-URL validation, got %v", validator.asked)
	}

	result := results[0]
	if result["url_checked"] != nil {
		t.Errorf("Expected nil url_checked, got %v", result["url_checked"])
	}
	issues, ok := result["health_issues"].([]string)
	if !ok || len(issues) != 1 || issues[0] != "No URL provided" {
		t.Errorf("Expected [No URL provided], got %v", result["health_issues"])
	}
	if result["company"] != "No Website LLC" {
		t.Errorf("Expected upstream field to survive, got %v", result["company"])
	}
}

func TestRunner_SinkReceivesRecords(t *testing.T) {
	checkedAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	items := []Item{
		{"url": "https://www.acme.example.com/pricing"},
		{"website": "beta.example.org"},
	}

	sink := &fakeSink{}
	runner := NewRunner(&fakeValidator{}, sink, Config{Workers: 2, Rate: -1}, discardLogger())
	runner.now = func() time.Time { return checkedAt }

	if _, err := runner.Run(context.Background(), items); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(sink.stored) != 2 {
		t.Fatalf("Expected 2 stored records, got %d", len(sink.stored))
	}

	domains := map[string]bool{}
	for _, rec := range sink.stored {
		domains[rec.Domain] = true
		if !rec.CheckedAt.Equal(checkedAt) {
			t.Errorf("Expected checked-at %v, got %v", checkedAt, rec.CheckedAt)
		}
		if rec.OverallScore != 82 {
			t.Errorf("Expected overall score 82, got %d", rec.OverallScore)
		}
	}
	if !domains["acme.example.com"] || !domains["beta.example.org"] {
		t.Errorf("Expected www-stripped domains, got %v", domains)
	}
}

func TestRunner_SinkErrorDoesNotAbort(t *testing.T) {
	items := []Item{
		{"url": "https://one.example.com"},
		{"url": "https://two.example.com"},
	}

	sink := &fakeSink{err: errors.New("table unavailable")}
	runner := NewRunner(&fakeValidator{}, sink, Config{Workers: 1, Rate: -1}, discardLogger())

	results, err := runner.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results despite sink errors, got %d", len(results))
	}
	for i, result := range results {
		if result["url_checked"] == nil {
			t.Errorf("Result %d: Expected a validated result, got %v", i, result)
		}
	}
}

func TestRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(&fakeValidator{}, nil, Config{Workers: 2, Rate: -1}, discardLogger())
	_, err := runner.Run(ctx, []Item{{"url": "https://example.com"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunner_EmptyInput(t *testing.T) {
	runner := NewRunner(&fakeValidator{}, nil, Config{}, discardLogger())
	results, err := runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestURLOf(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "url_checked wins over url",
			item: Item{"url_checked": "https://checked.example.com", "url": "https://raw.example.com"},
			want: "https://checked.example.com",
		},
		{
			name: "url field",
			item: Item{"url": "https://raw.example.com"},
			want: "https://raw.example.com",
		},
		{
			name: "website fallback",
			item: Item{"website": "example.com", "name": "Acme"},
			want: "example.com",
		},
		{
			name: "company_url fallback",
			item: Item{"company_url": "https://co.example.com"},
			want: "https://co.example.com",
		},
		{
			name: "domain fallback",
			item: Item{"domain": "example.org"},
			want: "example.org",
		},
		{
			name: "whitespace values are skipped",
			item: Item{"url": "   ", "website": "example.net"},
			want: "example.net",
		},
		{
			name: "non-string values are skipped",
			item: Item{"url": 42, "website": "example.net"},
			want: "example.net",
		},
		{
			name: "no URL fields",
			item: Item{"name": "Acme"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := URLOf(tt.item); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
