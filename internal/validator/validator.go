// Package validator runs the full validation pipeline for one URL: a single
// normalization, a single shared fetch, the five checks, and the weighted
// overall verdict.
package validator

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/leadvet/prospectval/internal/checks"
	"github.com/leadvet/prospectval/internal/fetch"
	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/probe"
	"github.com/leadvet/prospectval/internal/target"
)

// Weights applied to the five check scores in the overall verdict.
const (
	healthWeight         = 0.10
	legitimacyWeight     = 0.25
	seoWeight            = 0.15
	contactabilityWeight = 0.30
	maturityWeight       = 0.20

	overallPassScore = 50
)

// Fetcher retrieves the shared page every check reads.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) *fetch.Outcome
}

// Service orchestrates the pipeline. It is safe for concurrent use.
type Service struct {
	fetcher Fetcher
	set     *checks.Set
	logger  *slog.Logger
}

// New wires the standard pipeline: one HTTP client shared by the main fetch,
// the checks' HEAD probes and contact page retrievals, plus direct TLS and MX
// probing for the maturity check.
func New(cfg fetch.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	client := fetch.NewClient(cfg, logger)
	return NewWith(client, checks.NewSet(client, client, probe.NewService(logger)), logger)
}

// NewWith builds a Service from explicit collaborators.
func NewWith(fetcher Fetcher, set *checks.Set, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		set:     set,
		logger:  logger,
	}
}

// Validate runs every check against one raw URL and aggregates the verdict.
// It never returns an error: failures surface as failed checks inside the
// composite result. When the main fetch fails or answers with a 4xx or 5xx
// status, only the health check carries findings; the content checks stay at
// their zero values.
func (s *Service) Validate(ctx context.Context, raw string) model.CompositeResult {
	tgt := target.Normalize(raw)

	result := model.CompositeResult{
		URLChecked:     tgt.URL,
		Health:         model.ZeroCheckResult(),
		Legitimacy:     model.ZeroCheckResult(),
		SEO:            model.ZeroCheckResult(),
		Contactability: model.ZeroCheckResult(),
		Maturity:       model.ZeroCheckResult(),
	}

	if !tgt.Valid {
		result.Health = s.set.Health.Run(ctx, tgt, nil)
		return aggregate(result)
	}

	started := time.Now()
	outcome := s.fetcher.Fetch(ctx, tgt.URL)

	// Health always reads the outcome, even a failed one.
	result.Health = s.set.Health.Run(ctx, tgt, outcome)

	if outcome.Err != nil {
		s.logger.Debug("fetch failed, skipping content checks",
			"url", tgt.URL, "kind", string(outcome.Err.Kind), "error", outcome.Err.Message)
		return aggregate(result)
	}
	if outcome.StatusCode >= 400 {
		s.logger.Debug("error status, skipping content checks",
			"url", tgt.URL, "status", outcome.StatusCode)
		return aggregate(result)
	}

	result.Legitimacy = s.set.Legitimacy.Run(ctx, tgt, outcome)
	result.SEO = s.set.SEO.Run(ctx, tgt, outcome)
	result.Contactability = s.set.Contactability.Run(ctx, tgt, outcome)
	result.Maturity = s.set.Maturity.Run(ctx, tgt, outcome)

	result = aggregate(result)
	s.logger.Debug("validation complete",
		"url", tgt.URL,
		"overall_score", result.OverallScore,
		"overall_passed", result.OverallPassed,
		"elapsed", time.Since(started))
	return result
}

// aggregate computes the weighted overall score and the composite verdict.
// Passing overall requires the health, legitimacy and contactability checks
// to pass individually on top of the score threshold.
func aggregate(result model.CompositeResult) model.CompositeResult {
	weighted := healthWeight*float64(result.Health.Score) +
		legitimacyWeight*float64(result.Legitimacy.Score) +
		seoWeight*float64(result.SEO.Score) +
		contactabilityWeight*float64(result.Contactability.Score) +
		maturityWeight*float64(result.Maturity.Score)
	result.OverallScore = int(math.Round(weighted))
	result.OverallPassed = result.Health.Passed &&
		result.Legitimacy.Passed &&
		result.Contactability.Passed &&
		result.OverallScore >= overallPassScore
	return result
}
