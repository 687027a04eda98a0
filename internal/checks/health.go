package checks

import (
	"context"
	"fmt"

	"github.com/leadvet/prospectval/internal/fetch"
	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/target"
)

// Health scores basic reachability: whether the URL answered, with what
// status and how fast.
type Health struct{}

func NewHealth() *Health { return &Health{} }

func (h *Health) Name() model.CheckName { return model.CheckHealth }

// Run grades the shared fetch outcome. Response time sets the score in
// tiers; any 4xx or 5xx status fails the check outright.
func (h *Health) Run(_ context.Context, tgt target.Target, outcome *fetch.Outcome) model.CheckResult {
	res := model.ZeroCheckResult()
	if !tgt.Valid {
		res.Issues = append(res.Issues, noURLIssue)
		return res
	}
	if outcome == nil {
		return res
	}
	if outcome.Err != nil {
		res.Issues = append(res.Issues, issueForError(outcome.Err))
		return res
	}

	ms := int(outcome.Elapsed.Milliseconds())
	res.Data["status_code"] = outcome.StatusCode
	res.Data["response_time_ms"] = ms
	res.Data["final_url"] = outcome.FinalURL

	if outcome.StatusCode >= 400 {
		res.Issues = append(res.Issues, fmt.Sprintf("HTTP %d", outcome.StatusCode))
		return res
	}

	res.Passed = true
	res.Score = responseScore(ms)
	if ms >= slowResponseMS {
		res.Issues = append(res.Issues, "Slow response")
	}
	return res
}

// responseScore converts elapsed milliseconds into the tiered health score.
func responseScore(ms int) int {
	switch {
	case ms < 500:
		return 100
	case ms < 1000:
		return 90
	case ms < 2000:
		return 75
	case ms < 3000:
		return 50
	default:
		return 25
	}
}
