package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/leadvet/prospectval/internal/fetch"
	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/patterns"
	"github.com/leadvet/prospectval/internal/target"
)

// issuePenalty is deducted from 100 for every legitimacy issue found.
const issuePenalty = 25

// Legitimacy decides whether fetched content is a real business site
// rather than a parked, under-construction or placeholder page.
type Legitimacy struct{}

func NewLegitimacy() *Legitimacy { return &Legitimacy{} }

func (l *Legitimacy) Name() model.CheckName { return model.CheckLegitimacy }

// Run inspects the fetched content for dead-site markers: parking and
// construction phrases, placeholder filler, thin text, and redirects that
// land on a different domain. The check passes only with a clean sheet.
func (l *Legitimacy) Run(_ context.Context, tgt target.Target, outcome *fetch.Outcome) model.CheckResult {
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
	if outcome.StatusCode >= 400 {
		res.Issues = append(res.Issues, fmt.Sprintf("HTTP %d", outcome.StatusCode))
		return res
	}

	words := len(strings.Fields(patterns.StripTags(outcome.Body)))
	res.Data["word_count"] = words
	res.Data["content_length"] = len(outcome.Body)
	res.Data["redirected_to"] = nil

	for _, family := range []patterns.Family{patterns.Parked, patterns.Construction, patterns.Placeholder} {
		if label, found := patterns.Classify(outcome.Body, family); found {
			res.Issues = append(res.Issues, label)
		}
	}
	if words < minWordCount {
		res.Issues = append(res.Issues, "Low word count")
	}
	if finalDomain := strings.ToLower(target.DomainOf(outcome.FinalURL)); finalDomain != "" && !target.SameDomain(tgt.Domain, finalDomain) {
		res.Data["redirected_to"] = finalDomain
		res.Issues = append(res.Issues, "Redirects to "+finalDomain)
	}

	if score := 100 - issuePenalty*len(res.Issues); score > 0 {
		res.Score = score
	}
	res.Passed = len(res.Issues) == 0
	return res
}
