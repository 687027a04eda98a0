package model

import "time"

// ValidationRecord is the stored form of one completed validation run.
// Records are only created by surfaces with a configured result sink; the
// validation pipeline itself never persists.
type ValidationRecord struct {
	// URL is the normalized URL that was checked
	URL string `json:"url"`
	// Domain is the registrable domain of the checked URL
	Domain string `json:"domain"`
	// CheckedAt is when the validation ran
	CheckedAt time.Time `json:"checked_at"`

	OverallScore  int  `json:"overall_score"`
	OverallPassed bool `json:"overall_passed"`

	// CheckScores and CheckPassed hold the per-check outcomes keyed by
	// check name
	CheckScores map[string]int  `json:"check_scores"`
	CheckPassed map[string]bool `json:"check_passed"`

	// Issues aggregates every check issue, prefixed with the check name
	Issues []string `json:"issues"`

	// Result is the full flat composite result
	Result map[string]any `json:"result"`
}

// timeKeyLayout is RFC 3339 with fixed-width nanoseconds so that lexical
// order equals time order.
const timeKeyLayout = "2006-01-02T15:04:05.000000000Z07:00"

// TimeKey renders a record timestamp as the UTC string key used by the
// persistent backends.
func TimeKey(t time.Time) string {
	return t.UTC().Format(timeKeyLayout)
}

// ParseTimeKey parses a string produced by TimeKey back into a timestamp.
func ParseTimeKey(s string) (time.Time, error) {
	return time.Parse(timeKeyLayout, s)
}

// NewValidationRecord builds a stored record from a composite result
func NewValidationRecord(composite *CompositeResult, domain string, checkedAt time.Time) *ValidationRecord {
	scores := make(map[string]int, 5)
	passed := make(map[string]bool, 5)
	for _, name := range CheckNames() {
		r := composite.Check(name)
		scores[string(name)] = r.Score
		passed[string(name)] = r.Passed
	}
	return &ValidationRecord{
		URL:           composite.URLChecked,
		Domain:        domain,
		CheckedAt:     checkedAt,
		OverallScore:  composite.OverallScore,
		OverallPassed: composite.OverallPassed,
		CheckScores:   scores,
		CheckPassed:   passed,
		Issues:        composite.AllIssues(),
		Result:        composite.Flatten(),
	}
}
