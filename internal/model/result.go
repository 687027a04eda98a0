package model

// CheckName identifies one of the five validation checks
type CheckName string

const (
	CheckHealth         CheckName = "health"
	CheckLegitimacy     CheckName = "legitimacy"
	CheckSEO            CheckName = "seo"
	CheckContactability CheckName = "contactability"
	CheckMaturity       CheckName = "maturity"
)

// CheckNames lists all check names in pipeline order
func CheckNames() []CheckName {
	return []CheckName{CheckHealth, CheckLegitimacy, CheckSEO, CheckContactability, CheckMaturity}
}

// CheckResult is the uniform outcome of a single validation check.
// Score is an integer in [0, 100]. Issues is an ordered list of short
// labels describing what the check found wrong. Data holds the
// check-specific signals the score and pass decision were derived from.
type CheckResult struct {
	Passed bool           `json:"passed"`
	Score  int            `json:"score"`
	Issues []string       `json:"issues"`
	Data   map[string]any `json:"data"`
}

// ZeroCheckResult returns a failed result with no score, no issues and no
// data. Content-dependent checks report this when the fetch failed before
// any content was available.
func ZeroCheckResult() CheckResult {
	return CheckResult{
		Passed: false,
		Score:  0,
		Issues: []string{},
		Data:   map[string]any{},
	}
}

// CompositeResult combines the five check results for one URL with the
// weighted overall verdict. It is assembled once by the validator and
// immutable afterwards.
type CompositeResult struct {
	URLChecked     string      `json:"url_checked"`
	Health         CheckResult `json:"health"`
	Legitimacy     CheckResult `json:"legitimacy"`
	SEO            CheckResult `json:"seo"`
	Contactability CheckResult `json:"contactability"`
	Maturity       CheckResult `json:"maturity"`
	OverallScore   int         `json:"overall_score"`
	OverallPassed  bool        `json:"overall_passed"`
}

// Check returns the named check's result. Unknown names return a zero result.
func (c *CompositeResult) Check(name CheckName) CheckResult {
	switch name {
	case CheckHealth:
		return c.Health
	case CheckLegitimacy:
		return c.Legitimacy
	case CheckSEO:
		return c.SEO
	case CheckContactability:
		return c.Contactability
	case CheckMaturity:
		return c.Maturity
	}
	return ZeroCheckResult()
}

// Flatten renders the composite as the flat field schema consumed by
// external callers: url_checked, {name}_passed, {name}_score,
// {name}_issues, {name}_data for each check, plus overall_score and
// overall_passed. Issue lists and data maps are never nil in the output.
// Assembly is by named field so checks cannot collide on keys.
func (c *CompositeResult) Flatten() map[string]any {
	out := make(map[string]any, 23)
	if c.URLChecked == "" {
		out["url_checked"] = nil
	} else {
		out["url_checked"] = c.URLChecked
	}
	for _, name := range CheckNames() {
		r := c.Check(name)
		issues := r.Issues
		if issues == nil {
			issues = []string{}
		}
		data := r.Data
		if data == nil {
			data = map[string]any{}
		}
		out[string(name)+"_passed"] = r.Passed
		out[string(name)+"_score"] = r.Score
		out[string(name)+"_issues"] = issues
		out[string(name)+"_data"] = data
	}
	out["overall_score"] = c.OverallScore
	out["overall_passed"] = c.OverallPassed
	return out
}

// AllIssues returns every issue from every check, each prefixed with its
// check name, in pipeline order.
func (c *CompositeResult) AllIssues() []string {
	var issues []string
	for _, name := range CheckNames() {
		for _, issue := range c.Check(name).Issues {
			issues = append(issues, string(name)+": "+issue)
		}
	}
	return issues
}
