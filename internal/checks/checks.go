// Package checks implements the five validation checks that turn a fetched
// page into scored verdicts: health, legitimacy, seo, contactability and
// maturity. The checks share one fetch outcome and never re-fetch the main
// page themselves; auxiliary lookups (robots.txt probes, contact pages, TLS
// and MX inspection) go through narrow collaborator interfaces. Every check
// is self-contained: it reports a uniform result even when the input was
// empty or the fetch failed.
package checks

import (
	"context"

	"github.com/leadvet/prospectval/internal/fetch"
	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/probe"
	"github.com/leadvet/prospectval/internal/target"
)

const (
	noURLIssue = "No URL provided"

	slowResponseMS = 2000
	minWordCount   = 50
)

// Checker is a single validation check. Run must tolerate an invalid
// target, a nil outcome and an outcome carrying a fetch error.
type Checker interface {
	Name() model.CheckName
	Run(ctx context.Context, tgt target.Target, outcome *fetch.Outcome) model.CheckResult
}

// Prober issues bounded HEAD requests against auxiliary paths such as
// robots.txt or candidate contact pages.
type Prober interface {
	Head(ctx context.Context, rawURL string) (int, error)
}

// PageFetcher retrieves secondary pages discovered during a check, such
// as a contact page linked from the main document.
type PageFetcher interface {
	FetchSecondary(ctx context.Context, rawURL string) *fetch.Outcome
}

// NetProber inspects a domain's TLS certificate and mail setup directly,
// without page content.
type NetProber interface {
	TLS(ctx context.Context, domain string) probe.TLSInfo
	MX(ctx context.Context, domain string) bool
}

// Set bundles one instance of every check in pipeline order.
type Set struct {
	Health         *Health
	Legitimacy     *Legitimacy
	SEO            *SEO
	Contactability *Contactability
	Maturity       *Maturity
}

// NewSet wires the five checks to their collaborators.
func NewSet(prober Prober, pages PageFetcher, netProber NetProber) *Set {
	return &Set{
		Health:         NewHealth(),
		Legitimacy:     NewLegitimacy(),
		SEO:            NewSEO(prober),
		Contactability: NewContactability(prober, pages),
		Maturity:       NewMaturity(netProber),
	}
}

// All returns the checks in pipeline order.
func (s *Set) All() []Checker {
	return []Checker{s.Health, s.Legitimacy, s.SEO, s.Contactability, s.Maturity}
}

// ByName returns the check with the given name.
func (s *Set) ByName(name model.CheckName) (Checker, bool) {
	for _, c := range s.All() {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// issueForError maps a fetch failure to the issue label checks report.
func issueForError(err *fetch.Error) string {
	switch err.Kind {
	case fetch.KindTimeout:
		return "Timeout"
	case fetch.KindTLS:
		return "SSL Error"
	case fetch.KindConnection:
		return "Connection Failed"
	case fetch.KindRedirects:
		return "Too Many Redirects"
	default:
		return err.Message
	}
}
