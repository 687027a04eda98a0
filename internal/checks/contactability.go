package checks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/leadvet/prospectval/internal/fetch"
	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/patterns"
	"github.com/leadvet/prospectval/internal/target"
)

const (
	emailScore        = 35
	phoneScore        = 25
	contactPageScore  = 10
	socialPerPlatform = 5
	socialCap         = 20
	linkedInBonus     = 10
)

// Contactability hunts for ways to reach the business: email addresses,
// phone numbers, social profiles and a contact page. When a contact page
// turns up it is fetched and mined as well.
type Contactability struct {
	prober Prober
	pages  PageFetcher
}

func NewContactability(prober Prober, pages PageFetcher) *Contactability {
	return &Contactability{prober: prober, pages: pages}
}

func (c *Contactability) Name() model.CheckName { return model.CheckContactability }

// Run extracts contact signals from the fetched page and any discovered
// contact page. Passing requires at least one email address or phone
// number; everything else only moves the score.
func (c *Contactability) Run(ctx context.Context, tgt target.Target, outcome *fetch.Outcome) model.CheckResult {
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

	emails := patterns.ExtractEmails(outcome.Body)
	phones := patterns.ExtractPhones(outcome.Body)
	social := patterns.ExtractSocialLinks(outcome.Body)

	contactURL := c.findContactPage(ctx, tgt, outcome.Body)
	if contactURL != "" && c.pages != nil {
		if page := c.pages.FetchSecondary(ctx, contactURL); page != nil && page.OK() {
			emails = mergeCapped(emails, patterns.ExtractEmails(page.Body), patterns.MaxEmails)
			phones = mergeCapped(phones, patterns.ExtractPhones(page.Body), patterns.MaxPhones)
			for platform, link := range patterns.ExtractSocialLinks(page.Body) {
				social[platform] = link
			}
		}
	}

	if emails == nil {
		emails = []string{}
	}
	if phones == nil {
		phones = []string{}
	}
	res.Data["emails"] = emails
	res.Data["phones"] = phones
	res.Data["social_links"] = social
	res.Data["has_contact_page"] = contactURL != ""
	res.Data["contact_page_url"] = nil
	if contactURL != "" {
		res.Data["contact_page_url"] = contactURL
	}

	score := 0
	if len(emails) > 0 {
		score += emailScore
	}
	if len(phones) > 0 {
		score += phoneScore
	}
	if contactURL != "" {
		score += contactPageScore
	}
	if n := len(social); n > 0 {
		bonus := n * socialPerPlatform
		if bonus > socialCap {
			bonus = socialCap
		}
		score += bonus
	}
	if _, ok := social["linkedin"]; ok {
		score += linkedInBonus
	}
	if score > 100 {
		score = 100
	}
	res.Score = score

	res.Passed = len(emails) > 0 || len(phones) > 0
	if !res.Passed {
		res.Issues = append(res.Issues, "No email or phone found")
	}
	return res
}

// findContactPage looks for a contact-style link in the page, then falls
// back to probing well-known paths on the target's origin. Probe failures
// are silent.
func (c *Contactability) findContactPage(ctx context.Context, tgt target.Target, body string) string {
	if href := patterns.FindContactHref(body); href != "" {
		if strings.HasPrefix(href, "http") {
			return href
		}
		return resolveRef(tgt.URL, href)
	}
	if c.prober == nil {
		return ""
	}
	for _, path := range patterns.ContactPagePaths() {
		candidate := resolveRef(tgt.URL, path)
		if candidate == "" {
			continue
		}
		if status, err := c.prober.Head(ctx, candidate); err == nil && status == http.StatusOK {
			return candidate
		}
	}
	return ""
}

// resolveRef resolves a link target against a base URL.
func resolveRef(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}

// mergeCapped appends extras to base, dropping duplicates in first-seen
// order and clipping the combined list.
func mergeCapped(base, extra []string, limit int) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	merged := make([]string, 0, len(base)+len(extra))
	for _, v := range append(base, extra...) {
		if seen[v] {
			continue
		}
		seen[v] = true
		merged = append(merged, v)
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
