package checks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/leadvet/prospectval/internal/fetch"
	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/target"
)

const (
	titleMinLen = 30
	titleMaxLen = 60
	descMinLen  = 120
	descMaxLen  = 160

	maxH1TextLen  = 100
	altIssueFloor = 3

	seoPassScore = 50
)

var (
	titleRe        = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	metaDescRe     = regexp.MustCompile(`(?i)<meta[^>]+name=["']description["'][^>]+content=["']([^"']+)["']`)
	metaDescFlipRe = regexp.MustCompile(`(?i)<meta[^>]+content=["']([^"']+)["'][^>]+name=["']description["']`)
	h1Re           = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	innerTagRe     = regexp.MustCompile(`<[^>]+>`)
	ogTagRe        = regexp.MustCompile(`(?i)<meta[^>]+property=["']og:`)
	canonicalRe    = regexp.MustCompile(`(?i)<link[^>]+rel=["']canonical["']`)
	viewportRe     = regexp.MustCompile(`(?i)<meta[^>]+name=["']viewport["']`)
	jsonLDRe       = regexp.MustCompile(`(?i)<script[^>]+type=["']application/ld\+json["']`)
	imgTagRe       = regexp.MustCompile(`(?i)<img[^>]+>`)
	imgAltRe       = regexp.MustCompile(`(?i)alt=["'][^"']+["']`)
)

// SEO grades on-page markup signals plus two crawlability probes
// (robots.txt and sitemap.xml). Scoring is additive per signal; passing
// takes 50 points and requires both a title and HTTPS.
type SEO struct {
	prober Prober
}

func NewSEO(prober Prober) *SEO { return &SEO{prober: prober} }

func (s *SEO) Name() model.CheckName { return model.CheckSEO }

func (s *SEO) Run(ctx context.Context, tgt target.Target, outcome *fetch.Outcome) model.CheckResult {
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

	body := outcome.Body
	score := 0

	hasHTTPS := strings.HasPrefix(outcome.FinalURL, "https://")
	res.Data["has_https"] = hasHTTPS
	if hasHTTPS {
		score += 15
	} else {
		res.Issues = append(res.Issues, "Not using HTTPS")
	}

	res.Data["title"] = nil
	res.Data["title_length"] = 0
	hasTitle := false
	if m := titleRe.FindStringSubmatch(body); m != nil {
		hasTitle = true
		title := strings.TrimSpace(m[1])
		length := utf8.RuneCountInString(title)
		res.Data["title"] = title
		res.Data["title_length"] = length
		score += 15
		if length < titleMinLen {
			res.Issues = append(res.Issues, "Title too short")
		} else if length > titleMaxLen {
			res.Issues = append(res.Issues, "Title too long")
		}
	} else {
		res.Issues = append(res.Issues, "Missing title")
	}

	res.Data["description"] = nil
	res.Data["description_length"] = 0
	desc := metaDescRe.FindStringSubmatch(body)
	if desc == nil {
		desc = metaDescFlipRe.FindStringSubmatch(body)
	}
	if desc != nil {
		text := strings.TrimSpace(desc[1])
		length := utf8.RuneCountInString(text)
		res.Data["description"] = text
		res.Data["description_length"] = length
		score += 15
		if length < descMinLen {
			res.Issues = append(res.Issues, "Meta description too short")
		} else if length > descMaxLen {
			res.Issues = append(res.Issues, "Meta description too long")
		}
	} else {
		res.Issues = append(res.Issues, "Missing meta description")
	}

	headings := headingTexts(body)
	res.Data["h1_count"] = len(headings)
	res.Data["h1_text"] = nil
	switch {
	case len(headings) == 1:
		res.Data["h1_text"] = clipRunes(headings[0], maxH1TextLen)
		score += 10
	case len(headings) > 1:
		res.Data["h1_text"] = clipRunes(headings[0], maxH1TextLen)
		res.Issues = append(res.Issues, fmt.Sprintf("Multiple H1 tags (%d)", len(headings)))
	default:
		res.Issues = append(res.Issues, "Missing H1")
	}

	hasViewport := viewportRe.MatchString(body)
	res.Data["has_viewport"] = hasViewport
	if hasViewport {
		score += 10
	} else {
		res.Issues = append(res.Issues, "Missing viewport (not mobile-friendly)")
	}

	hasOG := ogTagRe.MatchString(body)
	res.Data["has_og_tags"] = hasOG
	if hasOG {
		score += 5
	}

	hasCanonical := canonicalRe.MatchString(body)
	res.Data["has_canonical"] = hasCanonical
	if hasCanonical {
		score += 5
	}

	hasStructured := jsonLDRe.MatchString(body)
	res.Data["has_structured_data"] = hasStructured
	if hasStructured {
		score += 10
	}

	images := imgTagRe.FindAllString(body, -1)
	withAlt := 0
	for _, img := range images {
		if imgAltRe.MatchString(img) {
			withAlt++
		}
	}
	withoutAlt := len(images) - withAlt
	res.Data["images_with_alt"] = withAlt
	res.Data["images_without_alt"] = withoutAlt
	if withoutAlt > altIssueFloor {
		res.Issues = append(res.Issues, fmt.Sprintf("%d images missing alt", withoutAlt))
	}

	hasRobots := s.headOK(ctx, tgt, "/robots.txt")
	res.Data["has_robots_txt"] = hasRobots
	if hasRobots {
		score += 5
	}

	hasSitemap := s.headOK(ctx, tgt, "/sitemap.xml")
	res.Data["has_sitemap"] = hasSitemap
	if hasSitemap {
		score += 5
	}

	encoding := outcome.Header.Get("Content-Encoding")
	hasCompression := strings.Contains(encoding, "gzip") || strings.Contains(encoding, "br")
	res.Data["has_compression"] = hasCompression
	if hasCompression {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	res.Score = score
	res.Passed = score >= seoPassScore && hasTitle && hasHTTPS
	return res
}

// headOK probes a well-known path on the target's origin. Probe failures
// count as absence; they never surface as issues.
func (s *SEO) headOK(ctx context.Context, tgt target.Target, path string) bool {
	if s.prober == nil {
		return false
	}
	parsed, err := url.Parse(tgt.URL)
	if err != nil || parsed.Host == "" {
		return false
	}
	status, err := s.prober.Head(ctx, parsed.Scheme+"://"+parsed.Host+path)
	return err == nil && status == http.StatusOK
}

// headingTexts extracts the visible text of every h1 element, stripping
// nested tags and dropping headings that are empty after stripping.
func headingTexts(body string) []string {
	var texts []string
	for _, m := range h1Re.FindAllStringSubmatch(body, -1) {
		if text := strings.TrimSpace(innerTagRe.ReplaceAllString(m[1], "")); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func clipRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
