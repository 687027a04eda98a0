// Package patterns holds the static classification rules used by the
// validation checks: red-flag phrase families, technology fingerprints,
// and contact extraction. Rules are anchored regular expressions over raw
// text so the matching engine stays swappable without touching the checks.
package patterns

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
)

// Family identifies a content-quality classification family
type Family int

const (
	// Parked matches domain-for-sale and parking-service markers
	Parked Family = iota
	// Construction matches under-construction and coming-soon markers
	Construction
	// Placeholder matches template filler and default CMS pages
	Placeholder
)

// Label returns the issue label a family contributes when matched
func (f Family) Label() string {
	switch f {
	case Parked:
		return "Parked domain"
	case Construction:
		return "Under construction"
	case Placeholder:
		return "Placeholder content"
	}
	return ""
}

var parkedPatterns = compileAll(
	`buy\s+this\s+domain`,
	`domain\s+(?:is\s+)?for\s+sale`,
	`parked\s+(?:by|domain|free)`,
	`godaddy\.com/domain`,
	`sedo\.com`,
	`afternic\.com`,
	`hugedomains\.com`,
	`this\s+domain\s+(?:may\s+be|is)\s+for\s+sale`,
)

var constructionPatterns = compileAll(
	`under\s+construction`,
	`coming\s+soon`,
	`launching\s+soon`,
	`check\s+back\s+(?:soon|later)`,
	`site\s+under\s+development`,
)

var placeholderPatterns = compileAll(
	`lorem\s+ipsum`,
	`your\s+company\s+(?:name|slogan)`,
	`sample\s+text\s+here`,
	`\[your\s+`,
	`just\s+another\s+wordpress\s+site`,
)

func compileAll(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return compiled
}

func familyPatterns(f Family) []*regexp.Regexp {
	switch f {
	case Parked:
		return parkedPatterns
	case Construction:
		return constructionPatterns
	case Placeholder:
		return placeholderPatterns
	}
	return nil
}

// Classify runs a family's rules against the content in order and returns
// the family label on the first match. Order is significant and stable.
func Classify(content string, family Family) (string, bool) {
	for _, re := range familyPatterns(family) {
		if re.MatchString(content) {
			return family.Label(), true
		}
	}
	return "", false
}

// fingerprintSource says which part of the response a fingerprint reads
type fingerprintSource int

const (
	fromServer fingerprintSource = iota
	fromContent
)

type fingerprint struct {
	name   string
	re     *regexp.Regexp
	source fingerprintSource
}

var fingerprints = []fingerprint{
	{"nginx", regexp.MustCompile(`(?i)nginx`), fromServer},
	{"apache", regexp.MustCompile(`(?i)apache`), fromServer},
	{"cloudflare", regexp.MustCompile(`(?i)cloudflare`), fromServer},
	{"iis", regexp.MustCompile(`(?i)microsoft-iis`), fromServer},
	{"wordpress", regexp.MustCompile(`(?i)wp-content|wordpress`), fromContent},
	{"shopify", regexp.MustCompile(`(?i)shopify|myshopify`), fromContent},
	{"wix", regexp.MustCompile(`(?i)wix\.com|wixsite`), fromContent},
	{"squarespace", regexp.MustCompile(`(?i)squarespace`), fromContent},
	{"webflow", regexp.MustCompile(`(?i)webflow`), fromContent},
	{"drupal", regexp.MustCompile(`(?i)drupal|sites/default/files`), fromContent},
	{"magento", regexp.MustCompile(`(?i)magento|mage/`), fromContent},
	{"react", regexp.MustCompile(`(?i)react|_next/static|__next`), fromContent},
	{"vue", regexp.MustCompile(`(?i)vue\.js|vue\.min\.js`), fromContent},
	{"angular", regexp.MustCompile(`(?i)angular|ng-version`), fromContent},
	{"bootstrap", regexp.MustCompile(`(?i)bootstrap\.min\.(?:css|js)`), fromContent},
	{"jquery", regexp.MustCompile(`(?i)jquery\.min\.js|jquery-\d`), fromContent},
	{"google_analytics", regexp.MustCompile(`(?i)google-analytics|gtag|ga\.js`), fromContent},
	{"google_tag_manager", regexp.MustCompile(`(?i)googletagmanager`), fromContent},
	{"hubspot", regexp.MustCompile(`(?i)hubspot|hs-scripts`), fromContent},
	{"intercom", regexp.MustCompile(`(?i)intercom|intercomcdn`), fromContent},
	{"zendesk", regexp.MustCompile(`(?i)zendesk|zdassets`), fromContent},
	{"stripe", regexp.MustCompile(`(?i)stripe\.com|js\.stripe`), fromContent},
}

// businessTools is the analytics/CRM/payment allow-set that marks a site
// as running real business tooling
var businessTools = map[string]bool{
	"google_analytics":   true,
	"google_tag_manager": true,
	"hubspot":            true,
	"intercom":           true,
	"zendesk":            true,
	"stripe":             true,
}

// DetectTechnologies fingerprints the response. Server-sourced rules read
// the Server header, content-sourced rules read the body; each fingerprint
// maps to exactly one technology name. The X-Powered-By header additionally
// maps onto php, asp.net and express. All matches accumulate; the result
// is sorted for stable output.
func DetectTechnologies(header http.Header, body string) []string {
	server := header.Get("Server")

	seen := make(map[string]bool)
	for _, fp := range fingerprints {
		switch fp.source {
		case fromServer:
			if server != "" && fp.re.MatchString(server) {
				seen[fp.name] = true
			}
		case fromContent:
			if fp.re.MatchString(body) {
				seen[fp.name] = true
			}
		}
	}

	poweredBy := strings.ToLower(header.Get("X-Powered-By"))
	if poweredBy != "" {
		if strings.Contains(poweredBy, "php") {
			seen["php"] = true
		}
		if strings.Contains(poweredBy, "asp.net") {
			seen["asp.net"] = true
		}
		if strings.Contains(poweredBy, "express") {
			seen["express"] = true
		}
	}

	detected := make([]string, 0, len(seen))
	for name := range seen {
		detected = append(detected, name)
	}
	sort.Strings(detected)
	return detected
}

// HasBusinessTool reports whether any detected technology belongs to the
// business tooling allow-set
func HasBusinessTool(techs []string) bool {
	for _, tech := range techs {
		if businessTools[tech] {
			return true
		}
	}
	return false
}

// MaxEmails and MaxPhones cap the extracted contact lists. Callers that
// merge lists from several pages re-apply the same caps.
const (
	MaxEmails = 10
	MaxPhones = 5
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// invalidEmailFragments marks placeholder and platform-noise addresses;
// an email containing any fragment is dropped
var invalidEmailFragments = []string{
	"example.com",
	"email.com",
	"domain.com",
	"yourcompany",
	"sentry.io",
	"wixpress.com",
	"squarespace",
	"wordpress",
	"schema.org",
}

var phonePatterns = []*regexp.Regexp{
	// US formats, optional country code
	regexp.MustCompile(`\+?1?[-.\s]?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`),
	// International formats with explicit +country prefix
	regexp.MustCompile(`\+[0-9]{1,3}[-.\s]?[0-9]{1,4}[-.\s]?[0-9]{1,4}[-.\s]?[0-9]{1,9}`),
}

var nonPhoneChars = regexp.MustCompile(`[^\d+]`)

// socialPlatforms maps platform name to its profile URL pattern. The full
// pattern used for extraction prepends an optional scheme and www prefix.
var socialPlatforms = []struct {
	name string
	re   *regexp.Regexp
}{
	{"linkedin", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/(?:company|in)/[a-zA-Z0-9_-]+`)},
	{"twitter", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:twitter\.com|x\.com)/[a-zA-Z0-9_]+`)},
	{"facebook", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?facebook\.com/[a-zA-Z0-9.]+`)},
	{"instagram", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/[a-zA-Z0-9_.]+`)},
	{"youtube", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/(?:channel|c|user|@)[a-zA-Z0-9_-]+`)},
	{"github", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[a-zA-Z0-9_-]+`)},
}

var contactHrefPattern = regexp.MustCompile(`(?i)href=["']([^"']*(?:contact|about|get-in-touch)[^"']*)["']`)

var contactPagePaths = []string{
	"/contact",
	"/about",
	"/get-in-touch",
	"/reach-us",
	"/connect",
}

// ExtractEmails returns the valid email addresses found in the content,
// lowercased, deduplicated in first-seen order, with placeholder domains
// filtered out. The list is capped at 10 entries.
func ExtractEmails(content string) []string {
	matches := emailPattern.FindAllString(content, -1)

	var emails []string
	seen := make(map[string]bool)
	for _, match := range matches {
		email := strings.ToLower(match)
		if seen[email] || !isValidEmail(email) {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
		if len(emails) == MaxEmails {
			break
		}
	}
	return emails
}

func isValidEmail(email string) bool {
	for _, fragment := range invalidEmailFragments {
		if strings.Contains(email, fragment) {
			return false
		}
	}
	return true
}

// ExtractPhones returns phone number candidates found in the content.
// A candidate is kept only when its digit-only form has at least 10
// digits. Results are deduplicated in first-seen order and capped at 5.
func ExtractPhones(content string) []string {
	var phones []string
	seen := make(map[string]bool)
	for _, re := range phonePatterns {
		for _, match := range re.FindAllString(content, -1) {
			digits := nonPhoneChars.ReplaceAllString(match, "")
			digits = strings.TrimPrefix(digits, "+")
			if len(digits) < 10 {
				continue
			}
			phone := strings.TrimSpace(match)
			if seen[phone] {
				continue
			}
			seen[phone] = true
			phones = append(phones, phone)
			if len(phones) == MaxPhones {
				return phones
			}
		}
	}
	return phones
}

// ExtractSocialLinks returns the first full profile URL found per platform.
// URLs captured without a scheme get https:// prepended.
func ExtractSocialLinks(content string) map[string]string {
	links := make(map[string]string)
	for _, platform := range socialPlatforms {
		match := platform.re.FindString(content)
		if match == "" {
			continue
		}
		if !strings.HasPrefix(match, "http://") && !strings.HasPrefix(match, "https://") {
			match = "https://" + match
		}
		links[platform.name] = match
	}
	return links
}

// FindContactHref returns the first contact-style link target in the
// content that is either absolute or site-rooted. Returns "" when the
// content has no usable contact link.
func FindContactHref(content string) string {
	for _, match := range contactHrefPattern.FindAllStringSubmatch(content, -1) {
		href := match[1]
		if strings.HasPrefix(href, "http") || strings.HasPrefix(href, "/") {
			return href
		}
	}
	return ""
}

// ContactPagePaths returns the common contact page locations probed when
// a page carries no contact-style link
func ContactPagePaths() []string {
	return contactPagePaths
}

var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlockPattern  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// StripTags reduces HTML to its visible text: script and style blocks are
// removed entirely, remaining tags become spaces, and runs of whitespace
// collapse to single spaces.
func StripTags(html string) string {
	text := scriptBlockPattern.ReplaceAllString(html, " ")
	text = styleBlockPattern.ReplaceAllString(text, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
