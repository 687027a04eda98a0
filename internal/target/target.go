// Package target turns raw user input into a fetchable validation target.
// Normalization is pure string transformation; no network access happens here.
package target

import (
	"net/url"
	"strings"
)

// Target is a normalized validation input. URL always carries a scheme.
// Domain is the registrable domain: the URL's host with a leading "www."
// label stripped, case preserved. Valid is false only for empty or
// whitespace-only input, which is never fetched.
type Target struct {
	Raw    string
	URL    string
	Domain string
	Valid  bool
}

// Normalize canonicalizes a raw string into a Target. Input without an
// http:// or https:// prefix gets https:// prepended. Empty or
// whitespace-only input yields an invalid Target without attempting a
// parse. Unparsable input keeps its URL (the fetch will surface the
// failure) but has an empty Domain.
func Normalize(raw string) Target {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Target{Raw: raw}
	}

	normalized := trimmed
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	return Target{
		Raw:    raw,
		URL:    normalized,
		Domain: DomainOf(normalized),
		Valid:  true,
	}
}

// DomainOf extracts the registrable domain from an absolute URL: the host
// without port, with a leading "www." stripped. Returns "" when the URL
// does not parse or has no host.
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// SameDomain reports whether two registrable domains refer to the same
// host, ignoring case and any leading "www." label.
func SameDomain(a, b string) bool {
	a = strings.TrimPrefix(a, "www.")
	b = strings.TrimPrefix(b, "www.")
	return strings.EqualFold(a, b)
}
