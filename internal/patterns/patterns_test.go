package patterns

import (
	"net/http"
	"reflect"
	"testing"
)

func TestClassify_Parked(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"for sale phrase", "This domain is for sale! Contact us today."},
		{"buy this domain", "Buy this domain now at a great price"},
		{"parking service", "This page is parked free courtesy of the registrar"},
		{"marketplace link", "Visit hugedomains.com to make an offer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, matched := Classify(tt.content, Parked)
			if !matched {
				t.Errorf("Expected parked content to match, got no match")
			}
			if label != "Parked domain" {
				t.Errorf("Expected label %q, got %q", "Parked domain", label)
			}
		})
	}
}

func TestClassify_Construction(t *testing.T) {
	label, matched := Classify("Our new site is coming soon, check back later!", Construction)
	if !matched {
		t.Errorf("Expected construction content to match, got no match")
	}
	if label != "Under construction" {
		t.Errorf("Expected label %q, got %q", "Under construction", label)
	}
}

func TestClassify_Placeholder(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"lorem ipsum", "Lorem ipsum dolor sit amet, consectetur adipiscing elit"},
		{"template field", "[Your Company Name] welcomes you"},
		{"default wordpress", "Just Another WordPress Site"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, matched := Classify(tt.content, Placeholder)
			if !matched {
				t.Errorf("Expected placeholder content to match, got no match")
			}
			if label != "Placeholder content" {
				t.Errorf("Expected label %q, got %q", "Placeholder content", label)
			}
		})
	}
}

func TestClassify_NoMatch(t *testing.T) {
	content := "We provide consulting services for enterprise clients across Europe."
	for _, family := range []Family{Parked, Construction, Placeholder} {
		label, matched := Classify(content, family)
		if matched {
			t.Errorf("Expected no match for ordinary content, got label %q", label)
		}
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	_, matched := Classify("UNDER CONSTRUCTION", Construction)
	if !matched {
		t.Errorf("Expected uppercase content to match")
	}
}

func TestDetectTechnologies_ServerHeader(t *testing.T) {
	header := http.Header{}
	header.Set("Server", "nginx/1.18.0")

	techs := DetectTechnologies(header, "")
	if !reflect.DeepEqual(techs, []string{"nginx"}) {
		t.Errorf("Expected [nginx], got %v", techs)
	}
}

func TestDetectTechnologies_ContentAndHeaders(t *testing.T) {
	header := http.Header{}
	header.Set("Server", "Apache/2.4.41")
	header.Set("X-Powered-By", "PHP/8.1.2")
	body := `<link href="/wp-content/themes/corp/style.css">
		<script src="https://www.google-analytics.com/analytics.js"></script>`

	techs := DetectTechnologies(header, body)
	expected := []string{"apache", "google_analytics", "php", "wordpress"}
	if !reflect.DeepEqual(techs, expected) {
		t.Errorf("Expected %v, got %v", expected, techs)
	}
}

func TestDetectTechnologies_PoweredByVariants(t *testing.T) {
	tests := []struct {
		name      string
		poweredBy string
		expected  string
	}{
		{"php", "PHP/7.4", "php"},
		{"aspnet", "ASP.NET", "asp.net"},
		{"express", "Express", "express"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			header.Set("X-Powered-By", tt.poweredBy)
			techs := DetectTechnologies(header, "")
			if !reflect.DeepEqual(techs, []string{tt.expected}) {
				t.Errorf("Expected [%s], got %v", tt.expected, techs)
			}
		})
	}
}

func TestDetectTechnologies_Empty(t *testing.T) {
	techs := DetectTechnologies(http.Header{}, "plain page with no framework markers")
	if len(techs) != 0 {
		t.Errorf("Expected no technologies, got %v", techs)
	}
}

func TestHasBusinessTool(t *testing.T) {
	if HasBusinessTool([]string{"nginx", "jquery", "bootstrap"}) {
		t.Errorf("Expected no business tool in infrastructure-only list")
	}
	if !HasBusinessTool([]string{"nginx", "stripe"}) {
		t.Errorf("Expected stripe to count as a business tool")
	}
	if !HasBusinessTool([]string{"google_analytics"}) {
		t.Errorf("Expected google_analytics to count as a business tool")
	}
}

func TestExtractEmails(t *testing.T) {
	content := `Contact Sales@Acme-Corp.com or support@acme-corp.com.
		For press: sales@acme-corp.com`

	emails := ExtractEmails(content)
	expected := []string{"sales@acme-corp.com", "support@acme-corp.com"}
	if !reflect.DeepEqual(emails, expected) {
		t.Errorf("Expected %v, got %v", expected, emails)
	}
}

func TestExtractEmails_FiltersPlaceholders(t *testing.T) {
	content := `Write to info@acme.io, not test@example.com or errors@o123.sentry.io`

	emails := ExtractEmails(content)
	if !reflect.DeepEqual(emails, []string{"info@acme.io"}) {
		t.Errorf("Expected placeholder addresses filtered, got %v", emails)
	}
}

func TestExtractEmails_KeepsSimilarRealDomains(t *testing.T) {
	// example-company.com must survive the example.com filter
	emails := ExtractEmails("contact@example-company.com")
	if !reflect.DeepEqual(emails, []string{"contact@example-company.com"}) {
		t.Errorf("Expected real domain kept, got %v", emails)
	}
}

func TestExtractEmails_Cap(t *testing.T) {
	content := ""
	for _, local := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		content += local + "@acme.io "
	}

	emails := ExtractEmails(content)
	if len(emails) != 10 {
		t.Errorf("Expected emails capped at 10, got %d", len(emails))
	}
}

func TestExtractPhones(t *testing.T) {
	content := "Call us at (555) 123-4567 or +44 20 7946 0958"

	phones := ExtractPhones(content)
	if len(phones) != 2 {
		t.Fatalf("Expected 2 phones, got %d: %v", len(phones), phones)
	}
	if phones[0] != "(555) 123-4567" {
		t.Errorf("Expected US number first, got %q", phones[0])
	}
	if phones[1] != "+44 20 7946 0958" {
		t.Errorf("Expected international number second, got %q", phones[1])
	}
}

func TestExtractPhones_DropsShortNumbers(t *testing.T) {
	phones := ExtractPhones("Dial 555-1234 for the front desk")
	if len(phones) != 0 {
		t.Errorf("Expected short numbers dropped, got %v", phones)
	}
}

func TestExtractPhones_Dedupe(t *testing.T) {
	phones := ExtractPhones("Phone: +1-555-123-4567. Fax line also +1-555-123-4567.")
	if len(phones) != 1 {
		t.Errorf("Expected duplicate numbers collapsed, got %v", phones)
	}
}

func TestExtractSocialLinks(t *testing.T) {
	content := `<a href="https://www.linkedin.com/company/acme-corp">LinkedIn</a>
		Follow us at twitter.com/acmecorp`

	links := ExtractSocialLinks(content)
	if links["linkedin"] != "https://www.linkedin.com/company/acme-corp" {
		t.Errorf("Expected full LinkedIn URL, got %q", links["linkedin"])
	}
	if links["twitter"] != "https://twitter.com/acmecorp" {
		t.Errorf("Expected scheme prepended to bare link, got %q", links["twitter"])
	}
}

func TestExtractSocialLinks_FirstPerPlatform(t *testing.T) {
	content := `github.com/acme-corp and later github.com/acme-labs`

	links := ExtractSocialLinks(content)
	if links["github"] != "https://github.com/acme-corp" {
		t.Errorf("Expected first profile per platform, got %q", links["github"])
	}
}

func TestExtractSocialLinks_None(t *testing.T) {
	links := ExtractSocialLinks("<p>No social presence here</p>")
	if len(links) != 0 {
		t.Errorf("Expected no links, got %v", links)
	}
}

func TestFindContactHref(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"rooted path", `<a href="/contact-us">Contact Us</a>`, "/contact-us"},
		{"absolute url", `<a href="https://acme.io/about">About</a>`, "https://acme.io/about"},
		{"mailto skipped", `<a href="mailto:contact@acme.io">Mail</a> <a href="/contact">Visit</a>`, "/contact"},
		{"no contact link", `<a href="/pricing">Pricing</a>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			href := FindContactHref(tt.content)
			if href != tt.expected {
				t.Errorf("Expected href %q, got %q", tt.expected, href)
			}
		})
	}
}

func TestContactPagePaths(t *testing.T) {
	expected := []string{"/contact", "/about", "/get-in-touch", "/reach-us", "/connect"}
	if !reflect.DeepEqual(ContactPagePaths(), expected) {
		t.Errorf("Expected %v, got %v", expected, ContactPagePaths())
	}
}

func TestStripTags(t *testing.T) {
	html := `<html><head><script>var x = 1;</script><style>body { margin: 0 }</style></head>
		<body><h1>Hello</h1>  <p>World   again</p></body></html>`

	text := StripTags(html)
	if text != "Hello World again" {
		t.Errorf("Expected %q, got %q", "Hello World again", text)
	}
}

func TestStripTags_PlainText(t *testing.T) {
	if got := StripTags("already plain"); got != "already plain" {
		t.Errorf("Expected passthrough, got %q", got)
	}
}
