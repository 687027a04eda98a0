package checks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leadvet/prospectval/internal/fetch"
	"github.com/leadvet/prospectval/internal/target"
)

func TestHealth_FastResponse(t *testing.T) {
	check := NewHealth()
	tgt := target.Normalize("example.com")
	outcome := okOutcome("https://example.com", "<html></html>")

	res := check.Run(context.Background(), tgt, outcome)

	if !res.Passed {
		t.Error("Expected fast 200 response to pass")
	}
	if res.Score != 100 {
		t.Errorf("Expected score 100, got %d", res.Score)
	}
	if len(res.Issues) != 0 {
		t.Errorf("Expected no issues, got %v", res.Issues)
	}
	if res.Data["status_code"] != 200 {
		t.Errorf("Expected status_code 200, got %v", res.Data["status_code"])
	}
	if res.Data["response_time_ms"] != 300 {
		t.Errorf("Expected response_time_ms 300, got %v", res.Data["response_time_ms"])
	}
	if res.Data["final_url"] != "https://example.com" {
		t.Errorf("Expected final_url to be recorded, got %v", res.Data["final_url"])
	}
}

func TestHealth_ScoreTiers(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{300 * time.Millisecond, 100},
		{700 * time.Millisecond, 90},
		{1500 * time.Millisecond, 75},
		{2500 * time.Millisecond, 50},
		{3500 * time.Millisecond, 25},
	}

	check := NewHealth()
	tgt := target.Normalize("example.com")
	for _, tt := range tests {
		t.Run(tt.elapsed.String(), func(t *testing.T) {
			outcome := okOutcome("https://example.com", "")
			outcome.Elapsed = tt.elapsed

			res := check.Run(context.Background(), tgt, outcome)

			if res.Score != tt.want {
				t.Errorf("Expected score %d for %v, got %d", tt.want, tt.elapsed, res.Score)
			}
			if !res.Passed {
				t.Errorf("Expected %v response to still pass", tt.elapsed)
			}
		})
	}
}

func TestHealth_SlowResponseIssue(t *testing.T) {
	check := NewHealth()
	tgt := target.Normalize("example.com")
	outcome := okOutcome("https://example.com", "")
	outcome.Elapsed = 2500 * time.Millisecond

	res := check.Run(context.Background(), tgt, outcome)

	if !hasIssue(res.Issues, "Slow response") {
		t.Errorf("Expected Slow response issue, got %v", res.Issues)
	}
	if res.Score != 50 {
		t.Errorf("Expected score 50, got %d", res.Score)
	}
}

func TestHealth_HTTPError(t *testing.T) {
	check := NewHealth()
	tgt := target.Normalize("example.com")
	outcome := okOutcome("https://example.com", "not found")
	outcome.StatusCode = 404

	res := check.Run(context.Background(), tgt, outcome)

	if res.Passed {
		t.Error("Expected 404 to fail")
	}
	if res.Score != 0 {
		t.Errorf("Expected score 0, got %d", res.Score)
	}
	if !hasIssue(res.Issues, "HTTP 404") {
		t.Errorf("Expected HTTP 404 issue, got %v", res.Issues)
	}
	if res.Data["status_code"] != 404 {
		t.Errorf("Expected status_code 404 in data, got %v", res.Data["status_code"])
	}
}

func TestHealth_FetchErrors(t *testing.T) {
	tests := []struct {
		kind fetch.Kind
		want string
	}{
		{fetch.KindTimeout, "Timeout"},
		{fetch.KindTLS, "SSL Error"},
		{fetch.KindConnection, "Connection Failed"},
		{fetch.KindRedirects, "Too Many Redirects"},
	}

	check := NewHealth()
	tgt := target.Normalize("example.com")
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			res := check.Run(context.Background(), tgt, errOutcome(tt.kind, "boom"))

			if res.Passed {
				t.Errorf("Expected %s error to fail", tt.kind)
			}
			if !hasIssue(res.Issues, tt.want) {
				t.Errorf("Expected issue %q, got %v", tt.want, res.Issues)
			}
		})
	}
}

func TestHealth_OtherErrorKeepsMessage(t *testing.T) {
	check := NewHealth()
	tgt := target.Normalize("example.com")
	outcome := errOutcome(fetch.KindOther, "unsupported protocol scheme")

	res := check.Run(context.Background(), tgt, outcome)

	if !hasIssue(res.Issues, "unsupported protocol scheme") {
		t.Errorf("Expected raw error message as issue, got %v", res.Issues)
	}
}

func TestHealth_NoURL(t *testing.T) {
	check := NewHealth()

	res := check.Run(context.Background(), target.Normalize("  "), nil)

	if res.Passed {
		t.Error("Expected empty URL to fail")
	}
	if res.Score != 0 {
		t.Errorf("Expected score 0, got %d", res.Score)
	}
	if !hasIssue(res.Issues, "No URL provided") {
		t.Errorf("Expected No URL provided issue, got %v", res.Issues)
	}
}

func TestResponseScoreBoundaries(t *testing.T) {
	tests := []struct {
		ms   int
		want int
	}{
		{0, 100},
		{499, 100},
		{500, 90},
		{999, 90},
		{1000, 75},
		{1999, 75},
		{2000, 50},
		{2999, 50},
		{3000, 25},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dms", tt.ms), func(t *testing.T) {
			if got := responseScore(tt.ms); got != tt.want {
				t.Errorf("Expected responseScore(%d) == %d, got %d", tt.ms, tt.want, got)
			}
		})
	}
}
