package checks

import (
	"context"

	"github.com/leadvet/prospectval/internal/fetch"
	"github.com/leadvet/prospectval/internal/model"
	"github.com/leadvet/prospectval/internal/patterns"
	"github.com/leadvet/prospectval/internal/probe"
	"github.com/leadvet/prospectval/internal/target"
)

const (
	sslScore    = 20
	mxScore     = 20
	techPerItem = 5
	techCap     = 20
	toolsScore  = 15

	maturityPassScore = 40
)

// Maturity reads infrastructure signals off the domain itself: the TLS
// certificate, mail records, and the technology stack visible in the page.
type Maturity struct {
	netProber NetProber
}

func NewMaturity(netProber NetProber) *Maturity {
	return &Maturity{netProber: netProber}
}

func (m *Maturity) Name() model.CheckName { return model.CheckMaturity }

// Run probes the domain's TLS and MX setup and fingerprints the fetched
// page. The network probes run even when the page fetch failed; only the
// technology detection needs a response. Passing takes 40 points and a
// valid certificate.
func (m *Maturity) Run(ctx context.Context, tgt target.Target, outcome *fetch.Outcome) model.CheckResult {
	res := model.ZeroCheckResult()
	if !tgt.Valid {
		res.Issues = append(res.Issues, noURLIssue)
		return res
	}

	var tlsInfo probe.TLSInfo
	hasMX := false
	if m.netProber != nil && tgt.Domain != "" {
		tlsInfo = m.netProber.TLS(ctx, tgt.Domain)
		hasMX = m.netProber.MX(ctx, tgt.Domain)
	}

	techs := []string{}
	if outcome != nil && outcome.Err == nil {
		techs = patterns.DetectTechnologies(outcome.Header, outcome.Body)
	} else {
		res.Issues = append(res.Issues, "Could not fetch page")
	}
	hasTools := patterns.HasBusinessTool(techs)

	res.Data["has_ssl"] = tlsInfo.HasSSL
	res.Data["ssl_issuer"] = nil
	res.Data["ssl_expiry_days"] = nil
	if tlsInfo.HasSSL {
		res.Data["ssl_issuer"] = tlsInfo.Issuer
		res.Data["ssl_expiry_days"] = tlsInfo.ExpiryDays
	}
	res.Data["has_mx_records"] = hasMX
	res.Data["tech_stack"] = techs
	res.Data["has_business_tools"] = hasTools

	score := 0
	if tlsInfo.HasSSL {
		score += sslScore
	} else {
		res.Issues = append(res.Issues, "No SSL certificate")
	}
	if hasMX {
		score += mxScore
	}
	if n := len(techs); n > 0 {
		bonus := n * techPerItem
		if bonus > techCap {
			bonus = techCap
		}
		score += bonus
	}
	if hasTools {
		score += toolsScore
	}

	res.Score = score
	res.Passed = score >= maturityPassScore && tlsInfo.HasSSL
	return res
}
