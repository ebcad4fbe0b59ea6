package summarize

import (
	"net/url"
	"strings"
)

// Source types returned by DetectSourceType.
const (
	SourceSEBI  = "sebi"
	SourceNISM  = "nism"
	SourceNSE   = "nse"
	SourceBSE   = "bse"
	SourceRBI   = "rbi"
	SourceOther = "other"
)

const maxKeyTerms = 10

var sourceDomains = []struct {
	kind    string
	domains []string
}{
	{SourceSEBI, []string{"sebi.gov.in", "sebionline.com"}},
	{SourceNISM, []string{"nism.ac.in"}},
	{SourceNSE, []string{"nseindia.com"}},
	{SourceBSE, []string{"bseindia.com"}},
	{SourceRBI, []string{"rbi.org.in"}},
}

var financialTerms = []string{
	"IPO", "mutual fund", "SIP", "NAV", "expense ratio", "portfolio",
	"diversification", "risk assessment", "market capitalization", "P/E ratio",
	"dividend yield", "systematic risk", "unsystematic risk", "asset allocation",
	"rebalancing", "volatility", "beta", "alpha", "sharpe ratio", "drawdown",
	"liquidity", "derivatives", "futures", "options", "commodity", "equity",
	"debt", "credit rating", "yield", "maturity", "duration", "inflation",
	"regulatory compliance", "KYC", "AML", "insider trading", "market manipulation",
}

// DetectSourceType classifies a document URL by its publisher's domain.
func DetectSourceType(rawURL string) string {
	if rawURL == "" {
		return SourceOther
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return SourceOther
	}
	host := strings.ToLower(u.Hostname())
	for _, sd := range sourceDomains {
		for _, d := range sd.domains {
			if strings.Contains(host, d) {
				return sd.kind
			}
		}
	}
	return SourceOther
}

// KeyTerms lists up to ten glossary terms that occur in text, in glossary
// order.
func KeyTerms(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, t := range financialTerms {
		if strings.Contains(lower, strings.ToLower(t)) {
			out = append(out, t)
			if len(out) == maxKeyTerms {
				break
			}
		}
	}
	return out
}
