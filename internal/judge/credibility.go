package judge

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// defaultSpamTLDs are hosts treated as categorically non-credible,
// gated out of the pipeline before scoring ever runs (pipeline stage 2
// per spec.md §4.6). A non-nil list passed to IsSpamTLD replaces this
// default rather than extending it.
var defaultSpamTLDs = []string{
	".xyz", ".top", ".gq", ".cf", ".tk", ".ml", ".ga", ".loan", ".click",
}

// highCredibilityTLDs get the top credibility tier: government,
// intergovernmental, and academic domains.
var highCredibilityTLDs = []string{".gov", ".edu", ".int", ".mil"}

// knownNGODomains is a small, hand-curated set of foundations and
// multilateral bodies whose domains are credible despite sitting on a
// generic TLD. Not exhaustive — it exists to lift well-known funders out
// of the "generic" tier, not to replace registry-backed reputation.
var knownNGODomains = []string{
	"gatesfoundation.org", "fordfoundation.org", "opensocietyfoundations.org",
	"wellcome.org", "rockefellerfoundation.org", "undp.org", "unesco.org",
	"worldbank.org", "unicef.org",
}

const (
	tierHigh    = "0.95"
	tierMedium  = "0.70"
	tierNeutral = "0.45"
	tierSpam    = "0.05"
)

// HostOf extracts the normalized (lower-cased, www-stripped) host from a
// result URL. Returns "" if the URL does not parse.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	return strings.TrimPrefix(host, "www.")
}

// IsSpamTLD reports whether host ends in one of tlds (defaultSpamTLDs if
// tlds is nil). This is the hard gate CandidatePipeline applies before a
// result ever reaches scoring — exposed separately from credibilityScore
// so that gate can short-circuit without computing the rest of the judge.
func IsSpamTLD(host string, tlds []string) bool {
	if tlds == nil {
		tlds = defaultSpamTLDs
	}
	for _, tld := range tlds {
		if strings.HasSuffix(host, tld) {
			return true
		}
	}
	return false
}

// credibilityScore tiers a host: government/academic domains score
// highest, known foundations and multilaterals score medium-high,
// generic TLDs score neutral, and spam TLDs (reachable here only if the
// caller bypassed the hard gate) score lowest.
func credibilityScore(host string) decimal.Decimal {
	if host == "" {
		return decimal.RequireFromString(tierNeutral)
	}
	if IsSpamTLD(host, nil) {
		return decimal.RequireFromString(tierSpam)
	}
	for _, tld := range highCredibilityTLDs {
		if strings.HasSuffix(host, tld) {
			return decimal.RequireFromString(tierHigh)
		}
	}
	if strings.Contains(host, ".gov.") || strings.HasPrefix(host, "gov.") {
		return decimal.RequireFromString(tierHigh)
	}
	for _, ngo := range knownNGODomains {
		if host == ngo || strings.HasSuffix(host, "."+ngo) {
			return decimal.RequireFromString(tierMedium)
		}
	}
	return decimal.RequireFromString(tierNeutral)
}
