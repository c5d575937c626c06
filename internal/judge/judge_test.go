package judge

import (
	"testing"

	"github.com/antigravity-dev/fundscout/internal/model"
)

func testRequest() model.QueryRequest {
	return model.QueryRequest{
		Category:        "government_grants",
		GeographicScope: model.GeoScope{Kind: "country", Code: "BG", Label: "Bulgaria"},
		SearchBackend:   "keyword_meta_search",
		FunderType:      "government",
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	result := model.SearchResult{
		URL:         "https://ministry.gov.bg/grants",
		Title:       "Bulgaria Ministry Grant Programme",
		Description: "National government grant funding for rural development in Bulgaria.",
	}
	req := testRequest()
	weights := DefaultWeights()

	first := Score(result, req, weights)
	second := Score(result, req, weights)

	if !first.Composite.Equal(second.Composite) {
		t.Fatalf("expected deterministic composite, got %s vs %s", first.Composite, second.Composite)
	}
}

func TestScoreHighCredibilityDirectGeoMatch(t *testing.T) {
	result := model.SearchResult{
		URL:         "https://ministry.gov.bg/grants",
		Title:       "Bulgaria Ministry Grant Programme",
		Description: "A national government grant scheme for Bulgaria.",
	}
	got := Score(result, testRequest(), DefaultWeights())

	if !got.Credibility.Equal(credibilityScore("ministry.gov.bg")) {
		t.Fatalf("expected .gov.bg host to score high credibility, got %s", got.Credibility)
	}
	if got.Geography.StringFixed(2) != geoDirectHit {
		t.Fatalf("expected direct geo hit, got %s", got.Geography)
	}
}

func TestScoreRegionMembershipHitScoresLowerThanDirect(t *testing.T) {
	direct := model.SearchResult{Title: "Grant for Bulgaria", Description: "funding programme"}
	membership := model.SearchResult{Title: "Grant for the Balkans region", Description: "funding programme"}
	req := testRequest()

	directScore := Score(direct, req, DefaultWeights())
	membershipScore := Score(membership, req, DefaultWeights())

	if !directScore.Geography.GreaterThan(membershipScore.Geography) {
		t.Fatalf("expected direct hit %s to outscore membership hit %s", directScore.Geography, membershipScore.Geography)
	}
}

func TestScoreUnrelatedGeographyScoresLowest(t *testing.T) {
	result := model.SearchResult{Title: "Grant for Brazil", Description: "funding programme"}
	req := testRequest()

	got := Score(result, req, DefaultWeights())
	if got.Geography.StringFixed(2) != geoUnrelated {
		t.Fatalf("expected unrelated geography score, got %s", got.Geography)
	}
}

func TestIsSpamTLDGatesKnownSpamSuffixes(t *testing.T) {
	cases := map[string]bool{
		"freemoney.xyz":        true,
		"quickgrants.top":      true,
		"ministry.gov.bg":      false,
		"gatesfoundation.org":  false,
	}
	for host, want := range cases {
		if got := IsSpamTLD(host, nil); got != want {
			t.Fatalf("IsSpamTLD(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestIsSpamTLDRespectsCustomList(t *testing.T) {
	custom := []string{".example-spam"}
	if !IsSpamTLD("bad.example-spam", custom) {
		t.Fatalf("expected custom spam TLD list to match")
	}
	if IsSpamTLD("freemoney.xyz", custom) {
		t.Fatalf("expected default spam TLD to not match when a custom list overrides it")
	}
}

func TestOrgTypeScoreRewardsMatchingFunderType(t *testing.T) {
	result := model.SearchResult{Title: "Ministry Grant", Description: "A government agency funding programme."}
	req := testRequest()

	got := orgTypeScore(result, req)
	if got.StringFixed(2) != orgTypeMatched {
		t.Fatalf("expected matched funder type score, got %s", got)
	}
}

func TestOrgTypeScoreUnscopedWhenRequestHasNoFunderType(t *testing.T) {
	result := model.SearchResult{Title: "Grant programme", Description: "funding opportunity"}
	req := testRequest()
	req.FunderType = ""

	got := orgTypeScore(result, req)
	if got.StringFixed(2) != orgTypeUnscoped {
		t.Fatalf("expected unscoped score for empty FunderType, got %s", got)
	}
}

func TestOrgTypeScoreMismatchWhenOtherFunderTypeDetected(t *testing.T) {
	result := model.SearchResult{Title: "Foundation Grant", Description: "A charitable trust funding programme."}
	req := testRequest()

	got := orgTypeScore(result, req)
	if got.StringFixed(2) != orgTypeMismatch {
		t.Fatalf("expected mismatch score when a different funder type's vocabulary is detected, got %s", got)
	}
}

func TestValidateWeightsRejectsNonUnitSum(t *testing.T) {
	bad := DefaultWeights()
	bad.FundingKeyword = bad.FundingKeyword.Add(bad.FundingKeyword)
	if err := ValidateWeights(bad); err == nil {
		t.Fatalf("expected error for weights not summing to 1.00")
	}
}

func TestValidateWeightsAcceptsDefault(t *testing.T) {
	if err := ValidateWeights(DefaultWeights()); err != nil {
		t.Fatalf("expected default weights to validate, got %v", err)
	}
}

func TestHostOfNormalizesWWWAndCase(t *testing.T) {
	got := HostOf("https://WWW.Example.ORG/path")
	if got != "example.org" {
		t.Fatalf("expected normalized host, got %q", got)
	}
}
