package judge

import (
	"github.com/shopspring/decimal"

	"github.com/antigravity-dev/fundscout/internal/model"
)

// SubScores is the breakdown behind one composite score, kept around for
// logging and operator debugging the same way DoDResult keeps per-check
// detail alongside its Passed verdict.
type SubScores struct {
	FundingKeyword decimal.Decimal
	Credibility    decimal.Decimal
	Geography      decimal.Decimal
	OrgType        decimal.Decimal
	Composite      decimal.Decimal
}

// Score runs the four sub-judges over a SearchResult against the
// QueryRequest that produced it and returns the weighted composite,
// rounded half-up to scale 2. Callers on the spam-TLD hard-gate path
// (CandidatePipeline stage 2) should never reach Score at all — IsSpamTLD
// is exposed separately for that.
func Score(result model.SearchResult, req model.QueryRequest, weights Weights) SubScores {
	host := HostOf(result.URL)

	sub := SubScores{
		FundingKeyword: fundingKeywordScore(result.Title, result.Description),
		Credibility:    credibilityScore(host),
		Geography:      geographyScore(result, req),
		OrgType:        orgTypeScore(result, req),
	}

	weighted := sub.FundingKeyword.Mul(weights.FundingKeyword).
		Add(sub.Credibility.Mul(weights.Credibility)).
		Add(sub.Geography.Mul(weights.Geography)).
		Add(sub.OrgType.Mul(weights.OrgType))

	sub.Composite = weighted.Round(2)
	return sub
}
