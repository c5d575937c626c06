package judge

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/antigravity-dev/fundscout/internal/model"
	"github.com/antigravity-dev/fundscout/internal/taxonomy"
)

const (
	orgTypeMatched  = "1.00"
	orgTypeUnscoped = "0.50"
	orgTypeMismatch = "0.20"
)

// orgTypeScore credits a result whose text carries the funder-type
// vocabulary the QueryRequest asked for (e.g. a "government" request
// matched by "ministry"). Requests with no FunderType are not penalized —
// an unscoped query has nothing to mismatch against. A result carrying a
// different funder type's vocabulary but not the requested one still
// scores as a mismatch rather than neutral, since it actively suggests
// the wrong kind of funder.
func orgTypeScore(result model.SearchResult, req model.QueryRequest) decimal.Decimal {
	if req.FunderType == "" {
		return decimal.RequireFromString(orgTypeUnscoped)
	}

	text := strings.ToLower(result.Title + " " + result.Description)
	wanted := taxonomy.FunderTypeKeywords(req.FunderType)
	for _, kw := range wanted {
		if strings.Contains(text, strings.ToLower(kw)) {
			return decimal.RequireFromString(orgTypeMatched)
		}
	}

	for _, other := range allFunderTypes() {
		if other == req.FunderType {
			continue
		}
		for _, kw := range taxonomy.FunderTypeKeywords(other) {
			if strings.Contains(text, strings.ToLower(kw)) {
				return decimal.RequireFromString(orgTypeMismatch)
			}
		}
	}

	return decimal.RequireFromString(orgTypeUnscoped)
}

// allFunderTypes is the closed list of funder-type keys taxonomy defines
// keyword tables for, duplicated here since taxonomy does not export a
// ranged accessor over funderTypeKeywords.
func allFunderTypes() []string {
	return []string{"government", "foundation", "bank", "union", "commission", "corporate", "multilateral"}
}
