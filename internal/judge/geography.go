package judge

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/antigravity-dev/fundscout/internal/model"
	"github.com/antigravity-dev/fundscout/internal/taxonomy"
)

const (
	geoDirectHit     = "1.00"
	geoMembershipHit = "0.60"
	geoUnrelated     = "0.20"
)

// geographyScore credits a result for naming the QueryRequest's
// geographic scope directly (the country, region, or bloc label itself)
// more than for naming a broader scope the target merely belongs to —
// a country-level query matched only by its region's name still counts,
// but less than a direct hit.
func geographyScore(result model.SearchResult, req model.QueryRequest) decimal.Decimal {
	text := strings.ToLower(result.Title + " " + result.Description)
	scope := req.GeographicScope

	if scope.Label != "" && strings.Contains(text, strings.ToLower(scope.Label)) {
		return decimal.RequireFromString(geoDirectHit)
	}
	if scope.Code != "" && strings.Contains(text, strings.ToLower(scope.Code)) {
		return decimal.RequireFromString(geoDirectHit)
	}

	if scope.Kind == string(taxonomy.GeoCountry) {
		region := taxonomy.RegionOf(scope.Code)
		bloc := taxonomy.BlocOf(scope.Code)
		if region != "" && strings.Contains(text, strings.ReplaceAll(region, "_", " ")) {
			return decimal.RequireFromString(geoMembershipHit)
		}
		if bloc != "" && strings.Contains(text, bloc) {
			return decimal.RequireFromString(geoMembershipHit)
		}
	}

	return decimal.RequireFromString(geoUnrelated)
}
