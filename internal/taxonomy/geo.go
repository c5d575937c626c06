package taxonomy

import "github.com/antigravity-dev/fundscout/internal/model"

// geoHierarchy maps a country code to the region and bloc it belongs to,
// so the geographic-relevance judge can credit "region"/"bloc" mentions
// as membership hits even when a result never names the country itself.
type geoHierarchy struct {
	region string
	bloc   string
}

var countryHierarchy = map[string]geoHierarchy{
	"BG": {region: "balkans", bloc: "eu"},
	"RO": {region: "balkans", bloc: "eu"},
	"GR": {region: "balkans", bloc: "eu"},
	"DE": {region: "western_europe", bloc: "eu"},
	"FR": {region: "western_europe", bloc: "eu"},
	"PL": {region: "central_europe", bloc: "eu"},
	"US": {region: "north_america", bloc: "nafta"},
	"CA": {region: "north_america", bloc: "nafta"},
	"KE": {region: "east_africa", bloc: "au"},
	"NG": {region: "west_africa", bloc: "au"},
	"IN": {region: "south_asia", bloc: "saarc"},
	"BR": {region: "south_america", bloc: "mercosur"},
}

// RegionOf returns the region a country code belongs to, or "" if unknown.
func RegionOf(countryCode string) string {
	return countryHierarchy[countryCode].region
}

// BlocOf returns the bloc a country code belongs to, or "" if unknown.
func BlocOf(countryCode string) string {
	return countryHierarchy[countryCode].bloc
}

// DefaultGeoScopes is the fixed ordered list of geographic scopes the
// planner iterates over for each taxonomy day. It deliberately mixes
// country, region, and bloc granularity so every level of the hierarchy
// gets exercised across a week.
var DefaultGeoScopes = []model.GeoScope{
	{Kind: string(GeoCountry), Code: "BG", Label: "Bulgaria"},
	{Kind: string(GeoCountry), Code: "RO", Label: "Romania"},
	{Kind: string(GeoRegion), Code: "balkans", Label: "the Balkans"},
	{Kind: string(GeoBloc), Code: "eu", Label: "the European Union"},
	{Kind: string(GeoCountry), Code: "KE", Label: "Kenya"},
	{Kind: string(GeoBloc), Code: "au", Label: "the African Union"},
	{Kind: string(GeoCountry), Code: "US", Label: "the United States"},
}
