// Package taxonomy holds the compile-time funding-search dimension
// tables: categories, funder types, mechanisms, project scales,
// beneficiaries, recipient types, and the keyword sets each maps to.
// Every table here is static data — no network or file I/O — so that
// planning and query generation stay deterministic.
package taxonomy

// Category is one of the 14 enumerated funding-search categories.
type Category string

const (
	CategoryGovernmentGrants   Category = "government_grants"
	CategorySTEMResearch       Category = "stem_research"
	CategoryFoundationGrants   Category = "foundation_grants"
	CategoryLanguageEducation  Category = "language_education"
	CategoryMultilateralFunds  Category = "multilateral_funds"
	CategoryScholarships       Category = "scholarships"
	CategoryInfrastructure     Category = "infrastructure"
	CategoryBilateralAid       Category = "bilateral_aid"
	CategoryCorporateCSR       Category = "corporate_csr"
	CategoryVocationalTraining Category = "vocational_training"
	CategoryCommunityGrants    Category = "community_grants"
	CategoryEarlyChildhood     Category = "early_childhood"
	CategoryArtsCulture        Category = "arts_culture"
	CategoryResearchGrants     Category = "research_grants"
)

// GeoScopeKind enumerates the geographic-hierarchy levels a GeoScope can sit at.
type GeoScopeKind string

const (
	GeoCountry GeoScopeKind = "country"
	GeoRegion  GeoScopeKind = "region"
	GeoBloc    GeoScopeKind = "bloc"
)

// categoryKeywords is the closed mapping from category to its keyword set.
// Keys not present here contribute no keywords (an empty/unknown category
// is a caller bug, not a lookup failure).
var categoryKeywords = map[Category][]string{
	CategoryGovernmentGrants:   {"government grant", "public funding", "national grant scheme"},
	CategorySTEMResearch:       {"STEM research funding", "science grant", "technology research award"},
	CategoryFoundationGrants:   {"foundation grant", "philanthropic funding", "private foundation award"},
	CategoryLanguageEducation:  {"language education grant", "ESL funding", "language learning scholarship"},
	CategoryMultilateralFunds:  {"multilateral fund", "UN funding programme", "international development grant"},
	CategoryScholarships:       {"scholarship", "student grant", "tuition award"},
	CategoryInfrastructure:     {"infrastructure grant", "capital works funding", "public works financing"},
	CategoryBilateralAid:       {"bilateral aid", "development assistance", "country-to-country grant"},
	CategoryCorporateCSR:       {"corporate social responsibility grant", "CSR funding", "corporate giving programme"},
	CategoryVocationalTraining: {"vocational training grant", "skills funding", "apprenticeship award"},
	CategoryCommunityGrants:    {"community grant", "neighborhood funding", "grassroots award"},
	CategoryEarlyChildhood:     {"early childhood grant", "preschool funding", "childcare subsidy programme"},
	CategoryArtsCulture:        {"arts grant", "cultural funding", "creative sector award"},
	CategoryResearchGrants:     {"research grant", "academic funding call", "research fellowship"},
}

// Categories returns the full ordered set of categories. The planner does
// not use it; it takes each day's categories from its rotation table.
func Categories() []Category {
	out := make([]Category, 0, len(categoryKeywords))
	for _, c := range orderedCategories {
		out = append(out, c)
	}
	return out
}

// orderedCategories fixes iteration order so the planner is deterministic
// regardless of Go's randomized map iteration order.
var orderedCategories = []Category{
	CategoryGovernmentGrants, CategorySTEMResearch, CategoryFoundationGrants,
	CategoryLanguageEducation, CategoryMultilateralFunds, CategoryScholarships,
	CategoryInfrastructure, CategoryBilateralAid, CategoryCorporateCSR,
	CategoryVocationalTraining, CategoryCommunityGrants, CategoryEarlyChildhood,
	CategoryArtsCulture, CategoryResearchGrants,
}

// CategoryKeywords returns the static keyword set for a category, or nil
// if the category is unknown.
func CategoryKeywords(c Category) []string {
	return categoryKeywords[c]
}

var funderTypeKeywords = map[string][]string{
	"government":  {"ministry", "government agency", "public sector funder"},
	"foundation":  {"foundation", "charitable trust", "philanthropy"},
	"bank":        {"development bank", "multilateral bank", "financial institution"},
	"union":       {"trade union fund", "union grant programme"},
	"commission":  {"commission", "regulatory body funding"},
	"corporate":   {"corporation", "company foundation", "enterprise giving"},
	"multilateral": {"multilateral organization", "intergovernmental body"},
}

// FunderTypeKeywords returns the static keyword set for a funder type.
func FunderTypeKeywords(funderType string) []string {
	return funderTypeKeywords[funderType]
}

var mechanismKeywords = map[string][]string{
	"grant":              {"grant programme", "non-repayable funding"},
	"loan":                {"concessional loan", "development loan"},
	"call_for_proposals":  {"call for proposals", "open call", "RFA", "request for applications"},
	"tender":              {"tender", "procurement notice", "RFP"},
	"fellowship":          {"fellowship programme", "research fellowship award"},
	"award":               {"award", "prize funding"},
}

// MechanismKeywords returns the static keyword set for a funding mechanism.
func MechanismKeywords(mechanism string) []string {
	return mechanismKeywords[mechanism]
}

var projectScaleKeywords = map[string][]string{
	"small":  {"small grant", "micro-grant", "seed funding"},
	"medium": {"mid-size grant", "programme funding"},
	"large":  {"large-scale grant", "major funding initiative"},
}

// ProjectScaleKeywords returns the static keyword set for a project scale.
func ProjectScaleKeywords(scale string) []string {
	return projectScaleKeywords[scale]
}

var beneficiaryKeywords = map[string][]string{
	"children":       {"children", "youth", "minors"},
	"women":          {"women", "girls", "gender equity"},
	"refugees":       {"refugees", "displaced persons", "asylum seekers"},
	"disabled":       {"persons with disabilities", "accessibility"},
	"rural":          {"rural communities", "rural development"},
	"indigenous":     {"indigenous communities", "native peoples"},
	"elderly":        {"elderly", "senior citizens"},
	"unemployed":     {"unemployed", "job seekers"},
}

// BeneficiaryKeywords returns the static keyword set for a beneficiary group.
func BeneficiaryKeywords(beneficiary string) []string {
	return beneficiaryKeywords[beneficiary]
}

var recipientTypeKeywords = map[string][]string{
	"ngo":          {"NGO", "non-governmental organization", "nonprofit"},
	"university":   {"university", "higher education institution"},
	"municipality": {"municipality", "local government"},
	"sme":          {"small business", "SME", "startup"},
	"individual":   {"individual applicant", "independent researcher"},
}

// RecipientTypeKeywords returns the static keyword set for a recipient type.
func RecipientTypeKeywords(recipientType string) []string {
	return recipientTypeKeywords[recipientType]
}
