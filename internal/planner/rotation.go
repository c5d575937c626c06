package planner

import (
	"time"

	"github.com/antigravity-dev/fundscout/internal/taxonomy"
)

// dayPlan is one entry of the fixed weekly rotation: which funder types
// and categories are in scope for a given weekday. This is compile-time
// configuration of the planner, per spec.md §4.1 — it never changes at
// runtime and carries no I/O.
type dayPlan struct {
	weekday     time.Weekday
	funderTypes []string
	categories  []taxonomy.Category
}

// WeeklyRotation is the fixed Monday-through-Sunday schedule.
var WeeklyRotation = []dayPlan{
	{
		weekday:     time.Monday,
		funderTypes: []string{"government"},
		categories:  []taxonomy.Category{taxonomy.CategoryGovernmentGrants, taxonomy.CategorySTEMResearch},
	},
	{
		weekday:     time.Tuesday,
		funderTypes: []string{"foundation"},
		categories:  []taxonomy.Category{taxonomy.CategoryFoundationGrants, taxonomy.CategoryLanguageEducation},
	},
	{
		weekday:     time.Wednesday,
		funderTypes: []string{"multilateral"},
		categories:  []taxonomy.Category{taxonomy.CategoryMultilateralFunds, taxonomy.CategoryScholarships},
	},
	{
		weekday:     time.Thursday,
		funderTypes: []string{"government", "multilateral"},
		categories:  []taxonomy.Category{taxonomy.CategoryInfrastructure, taxonomy.CategoryBilateralAid},
	},
	{
		weekday:     time.Friday,
		funderTypes: []string{"corporate"},
		categories:  []taxonomy.Category{taxonomy.CategoryCorporateCSR, taxonomy.CategoryVocationalTraining},
	},
	{
		weekday:     time.Saturday,
		funderTypes: []string{"foundation", "government"},
		categories:  []taxonomy.Category{taxonomy.CategoryCommunityGrants, taxonomy.CategoryEarlyChildhood},
	},
	{
		weekday:     time.Sunday,
		funderTypes: []string{"foundation"},
		categories:  []taxonomy.Category{taxonomy.CategoryArtsCulture, taxonomy.CategoryResearchGrants},
	},
}

// rotationFor returns the day plan for weekday, or the zero value if
// WeeklyRotation is somehow missing an entry (never true for the
// compiled-in table above, but planDailyBatch treats it as "no work").
func rotationFor(weekday time.Weekday) (dayPlan, bool) {
	for _, d := range WeeklyRotation {
		if d.weekday == weekday {
			return d, true
		}
	}
	return dayPlan{}, false
}
