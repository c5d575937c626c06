// Package planner implements TaxonomyBatchPlanner: translating a
// wall-clock date into a bounded, deterministic list of QueryRequests
// for the night, per the fixed weekly rotation in rotation.go.
//
// Grounded on internal/scheduler/cadence.go's weekday arithmetic and
// ranked-candidate style (NextCeremonyAt), adapted from "pick the next
// ceremony" to "enumerate every combination for today".
package planner

import (
	"time"

	"github.com/antigravity-dev/fundscout/internal/model"
	"github.com/antigravity-dev/fundscout/internal/taxonomy"
)

// Config is the compile-time-ish configuration of the planner: the
// backend rotation, the geographic scopes it iterates, and the nightly
// query-count cap. PlanDailyBatch falls back to 20 queries per night, 3
// queries per request, and the keyword_meta_search backend when those
// fields are unset; an empty GeoScopes yields an empty batch.
type Config struct {
	QueriesPerNight int               // default 20
	Backends        []string          // round-robined across the batch
	GeoScopes       []model.GeoScope  // default taxonomy.DefaultGeoScopes
	QueriesPerRequest int             // default 3, becomes QueryRequest.NumberOfQueries

	// FixedMechanism and FixedProjectScale optionally pin every request
	// in the batch to one mechanism/scale instead of varying them.
	FixedMechanism    string
	FixedProjectScale string
}

// DefaultConfig returns the planner's documented defaults.
func DefaultConfig() Config {
	return Config{
		QueriesPerNight:   20,
		Backends:          []string{"keyword_meta_search", "ai_prompted_research", "general_meta_search"},
		GeoScopes:         taxonomy.DefaultGeoScopes,
		QueriesPerRequest: 3,
	}
}

// PlanDailyBatch derives the day's rotation entry from date's weekday and
// returns the (possibly truncated) ordered list of QueryRequests for
// that night. It is pure and deterministic: the same (date, cfg) always
// produces the same sequence, and empty input sets yield an empty batch
// rather than an error (spec.md §4.1 "never fails").
func PlanDailyBatch(date time.Time, cfg Config) []model.QueryRequest {
	day, ok := rotationFor(date.Weekday())
	if !ok || len(day.funderTypes) == 0 || len(day.categories) == 0 || len(cfg.GeoScopes) == 0 {
		return nil
	}

	queriesPerNight := cfg.QueriesPerNight
	if queriesPerNight <= 0 {
		queriesPerNight = 20
	}
	numberOfQueries := cfg.QueriesPerRequest
	if numberOfQueries <= 0 {
		numberOfQueries = 3
	}
	backends := cfg.Backends
	if len(backends) == 0 {
		backends = []string{"keyword_meta_search"}
	}

	var batch []model.QueryRequest
	backendIdx := 0

	for _, funderType := range day.funderTypes {
		for _, category := range day.categories {
			for _, geo := range cfg.GeoScopes {
				if len(batch) >= queriesPerNight {
					return batch
				}
				batch = append(batch, model.QueryRequest{
					Category:        string(category),
					GeographicScope: geo,
					SearchBackend:   backends[backendIdx%len(backends)],
					NumberOfQueries: numberOfQueries,
					FunderType:      funderType,
					Mechanism:       cfg.FixedMechanism,
					ProjectScale:    cfg.FixedProjectScale,
				})
				backendIdx++
			}
		}
	}

	return batch
}
