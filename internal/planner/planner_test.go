package planner

import (
	"testing"
	"time"
)

func TestPlanDailyBatchDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	dates := []time.Time{
		time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), // Monday
		time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC), // Tuesday
		time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC), // Wednesday
		time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC), // Sunday
	}

	for _, date := range dates {
		first := PlanDailyBatch(date, cfg)
		second := PlanDailyBatch(date, cfg)
		if len(first) != len(second) {
			t.Fatalf("%s: non-deterministic length: %d vs %d", date, len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("%s: non-deterministic entry at %d: %+v vs %+v", date, i, first[i], second[i])
			}
		}
	}
}

func TestPlanDailyBatchRespectsQueriesPerNight(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueriesPerNight = 5

	batch := PlanDailyBatch(time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), cfg)
	if len(batch) != 5 {
		t.Fatalf("expected batch truncated to 5, got %d", len(batch))
	}
}

func TestPlanDailyBatchEmptyInputsYieldEmptyBatch(t *testing.T) {
	cfg := Config{QueriesPerNight: 20}
	batch := PlanDailyBatch(time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), cfg)
	if batch != nil {
		t.Fatalf("expected nil batch for empty geo scopes, got %v", batch)
	}
}

func TestPlanDailyBatchMondayIsGovernmentSTEM(t *testing.T) {
	cfg := DefaultConfig()
	batch := PlanDailyBatch(time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), cfg)
	if len(batch) == 0 {
		t.Fatalf("expected non-empty Monday batch")
	}
	for _, req := range batch {
		if req.FunderType != "government" {
			t.Fatalf("Monday request has funder type %q, want government", req.FunderType)
		}
		if req.Category != "government_grants" && req.Category != "stem_research" {
			t.Fatalf("Monday request has unexpected category %q", req.Category)
		}
	}
}

func TestPlanDailyBatchBackendRoundRobin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backends = []string{"a", "b"}
	cfg.QueriesPerNight = 4
	batch := PlanDailyBatch(time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), cfg)
	if len(batch) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(batch))
	}
	for i, req := range batch {
		want := cfg.Backends[i%2]
		if req.SearchBackend != want {
			t.Fatalf("request %d backend = %q, want %q", i, req.SearchBackend, want)
		}
	}
}

func TestPlanDailyBatchNeverFails(t *testing.T) {
	// Zero-value config must not panic and must yield an empty batch.
	var cfg Config
	for i := 0; i < 7; i++ {
		date := time.Date(2026, 2, 16+i, 0, 0, 0, 0, time.UTC)
		if got := PlanDailyBatch(date, cfg); got != nil {
			t.Fatalf("zero-value config should yield nil batch, got %v", got)
		}
	}
}
