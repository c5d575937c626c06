package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "discovery-scheduler.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validConfig = `
[general]
log_level = "info"
tick_interval = "24h"
worker_id = "discovery-scheduler"

[planner]
queries_per_night = 20
backends = ["keyword_meta_search", "ai_prompted_research", "general_meta_search"]
queries_per_request = 3

[backends]
per_query_timeout = "10s"

[backends.backend.keyword_meta_search]
concurrency = 4
requests_per_sec = 2
burst = 4

[judge]
confidence_threshold = "0.60"
spam_tlds = [".xyz", ".top"]

[registry]
sqlite_path = "/tmp/discovery-test.db"
recent_cooldown = "24h"
processing_lock_ttl = "1h"

[eventbus]
url = "nats://127.0.0.1:4222"

[llm]
model = "claude-haiku-4-5"
api_key_env = "ANTHROPIC_API_KEY"

[temporal]
host_port = "127.0.0.1:7233"
task_queue = "discovery-task-queue"
`

func TestLoadValidConfig(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.General.TickInterval.Duration != 24*time.Hour {
		t.Errorf("TickInterval = %v, want 24h", cfg.General.TickInterval)
	}
	if cfg.Planner.QueriesPerNight != 20 {
		t.Errorf("QueriesPerNight = %d, want 20", cfg.Planner.QueriesPerNight)
	}
	if cfg.Registry.SQLitePath != "/tmp/discovery-test.db" {
		t.Errorf("SQLitePath = %q, want /tmp/discovery-test.db", cfg.Registry.SQLitePath)
	}
	if cfg.Temporal.TaskQueue != "discovery-task-queue" {
		t.Errorf("TaskQueue = %q, want discovery-task-queue", cfg.Temporal.TaskQueue)
	}
	entry := cfg.Backends.Backend["keyword_meta_search"]
	if entry.Concurrency != 4 {
		t.Errorf("backend concurrency = %d, want 4", entry.Concurrency)
	}
	if entry.QueryTimeout.Duration != 10*time.Second {
		t.Errorf("backend query timeout should default from backends.per_query_timeout, got %v", entry.QueryTimeout)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg := `
[eventbus]
url = "nats://127.0.0.1:4222"
`
	path := writeTestConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Planner.QueriesPerNight != 20 {
		t.Errorf("expected default queries_per_night 20, got %d", loaded.Planner.QueriesPerNight)
	}
	if len(loaded.Planner.Backends) != 3 {
		t.Errorf("expected 3 default backends, got %d", len(loaded.Planner.Backends))
	}
	if loaded.Registry.RecentCooldown.Duration != 24*time.Hour {
		t.Errorf("expected default recent_cooldown 24h, got %v", loaded.Registry.RecentCooldown)
	}
	if loaded.Temporal.TaskQueue != "discovery-task-queue" {
		t.Errorf("expected default task queue, got %q", loaded.Temporal.TaskQueue)
	}
	if loaded.Backends.OverallFanoutLimit != 8 {
		t.Errorf("expected default overall_fanout_limit 8, got %d", loaded.Backends.OverallFanoutLimit)
	}
	if loaded.Session.PipelineConcurrency != 8 {
		t.Errorf("expected default pipeline_concurrency 8, got %d", loaded.Session.PipelineConcurrency)
	}
	weights, err := loaded.Judge.Weights.Resolve()
	if err != nil {
		t.Fatalf("resolve weights: %v", err)
	}
	if !weights.FundingKeyword.Equal(weights.Credibility) {
		t.Errorf("expected equal default weights, got %+v", weights)
	}
}

func TestLoadMissingEventbusURL(t *testing.T) {
	cfg := `
[general]
log_level = "info"
`
	path := writeTestConfig(t, cfg)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing eventbus.url")
	}
	if !strings.Contains(err.Error(), "eventbus.url") {
		t.Errorf("expected eventbus.url validation error, got: %v", err)
	}
}

func TestLoadInvalidWeightsSum(t *testing.T) {
	cfg := validConfig + `

[judge.weights]
funding_keyword = "0.70"
credibility = "0.70"
geography = "0.10"
org_type = "0.10"
`
	path := writeTestConfig(t, cfg)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for weights not summing to 1.00")
	}
}

func TestLoadCustomWeights(t *testing.T) {
	cfg := validConfig + `

[judge.weights]
funding_keyword = "0.40"
credibility = "0.30"
geography = "0.20"
org_type = "0.10"
`
	path := writeTestConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("expected valid custom weights to load: %v", err)
	}
	weights, err := loaded.Judge.Weights.Resolve()
	if err != nil {
		t.Fatalf("resolve weights: %v", err)
	}
	if weights.FundingKeyword.String() != "0.4" {
		t.Errorf("expected funding_keyword 0.4, got %s", weights.FundingKeyword.String())
	}
}

func TestLoadRejectsNegativeBackendRequestsPerSec(t *testing.T) {
	cfg := `
[eventbus]
url = "nats://127.0.0.1:4222"

[backends.backend.broken]
requests_per_sec = -1
`
	path := writeTestConfig(t, cfg)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for negative requests_per_sec")
	}
}

// applyDefaults only fills in a knob when it's the exact zero value, so a
// negative override is the only way to reach validate's rejection path
// through Load without it getting silently defaulted back to positive.
func TestLoadRejectsNegativeOverallFanoutLimit(t *testing.T) {
	cfg := `
[eventbus]
url = "nats://127.0.0.1:4222"

[backends]
per_query_timeout = "10s"
overall_fanout_limit = -1
`
	path := writeTestConfig(t, cfg)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for negative overall_fanout_limit")
	}
	if !strings.Contains(err.Error(), "overall_fanout_limit") {
		t.Errorf("expected overall_fanout_limit validation error, got: %v", err)
	}
}

func TestLoadRejectsNegativePipelineConcurrency(t *testing.T) {
	cfg := validConfig + `

[session]
pipeline_concurrency = -1
`
	path := writeTestConfig(t, cfg)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for negative pipeline_concurrency")
	}
	if !strings.Contains(err.Error(), "pipeline_concurrency") {
		t.Errorf("expected pipeline_concurrency validation error, got: %v", err)
	}
}

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"60s", 60 * time.Second},
		{"2m", 2 * time.Minute},
		{"1h", time.Hour},
		{"500ms", 500 * time.Millisecond},
	}
	for _, tt := range tests {
		var d Duration
		if err := d.UnmarshalText([]byte(tt.input)); err != nil {
			t.Errorf("UnmarshalText(%q) error: %v", tt.input, err)
			continue
		}
		if d.Duration != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.input, d.Duration, tt.want)
		}
	}
}

func TestDurationUnmarshalInvalid(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("not-a-duration")); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestConfigCloneIsIndependent(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	clone := cfg.Clone()
	clone.Planner.Backends[0] = "mutated"
	clone.Judge.SpamTLDs[0] = "mutated"
	if cfg.Planner.Backends[0] == "mutated" {
		t.Fatal("mutating clone's Backends slice affected the original")
	}
	if cfg.Judge.SpamTLDs[0] == "mutated" {
		t.Fatal("mutating clone's SpamTLDs slice affected the original")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	if got := ExpandHome("~/data.db"); got != filepath.Join(home, "data.db") {
		t.Errorf("ExpandHome(~/data.db) = %q, want %q", got, filepath.Join(home, "data.db"))
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome should leave absolute paths untouched, got %q", got)
	}
}
