// Package config loads and validates the funding-source discovery
// pipeline's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/antigravity-dev/fundscout/internal/judge"
)

// Duration is a time.Duration that unmarshals from TOML strings like "60s" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the root of the discovery pipeline's configuration document.
type Config struct {
	General  General  `toml:"general"`
	Planner  Planner  `toml:"planner"`
	Backends Backends `toml:"backends"`
	Judge    Judge    `toml:"judge"`
	Registry Registry `toml:"registry"`
	Eventbus Eventbus `toml:"eventbus"`
	LLM      LLM      `toml:"llm"`
	Temporal Temporal `toml:"temporal"`
	Session  Session  `toml:"session"`
}

// General holds process-wide knobs: logging, the nightly tick cadence, and
// the single-instance lock file.
type General struct {
	LogLevel     string   `toml:"log_level"`
	TickInterval Duration `toml:"tick_interval"` // wall-clock interval between nightly-batch ticks
	LockFile     string   `toml:"lock_file"`
	WorkerID     string   `toml:"worker_id"` // identifies this process in processing-lock rows
}

// Planner mirrors planner.Config: the nightly query-batch shape.
type Planner struct {
	QueriesPerNight   int      `toml:"queries_per_night"`
	Backends          []string `toml:"backends"`
	QueriesPerRequest int      `toml:"queries_per_request"`
	FixedMechanism    string   `toml:"fixed_mechanism"`
	FixedProjectScale string   `toml:"fixed_project_scale"`
}

// Backends configures SearchFanout: one BackendConfig per named backend,
// plus the shared per-query timeout fallback used when a backend entry
// omits its own.
type Backends struct {
	PerQueryTimeout    Duration                `toml:"per_query_timeout"`
	OverallFanoutLimit int                     `toml:"overall_fanout_limit"` // bounds concurrent QueryRequests in flight across all backends at once
	Backend            map[string]BackendEntry `toml:"backend"`
}

// BackendEntry is one searchfanout.BackendConfig expressed in TOML.
type BackendEntry struct {
	Concurrency    int      `toml:"concurrency"`
	RequestsPerSec float64  `toml:"requests_per_sec"`
	Burst          int      `toml:"burst"`
	QueryTimeout   Duration `toml:"query_timeout"`
	MaxRetries     int      `toml:"max_retries"`
	RetryBackoff   Duration `toml:"retry_backoff"`
}

// Judge configures MetadataJudge: the confidence threshold a candidate
// must clear, the spam-TLD denylist, and the sub-judge weights.
type Judge struct {
	ConfidenceThreshold string   `toml:"confidence_threshold"` // decimal string, e.g. "0.60"
	SpamTLDs            []string `toml:"spam_tlds"`
	Weights             Weights  `toml:"weights"`
}

// Weights mirrors judge.Weights as decimal strings so the document stays
// human-editable; Resolve converts it.
type Weights struct {
	FundingKeyword string `toml:"funding_keyword"`
	Credibility    string `toml:"credibility"`
	Geography      string `toml:"geography"`
	OrgType        string `toml:"org_type"`
}

// Registry configures DomainRegistry: the durable SQLite store, the
// optional Redis read-through cache, and the cooldown/lock-ttl knobs.
type Registry struct {
	SQLitePath        string   `toml:"sqlite_path"`
	RedisAddr         string   `toml:"redis_addr"` // empty disables the cache
	RecentCooldown    Duration `toml:"recent_cooldown"`
	ProcessingLockTTL Duration `toml:"processing_lock_ttl"`
	PerTxTimeout      Duration `toml:"per_tx_timeout"`
	MaxRetries        int      `toml:"max_retries"`
	RetryBackoff      Duration `toml:"retry_backoff"`
}

// Eventbus configures the NATS publisher.
type Eventbus struct {
	URL            string `toml:"url"`
	CandidateTopic string `toml:"candidate_topic"`
	StatusTopic    string `toml:"status_topic"`
}

// LLM configures the Anthropic-backed QueryGenerator collaborator.
type LLM struct {
	Model     string   `toml:"model"`
	APIKeyEnv string   `toml:"api_key_env"`
	Timeout   Duration `toml:"timeout"`
}

// Temporal configures the workflow client and worker.
type Temporal struct {
	HostPort  string `toml:"host_port"`
	TaskQueue string `toml:"task_queue"`
}

// Session configures the per-session CandidatePipeline worker pool.
type Session struct {
	PipelineConcurrency int `toml:"pipeline_concurrency"` // worker-pool width within one DiscoverySessionWorkflow
}

func parseWeightField(field, s string) (decimal.Decimal, bool, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Decimal{}, false, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("%s: %w", field, err)
	}
	return d, true, nil
}

// Resolve converts the TOML-friendly Weights strings into judge.Weights,
// falling back to judge.DefaultWeights for any field left blank.
func (w Weights) Resolve() (judge.Weights, error) {
	resolved := judge.DefaultWeights()

	fk, ok, err := parseWeightField("funding_keyword", w.FundingKeyword)
	if err != nil {
		return judge.Weights{}, err
	}
	if ok {
		resolved.FundingKeyword = fk
	}
	cr, ok, err := parseWeightField("credibility", w.Credibility)
	if err != nil {
		return judge.Weights{}, err
	}
	if ok {
		resolved.Credibility = cr
	}
	geo, ok, err := parseWeightField("geography", w.Geography)
	if err != nil {
		return judge.Weights{}, err
	}
	if ok {
		resolved.Geography = geo
	}
	org, ok, err := parseWeightField("org_type", w.OrgType)
	if err != nil {
		return judge.Weights{}, err
	}
	if ok {
		resolved.OrgType = org
	}
	return resolved, nil
}

// Threshold parses Judge.ConfidenceThreshold, defaulting to the pipeline's
// documented 0.60 cutoff when unset.
func (j Judge) Threshold() (decimal.Decimal, error) {
	if strings.TrimSpace(j.ConfidenceThreshold) == "" {
		return decimal.NewFromFloat(0.60), nil
	}
	d, err := decimal.NewFromString(j.ConfidenceThreshold)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("confidence_threshold: %w", err)
	}
	return d, nil
}

// Load reads and validates a discovery-scheduler TOML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(&cfg)
	normalizePaths(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Reload reads and validates a configuration file. It mirrors Load but is
// named separately to reflect runtime refresh call sites.
func Reload(path string) (*Config, error) {
	return Load(path)
}

// LoadManager reads config from path and returns an RWMutex-backed
// thread-safe manager.
func LoadManager(path string) (ConfigManager, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path is required")
	}
	cfg, err := Reload(path)
	if err != nil {
		return nil, err
	}
	return NewRWMutexManager(cfg), nil
}

func applyDefaults(cfg *Config) {
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = "info"
	}
	if cfg.General.TickInterval.Duration == 0 {
		cfg.General.TickInterval.Duration = 24 * time.Hour
	}
	if cfg.General.LockFile == "" {
		cfg.General.LockFile = "/tmp/discovery-scheduler.lock"
	}
	if cfg.General.WorkerID == "" {
		cfg.General.WorkerID = "discovery-scheduler"
	}

	if cfg.Planner.QueriesPerNight == 0 {
		cfg.Planner.QueriesPerNight = 20
	}
	if len(cfg.Planner.Backends) == 0 {
		cfg.Planner.Backends = []string{"keyword_meta_search", "ai_prompted_research", "general_meta_search"}
	}
	if cfg.Planner.QueriesPerRequest == 0 {
		cfg.Planner.QueriesPerRequest = 3
	}

	if cfg.Backends.PerQueryTimeout.Duration == 0 {
		cfg.Backends.PerQueryTimeout.Duration = 10 * time.Second
	}
	if cfg.Backends.OverallFanoutLimit == 0 {
		cfg.Backends.OverallFanoutLimit = 8
	}
	for name, entry := range cfg.Backends.Backend {
		if entry.Concurrency == 0 {
			entry.Concurrency = 4
		}
		if entry.RequestsPerSec == 0 {
			entry.RequestsPerSec = 2
		}
		if entry.Burst == 0 {
			entry.Burst = 4
		}
		if entry.QueryTimeout.Duration == 0 {
			entry.QueryTimeout = cfg.Backends.PerQueryTimeout
		}
		if entry.MaxRetries == 0 {
			entry.MaxRetries = 3
		}
		if entry.RetryBackoff.Duration == 0 {
			entry.RetryBackoff.Duration = 500 * time.Millisecond
		}
		cfg.Backends.Backend[name] = entry
	}

	if len(cfg.Judge.SpamTLDs) == 0 {
		cfg.Judge.SpamTLDs = []string{".xyz", ".top", ".gq", ".cf", ".tk", ".ml", ".ga", ".loan", ".click"}
	}

	if cfg.Registry.SQLitePath == "" {
		cfg.Registry.SQLitePath = "discovery-registry.db"
	}
	if cfg.Registry.RecentCooldown.Duration == 0 {
		cfg.Registry.RecentCooldown.Duration = 24 * time.Hour
	}
	if cfg.Registry.ProcessingLockTTL.Duration == 0 {
		cfg.Registry.ProcessingLockTTL.Duration = time.Hour
	}
	if cfg.Registry.PerTxTimeout.Duration == 0 {
		cfg.Registry.PerTxTimeout.Duration = 5 * time.Second
	}
	if cfg.Registry.MaxRetries == 0 {
		cfg.Registry.MaxRetries = 3
	}
	if cfg.Registry.RetryBackoff.Duration == 0 {
		cfg.Registry.RetryBackoff.Duration = 250 * time.Millisecond
	}

	if cfg.Eventbus.CandidateTopic == "" {
		cfg.Eventbus.CandidateTopic = "candidate-created"
	}
	if cfg.Eventbus.StatusTopic == "" {
		cfg.Eventbus.StatusTopic = "domain-status-changes"
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "claude-haiku-4-5"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	if cfg.LLM.Timeout.Duration == 0 {
		cfg.LLM.Timeout.Duration = 10 * time.Second
	}

	if cfg.Temporal.HostPort == "" {
		cfg.Temporal.HostPort = "127.0.0.1:7233"
	}
	if cfg.Temporal.TaskQueue == "" {
		cfg.Temporal.TaskQueue = "discovery-task-queue"
	}

	if cfg.Session.PipelineConcurrency == 0 {
		cfg.Session.PipelineConcurrency = 8
	}
}

func normalizePaths(cfg *Config) {
	cfg.Registry.SQLitePath = ExpandHome(cfg.Registry.SQLitePath)
	cfg.General.LockFile = ExpandHome(cfg.General.LockFile)
}

func validate(cfg *Config) error {
	if cfg.General.TickInterval.Duration <= 0 {
		return fmt.Errorf("general.tick_interval must be positive")
	}
	if cfg.Planner.QueriesPerNight <= 0 {
		return fmt.Errorf("planner.queries_per_night must be positive")
	}
	if cfg.Planner.QueriesPerRequest <= 0 {
		return fmt.Errorf("planner.queries_per_request must be positive")
	}
	if len(cfg.Planner.Backends) == 0 {
		return fmt.Errorf("planner.backends must name at least one backend")
	}

	weights, err := cfg.Judge.Weights.Resolve()
	if err != nil {
		return fmt.Errorf("judge.weights: %w", err)
	}
	if err := judge.ValidateWeights(weights); err != nil {
		return fmt.Errorf("judge.weights: %w", err)
	}
	if _, err := cfg.Judge.Threshold(); err != nil {
		return fmt.Errorf("judge.confidence_threshold: %w", err)
	}

	if cfg.Registry.SQLitePath == "" {
		return fmt.Errorf("registry.sqlite_path is required")
	}
	dir := filepath.Dir(cfg.Registry.SQLitePath)
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return fmt.Errorf("registry.sqlite_path parent %q is not a directory", dir)
	}

	if cfg.Eventbus.URL == "" {
		return fmt.Errorf("eventbus.url is required")
	}

	if cfg.Temporal.HostPort == "" {
		return fmt.Errorf("temporal.host_port is required")
	}
	if cfg.Temporal.TaskQueue == "" {
		return fmt.Errorf("temporal.task_queue is required")
	}

	for name, entry := range cfg.Backends.Backend {
		if entry.Concurrency <= 0 {
			return fmt.Errorf("backends.backend.%s.concurrency must be positive", name)
		}
		if entry.RequestsPerSec <= 0 {
			return fmt.Errorf("backends.backend.%s.requests_per_sec must be positive", name)
		}
	}
	if cfg.Backends.OverallFanoutLimit <= 0 {
		return fmt.Errorf("backends.overall_fanout_limit must be positive")
	}

	if cfg.Session.PipelineConcurrency <= 0 {
		return fmt.Errorf("session.pipeline_concurrency must be positive")
	}

	return nil
}

// ExpandHome expands a leading "~" to the current user's home directory,
// matching the teacher's own path-normalization helper.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Clone returns a deep copy of cfg so callers (the manager, the workflow
// request builder) never share mutable slices or maps with the snapshot
// under the RWMutexManager's read lock.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Planner.Backends = append([]string(nil), c.Planner.Backends...)
	clone.Judge.SpamTLDs = append([]string(nil), c.Judge.SpamTLDs...)
	if c.Backends.Backend != nil {
		clone.Backends.Backend = make(map[string]BackendEntry, len(c.Backends.Backend))
		for k, v := range c.Backends.Backend {
			clone.Backends.Backend[k] = v
		}
	}
	return &clone
}
