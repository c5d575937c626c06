package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"golang.org/x/sync/errgroup"

	"github.com/antigravity-dev/fundscout/internal/config"
	"github.com/antigravity-dev/fundscout/internal/eventbus"
	"github.com/antigravity-dev/fundscout/internal/health"
	"github.com/antigravity-dev/fundscout/internal/judge"
	"github.com/antigravity-dev/fundscout/internal/llmclient"
	"github.com/antigravity-dev/fundscout/internal/planner"
	"github.com/antigravity-dev/fundscout/internal/querygen"
	"github.com/antigravity-dev/fundscout/internal/registry"
	"github.com/antigravity-dev/fundscout/internal/searchfanout"
	"github.com/antigravity-dev/fundscout/internal/session"
	"github.com/antigravity-dev/fundscout/internal/taxonomy"
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func configureLogger(logLevel string, useDev bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if useDev {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func backendEndpoint(name string) string {
	return os.Getenv("FUNDSCOUT_" + strings.ToUpper(name) + "_ENDPOINT")
}

func backendAPIKey(name string) string {
	return os.Getenv("FUNDSCOUT_" + strings.ToUpper(name) + "_API_KEY")
}

func buildBackends(cfg *config.Config) map[string]searchfanout.Backend {
	client := &http.Client{Timeout: 15 * time.Second}
	backends := make(map[string]searchfanout.Backend, len(cfg.Planner.Backends))
	for _, name := range cfg.Planner.Backends {
		endpoint := backendEndpoint(name)
		apiKey := backendAPIKey(name)
		switch name {
		case "keyword_meta_search":
			backends[name] = searchfanout.NewKeywordMetaSearchBackend(client, endpoint, apiKey, 20)
		case "ai_prompted_research":
			backends[name] = searchfanout.NewAIPromptedResearchBackend(client, endpoint, apiKey, 20)
		case "general_meta_search":
			backends[name] = searchfanout.NewGeneralMetaSearchBackend(client, endpoint, apiKey, 20)
		}
	}
	return backends
}

func buildBackendConfigs(cfg *config.Config) map[string]searchfanout.BackendConfig {
	cfgs := make(map[string]searchfanout.BackendConfig, len(cfg.Backends.Backend))
	for name, entry := range cfg.Backends.Backend {
		cfgs[name] = searchfanout.BackendConfig{
			Concurrency:    entry.Concurrency,
			RequestsPerSec: entry.RequestsPerSec,
			Burst:          entry.Burst,
			QueryTimeout:   entry.QueryTimeout.Duration,
			Retry: searchfanout.RetryPolicy{
				MaxRetries:   entry.MaxRetries,
				InitialDelay: entry.RetryBackoff.Duration,
				MaxDelay:     10 * entry.RetryBackoff.Duration,
			},
		}
	}
	return cfgs
}

// runNightlyBatch plans the night's queries, expands and fans each one out
// across the configured backends, and starts one DiscoverySessionWorkflow
// per batch with the collected, scored-ready results.
func runNightlyBatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, gen *querygen.Generator, fanout *searchfanout.Fanout, tc client.Client, dryRun bool) error {
	plannerCfg := planner.Config{
		QueriesPerNight:   cfg.Planner.QueriesPerNight,
		Backends:          cfg.Planner.Backends,
		GeoScopes:         taxonomy.DefaultGeoScopes,
		QueriesPerRequest: cfg.Planner.QueriesPerRequest,
		FixedMechanism:    cfg.Planner.FixedMechanism,
		FixedProjectScale: cfg.Planner.FixedProjectScale,
	}
	batch := planner.PlanDailyBatch(time.Now().UTC(), plannerCfg)
	logger.Info("planned nightly batch", "requests", len(batch))

	// The overall fan-out limit bounds how many of the night's QueryRequests
	// are in flight across *all* backends at once; each Fanout.Run call below
	// applies its own per-backend limit on top of that. A per-request error
	// is logged and swallowed rather than propagated, so one bad backend
	// doesn't abort the rest of the batch.
	var resultsMu sync.Mutex
	var results []session.ScoredResult
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInt(1, cfg.Backends.OverallFanoutLimit))

	for _, req := range batch {
		req := req
		g.Go(func() error {
			queries := gen.Generate(gctx, req)
			outcomes, err := fanout.Run(gctx, req.SearchBackend, queries)
			if err != nil {
				logger.Warn("backend fanout failed", "backend", req.SearchBackend, "error", err)
				return nil
			}
			var scored []session.ScoredResult
			for _, outcome := range outcomes {
				if outcome.Err != nil {
					logger.Debug("query failed", "query", outcome.Query, "error", outcome.Err)
					continue
				}
				for _, result := range outcome.Results {
					scored = append(scored, session.ScoredResult{Result: result, Request: req})
				}
			}
			resultsMu.Lock()
			results = append(results, scored...)
			resultsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("nightly fanout batch ended early", "error", err)
	}
	logger.Info("fanout complete", "raw_results", len(results))

	if dryRun {
		logger.Info("dry run: skipping workflow execution")
		return nil
	}
	if len(results) == 0 {
		logger.Info("no results to process tonight")
		return nil
	}

	threshold, err := cfg.Judge.Threshold()
	if err != nil {
		return fmt.Errorf("judge threshold: %w", err)
	}
	weights, err := cfg.Judge.Weights.Resolve()
	if err != nil {
		return fmt.Errorf("judge weights: %w", err)
	}

	req := session.SessionRequest{
		SessionID:            fmt.Sprintf("session-%s", time.Now().UTC().Format("20060102-150405")),
		TargetDayOfWeek:      time.Now().UTC().Weekday().String(),
		Results:              results,
		ConfidenceThreshold:  threshold,
		SpamTLDs:             cfg.Judge.SpamTLDs,
		Weights:              weights,
		WorkerID:             cfg.General.WorkerID,
		ProcessingLockTTLSec: int64(cfg.Registry.ProcessingLockTTL.Duration.Seconds()),
		PipelineConcurrency:  cfg.Session.PipelineConcurrency,
	}

	run, err := tc.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        req.SessionID,
		TaskQueue: cfg.Temporal.TaskQueue,
	}, session.DiscoverySessionWorkflow, req)
	if err != nil {
		return fmt.Errorf("start discovery session workflow: %w", err)
	}
	logger.Info("discovery session workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}

func main() {
	configPath := flag.String("config", "discovery-scheduler.toml", "path to config file")
	once := flag.Bool("once", false, "run a single nightly batch then exit")
	dev := flag.Bool("dev", false, "use text log format (default is JSON)")
	dryRun := flag.Bool("dry-run", false, "plan and fan out queries without starting a workflow")
	blacklistDomain := flag.String("blacklist", "", "blacklist a domain and exit")
	blacklistReason := flag.String("reason", "", "reason recorded with -blacklist or -mark-no-funds")
	markNoFunds := flag.String("mark-no-funds", "", "mark a domain as having no funds this cycle and exit")
	revisitAfter := flag.String("revisit-after", "", "RFC3339 timestamp after which -mark-no-funds should be revisited")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("discovery-scheduler starting", "config", *configPath)

	cfgManager, err := config.LoadManager(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()
	logger = configureLogger(cfg.General.LogLevel, *dev)
	slog.SetDefault(logger)

	lockFile, err := health.AcquireFlock(cfg.General.LockFile)
	if err != nil {
		logger.Error("failed to acquire lock", "error", err)
		os.Exit(1)
	}
	defer health.ReleaseFlock(lockFile)

	events, err := eventbus.NewNATSPublisher(cfg.Eventbus.URL, cfg.Eventbus.CandidateTopic, cfg.Eventbus.StatusTopic)
	if err != nil {
		logger.Error("failed to connect event bus", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	var cache *registry.Cache
	if cfg.Registry.RedisAddr != "" {
		cache = registry.NewCache(redis.NewClient(&redis.Options{Addr: cfg.Registry.RedisAddr}), 0)
	}

	reg, err := registry.Open(cfg.Registry.SQLitePath, registry.Options{
		Events:   events,
		Cache:    cache,
		Cooldown: cfg.Registry.RecentCooldown.Duration,
		Retry: registry.RetryConfig{
			MaxRetries:   cfg.Registry.MaxRetries,
			InitialDelay: cfg.Registry.RetryBackoff.Duration,
			MaxDelay:     10 * cfg.Registry.RetryBackoff.Duration,
		},
	})
	if err != nil {
		logger.Error("failed to open registry", "error", err)
		os.Exit(1)
	}
	defer reg.Close()

	if domain := strings.TrimSpace(*blacklistDomain); domain != "" {
		if err := reg.Blacklist(context.Background(), domain, *blacklistReason, "operator"); err != nil {
			logger.Error("blacklist failed", "domain", domain, "error", err)
			os.Exit(1)
		}
		logger.Info("domain blacklisted", "domain", domain, "reason", *blacklistReason)
		return
	}
	if domain := strings.TrimSpace(*markNoFunds); domain != "" {
		var revisit time.Time
		if strings.TrimSpace(*revisitAfter) != "" {
			revisit, err = time.Parse(time.RFC3339, *revisitAfter)
			if err != nil {
				logger.Error("invalid -revisit-after timestamp", "error", err)
				os.Exit(1)
			}
		} else {
			revisit = time.Now().UTC().AddDate(1, 0, 0)
		}
		if err := reg.MarkNoFunds(context.Background(), domain, *blacklistReason, revisit, "operator"); err != nil {
			logger.Error("mark-no-funds failed", "domain", domain, "error", err)
			os.Exit(1)
		}
		logger.Info("domain marked no-funds", "domain", domain, "revisit_after", revisit)
		return
	}

	var llm llmclient.Client
	if apiKey := os.Getenv(cfg.LLM.APIKeyEnv); apiKey != "" {
		llm = llmclient.NewAnthropicClient(apiKey, cfg.LLM.Model)
	} else {
		logger.Warn("no LLM API key configured, falling back to template-only query generation", "env_var", cfg.LLM.APIKeyEnv)
	}
	gen := querygen.NewGenerator(llm, cfg.LLM.Timeout.Duration)
	fanout := searchfanout.New(buildBackends(cfg), buildBackendConfigs(cfg), logger.With("component", "searchfanout"))

	weights, err := cfg.Judge.Weights.Resolve()
	if err != nil {
		logger.Error("invalid judge weights", "error", err)
		os.Exit(1)
	}
	if err := judge.ValidateWeights(weights); err != nil {
		logger.Error("judge weights do not sum to 1.00", "error", err)
		os.Exit(1)
	}

	tc, err := client.Dial(client.Options{HostPort: cfg.Temporal.HostPort})
	if err != nil {
		logger.Error("failed to dial temporal", "error", err)
		os.Exit(1)
	}
	defer tc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		logger.Info("running single nightly batch (--once mode)")
		if err := runNightlyBatch(ctx, cfg, logger, gen, fanout, tc, *dryRun); err != nil {
			logger.Error("nightly batch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	w := worker.New(tc, cfg.Temporal.TaskQueue, worker.Options{})
	session.RegisterWith(w, session.NewActivities(reg, events))
	go func() {
		logger.Info("starting temporal worker", "task_queue", cfg.Temporal.TaskQueue)
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Error("temporal worker error", "error", err)
		}
	}()

	ticker := time.NewTicker(cfg.General.TickInterval.Duration)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := runNightlyBatch(ctx, cfg, logger, gen, fanout, tc, *dryRun); err != nil {
					logger.Error("nightly batch failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("discovery-scheduler running",
		"tick_interval", cfg.General.TickInterval.Duration.String(),
		"task_queue", cfg.Temporal.TaskQueue,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	for {
		sig := <-sigCh
		switch sig {
		case syscall.SIGHUP:
			if err := cfgManager.Reload(*configPath); err != nil {
				logger.Error("config reload failed", "error", err)
				continue
			}
			cfg = cfgManager.Get()
			logger.Info("config reloaded")
		case syscall.SIGINT, syscall.SIGTERM:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			logger.Info("discovery-scheduler stopped")
			return
		}
	}
}
