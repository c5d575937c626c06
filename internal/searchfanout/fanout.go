package searchfanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/antigravity-dev/fundscout/internal/model"
)

// BackendConfig tunes per-backend concurrency, rate limiting, and circuit
// breaking. One BackendConfig exists per entry in Fanout's backend map.
type BackendConfig struct {
	Concurrency    int           // max simultaneous in-flight queries against this backend
	RequestsPerSec float64       // token-bucket refill rate
	Burst          int           // token-bucket burst size
	QueryTimeout   time.Duration // per-query context deadline
	Retry          RetryPolicy
}

// DefaultBackendConfig is a conservative default suitable for a metered
// third-party search API.
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		Concurrency:    4,
		RequestsPerSec: 2,
		Burst:          4,
		QueryTimeout:   10 * time.Second,
		Retry:          DefaultRetryPolicy(),
	}
}

// runner pairs a Backend with the rate limiter and circuit breaker guarding
// it. Grounded on internal/dispatch/ratelimit.go's per-provider gating and
// enriched with a gobreaker circuit (tomtom215-cartographus's stack) since
// the teacher's rate limiter has no breaker of its own.
type runner struct {
	backend Backend
	cfg     BackendConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]model.SearchResult]
	logger  *slog.Logger
}

func newRunner(backend Backend, cfg BackendConfig, logger *slog.Logger) *runner {
	if logger == nil {
		logger = slog.Default()
	}
	st := gobreaker.Settings{
		Name:        backend.Name(),
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("searchfanout: circuit breaker state change", "backend", name, "from", from.String(), "to", to.String())
		},
	}
	return &runner{
		backend: backend,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker[[]model.SearchResult](st),
		logger:  logger,
	}
}

// search runs a single query through rate limiting, the circuit breaker,
// and retry-with-backoff. ErrTransient failures and open-circuit rejections
// (gobreaker.ErrOpenState) are retried; anything else is returned
// immediately.
func (r *runner) search(ctx context.Context, query string) ([]model.SearchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := BackoffDelay(attempt, r.cfg.Retry.InitialDelay, r.cfg.Retry.MaxDelay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		queryCtx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout)
		results, err := r.breaker.Execute(func() ([]model.SearchResult, error) {
			return r.backend.Search(queryCtx, query)
		})
		cancel()

		if err == nil {
			return results, nil
		}

		lastErr = err
		if !errors.Is(err, ErrTransient) && !errors.Is(err, gobreaker.ErrOpenState) {
			return nil, err
		}
		r.logger.Debug("searchfanout: transient backend failure, retrying", "backend", r.backend.Name(), "query", query, "attempt", attempt, "err", err)
	}
	return nil, fmt.Errorf("searchfanout: %s: retries exhausted: %w", r.backend.Name(), lastErr)
}

// Fanout executes query batches against a fixed set of named backends.
type Fanout struct {
	runners map[string]*runner
	logger  *slog.Logger
}

// New builds a Fanout from backend implementations and their tuning.
// Backends not present in cfgs get DefaultBackendConfig.
func New(backends map[string]Backend, cfgs map[string]BackendConfig, logger *slog.Logger) *Fanout {
	runners := make(map[string]*runner, len(backends))
	for name, b := range backends {
		cfg, ok := cfgs[name]
		if !ok {
			cfg = DefaultBackendConfig()
		}
		runners[name] = newRunner(b, cfg, logger)
	}
	return &Fanout{runners: runners, logger: logger}
}

// QueryOutcome pairs a query with its result or its terminal error, so
// callers can distinguish "this query found nothing" from "this query
// failed" without losing per-query detail in an aggregate error.
type QueryOutcome struct {
	Query   string
	Results []model.SearchResult
	Err     error
}

// Run executes queries against the named backend with bounded concurrency
// (cfg.Concurrency slots, via errgroup.SetLimit). One query's exhausted
// retries never aborts the others; each query's outcome is reported
// independently so the caller can decide how to treat partial failure.
func (f *Fanout) Run(ctx context.Context, backendName string, queries []string) ([]QueryOutcome, error) {
	r, ok := f.runners[backendName]
	if !ok {
		return nil, fmt.Errorf("searchfanout: unknown backend %q", backendName)
	}

	outcomes := make([]QueryOutcome, len(queries))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInt(1, r.cfg.Concurrency))

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			results, err := r.search(gctx, q)
			mu.Lock()
			outcomes[i] = QueryOutcome{Query: q, Results: results, Err: err}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
