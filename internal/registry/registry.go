// Package registry implements DomainRegistry: the durable per-domain
// deduplication and lifecycle store, following internal/store/store.go's
// schema-as-string-constant, manual-scan style on top of modernc.org/sqlite.
package registry

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/antigravity-dev/fundscout/internal/eventbus"
)

// Registry is the durable deduplication and lifecycle store for domains.
type Registry struct {
	db       *sql.DB
	events   eventbus.Publisher
	cache    *Cache // optional read-through cache; nil disables it
	now      func() time.Time
	retryCfg RetryConfig
	cooldown time.Duration // "recently processed" window for ShouldProcess
}

// Options configures Open.
type Options struct {
	Events   eventbus.Publisher // nil becomes eventbus.NoopPublisher
	Cache    *Cache             // nil disables the read-through cache
	Cooldown time.Duration      // default 24h
	Retry    RetryConfig
}

// Open creates or opens a SQLite-backed registry at dbPath and ensures the
// schema exists, mirroring store.Open's pragma/journal-mode setup.
func Open(dbPath string, opts Options) (*Registry, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("registry: open %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: create schema: %w", err)
	}

	events := opts.Events
	if events == nil {
		events = eventbus.NoopPublisher{}
	}
	cooldown := opts.Cooldown
	if cooldown <= 0 {
		cooldown = 24 * time.Hour
	}
	retryCfg := opts.Retry
	if retryCfg.MaxRetries == 0 {
		retryCfg = DefaultRetryConfig()
	}

	return &Registry{
		db:       db,
		events:   events,
		cache:    opts.Cache,
		now:      time.Now,
		retryCfg: retryCfg,
		cooldown: cooldown,
	}, nil
}

// Close closes the underlying database connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

// normalizeHost lower-cases a domain name and strips a leading "www.",
// matching spec.md §4.4's normalization invariant.
func normalizeHost(domainName string) string {
	host := strings.ToLower(strings.TrimSpace(domainName))
	host = strings.TrimPrefix(host, "www.")
	return host
}

func nullTimeOf(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}
