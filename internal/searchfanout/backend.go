// Package searchfanout implements SearchFanout: executing a batch of query
// strings against one configured search backend concurrently, with
// per-backend rate limiting, circuit breaking, and retry, grounded on
// internal/dispatch's Backend/RetryPolicy/BackoffDelay idioms.
package searchfanout

import (
	"context"
	"errors"

	"github.com/antigravity-dev/fundscout/internal/model"
)

// ErrTransient marks a backend failure that retry/circuit-breaking logic
// should treat as transient (network blip, 5xx, timeout) rather than a
// permanent rejection of the query.
var ErrTransient = errors.New("searchfanout: transient backend error")

// Backend is the pluggable interface for a single search provider. Exactly
// three backends exist for this system: keyword_meta_search,
// ai_prompted_research, and general_meta_search (spec.md §4.3).
type Backend interface {
	// Search runs a single query string and returns the raw results the
	// provider returned, in provider-reported order.
	Search(ctx context.Context, query string) ([]model.SearchResult, error)

	// Name returns the backend identifier used in config and QueryRequest.SearchBackend.
	Name() string
}
