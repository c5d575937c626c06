// Package llmclient wraps the external LLM service used by QueryGenerator
// (spec.md §6): a narrow Generate call with a bounded timeout. Callers
// must treat any error — including timeout — as recoverable and fall
// back to a deterministic template; this package never retries and
// never blocks past the caller-supplied context deadline.
package llmclient

import "context"

// Client is the external LLM collaborator contract.
type Client interface {
	// Generate asks the LLM for up to maxResults distinct lines of text
	// matching prompt's instructions. It may return fewer than
	// maxResults lines (degraded, not an error) but never more.
	Generate(ctx context.Context, prompt string, maxResults int) ([]string, error)
}
