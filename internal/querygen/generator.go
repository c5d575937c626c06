// Package querygen implements QueryGenerator: expanding one QueryRequest
// into numberOfQueries concrete search strings. Keyword gathering and
// prompt construction are pure (keywords.go, prompt.go); this file adds
// the LLM call and its deterministic template fallback.
package querygen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antigravity-dev/fundscout/internal/llmclient"
	"github.com/antigravity-dev/fundscout/internal/model"
)

// Generator expands QueryRequests into search strings.
type Generator struct {
	LLM     llmclient.Client
	Timeout time.Duration // default 10s
}

// NewGenerator builds a Generator. A nil llm is valid and causes every
// call to fall back to the template immediately — useful for tests and
// for deployments that choose not to configure an LLM.
func NewGenerator(llm llmclient.Client, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Generator{LLM: llm, Timeout: timeout}
}

// Generate returns exactly req.NumberOfQueries non-empty, trimmed query
// strings. It never returns an error: an LLM timeout or failure falls
// back to deterministic template concatenation, and a short LLM response
// is padded with template queries (spec.md §4.2, §7 "Degraded").
func (g *Generator) Generate(ctx context.Context, req model.QueryRequest) []string {
	numberOfQueries := req.NumberOfQueries
	if numberOfQueries <= 0 {
		numberOfQueries = 3
	}

	keywords := GatherKeywords(req)
	fallback := templateQueries(req, keywords, numberOfQueries)

	if g.LLM == nil {
		return fallback
	}

	callCtx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	prompt := BuildPrompt(req, keywords, numberOfQueries)
	queries, err := g.LLM.Generate(callCtx, prompt, numberOfQueries)
	if err != nil {
		return fallback
	}

	out := make([]string, 0, numberOfQueries)
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q != "" {
			out = append(out, q)
		}
		if len(out) == numberOfQueries {
			break
		}
	}

	// Pad with template queries, taken in order, in case the LLM returned
	// fewer than requested.
	for i := 0; len(out) < numberOfQueries; i++ {
		if i >= len(fallback) {
			break
		}
		out = append(out, fallback[i])
	}

	return out
}

// templateQueries builds the deterministic fallback: keyword list plus
// geography, sliced/repeated as needed to reach exactly n entries.
func templateQueries(req model.QueryRequest, keywords []string, n int) []string {
	base := strings.Join(keywords, " ")
	geo := req.GeographicScope.Label

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("%s %s (%d)", base, geo, i+1))
	}
	return out
}
