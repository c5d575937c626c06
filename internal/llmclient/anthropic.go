package llmclient

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient calls the Anthropic Messages API. It is the concrete
// Client used by QueryGenerator in production; tests use a stub instead
// so they never touch the network.
type AnthropicClient struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicClient builds a client from an API key and model name.
// model defaults to Claude Haiku, which is more than sufficient for
// short query-list generation.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = string(anthropic.ModelClaudeHaiku4_5)
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// Generate sends prompt as a single user turn and splits the response
// into non-empty trimmed lines, capped at maxResults.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string, maxResults int) ([]string, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 512,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llmclient: anthropic generate: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
			text.WriteString("\n")
		}
	}

	return parseLines(text.String(), maxResults), nil
}

// parseLines splits raw LLM output into distinct query strings, stripping
// common list markers ("1.", "-", "*") the model tends to emit.
func parseLines(raw string, maxResults int) []string {
	var out []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = stripListMarker(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
		if len(out) >= maxResults {
			break
		}
	}
	return out
}

func stripListMarker(line string) string {
	line = strings.TrimPrefix(line, "-")
	line = strings.TrimPrefix(line, "*")
	line = strings.TrimSpace(line)
	for i, r := range line {
		if r == '.' || r == ')' {
			prefix := line[:i]
			if isDigits(prefix) {
				return strings.TrimSpace(line[i+1:])
			}
			break
		}
		if r < '0' || r > '9' {
			break
		}
	}
	return line
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
