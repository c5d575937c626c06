package searchfanout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antigravity-dev/fundscout/internal/model"
)

// httpBackend is the shared skeleton for the three search backends: each
// talks to a different provider endpoint but follows the same
// request/decode/classify shape (grounded on internal/matrix/http_sender.go).
type httpBackend struct {
	name       string
	client     *http.Client
	endpoint   string
	apiKey     string
	maxResults int
	decode     func(body []byte, query string) ([]model.SearchResult, error)
}

func (b *httpBackend) Name() string { return b.name }

func (b *httpBackend) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%s: empty query", b.name)
	}

	endpoint := b.endpoint + "?" + url.Values{"q": {query}, "limit": {fmt.Sprintf("%d", b.maxResults)}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", b.name, err)
	}
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", b.name, ErrTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read body: %v", b.name, ErrTransient, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%s: %w: status %d", b.name, ErrTransient, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: status %d: %s", b.name, resp.StatusCode, compact(body))
	}

	results, err := b.decode(body, query)
	if err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", b.name, err)
	}
	for i := range results {
		results[i].BackendID = b.name
		results[i].OriginatingQuery = query
		results[i].ResultPosition = i + 1
	}
	return results, nil
}

func compact(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

type keywordSearchHit struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"snippet"`
}

type keywordSearchResponse struct {
	Results []keywordSearchHit `json:"results"`
}

// NewKeywordMetaSearchBackend builds the backend for keyword_meta_search: a
// metasearch engine taking a bare keyword query and returning ranked links.
func NewKeywordMetaSearchBackend(client *http.Client, endpoint, apiKey string, maxResults int) Backend {
	return &httpBackend{
		name:       "keyword_meta_search",
		client:     withDefaultTimeout(client),
		endpoint:   endpoint,
		apiKey:     apiKey,
		maxResults: maxResults,
		decode: func(body []byte, query string) ([]model.SearchResult, error) {
			var parsed keywordSearchResponse
			if err := json.Unmarshal(body, &parsed); err != nil {
				return nil, err
			}
			out := make([]model.SearchResult, 0, len(parsed.Results))
			for _, hit := range parsed.Results {
				out = append(out, model.SearchResult{
					URL:         hit.URL,
					Title:       hit.Title,
					Description: hit.Description,
				})
			}
			return out, nil
		},
	}
}

type aiResearchCitation struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

type aiResearchResponse struct {
	Citations []aiResearchCitation `json:"citations"`
}

// NewAIPromptedResearchBackend builds the backend for ai_prompted_research:
// an AI research service that takes a natural-language research question
// and returns cited sources, treated here as candidate URLs.
func NewAIPromptedResearchBackend(client *http.Client, endpoint, apiKey string, maxResults int) Backend {
	return &httpBackend{
		name:       "ai_prompted_research",
		client:     withDefaultTimeout(client),
		endpoint:   endpoint,
		apiKey:     apiKey,
		maxResults: maxResults,
		decode: func(body []byte, query string) ([]model.SearchResult, error) {
			var parsed aiResearchResponse
			if err := json.Unmarshal(body, &parsed); err != nil {
				return nil, err
			}
			out := make([]model.SearchResult, 0, len(parsed.Citations))
			for _, c := range parsed.Citations {
				out = append(out, model.SearchResult{
					URL:         c.URL,
					Title:       c.Title,
					Description: c.Excerpt,
				})
			}
			return out, nil
		},
	}
}

type generalSearchItem struct {
	Link    string `json:"link"`
	Heading string `json:"heading"`
	Summary string `json:"summary"`
}

type generalSearchResponse struct {
	Items []generalSearchItem `json:"items"`
}

// NewGeneralMetaSearchBackend builds the backend for general_meta_search: a
// broad-web search engine, assigned round-robin by the planner like the
// other two backends.
func NewGeneralMetaSearchBackend(client *http.Client, endpoint, apiKey string, maxResults int) Backend {
	return &httpBackend{
		name:       "general_meta_search",
		client:     withDefaultTimeout(client),
		endpoint:   endpoint,
		apiKey:     apiKey,
		maxResults: maxResults,
		decode: func(body []byte, query string) ([]model.SearchResult, error) {
			var parsed generalSearchResponse
			if err := json.Unmarshal(body, &parsed); err != nil {
				return nil, err
			}
			out := make([]model.SearchResult, 0, len(parsed.Items))
			for _, item := range parsed.Items {
				out = append(out, model.SearchResult{
					URL:         item.Link,
					Title:       item.Heading,
					Description: item.Summary,
				})
			}
			return out, nil
		},
	}
}

func withDefaultTimeout(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: 15 * time.Second}
	}
	return client
}
