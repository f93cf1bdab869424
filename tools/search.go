// Copyright (c) Microsoft. All rights reserved.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	pa "github.com/microsoft/polyagent/polyagent"
)

const defaultSearchBaseURL = "https://api.tavily.com"

// defaultMaxResults bounds result counts when the model asks for none.
const defaultMaxResults = 5

// SearchOption configures the web search tool.
type SearchOption func(*searchConfig)

type searchConfig struct {
	baseURL    string
	httpClient *http.Client
	maxResults int
}

// WithSearchBaseURL overrides the Tavily API base URL.
func WithSearchBaseURL(url string) SearchOption {
	return func(c *searchConfig) { c.baseURL = url }
}

// WithSearchHTTPClient provides a custom http.Client for search requests.
func WithSearchHTTPClient(client *http.Client) SearchOption {
	return func(c *searchConfig) { c.httpClient = client }
}

// WithSearchMaxResults caps how many results a search may return.
func WithSearchMaxResults(n int) SearchOption {
	return func(c *searchConfig) { c.maxResults = n }
}

type webSearchArgs struct {
	Query      string `json:"query" jsonschema:"description=Search query,required"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"description=Maximum number of results to return"`
}

// searchResult is one entry in the rendered tool output.
type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// WebSearch returns a tool that searches the web through the Tavily API and
// renders the results as a JSON list of title, URL, and content snippets.
func WebSearch(apiKey string, opts ...SearchOption) (pa.Tool, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: tavily API key is required", pa.ErrConfiguration)
	}
	cfg := &searchConfig{
		baseURL:    defaultSearchBaseURL,
		httpClient: http.DefaultClient,
		maxResults: defaultMaxResults,
	}
	for _, o := range opts {
		o(cfg)
	}

	s := &searcher{apiKey: apiKey, cfg: cfg}
	return pa.NewTypedTool("web_search", "Search the web for information", s.search), nil
}

type searcher struct {
	apiKey string
	cfg    *searchConfig
}

func (s *searcher) search(ctx context.Context, args webSearchArgs) (any, error) {
	maxResults := s.cfg.maxResults
	if args.MaxResults > 0 && args.MaxResults < maxResults {
		maxResults = args.MaxResults
	}

	reqBody, err := json.Marshal(map[string]any{
		"query":       args.Query,
		"max_results": maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.baseURL+"/search", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.cfg.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &pa.ServiceError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Err:        pa.ErrService,
		}
	}

	var parsed struct {
		Results []searchResult `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	if parsed.Results == nil {
		parsed.Results = []searchResult{}
	}

	rendered, err := json.Marshal(parsed.Results)
	if err != nil {
		return nil, fmt.Errorf("render search results: %w", err)
	}
	return string(rendered), nil
}
