// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

const tavilyDefaultURL = "https://api.tavily.com/search"

// Tavily queries the Tavily search API.
type Tavily struct {
	// BaseURL is the search endpoint. Tests point this at a local server.
	BaseURL string

	apiKey string
}

// NewTavily constructs a Tavily backend.
func NewTavily(apiKey string) *Tavily {
	return &Tavily{BaseURL: tavilyDefaultURL, apiKey: apiKey}
}

// Name identifies this backend in errors and logs.
func (t *Tavily) Name() string { return "tavily" }

// Search posts the term to Tavily and returns up to cfg.MaxHits hits.
// Rate-limit responses are retried with backoff; any other non-200 status is
// a CapabilityError.
func (t *Tavily) Search(ctx context.Context, term string, cfg types.SearchConfig) ([]Hit, error) {
	payload, err := json.Marshal(map[string]any{
		"query":       term,
		"api_key":     t.apiKey,
		"depth":       "basic",
		"max_results": cfg.MaxHits,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding tavily request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, &types.CapabilityError{Capability: "search", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.CapabilityError{Capability: "search", Err: fmt.Errorf("tavily http %d", resp.StatusCode)}
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &types.CapabilityError{Capability: "search", Err: fmt.Errorf("decoding tavily response: %w", err)}
	}

	hits := make([]Hit, 0, len(response.Results))
	for _, r := range response.Results {
		hits = append(hits, Hit{Title: r.Title, URL: r.URL, Snippet: r.Content})
		if len(hits) >= cfg.MaxHits {
			break
		}
	}
	return hits, nil
}
