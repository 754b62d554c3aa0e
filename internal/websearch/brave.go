// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

const braveDefaultURL = "https://api.search.brave.com/res/v1/web/search"

// Brave queries the Brave Search API. The API key is sent via the
// X-Subscription-Token header.
type Brave struct {
	// BaseURL is the search endpoint. Tests point this at a local server.
	BaseURL string

	apiKey string
}

// NewBrave constructs a Brave backend.
func NewBrave(apiKey string) *Brave {
	return &Brave{BaseURL: braveDefaultURL, apiKey: apiKey}
}

// Name identifies this backend in errors and logs.
func (b *Brave) Name() string { return "brave" }

// Search issues the term as a Brave web query and returns up to cfg.MaxHits
// hits. Rate-limit responses are retried with backoff.
func (b *Brave) Search(ctx context.Context, term string, cfg types.SearchConfig) ([]Hit, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("count", strconv.Itoa(cfg.MaxHits))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building brave request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, &types.CapabilityError{Capability: "search", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &types.CapabilityError{Capability: "search", Err: fmt.Errorf("brave http %d", resp.StatusCode)}
	}

	var response struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, &types.CapabilityError{Capability: "search", Err: fmt.Errorf("decoding brave response: %w", err)}
	}

	hits := make([]Hit, 0, len(response.Web.Results))
	for _, r := range response.Web.Results {
		hits = append(hits, Hit{Title: r.Title, URL: r.URL, Snippet: r.Description})
		if len(hits) >= cfg.MaxHits {
			break
		}
	}
	return hits, nil
}
