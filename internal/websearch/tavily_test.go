// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/deep-research/internal/httputil"
	"github.com/pdiddy/deep-research/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 // nanoseconds; keep 429 tests fast
}

func tavilyServer(t *testing.T, handler http.HandlerFunc) *Tavily {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	backend := NewTavily("test-key")
	backend.BaseURL = ts.URL
	return backend
}

func TestTavilySearch(t *testing.T) {
	backend := tavilyServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body["query"] != "remote work" {
			t.Errorf("query = %v, want %q", body["query"], "remote work")
		}
		if body["api_key"] != "test-key" {
			t.Errorf("api_key = %v, want test-key", body["api_key"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "A", "url": "https://a.example", "content": "alpha"},
				{"title": "B", "url": "https://b.example", "content": "beta"},
			},
		})
	})

	hits, err := backend.Search(context.Background(), "remote work", testCfg())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}
	if hits[0].Title != "A" || hits[0].URL != "https://a.example" || hits[0].Snippet != "alpha" {
		t.Errorf("hits[0] = %+v", hits[0])
	}
}

func TestTavilySearchCapsHits(t *testing.T) {
	backend := tavilyServer(t, func(w http.ResponseWriter, _ *http.Request) {
		results := make([]map[string]string, 10)
		for i := range results {
			results[i] = map[string]string{"title": fmt.Sprintf("r%d", i), "url": "https://x.example"}
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	})

	cfg := testCfg()
	cfg.MaxHits = 3
	hits, err := backend.Search(context.Background(), "q", cfg)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("len(hits) = %d, want 3", len(hits))
	}
}

func TestTavilySearchServerError(t *testing.T) {
	backend := tavilyServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := backend.Search(context.Background(), "q", testCfg())
	if !types.IsCapabilityError(err) {
		t.Errorf("Search() error = %v, want CapabilityError", err)
	}
}

func TestTavilySearchRetriesRateLimit(t *testing.T) {
	calls := 0
	backend := tavilyServer(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{{"title": "A", "url": "https://a.example"}},
		})
	})

	hits, err := backend.Search(context.Background(), "q", testCfg())
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (one retry after 429)", calls)
	}
	if len(hits) != 1 {
		t.Errorf("len(hits) = %d, want 1", len(hits))
	}
}
