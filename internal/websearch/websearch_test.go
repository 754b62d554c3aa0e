// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/deep-research/pkg/types"
)

// --- mocks ---

// mockBackend returns canned hits per term, with optional per-term failures
// and delays to exercise out-of-order completion.
type mockBackend struct {
	failTerm string
	delays   map[string]time.Duration
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Search(ctx context.Context, term string, _ types.SearchConfig) ([]Hit, error) {
	if d, ok := m.delays[term]; ok {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}
	if term == m.failTerm {
		return nil, &types.CapabilityError{Capability: "search", Err: fmt.Errorf("provider unreachable")}
	}
	return []Hit{
		{Title: "Result for " + term, URL: "https://example.com/" + term, Snippet: "snippet"},
	}, nil
}

// mockGen echoes a summary derived from the input's search term.
type mockGen struct {
	summaryWords int
	sourceCount  int
}

func (m *mockGen) Generate(_ context.Context, _, input string) (string, error) {
	// First line of the input is "Search term: <term>".
	term := strings.TrimPrefix(strings.SplitN(input, "\n", 2)[0], "Search term: ")

	words := m.summaryWords
	if words <= 0 {
		words = 20
	}
	summary := "summary of " + term + strings.Repeat(" filler", words)

	count := m.sourceCount
	if count <= 0 {
		count = 2
	}
	sources := make([]types.Source, count)
	for i := range sources {
		sources[i] = types.Source{Title: fmt.Sprintf("src %d", i), URL: fmt.Sprintf("https://example.com/%d", i)}
	}

	raw, _ := json.Marshal(map[string]any{"summary": summary, "sources": sources})
	return string(raw), nil
}

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig:       types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		Provider:         "tavily",
		MaxHits:          5,
		SummaryWordLimit: 500,
		MaxSources:       5,
	}
}

func tasks(terms ...string) []types.SearchTask {
	out := make([]types.SearchTask, len(terms))
	for i, term := range terms {
		out[i] = types.SearchTask{Term: term, Rationale: "because"}
	}
	return out
}

// --- Execute ---

func TestExecutePreservesTaskOrder(t *testing.T) {
	// Later tasks finish first; results must still follow task order.
	backend := &mockBackend{delays: map[string]time.Duration{
		"alpha": 30 * time.Millisecond,
		"beta":  15 * time.Millisecond,
		"gamma": 0,
	}}
	e := NewExecutor(backend, &mockGen{}, testCfg())

	in := tasks("alpha", "beta", "gamma")
	results, err := e.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(results) != len(in) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(in))
	}
	for i := range in {
		if results[i].Term != in[i].Term {
			t.Errorf("results[%d].Term = %q, want %q", i, results[i].Term, in[i].Term)
		}
		if len(results[i].Sources) == 0 {
			t.Errorf("results[%d] has no sources", i)
		}
	}
}

func TestExecuteFailsWholeCallOnSingleFailure(t *testing.T) {
	backend := &mockBackend{failTerm: "beta"}
	e := NewExecutor(backend, &mockGen{}, testCfg())

	_, err := e.Execute(context.Background(), tasks("alpha", "beta", "gamma"))
	if err == nil {
		t.Fatal("Execute() error = nil, want failure")
	}
	if !strings.Contains(err.Error(), "beta") {
		t.Errorf("error %q does not name the failing term", err)
	}
	if !types.IsCapabilityError(err) {
		t.Errorf("error = %v, want wrapped CapabilityError", err)
	}
}

func TestExecuteEmptyTaskList(t *testing.T) {
	e := NewExecutor(&mockBackend{}, &mockGen{}, testCfg())

	_, err := e.Execute(context.Background(), nil)
	if !types.IsSchemaViolation(err) {
		t.Errorf("Execute(nil) error = %v, want SchemaViolation", err)
	}
}

func TestExecuteSummaryOverWordLimit(t *testing.T) {
	cfg := testCfg()
	cfg.SummaryWordLimit = 10
	e := NewExecutor(&mockBackend{}, &mockGen{summaryWords: 50}, cfg)

	_, err := e.Execute(context.Background(), tasks("alpha"))
	if !types.IsSchemaViolation(err) {
		t.Errorf("Execute() error = %v, want SchemaViolation for oversized summary", err)
	}
}

func TestExecuteTooManySources(t *testing.T) {
	cfg := testCfg()
	cfg.MaxSources = 3
	e := NewExecutor(&mockBackend{}, &mockGen{sourceCount: 6}, cfg)

	_, err := e.Execute(context.Background(), tasks("alpha"))
	if !types.IsSchemaViolation(err) {
		t.Errorf("Execute() error = %v, want SchemaViolation for too many sources", err)
	}
}

// --- NewBackend ---

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.SearchConfig
		wantErr bool
	}{
		{"tavily with key", types.SearchConfig{Provider: "tavily", TavilyAPIKey: "k"}, false},
		{"brave with key", types.SearchConfig{Provider: "brave", BraveAPIKey: "k"}, false},
		{"tavily missing key", types.SearchConfig{Provider: "tavily"}, true},
		{"brave missing key", types.SearchConfig{Provider: "brave"}, true},
		{"unknown provider", types.SearchConfig{Provider: "bing"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBackend(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBackend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var cfgErr *types.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("NewBackend() error = %T, want ConfigError", err)
				}
			}
		})
	}
}
