// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch runs the planned searches: a provider backend fetches raw
// hits for each term, the generation capability condenses them into bounded
// summaries, and the executor fans the tasks out concurrently while keeping
// results in task order.
package websearch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/deep-research/internal/genai"
	"github.com/pdiddy/deep-research/pkg/types"
)

const stageName = "search"

// Hit is one raw result from a search provider.
type Hit struct {
	Title   string
	URL     string
	Snippet string
}

// Backend queries a single web-search provider. Each provider (Tavily,
// Brave) implements this interface per the Strategy pattern.
type Backend interface {
	Name() string
	Search(ctx context.Context, term string, cfg types.SearchConfig) ([]Hit, error)
}

// NewBackend selects the provider named by cfg.Provider. An unknown provider
// or a missing credential is a ConfigError.
func NewBackend(cfg types.SearchConfig) (Backend, error) {
	switch cfg.Provider {
	case "tavily":
		if cfg.TavilyAPIKey == "" {
			return nil, &types.ConfigError{Setting: "search.tavily_api_key", Detail: "Tavily API key is required"}
		}
		return NewTavily(cfg.TavilyAPIKey), nil
	case "brave":
		if cfg.BraveAPIKey == "" {
			return nil, &types.ConfigError{Setting: "search.brave_api_key", Detail: "Brave API key is required"}
		}
		return NewBrave(cfg.BraveAPIKey), nil
	default:
		return nil, &types.ConfigError{Setting: "search.provider", Detail: fmt.Sprintf("unknown provider %q: use tavily or brave", cfg.Provider)}
	}
}

const summarizeInstructionsTemplate = `You are a research assistant summarizing web search results for one search
term. Using only the provided results:
- Write a summary of at most %d words in two to three paragraphs capturing
  the main points.
- Cite between 1 and %d of the provided sources, each with a short title
  and its URL.
- Every claim must be supportable by a cited source. Do not add information
  that is not in the results.

Return only a JSON object:
{"summary": "...", "sources": [{"title": "...", "url": "..."}]}`

// summaryResponse is the wire shape expected from the generation capability.
type summaryResponse struct {
	Summary string         `json:"summary" validate:"required"`
	Sources []types.Source `json:"sources" validate:"required,min=1,dive"`
}

// Executor dispatches search tasks to the backend and summarizer.
type Executor struct {
	backend Backend
	gen     genai.Generator
	cfg     types.SearchConfig
}

// NewExecutor builds an Executor over the given backend and generator.
func NewExecutor(backend Backend, gen genai.Generator, cfg types.SearchConfig) *Executor {
	return &Executor{backend: backend, gen: gen, cfg: cfg}
}

// Execute runs all tasks concurrently and returns one result per task, in
// task order regardless of completion order. The first task failure fails
// the whole call and cancels the remaining tasks; failed tasks are never
// silently dropped from the result sequence.
func (e *Executor) Execute(ctx context.Context, tasks []types.SearchTask) ([]types.SearchResult, error) {
	if len(tasks) == 0 {
		return nil, &types.SchemaViolation{Stage: stageName, Detail: "no search tasks to execute"}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]types.SearchResult, len(tasks))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task types.SearchTask) {
			defer wg.Done()

			result, err := e.searchOne(ctx, task)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("search task %q: %w", task.Term, err)
					cancel()
				}
				mu.Unlock()
				return
			}
			results[i] = result
		}(i, task)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// searchOne fetches hits for one task and condenses them into a bounded
// summary. Each task runs with its own isolated context; no state is shared
// across concurrent tasks.
func (e *Executor) searchOne(ctx context.Context, task types.SearchTask) (types.SearchResult, error) {
	hits, err := e.backend.Search(ctx, task.Term, e.cfg)
	if err != nil {
		return types.SearchResult{}, err
	}
	if len(hits) == 0 {
		return types.SearchResult{}, &types.CapabilityError{
			Capability: "search",
			Err:        fmt.Errorf("%s returned no results for %q", e.backend.Name(), task.Term),
		}
	}

	instructions := fmt.Sprintf(summarizeInstructionsTemplate, e.cfg.SummaryWordLimit, e.cfg.MaxSources)
	resp, err := genai.Object[summaryResponse](ctx, e.gen, stageName, instructions, formatHits(task, hits))
	if err != nil {
		return types.SearchResult{}, err
	}

	if err := checkBounds(resp, e.cfg); err != nil {
		return types.SearchResult{}, err
	}

	return types.SearchResult{
		Term:    task.Term,
		Summary: resp.Summary,
		Sources: resp.Sources,
	}, nil
}

// checkBounds enforces the per-result size bounds on the summarizer output.
func checkBounds(resp summaryResponse, cfg types.SearchConfig) error {
	if words := len(strings.Fields(resp.Summary)); words > cfg.SummaryWordLimit {
		return &types.SchemaViolation{
			Stage:  stageName,
			Detail: fmt.Sprintf("summary is %d words, limit is %d", words, cfg.SummaryWordLimit),
		}
	}
	if len(resp.Sources) > cfg.MaxSources {
		return &types.SchemaViolation{
			Stage:  stageName,
			Detail: fmt.Sprintf("%d sources cited, limit is %d", len(resp.Sources), cfg.MaxSources),
		}
	}
	return nil
}

// formatHits renders the task and its raw hits as summarizer input.
func formatHits(task types.SearchTask, hits []Hit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search term: %s\nReason for searching: %s\n\nResults:\n", task.Term, task.Rationale)
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. %s\n   URL: %s\n   %s\n", i+1, h.Title, h.URL, h.Snippet)
	}
	return b.String()
}
