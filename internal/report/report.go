// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report synthesizes the search summaries and the original query
// into a single long-form Markdown report.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/deep-research/internal/genai"
	"github.com/pdiddy/deep-research/internal/plan"
	"github.com/pdiddy/deep-research/pkg/types"
)

const stageName = "report"

const instructionsTemplate = `You are a senior researcher writing a cohesive report for a research query.
You are given the original query, clarifying answers, and summarized search
results. First decide on an outline, then write the full report.

Rules:
- Incorporate every search result; omit none.
- Do not introduce facts that are absent from the provided results.
- The report body is Markdown with headings, at least %d words.
- Also produce a 2-3 sentence short summary and 3-5 follow-up questions.

Return only a JSON object:
{"short_summary": "...", "markdown_body": "...", "follow_up_questions": ["..."]}`

// Write produces the run's Report from the query and the full, ordered set
// of search results. Length is a soft target passed to the generation
// capability; incorporating every result without inventing facts is a
// content contract enforced upstream, not checked here.
func Write(ctx context.Context, gen genai.Generator, query types.Query, results []types.SearchResult, cfg types.ReportConfig) (*types.Report, error) {
	if len(results) == 0 {
		return nil, &types.SchemaViolation{Stage: stageName, Detail: "no search results to synthesize"}
	}

	instructions := fmt.Sprintf(instructionsTemplate, cfg.MinWords)
	rep, err := genai.Object[types.Report](ctx, gen, stageName, instructions, formatInput(query, results))
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// formatInput renders the query context and every search summary with its
// sources as stage input.
func formatInput(query types.Query, results []types.SearchResult) string {
	var b strings.Builder
	b.WriteString(plan.FormatQuery(query))
	b.WriteString("\nSummarized search results:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "\n[%d] Search term: %s\n%s\nSources:\n", i+1, r.Term, r.Summary)
		for _, s := range r.Sources {
			fmt.Fprintf(&b, "- %s (%s)\n", s.Title, s.URL)
		}
	}
	return b.String()
}
