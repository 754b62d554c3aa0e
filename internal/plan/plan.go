// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan turns a clarified research query into a fixed-size list of
// web-search tasks with rationales.
package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/deep-research/internal/genai"
	"github.com/pdiddy/deep-research/pkg/types"
)

const stageName = "plan"

const instructionsTemplate = `You are a research planner. Given a research query and any clarifying
answers, produce exactly %d web searches that together best answer the query.

Rules:
- Each search has a "term" (the literal search string) and a "rationale"
  (why it helps answer the query).
- Terms must be distinct from one another.
- Rationales must not be empty.

Return only a JSON object: {"searches": [{"term": "...", "rationale": "..."}]}`

// response is the wire shape expected from the generation capability.
type response struct {
	Searches []types.SearchTask `json:"searches" validate:"required,min=1,dive"`
}

// Searches asks the generation capability for exactly cfg.SearchCount
// search tasks. A count mismatch, an empty rationale, or case-insensitively
// duplicate terms is a SchemaViolation; the orchestrator decides whether to
// retry with identical input or abort.
func Searches(ctx context.Context, gen genai.Generator, query types.Query, cfg types.PlanConfig) ([]types.SearchTask, error) {
	instructions := fmt.Sprintf(instructionsTemplate, cfg.SearchCount)

	resp, err := genai.Object[response](ctx, gen, stageName, instructions, FormatQuery(query))
	if err != nil {
		return nil, err
	}

	if err := validateTasks(resp.Searches, cfg.SearchCount); err != nil {
		return nil, err
	}
	return resp.Searches, nil
}

// FormatQuery renders the query and its clarifying answers as stage input.
// Unanswered questions are included so the planner knows they were asked.
func FormatQuery(query types.Query) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query.Text)
	for _, qa := range query.Answers {
		answer := qa.Answer
		if answer == "" {
			answer = "(no answer given)"
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", qa.Question, answer)
	}
	return b.String()
}

// validateTasks enforces the plan postconditions: exact count,
// case-insensitively distinct terms, non-empty rationales.
func validateTasks(tasks []types.SearchTask, want int) error {
	if len(tasks) != want {
		return &types.SchemaViolation{
			Stage:  stageName,
			Detail: fmt.Sprintf("expected %d search tasks, got %d", want, len(tasks)),
		}
	}

	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if strings.TrimSpace(task.Rationale) == "" {
			return &types.SchemaViolation{
				Stage:  stageName,
				Detail: fmt.Sprintf("task %q has an empty rationale", task.Term),
			}
		}
		key := strings.ToLower(strings.TrimSpace(task.Term))
		if key == "" {
			return &types.SchemaViolation{Stage: stageName, Detail: "task has an empty term"}
		}
		if seen[key] {
			return &types.SchemaViolation{
				Stage:  stageName,
				Detail: fmt.Sprintf("duplicate search term %q", task.Term),
			}
		}
		seen[key] = true
	}
	return nil
}
