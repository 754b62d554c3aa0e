// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clarify produces a fixed number of clarifying questions for a
// research query before any searches are planned.
package clarify

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/deep-research/internal/genai"
	"github.com/pdiddy/deep-research/pkg/types"
)

const stageName = "clarify"

const instructionsTemplate = `You are a research assistant. Given a user's research query, come up with
exactly %d clarifying questions that would sharpen the research.

Rules:
- Keep each question to one short sentence.
- Do not answer the questions yourself.
- Every question must end with a question mark.
- Questions must be distinct from each other.

Return only a JSON object: {"questions": ["...", "..."]}`

// response is the wire shape expected from the generation capability.
type response struct {
	Questions []string `json:"questions" validate:"required,min=1,dive,required"`
}

// Questions asks the generation capability for exactly
// cfg.QuestionCount clarifying questions. A wrong count, a question missing
// its terminal question mark, or a duplicate is a SchemaViolation; the
// questions are never truncated or padded to fit.
func Questions(ctx context.Context, gen genai.Generator, query types.Query, cfg types.ClarifyConfig) ([]string, error) {
	if strings.TrimSpace(query.Text) == "" {
		return nil, &types.SchemaViolation{Stage: stageName, Detail: "query text is empty"}
	}

	instructions := fmt.Sprintf(instructionsTemplate, cfg.QuestionCount)
	resp, err := genai.Object[response](ctx, gen, stageName, instructions, "Query: "+query.Text)
	if err != nil {
		return nil, err
	}

	if err := validateQuestions(resp.Questions, cfg.QuestionCount); err != nil {
		return nil, err
	}
	return resp.Questions, nil
}

// validateQuestions enforces the clarify postconditions: exact count, each
// item ends in '?', all items distinct.
func validateQuestions(questions []string, want int) error {
	if len(questions) != want {
		return &types.SchemaViolation{
			Stage:  stageName,
			Detail: fmt.Sprintf("expected %d questions, got %d", want, len(questions)),
		}
	}

	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		trimmed := strings.TrimSpace(q)
		if !strings.HasSuffix(trimmed, "?") {
			return &types.SchemaViolation{
				Stage:  stageName,
				Detail: fmt.Sprintf("question %q does not end with a question mark", q),
			}
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			return &types.SchemaViolation{
				Stage:  stageName,
				Detail: fmt.Sprintf("duplicate question %q", q),
			}
		}
		seen[key] = true
	}
	return nil
}
