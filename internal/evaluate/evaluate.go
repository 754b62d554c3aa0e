// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluate scores a finished report and may produce a revised body
// that supersedes the original for delivery.
package evaluate

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/deep-research/internal/genai"
	"github.com/pdiddy/deep-research/pkg/types"
)

const stageName = "evaluate"

const instructions = `You are an evaluator reviewing a research report. Check structure, headings,
whether all sources are listed with title and URL, and grammar.

Rules:
- Score the report with an integer from 0 to 5.
- List any issues found.
- If the report needs rework, include a revised Markdown body. Only
  restructure, clarify, and deduplicate; never introduce new facts. Omit
  the revision when the report is fine as is.

Return only a JSON object:
{"score": 4, "issues": ["..."], "revised_markdown": "..."}`

// response is the wire shape expected from the generation capability.
type response struct {
	Score           int      `json:"score"`
	Issues          []string `json:"issues"`
	RevisedMarkdown string   `json:"revised_markdown"`
}

// Report scores rep and returns an Evaluation. Passed is computed from the
// configured threshold, never taken from the generation capability. The
// input report is never mutated; a revision, when present, is a fresh Report
// carrying the original summary and follow-ups with the rewritten body.
func Report(ctx context.Context, gen genai.Generator, rep *types.Report, cfg types.EvaluateConfig) (*types.Evaluation, error) {
	input := fmt.Sprintf("Short summary: %s\n\nReport:\n%s", rep.ShortSummary, rep.MarkdownBody)

	resp, err := genai.Object[response](ctx, gen, stageName, instructions, input)
	if err != nil {
		return nil, err
	}

	if resp.Score < 0 || resp.Score > 5 {
		return nil, &types.SchemaViolation{
			Stage:  stageName,
			Detail: fmt.Sprintf("score %d outside [0,5]", resp.Score),
		}
	}

	eval := &types.Evaluation{
		Passed: resp.Score >= cfg.PassThreshold,
		Score:  resp.Score,
		Issues: resp.Issues,
	}

	if strings.TrimSpace(resp.RevisedMarkdown) != "" {
		eval.RevisedReport = &types.Report{
			ShortSummary:      rep.ShortSummary,
			MarkdownBody:      resp.RevisedMarkdown,
			FollowUpQuestions: rep.FollowUpQuestions,
		}
	}

	return eval, nil
}
