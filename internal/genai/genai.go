// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai abstracts the text-generation capability behind a small
// interface. Stages describe the JSON object they need in their
// instructions; Object decodes and validates the raw completion into a typed
// value, turning malformed output into a SchemaViolation the orchestrator
// can retry.
package genai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/deep-research/pkg/types"
)

// Generator produces one completion for a pair of instructions and input.
// Implementations return a CapabilityError on transport-level failures and
// raw text (expected to be a single JSON object) on success.
type Generator interface {
	Generate(ctx context.Context, instructions, input string) (string, error)
}

// validate checks struct tags on decoded stage outputs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Object runs the generator and decodes its output into T, validating any
// `validate` struct tags. Decoding or validation failures are reported as a
// SchemaViolation attributed to stage.
func Object[T any](ctx context.Context, g Generator, stage, instructions, input string) (T, error) {
	var out T

	raw, err := g.Generate(ctx, instructions, input)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return out, &types.SchemaViolation{Stage: stage, Detail: "invalid JSON: " + err.Error()}
	}
	if err := validate.Struct(&out); err != nil {
		return out, &types.SchemaViolation{Stage: stage, Detail: err.Error()}
	}
	return out, nil
}

// stripFences removes a Markdown code fence wrapping, which some models emit
// around JSON even when asked not to.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
