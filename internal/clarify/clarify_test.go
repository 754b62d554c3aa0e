// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package clarify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pdiddy/deep-research/pkg/types"
)

type mockGen struct {
	questions []string
	err       error
}

func (m *mockGen) Generate(_ context.Context, _, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	raw, _ := json.Marshal(map[string]any{"questions": m.questions})
	return string(raw), nil
}

func testCfg() types.ClarifyConfig {
	return types.ClarifyConfig{QuestionCount: 3}
}

func TestQuestionsHappyPath(t *testing.T) {
	gen := &mockGen{questions: []string{
		"What time frame should the research cover?",
		"Which regions matter most?",
		"Is commercial or residential housing the focus?",
	}}

	got, err := Questions(context.Background(), gen, types.Query{Text: "remote work and housing"}, testCfg())
	if err != nil {
		t.Fatalf("Questions() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len(questions) = %d, want 3", len(got))
	}
}

func TestQuestionsEmptyQuery(t *testing.T) {
	gen := &mockGen{questions: []string{"A?", "B?", "C?"}}

	_, err := Questions(context.Background(), gen, types.Query{Text: "   "}, testCfg())
	if !types.IsSchemaViolation(err) {
		t.Errorf("Questions(empty query) error = %v, want SchemaViolation", err)
	}
}

func TestQuestionsValidation(t *testing.T) {
	tests := []struct {
		name      string
		questions []string
	}{
		{"too few", []string{"One?", "Two?"}},
		{"too many", []string{"One?", "Two?", "Three?", "Four?"}},
		{"missing question mark", []string{"One?", "Two?", "Three."}},
		{"duplicate", []string{"Same question?", "same question?", "Other?"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGen{questions: tt.questions}
			_, err := Questions(context.Background(), gen, types.Query{Text: "q"}, testCfg())
			if !types.IsSchemaViolation(err) {
				t.Errorf("Questions() error = %v, want SchemaViolation", err)
			}
		})
	}
}

func TestQuestionsCapabilityErrorPassesThrough(t *testing.T) {
	gen := &mockGen{err: &types.CapabilityError{Capability: "generation", Err: context.DeadlineExceeded}}

	_, err := Questions(context.Background(), gen, types.Query{Text: "q"}, testCfg())
	if !types.IsCapabilityError(err) {
		t.Errorf("Questions() error = %v, want CapabilityError", err)
	}
	if types.IsSchemaViolation(err) {
		t.Error("capability failure must not be reported as a schema violation")
	}
}
