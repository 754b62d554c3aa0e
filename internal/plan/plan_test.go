// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pdiddy/deep-research/pkg/types"
)

type mockGen struct {
	tasks []types.SearchTask
	input string
}

func (m *mockGen) Generate(_ context.Context, _, input string) (string, error) {
	m.input = input
	raw, _ := json.Marshal(map[string]any{"searches": m.tasks})
	return string(raw), nil
}

func threeTasks() []types.SearchTask {
	return []types.SearchTask{
		{Term: "remote work housing demand", Rationale: "direct effect on demand"},
		{Term: "urban office vacancy 2025", Rationale: "supply-side signal"},
		{Term: "suburban migration statistics", Rationale: "where demand moved"},
	}
}

func TestSearchesHappyPath(t *testing.T) {
	gen := &mockGen{tasks: threeTasks()}

	got, err := Searches(context.Background(), gen, types.Query{Text: "remote work"}, types.PlanConfig{SearchCount: 3})
	if err != nil {
		t.Fatalf("Searches() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(tasks) = %d, want 3", len(got))
	}
	if got[0].Term != "remote work housing demand" {
		t.Errorf("tasks[0].Term = %q", got[0].Term)
	}
}

func TestSearchesCountMismatch(t *testing.T) {
	gen := &mockGen{tasks: threeTasks()[:2]}

	_, err := Searches(context.Background(), gen, types.Query{Text: "q"}, types.PlanConfig{SearchCount: 3})
	if !types.IsSchemaViolation(err) {
		t.Errorf("Searches() error = %v, want SchemaViolation", err)
	}
}

func TestSearchesDuplicateTermsCaseInsensitive(t *testing.T) {
	tasks := threeTasks()
	tasks[2].Term = "Remote Work Housing Demand"
	gen := &mockGen{tasks: tasks}

	_, err := Searches(context.Background(), gen, types.Query{Text: "q"}, types.PlanConfig{SearchCount: 3})
	if !types.IsSchemaViolation(err) {
		t.Errorf("Searches() error = %v, want SchemaViolation for duplicate terms", err)
	}
}

func TestSearchesEmptyRationale(t *testing.T) {
	tasks := threeTasks()
	tasks[1].Rationale = "  "
	gen := &mockGen{tasks: tasks}

	_, err := Searches(context.Background(), gen, types.Query{Text: "q"}, types.PlanConfig{SearchCount: 3})
	if !types.IsSchemaViolation(err) {
		t.Errorf("Searches() error = %v, want SchemaViolation for empty rationale", err)
	}
}

func FuzzValidateTasksDistinctTerms(f *testing.F) {
	f.Add("remote work housing demand", "urban office vacancy", "suburban migration")
	f.Add("remote work", "Remote Work", "suburban migration")
	f.Add("  remote work ", "remote work", "x")
	f.Add("a", "b", "")
	f.Add("térm", "TÉRM", "other")

	f.Fuzz(func(t *testing.T, a, b, c string) {
		tasks := []types.SearchTask{
			{Term: a, Rationale: "r"},
			{Term: b, Rationale: "r"},
			{Term: c, Rationale: "r"},
		}
		err := validateTasks(tasks, 3)

		// Reference oracle: any blank term, or two terms equal after
		// trimming and lowercasing, must be rejected; everything else
		// must pass.
		seen := make(map[string]bool, 3)
		wantErr := false
		for _, term := range []string{a, b, c} {
			key := strings.ToLower(strings.TrimSpace(term))
			if key == "" || seen[key] {
				wantErr = true
				break
			}
			seen[key] = true
		}

		if wantErr && !types.IsSchemaViolation(err) {
			t.Errorf("validateTasks(%q, %q, %q) = %v, want SchemaViolation", a, b, c, err)
		}
		if !wantErr && err != nil {
			t.Errorf("validateTasks(%q, %q, %q) = %v, want nil", a, b, c, err)
		}
	})
}

func TestFormatQueryIncludesAnswers(t *testing.T) {
	query := types.Query{
		Text: "remote work",
		Answers: []types.QA{
			{Question: "Which regions?", Answer: "North America"},
			{Question: "What time frame?"},
		},
	}

	got := FormatQuery(query)
	for _, want := range []string{"remote work", "Which regions?", "North America", "(no answer given)"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatQuery() missing %q in:\n%s", want, got)
		}
	}
}
