// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"strings"
	"testing"

	"github.com/pdiddy/deep-research/pkg/types"
)

type mockGen struct {
	raw   string
	input string
}

func (m *mockGen) Generate(_ context.Context, _, input string) (string, error) {
	m.input = input
	return m.raw, nil
}

func sampleResults() []types.SearchResult {
	return []types.SearchResult{
		{
			Term:    "remote work housing demand",
			Summary: "Demand shifted toward larger homes.",
			Sources: []types.Source{{Title: "Study A", URL: "https://a.example"}},
		},
		{
			Term:    "urban office vacancy",
			Summary: "Vacancy rates rose in central districts.",
			Sources: []types.Source{{Title: "Report B", URL: "https://b.example"}},
		},
	}
}

func TestWriteHappyPath(t *testing.T) {
	gen := &mockGen{raw: `{"short_summary":"Housing demand moved outward.","markdown_body":"# Findings\n...","follow_up_questions":["What about rents?"]}`}

	rep, err := Write(context.Background(), gen, types.Query{Text: "remote work"}, sampleResults(), types.ReportConfig{MinWords: 1000})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if rep.MarkdownBody == "" {
		t.Error("MarkdownBody is empty")
	}
	if rep.ShortSummary == "" {
		t.Error("ShortSummary is empty")
	}
}

func TestWritePassesEveryResultToGenerator(t *testing.T) {
	gen := &mockGen{raw: `{"short_summary":"s","markdown_body":"b"}`}

	_, err := Write(context.Background(), gen, types.Query{Text: "remote work"}, sampleResults(), types.ReportConfig{MinWords: 1000})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	for _, want := range []string{
		"remote work housing demand",
		"urban office vacancy",
		"https://a.example",
		"https://b.example",
	} {
		if !strings.Contains(gen.input, want) {
			t.Errorf("generator input missing %q", want)
		}
	}
}

func TestWriteNoResults(t *testing.T) {
	gen := &mockGen{raw: `{"short_summary":"s","markdown_body":"b"}`}

	_, err := Write(context.Background(), gen, types.Query{Text: "q"}, nil, types.ReportConfig{})
	if !types.IsSchemaViolation(err) {
		t.Errorf("Write(no results) error = %v, want SchemaViolation", err)
	}
}

func TestWriteEmptyBodyIsSchemaViolation(t *testing.T) {
	gen := &mockGen{raw: `{"short_summary":"s","markdown_body":""}`}

	_, err := Write(context.Background(), gen, types.Query{Text: "q"}, sampleResults(), types.ReportConfig{})
	if !types.IsSchemaViolation(err) {
		t.Errorf("Write(empty body) error = %v, want SchemaViolation", err)
	}
}
