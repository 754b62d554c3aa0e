// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the deep-research pipeline.
// All records here are plain data validated against fixed schemas; behavior
// lives in the stage packages under internal/.
package types

// QA pairs a clarifying question with the user's answer. Answer may be empty
// when the user skipped the question.
type QA struct {
	// Question is a clarifying question produced by the clarify stage.
	Question string `json:"question" yaml:"question"`

	// Answer is the user-supplied answer, or empty if unanswered.
	Answer string `json:"answer,omitempty" yaml:"answer,omitempty"`
}

// Query is the immutable input to one pipeline run: the user's research
// question plus any clarifying question/answer rounds gathered before
// planning.
type Query struct {
	// Text is the research question as entered by the user.
	Text string `json:"text" yaml:"text"`

	// Answers lists clarifying question/answer pairs in the order the
	// questions were asked.
	Answers []QA `json:"answers,omitempty" yaml:"answers,omitempty"`
}

// SearchTask is one planned web search. The plan stage produces a fixed
// number of tasks per run with pairwise-distinct terms.
type SearchTask struct {
	// Term is the search term to submit to the web-search capability.
	Term string `json:"term" yaml:"term" validate:"required"`

	// Rationale explains why this search helps answer the query.
	Rationale string `json:"rationale" yaml:"rationale" validate:"required"`
}

// Source cites one document backing a search summary.
type Source struct {
	// Title is a short human-readable title for the source.
	Title string `json:"title" yaml:"title" validate:"required"`

	// URL is the source location.
	URL string `json:"url" yaml:"url" validate:"required,url"`
}

// SearchResult is the bounded summary produced for one SearchTask. Results
// are recombined into task order regardless of completion order.
type SearchResult struct {
	// Term matches the SearchTask this result answers.
	Term string `json:"term" yaml:"term"`

	// Summary condenses the retrieved content, capped at the configured
	// word limit.
	Summary string `json:"summary" yaml:"summary"`

	// Sources lists the cited documents, capped at the configured count.
	Sources []Source `json:"sources" yaml:"sources"`
}
