// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunState identifies the pipeline stage a run is in. Transitions are
// strictly forward; Failed is reachable from every non-terminal state.
type RunState string

const (
	StateClarifying RunState = "clarifying"
	StatePlanning   RunState = "planning"
	StateSearching  RunState = "searching"
	StateWriting    RunState = "writing"
	StateEvaluating RunState = "evaluating"
	StateDelivering RunState = "delivering"
	StateDone       RunState = "done"
	StateFailed     RunState = "failed"
)

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Run is the aggregate for one end-to-end pipeline execution. It owns one
// Query, the planned tasks, their results (same length and order once
// searching completes), and at most one Report, Evaluation, and
// DeliveryOutcome. The orchestrator owns a Run exclusively for its lifetime;
// runs share no state with each other.
type Run struct {
	// ID uniquely identifies the run.
	ID string `json:"id" yaml:"id"`

	// State is the run's current pipeline stage.
	State RunState `json:"state" yaml:"state"`

	// Query is the user's research question plus clarifying answers.
	Query Query `json:"query" yaml:"query"`

	// PendingQuestions holds clarifying questions awaiting answers. Set
	// only while the run has not yet left the clarifying state; a run in
	// this condition may be persisted and resumed across invocations.
	PendingQuestions []string `json:"pending_questions,omitempty" yaml:"pending_questions,omitempty"`

	// Tasks are the planned searches, in plan order.
	Tasks []SearchTask `json:"tasks,omitempty" yaml:"tasks,omitempty"`

	// Results are the search summaries, index-corresponding with Tasks.
	Results []SearchResult `json:"results,omitempty" yaml:"results,omitempty"`

	// Report is the synthesized report, once written. Kept even when a
	// later stage fails so partial artifacts reach the caller.
	Report *Report `json:"report,omitempty" yaml:"report,omitempty"`

	// Evaluation is the report's score and optional revision.
	Evaluation *Evaluation `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`

	// Outcome is the terminal record of the email handoff.
	Outcome *DeliveryOutcome `json:"outcome,omitempty" yaml:"outcome,omitempty"`

	// FailedState records the furthest state reached when State is failed.
	FailedState RunState `json:"failed_state,omitempty" yaml:"failed_state,omitempty"`

	// Error describes the originating failure when State is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// CreatedAt is when the run was created.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is when the run last changed state.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// FinalReport returns the report that should be shown or delivered: the
// evaluator's revision when present, otherwise the written report. Nil when
// the run never reached writing.
func (r *Run) FinalReport() *Report {
	return r.Evaluation.Final(r.Report)
}
