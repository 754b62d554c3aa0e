// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives one research run through its stages:
// clarifying → planning → searching → writing → evaluating → delivering →
// done, with failed reachable from every non-terminal state. Transitions are
// strictly forward; there are no cycles. A single retry policy is applied
// uniformly to every stage invocation.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/deep-research/internal/clarify"
	"github.com/pdiddy/deep-research/internal/deliver"
	"github.com/pdiddy/deep-research/internal/evaluate"
	"github.com/pdiddy/deep-research/internal/genai"
	"github.com/pdiddy/deep-research/internal/plan"
	"github.com/pdiddy/deep-research/internal/report"
	"github.com/pdiddy/deep-research/pkg/types"
)

// Searcher executes planned search tasks. Satisfied by websearch.Executor.
type Searcher interface {
	Execute(ctx context.Context, tasks []types.SearchTask) ([]types.SearchResult, error)
}

// Pipeline owns the capabilities and configuration for running research
// pipelines. Runs share no state; one Pipeline may drive many of them.
type Pipeline struct {
	gen      genai.Generator
	searcher Searcher
	mailer   deliver.Mailer
	cfg      types.PipelineConfig
}

// New builds a Pipeline. A nil mailer disables the delivery stage: runs
// complete after evaluation with no DeliveryOutcome.
func New(gen genai.Generator, searcher Searcher, mailer deliver.Mailer, cfg types.PipelineConfig) *Pipeline {
	return &Pipeline{gen: gen, searcher: searcher, mailer: mailer, cfg: cfg.WithDefaults()}
}

// NewRun creates a run for the given query text, in the clarifying state.
func NewRun(queryText string) *types.Run {
	now := time.Now().UTC()
	return &types.Run{
		ID:        uuid.NewString(),
		State:     types.StateClarifying,
		Query:     types.Query{Text: queryText},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clarify produces the run's clarifying questions and records them as
// pending. The run stays in the clarifying state awaiting answers, so it may
// be persisted and resumed by a later invocation.
func (p *Pipeline) Clarify(ctx context.Context, run *types.Run, w io.Writer) error {
	if run.State != types.StateClarifying {
		return fmt.Errorf("run %s is %s, clarifying is over", run.ID, run.State)
	}

	var questions []string
	err := p.invoke(ctx, func(ctx context.Context) error {
		var err error
		questions, err = clarify.Questions(ctx, p.gen, run.Query, p.cfg.Clarify)
		return err
	})
	if err != nil {
		return p.fail(run, types.StateClarifying, err, w)
	}

	run.PendingQuestions = questions
	run.UpdatedAt = time.Now().UTC()
	fmt.Fprintf(w, "clarifying: %d questions\n", len(questions))
	return nil
}

// Answer pairs the given answers with the run's pending questions, in
// order, and clears the pending set. Fewer answers than questions leaves the
// remainder unanswered; extra answers are an error.
func Answer(run *types.Run, answers []string) error {
	if run.State != types.StateClarifying {
		return fmt.Errorf("run %s is %s, answers are no longer accepted", run.ID, run.State)
	}
	if len(answers) > len(run.PendingQuestions) {
		return fmt.Errorf("%d answers for %d questions", len(answers), len(run.PendingQuestions))
	}

	for i, q := range run.PendingQuestions {
		qa := types.QA{Question: q}
		if i < len(answers) {
			qa.Answer = answers[i]
		}
		run.Query.Answers = append(run.Query.Answers, qa)
	}
	run.PendingQuestions = nil
	run.UpdatedAt = time.Now().UTC()
	return nil
}

// Run drives the run forward from its current state to done or failed,
// writing progress to w. The returned error is the originating stage
// failure; the run records the furthest state reached. Partial artifacts
// (a written report, a failed delivery outcome) stay on the run.
func (p *Pipeline) Run(ctx context.Context, run *types.Run, w io.Writer) error {
	if run.State.Terminal() {
		return fmt.Errorf("run %s is already %s", run.ID, run.State)
	}

	// Clarification, answered or skipped, ends when the pipeline starts.
	if run.State == types.StateClarifying {
		p.transition(run, types.StatePlanning)
	}

	if run.State == types.StatePlanning {
		err := p.invoke(ctx, func(ctx context.Context) error {
			tasks, err := plan.Searches(ctx, p.gen, run.Query, p.cfg.Plan)
			if err != nil {
				return err
			}
			run.Tasks = tasks
			return nil
		})
		if err != nil {
			return p.fail(run, types.StatePlanning, err, w)
		}
		fmt.Fprintf(w, "planning: %d searches\n", len(run.Tasks))
		p.transition(run, types.StateSearching)
	}

	if run.State == types.StateSearching {
		err := p.invoke(ctx, func(ctx context.Context) error {
			results, err := p.searcher.Execute(ctx, run.Tasks)
			if err != nil {
				return err
			}
			run.Results = results
			return nil
		})
		if err != nil {
			return p.fail(run, types.StateSearching, err, w)
		}
		fmt.Fprintf(w, "searching: %d results\n", len(run.Results))
		p.transition(run, types.StateWriting)
	}

	if run.State == types.StateWriting {
		err := p.invoke(ctx, func(ctx context.Context) error {
			rep, err := report.Write(ctx, p.gen, run.Query, run.Results, p.cfg.Report)
			if err != nil {
				return err
			}
			run.Report = rep
			return nil
		})
		if err != nil {
			return p.fail(run, types.StateWriting, err, w)
		}
		fmt.Fprintln(w, "writing: report complete")
		p.transition(run, types.StateEvaluating)
	}

	if run.State == types.StateEvaluating {
		err := p.invoke(ctx, func(ctx context.Context) error {
			eval, err := evaluate.Report(ctx, p.gen, run.Report, p.cfg.Evaluate)
			if err != nil {
				return err
			}
			run.Evaluation = eval
			return nil
		})
		if err != nil {
			return p.fail(run, types.StateEvaluating, err, w)
		}
		fmt.Fprintf(w, "evaluating: score %d/5, passed=%v\n", run.Evaluation.Score, run.Evaluation.Passed)
		p.transition(run, types.StateDelivering)
	}

	if run.State == types.StateDelivering {
		if p.mailer == nil || p.cfg.Deliver.ToAddress == "" {
			fmt.Fprintln(w, "delivering: skipped (no mailer configured)")
			p.transition(run, types.StateDone)
			return nil
		}

		var outcome types.DeliveryOutcome
		err := p.invoke(ctx, func(ctx context.Context) error {
			var err error
			outcome, err = deliver.Send(ctx, p.gen, p.mailer, run.FinalReport(), p.cfg.Deliver)
			return err
		})
		if err != nil {
			return p.fail(run, types.StateDelivering, err, w)
		}
		run.Outcome = &outcome
		if outcome.Status == types.DeliveryFailed {
			return p.fail(run, types.StateDelivering, &types.CapabilityError{
				Capability: "mail",
				Err:        fmt.Errorf("%s", outcome.ErrorDetail),
			}, w)
		}
		fmt.Fprintf(w, "delivering: sent %q to %s\n", outcome.Subject, p.cfg.Deliver.ToAddress)
		p.transition(run, types.StateDone)
	}

	return nil
}

// invoke applies the central retry policy to one stage invocation: up to
// MaxAttempts calls with identical input, bounded by the stage timeout.
// Only schema violations are retried; capability failures surface at once.
func (p *Pipeline) invoke(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < p.cfg.Retry.MaxAttempts; attempt++ {
		sctx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
		err = fn(sctx)
		cancel()
		if err == nil || !types.IsSchemaViolation(err) {
			return err
		}
	}
	return err
}

func (p *Pipeline) transition(run *types.Run, next types.RunState) {
	run.State = next
	run.UpdatedAt = time.Now().UTC()
}

// fail moves the run to the failed state, recording the furthest state
// reached and the originating error, and returns that error.
func (p *Pipeline) fail(run *types.Run, at types.RunState, err error, w io.Writer) error {
	run.FailedState = at
	run.Error = err.Error()
	run.State = types.StateFailed
	run.UpdatedAt = time.Now().UTC()
	fmt.Fprintf(w, "failed at %s: %v\n", at, err)
	return fmt.Errorf("run failed at %s: %w", at, err)
}
