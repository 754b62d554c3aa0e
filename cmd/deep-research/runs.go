// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/pipeline"
	"github.com/pdiddy/deep-research/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect, resume, and clean up persisted runs",
	Long: `Runs manages the local run database. Use subcommands to list runs, show
one run's artifacts, answer a run's clarifying questions, or delete a run.`,
}

// --- list subcommand ---

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all runs, most recently updated first",
	RunE:  runRunsList,
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openStore(pipelineConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.List(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-10s  %-19s  %s\n", "ID", "State", "Updated", "Query")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, sum := range summaries {
		query := sum.Query
		if len(query) > 40 {
			query = query[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-10s  %-19s  %s\n",
			sum.ID, sum.State, sum.UpdatedAt.Format("2006-01-02 15:04:05"), query)
	}
	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(summaries))
	return nil
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one run's state, artifacts, and any failure",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(pipelineConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Load(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Printf("run %s\n", run.ID)
	fmt.Printf("  state:   %s\n", run.State)
	fmt.Printf("  query:   %s\n", run.Query.Text)
	if run.State == types.StateFailed {
		fmt.Printf("  failed at %s: %s\n", run.FailedState, run.Error)
	}
	for _, qa := range run.Query.Answers {
		answer := qa.Answer
		if answer == "" {
			answer = "(no answer given)"
		}
		fmt.Printf("  q: %s\n     a: %s\n", qa.Question, answer)
	}
	for i, q := range run.PendingQuestions {
		fmt.Printf("  pending %d: %s\n", i+1, q)
	}
	if run.Evaluation != nil {
		fmt.Printf("  score:   %d/5 (passed=%v)\n", run.Evaluation.Score, run.Evaluation.Passed)
	}
	if run.Outcome != nil {
		fmt.Printf("  email:   %s (%s)\n", run.Outcome.Status, run.Outcome.Subject)
	}
	if report := run.FinalReport(); report != nil {
		fmt.Printf("\n%s\n", report.MarkdownBody)
	}
	return nil
}

// --- answer subcommand ---

var runsAnswerCmd = &cobra.Command{
	Use:   "answer [run-id]",
	Short: "Answer a run's clarifying questions and continue the pipeline",
	Long: `Answer reads one answer per pending question from stdin (empty line
skips the question), then drives the run through the remaining stages.`,
	Args: cobra.ExactArgs(1),
	RunE: runRunsAnswer,
}

func runRunsAnswer(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	pipe, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	run, err := store.Load(ctx, args[0])
	if err != nil {
		return err
	}
	if len(run.PendingQuestions) == 0 {
		return fmt.Errorf("run %s has no pending questions", run.ID)
	}

	answers, err := promptAnswers(run.PendingQuestions)
	if err != nil {
		return err
	}
	if err := pipeline.Answer(run, answers); err != nil {
		return err
	}

	runErr := pipe.Run(ctx, run, os.Stderr)
	if err := store.Save(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: persisting run: %v\n", err)
	}
	if runErr != nil {
		return runErr
	}

	fmt.Println(run.FinalReport().MarkdownBody)
	return nil
}

// --- export subcommand ---

var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all runs to YAML or JSON on stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := openStore(pipelineConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		return store.Export(context.Background(), os.Stdout, format)
	},
}

// --- delete subcommand ---

var runsDeleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete a run from the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(pipelineConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted run %s\n", args[0])
		return nil
	},
}

func init() {
	runsListCmd.Flags().Bool("json", false, "output runs as JSON")
	runsShowCmd.Flags().Bool("json", false, "output the run as JSON")

	runsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsAnswerCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsDeleteCmd)

	rootCmd.AddCommand(runsCmd)
}
