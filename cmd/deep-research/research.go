// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deep-research/internal/pipeline"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Run the full research pipeline for a query",
	Long: `Research takes a query through the whole pipeline and prints the final
Markdown report to stdout. Progress goes to stderr.

By default the pipeline first asks clarifying questions and reads answers
interactively from stdin; press Enter to leave a question unanswered. Use
--skip-clarify to go straight to planning, or --clarify-only to persist the
run with its questions and answer it later with "runs answer".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	skipClarify, _ := cmd.Flags().GetBool("skip-clarify")
	clarifyOnly, _ := cmd.Flags().GetBool("clarify-only")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	to, _ := cmd.Flags().GetString("to")

	cfg := pipelineConfig()
	if to != "" {
		cfg.Deliver.ToAddress = to
	}

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
	run := pipeline.NewRun(strings.Join(args, " "))

	if !skipClarify {
		if err := pipe.Clarify(ctx, run, os.Stderr); err != nil {
			store.Save(ctx, run)
			return err
		}

		if clarifyOnly {
			if err := store.Save(ctx, run); err != nil {
				return err
			}
			fmt.Printf("run %s awaiting answers:\n", run.ID)
			for i, q := range run.PendingQuestions {
				fmt.Printf("  %d. %s\n", i+1, q)
			}
			fmt.Printf("\nanswer with: deep-research runs answer %s\n", run.ID)
			return nil
		}

		answers, err := promptAnswers(run.PendingQuestions)
		if err != nil {
			return err
		}
		if err := pipeline.Answer(run, answers); err != nil {
			return err
		}
	}

	runErr := pipe.Run(ctx, run, os.Stderr)
	if err := store.Save(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: persisting run: %v\n", err)
	}
	if runErr != nil {
		return runErr
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	report := run.FinalReport()
	fmt.Println(report.MarkdownBody)
	if len(report.FollowUpQuestions) > 0 {
		fmt.Println("\n## Follow-up questions")
		for _, q := range report.FollowUpQuestions {
			fmt.Printf("- %s\n", q)
		}
	}
	return nil
}

// promptAnswers asks each clarifying question on stderr and reads one answer
// per line from stdin. An empty line leaves the question unanswered.
func promptAnswers(questions []string) ([]string, error) {
	reader := bufio.NewReader(os.Stdin)
	answers := make([]string, 0, len(questions))
	for i, q := range questions {
		fmt.Fprintf(os.Stderr, "%d. %s\n> ", i+1, q)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("reading answer %d: %w", i+1, err)
		}
		answers = append(answers, strings.TrimSpace(line))
	}
	return answers, nil
}

func init() {
	researchCmd.Flags().Bool("skip-clarify", false, "skip clarifying questions and plan directly from the query")
	researchCmd.Flags().Bool("clarify-only", false, "persist the run after clarifying and exit; answer later with runs answer")
	researchCmd.Flags().String("to", "", "destination email address (overrides deliver.to_address)")
	researchCmd.Flags().Bool("json", false, "print the full run as JSON instead of the report body")

	rootCmd.AddCommand(researchCmd)
}
