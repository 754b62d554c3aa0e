// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/deep-research/internal/deliver"
	"github.com/pdiddy/deep-research/internal/genai"
	"github.com/pdiddy/deep-research/internal/pipeline"
	"github.com/pdiddy/deep-research/internal/runstore"
	"github.com/pdiddy/deep-research/internal/websearch"
	"github.com/pdiddy/deep-research/pkg/types"
)

// pipelineConfig assembles the pipeline configuration from the config file,
// environment, and loaded secrets. Unset values fall back to defaults.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{}

	cfg.Generation.Model = viper.GetString("generation.model")
	cfg.Generation.APIKey = secretDefault("openai-api-key", viper.GetString("generation.api_key"))
	cfg.Generation.BaseURL = viper.GetString("generation.base_url")
	cfg.Generation.MaxTokens = viper.GetInt("generation.max_tokens")

	cfg.Clarify.QuestionCount = viper.GetInt("clarify.question_count")
	cfg.Plan.SearchCount = viper.GetInt("plan.search_count")

	cfg.Search.Provider = viper.GetString("search.provider")
	cfg.Search.TavilyAPIKey = secretDefault("tavily-api-key", viper.GetString("search.tavily_api_key"))
	cfg.Search.BraveAPIKey = secretDefault("brave-api-key", viper.GetString("search.brave_api_key"))
	cfg.Search.MaxHits = viper.GetInt("search.max_hits")
	cfg.Search.SummaryWordLimit = viper.GetInt("search.summary_word_limit")
	cfg.Search.MaxSources = viper.GetInt("search.max_sources")
	cfg.Search.Timeout = viper.GetDuration("search.timeout")
	cfg.Search.UserAgent = viper.GetString("search.user_agent")

	cfg.Report.MinWords = viper.GetInt("report.min_words")
	cfg.Evaluate.PassThreshold = viper.GetInt("evaluate.pass_threshold")

	cfg.Deliver.FromAddress = viper.GetString("deliver.from_address")
	cfg.Deliver.ToAddress = viper.GetString("deliver.to_address")
	cfg.Deliver.SendGridAPIKey = secretDefault("sendgrid-api-key", viper.GetString("deliver.sendgrid_api_key"))

	cfg.Retry.MaxAttempts = viper.GetInt("retry.max_attempts")
	cfg.Store.Path = viper.GetString("store.path")
	cfg.StageTimeout = viper.GetDuration("stage_timeout")

	return cfg.WithDefaults()
}

// newPipeline wires the generation, search, and mail capabilities into a
// Pipeline. The mailer is optional: without a SendGrid key and destination
// address the delivery stage is skipped.
func newPipeline(cfg types.PipelineConfig) (*pipeline.Pipeline, error) {
	gen, err := genai.NewOpenAI(cfg.Generation)
	if err != nil {
		return nil, err
	}

	backend, err := websearch.NewBackend(cfg.Search)
	if err != nil {
		return nil, err
	}
	searcher := websearch.NewExecutor(backend, gen, cfg.Search)

	var mailer deliver.Mailer
	if cfg.Deliver.SendGridAPIKey != "" && cfg.Deliver.ToAddress != "" {
		mailer, err = deliver.NewSendGrid(cfg.Deliver)
		if err != nil {
			return nil, err
		}
	}

	return pipeline.New(gen, searcher, mailer, cfg), nil
}

func openStore(cfg types.PipelineConfig) (*runstore.Store, error) {
	return runstore.Open(cfg.Store)
}
