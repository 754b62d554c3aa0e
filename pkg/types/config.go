// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "deep-research/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// GenerationConfig holds settings for the text-generation capability shared
// by the clarify, plan, report, evaluate, and deliver stages.
type GenerationConfig struct {
	// Model is the model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the generation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint. Empty uses the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxTokens caps the completion length. Zero uses the provider default.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// ClarifyConfig holds settings for the clarify stage.
type ClarifyConfig struct {
	// QuestionCount is the exact number of clarifying questions to
	// produce per run (default 3).
	QuestionCount int `json:"question_count" yaml:"question_count"`
}

// PlanConfig holds settings for the plan stage.
type PlanConfig struct {
	// SearchCount is the exact number of search tasks to plan per run
	// (default 3).
	SearchCount int `json:"search_count" yaml:"search_count"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the web-search backend: tavily or brave.
	Provider string `json:"provider" yaml:"provider"`

	// TavilyAPIKey authenticates against the Tavily API.
	TavilyAPIKey string `json:"tavily_api_key,omitempty" yaml:"tavily_api_key,omitempty"`

	// BraveAPIKey authenticates against the Brave Search API.
	BraveAPIKey string `json:"brave_api_key,omitempty" yaml:"brave_api_key,omitempty"`

	// MaxHits caps the raw results fetched per search term (default 5).
	MaxHits int `json:"max_hits" yaml:"max_hits"`

	// SummaryWordLimit caps the per-result summary length (default 500).
	SummaryWordLimit int `json:"summary_word_limit" yaml:"summary_word_limit"`

	// MaxSources caps the cited sources per result (default 5).
	MaxSources int `json:"max_sources" yaml:"max_sources"`
}

// ReportConfig holds settings for the report stage.
type ReportConfig struct {
	// MinWords is the soft length target communicated to the generation
	// capability (default 1000). It is not mechanically enforced.
	MinWords int `json:"min_words" yaml:"min_words"`
}

// EvaluateConfig holds settings for the evaluate stage.
type EvaluateConfig struct {
	// PassThreshold is the minimum score that passes (default 3).
	PassThreshold int `json:"pass_threshold" yaml:"pass_threshold"`
}

// DeliverConfig holds settings for the email handoff stage.
type DeliverConfig struct {
	// FromAddress is the sender address.
	FromAddress string `json:"from_address" yaml:"from_address"`

	// ToAddress is the default destination address.
	ToAddress string `json:"to_address" yaml:"to_address"`

	// SendGridAPIKey authenticates against the SendGrid API.
	SendGridAPIKey string `json:"sendgrid_api_key,omitempty" yaml:"sendgrid_api_key,omitempty"`
}

// RetryConfig is the single retry policy applied uniformly to every stage
// invocation by the orchestrator.
type RetryConfig struct {
	// MaxAttempts is the total attempts per stage, including the first
	// (default 2: one retry). Only schema violations are retried.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
}

// StoreConfig holds settings for run persistence.
type StoreConfig struct {
	// Path is the SQLite database file (default "deep-research.db").
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations for one pipeline.
type PipelineConfig struct {
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Clarify    ClarifyConfig    `json:"clarify" yaml:"clarify"`
	Plan       PlanConfig       `json:"plan" yaml:"plan"`
	Search     SearchConfig     `json:"search" yaml:"search"`
	Report     ReportConfig     `json:"report" yaml:"report"`
	Evaluate   EvaluateConfig   `json:"evaluate" yaml:"evaluate"`
	Deliver    DeliverConfig    `json:"deliver" yaml:"deliver"`
	Retry      RetryConfig      `json:"retry" yaml:"retry"`
	Store      StoreConfig      `json:"store" yaml:"store"`

	// StageTimeout bounds each stage invocation (default 60s) so a run
	// cannot hang indefinitely on a network-bound stage.
	StageTimeout time.Duration `json:"stage_timeout" yaml:"stage_timeout"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4o-mini"
	}
	if c.Clarify.QuestionCount <= 0 {
		c.Clarify.QuestionCount = 3
	}
	if c.Plan.SearchCount <= 0 {
		c.Plan.SearchCount = 3
	}
	if c.Search.Provider == "" {
		c.Search.Provider = "tavily"
	}
	if c.Search.MaxHits <= 0 {
		c.Search.MaxHits = 5
	}
	if c.Search.SummaryWordLimit <= 0 {
		c.Search.SummaryWordLimit = 500
	}
	if c.Search.MaxSources <= 0 {
		c.Search.MaxSources = 5
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = 30 * time.Second
	}
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = "deep-research/0.1"
	}
	if c.Report.MinWords <= 0 {
		c.Report.MinWords = 1000
	}
	if c.Evaluate.PassThreshold <= 0 {
		c.Evaluate.PassThreshold = 3
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 2
	}
	if c.Store.Path == "" {
		c.Store.Path = "deep-research.db"
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = 60 * time.Second
	}
	return c
}
