// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/deep-research/pkg/types"
)

// OpenAI is a Generator backed by the OpenAI chat completions API. It
// requests JSON-object responses so stage outputs can be decoded directly.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAI builds an OpenAI generator from the generation config. A missing
// API key is a ConfigError: the pipeline must not start without credentials.
func NewOpenAI(cfg types.GenerationConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, &types.ConfigError{Setting: "generation.api_key", Detail: "OpenAI API key is required"}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Generate sends instructions as the system message and input as the user
// message, returning the raw completion text.
func (o *OpenAI) Generate(ctx context.Context, instructions, input string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instructions},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	}
	if o.maxTokens > 0 {
		req.MaxTokens = o.maxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &types.CapabilityError{Capability: "generation", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &types.CapabilityError{Capability: "generation", Err: fmt.Errorf("empty completion for model %s", o.model)}
	}
	return resp.Choices[0].Message.Content, nil
}
