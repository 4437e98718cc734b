package synthesis

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// #region constants

const (
	// DefaultModel is the model used for risk explanations.
	DefaultModel = "claude-sonnet-4-5-20250929"

	// DefaultMaxOutputTokens bounds a single explanation.
	DefaultMaxOutputTokens = 512

	systemPrompt = "You are an analyst in a student support system. You explain " +
		"risk assessments over bureaucratic friction events in 2-3 plain, specific, " +
		"actionable sentences. Never speculate about a student's character or " +
		"demographics; describe only the administrative pattern."
)

// #endregion constants

// #region client

// AnthropicGenerator is the live reasoning path backed by the Messages API.
type AnthropicGenerator struct {
	client          anthropic.Client
	model           string
	maxOutputTokens int64
}

// AnthropicConfig configures the live generator.
type AnthropicConfig struct {
	APIKey          string `koanf:"api_key"`
	Model           string `koanf:"model"`
	MaxOutputTokens int    `koanf:"max_output_tokens"`
}

// NewAnthropicGenerator creates the live generator. With an empty API key the
// SDK falls back to its environment configuration.
func NewAnthropicGenerator(cfg AnthropicConfig) *AnthropicGenerator {
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := int64(DefaultMaxOutputTokens)
	if cfg.MaxOutputTokens > 0 {
		maxTokens = int64(cfg.MaxOutputTokens)
	}

	return &AnthropicGenerator{
		client:          anthropic.NewClient(opts...),
		model:           model,
		maxOutputTokens: maxTokens,
	}
}

// #endregion client

// #region generate

// Generate sends one prompt and returns the text content of the reply.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxOutputTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("messages api: %w", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

// #endregion generate
