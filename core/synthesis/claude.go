package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/siherrmann/docquery/helper"
)

// DefaultClaudeModel is the default generation model
const DefaultClaudeModel = "claude-3-5-haiku-latest"

// ClaudeBackend generates answers with the Anthropic API.
type ClaudeBackend struct {
	client anthropic.Client
	model  string
}

// NewClaudeBackend creates a Claude backend.
// If model is empty [DefaultClaudeModel] is used.
func NewClaudeBackend(apiKey string, model string) (*ClaudeBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing api key")
	}
	if model == "" {
		model = DefaultClaudeModel
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &ClaudeBackend{client: client, model: model}, nil
}

func (c *ClaudeBackend) Generate(ctx context.Context, prompt string, config GenerationConfig) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(config.MaxOutputTokens),
		Temperature: anthropic.Float(float64(config.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", helper.NewError("Messages.New", err)
	}

	var builder strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", c.model)
	}
	return text, nil
}

func (c *ClaudeBackend) Probe(ctx context.Context) error {
	_, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 8,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return helper.NewError("Messages.New", err)
	}
	return nil
}

func (c *ClaudeBackend) ModelName() string {
	return c.model
}
