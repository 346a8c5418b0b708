package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/siherrmann/docquery/helper"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the default generation model
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiBackend generates answers with the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini backend.
// If model is empty [DefaultGeminiModel] is used.
func NewGeminiBackend(ctx context.Context, apiKey string, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing api key")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, helper.NewError("NewClient", err)
	}

	return &GeminiBackend{client: client, model: model}, nil
}

func (g *GeminiBackend) Generate(ctx context.Context, prompt string, config GenerationConfig) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(config.Temperature),
		MaxOutputTokens: config.MaxOutputTokens,
	})
	if err != nil {
		return "", helper.NewError("GenerateContent", err)
	}

	text := extractText(response)
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", g.model)
	}
	return text, nil
}

func (g *GeminiBackend) Probe(ctx context.Context) error {
	contents := []*genai.Content{
		genai.NewContentFromText("ping", genai.RoleUser),
	}
	_, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: 8,
	})
	if err != nil {
		return helper.NewError("GenerateContent", err)
	}
	return nil
}

func (g *GeminiBackend) ModelName() string {
	return g.model
}

func extractText(response *genai.GenerateContentResponse) string {
	if response == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range response.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				builder.WriteString(part.Text)
			}
		}
	}
	return strings.TrimSpace(builder.String())
}
