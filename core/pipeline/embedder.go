package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/docquery/helper"
	"google.golang.org/genai"
)

// embedTimeout bounds a single remote embedding call.
const embedTimeout = 30 * time.Second

// DefaultEmbedder creates an embedder using a local sentence transformer model.
// Uses the all-MiniLM-L6-v2 model which produces 384-dimensional embeddings.
func DefaultEmbedder() (EmbedFunc, error) {
	// Prepare model (download if needed)
	modelName := "sentence-transformers/all-MiniLM-L6-v2"
	modelPath, err := helper.PrepareModel(modelName)
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	// Create sentence transformers pipeline configuration
	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return func(text string) ([]float32, error) {
		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}

		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		return result.Embeddings[0], nil
	}, nil
}

// GeminiEmbedder creates an embedder backed by the Gemini embedding API.
// The returned function produces vectors of the requested dimension.
func GeminiEmbedder(ctx context.Context, apiKey string, modelName string, dimension int) (EmbedFunc, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required for the Gemini embedder")
	}
	if modelName == "" {
		modelName = "gemini-embedding-001"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	outputDim := int32(dimension)

	return func(text string) ([]float32, error) {
		if text == "" {
			return nil, fmt.Errorf("text cannot be empty for embedding generation")
		}

		embedCtx, cancel := context.WithTimeout(context.Background(), embedTimeout)
		defer cancel()

		result, err := client.Models.EmbedContent(
			embedCtx,
			modelName,
			[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
			&genai.EmbedContentConfig{OutputDimensionality: &outputDim},
		)
		if err != nil {
			return nil, fmt.Errorf("embedding generation failed: %w", err)
		}

		if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0].Values == nil {
			return nil, fmt.Errorf("no embedding returned from API")
		}

		embedding := result.Embeddings[0].Values
		if len(embedding) != dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", dimension, len(embedding))
		}

		return embedding, nil
	}, nil
}
