package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/docquery/model"
)

const (
	// modelContextChunks is the number of chunks included in the model prompt
	modelContextChunks = 8
	// extractionChunks is the number of chunks quoted by the extraction tier
	extractionChunks = 5
	// excerptLength is the maximum excerpt length quoted by the extraction tier
	excerptLength = 500
	// previewLength is the maximum content preview length in source references
	previewLength = 200
	// minAnswerLength is the minimum accepted length of a model answer
	minAnswerLength = 20

	defaultTemperature     = 0.3
	defaultMaxOutputTokens = 2048

	generationTimeout = 60 * time.Second
)

// Model identifiers for answers produced without a generative backend.
const (
	ModelNoDocuments        = "no-documents"
	ModelEnhancedExtraction = "enhanced-extraction"
)

// Confidence levels per tier.
const (
	ConfidenceNoDocuments = 0.1
	ConfidenceModel       = 0.9
	ConfidenceExtraction  = 0.75
)

// tier is one answer strategy. Run returns the answer and true when the tier
// produced one, or false to hand over to the next tier in the chain.
type tier struct {
	name string
	run  func(ctx context.Context, query string, chunks []*model.Chunk) (*model.GeneratedAnswer, bool)
}

// Synthesizer turns retrieved chunks into a grounded answer. Tiers are tried
// in order: empty input, model synthesis, extraction. The last tier never
// declines, so Generate always returns an answer.
type Synthesizer struct {
	backend      Backend
	availability Availability
	config       GenerationConfig
	log          *slog.Logger
	tiers        []tier
}

// NewSynthesizer creates a synthesizer around an optional backend. The
// backend is probed exactly once here; the probe result is fixed for the
// lifetime of the synthesizer. A nil or unreachable backend is valid and
// routes all non-empty queries to the extraction tier.
func NewSynthesizer(ctx context.Context, backend Backend, logger *slog.Logger) *Synthesizer {
	availability := ProbeBackend(ctx, backend)
	if !availability.Available {
		logger.Warn("Generative backend unavailable, falling back to extraction", slog.String("reason", availability.Reason))
	}

	s := &Synthesizer{
		backend:      backend,
		availability: availability,
		config: GenerationConfig{
			Temperature:     defaultTemperature,
			MaxOutputTokens: defaultMaxOutputTokens,
		},
		log: logger,
	}
	s.tiers = []tier{
		{name: "no-documents", run: s.noDocuments},
		{name: "model", run: s.modelSynthesis},
		{name: "extraction", run: s.extraction},
	}
	return s
}

// Availability reports the result of the startup backend probe.
func (s *Synthesizer) Availability() Availability {
	return s.availability
}

// Generate produces an answer for the query from the given chunks.
// It never fails, every input resolves to one of the tiers.
func (s *Synthesizer) Generate(ctx context.Context, query string, chunks []*model.Chunk) *model.GeneratedAnswer {
	for _, t := range s.tiers {
		if answer, ok := t.run(ctx, query, chunks); ok {
			s.log.Debug(
				"Answer synthesized",
				slog.String("tier", t.name),
				slog.String("model", answer.Model),
				slog.Float64("confidence", answer.Confidence),
			)
			return answer
		}
	}
	// Not reachable, the extraction tier never declines.
	answer, _ := s.extraction(ctx, query, chunks)
	return answer
}

func (s *Synthesizer) noDocuments(ctx context.Context, query string, chunks []*model.Chunk) (*model.GeneratedAnswer, bool) {
	if len(chunks) > 0 {
		return nil, false
	}
	return &model.GeneratedAnswer{
		Answer:     fmt.Sprintf("I don't have any relevant documents to answer your question: '%s'. Please upload documents first.", query),
		Confidence: ConfidenceNoDocuments,
		Sources:    []model.Source{},
		Model:      ModelNoDocuments,
	}, true
}

func (s *Synthesizer) modelSynthesis(ctx context.Context, query string, chunks []*model.Chunk) (*model.GeneratedAnswer, bool) {
	if !s.availability.Available {
		return nil, false
	}

	promptChunks := chunks
	if len(promptChunks) > modelContextChunks {
		promptChunks = promptChunks[:modelContextChunks]
	}
	prompt := buildPrompt(query, promptChunks)

	callCtx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	text, err := s.backend.Generate(callCtx, prompt, s.config)
	if err != nil {
		s.log.Warn("Model synthesis failed, falling back to extraction", slog.Any("error", err))
		return nil, false
	}
	if len(strings.TrimSpace(text)) < minAnswerLength {
		s.log.Warn("Model answer too short, falling back to extraction", slog.Int("length", len(strings.TrimSpace(text))))
		return nil, false
	}

	return &model.GeneratedAnswer{
		Answer:     strings.TrimSpace(text),
		Confidence: ConfidenceModel,
		Sources:    extractSources(promptChunks),
		Model:      s.backend.ModelName(),
	}, true
}

func (s *Synthesizer) extraction(ctx context.Context, query string, chunks []*model.Chunk) (*model.GeneratedAnswer, bool) {
	quoted := chunks
	if len(quoted) > extractionChunks {
		quoted = quoted[:extractionChunks]
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Based on the available documents, here's what I found regarding '%s':\n", query))
	for i, chunk := range quoted {
		builder.WriteString(fmt.Sprintf("\n%d. From document section %d:\n%s", i+1, chunk.ID, chunk.Preview(excerptLength)))
	}
	builder.WriteString(fmt.Sprintf("\n\nThis information is compiled from %d relevant document sections.", len(chunks)))

	return &model.GeneratedAnswer{
		Answer:     builder.String(),
		Confidence: ConfidenceExtraction,
		Sources:    extractSources(quoted),
		Model:      ModelEnhancedExtraction,
	}, true
}

// buildPrompt renders the grounded answering prompt with numbered excerpts.
func buildPrompt(query string, chunks []*model.Chunk) string {
	var builder strings.Builder
	builder.WriteString("You are an expert research assistant analyzing documents to answer questions accurately.\n\n")
	builder.WriteString(fmt.Sprintf("Question: %s\n\n", query))
	builder.WriteString("Relevant Document Excerpts:\n")
	for i, chunk := range chunks {
		builder.WriteString(fmt.Sprintf("\n[Source %d - Chunk %d]\n%s\n", i+1, chunk.ID, chunk.Content))
	}
	builder.WriteString("\nInstructions:\n")
	builder.WriteString("1. Provide a detailed, accurate answer based ONLY on the information in the excerpts above.\n")
	builder.WriteString("2. Cite the sources you used as [Source N].\n")
	builder.WriteString("3. If the excerpts do not contain enough information, say so explicitly.\n")
	builder.WriteString("4. Do not invent facts that are not present in the excerpts.\n")
	builder.WriteString("\nAnswer:")
	return builder.String()
}

// extractSources maps chunks to source references with shortened previews.
func extractSources(chunks []*model.Chunk) []model.Source {
	sources := make([]model.Source, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, model.Source{
			ChunkID:        chunk.ID,
			DocumentID:     chunk.DocumentID,
			ContentPreview: chunk.Preview(previewLength),
		})
	}
	return sources
}
