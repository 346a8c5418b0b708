package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/siherrmann/docquery/core/retrieval"
	"github.com/siherrmann/docquery/core/synthesis"
	"github.com/siherrmann/docquery/model"
)

// Orchestrator runs the full question answering flow: retrieval, optional
// relational expansion (inside the strategy), then answer synthesis. It is
// the outermost boundary of the pipeline, AnswerQuery never returns an error
// and never panics outward.
type Orchestrator struct {
	strategy    retrieval.Strategy
	synthesizer *synthesis.Synthesizer
	config      model.RetrievalConfig
	log         *slog.Logger
}

// NewOrchestrator creates an orchestrator around a retrieval strategy and a
// synthesizer. Retrieval defaults come from [model.DefaultRetrievalConfig].
func NewOrchestrator(strategy retrieval.Strategy, synthesizer *synthesis.Synthesizer, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		strategy:    strategy,
		synthesizer: synthesizer,
		config:      model.DefaultRetrievalConfig(),
		log:         logger,
	}
}

// AnswerQuery answers a natural language query from the stored documents.
// An empty documentRIDs searches all documents, otherwise retrieval is
// restricted to the given documents. Failures of any stage are folded into
// the response as an error outcome instead of being returned.
func (o *Orchestrator) AnswerQuery(ctx context.Context, query string, documentRIDs []uuid.UUID) (response model.QueryResponse) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Query answering panicked", slog.Any("panic", r))
			response = errorResponse(fmt.Sprintf("%v", r))
		}
	}()

	config := o.config
	config.DocumentRIDs = documentRIDs

	chunks, err := o.strategy.Retrieve(ctx, query, &config)
	if err != nil {
		o.log.Error("Retrieval failed", slog.Any("error", err))
		return errorResponse(err.Error())
	}

	answer := o.synthesizer.Generate(ctx, query, chunks)

	queryType := model.QueryTypeEnhanced
	if len(chunks) == 0 {
		queryType = model.QueryTypeNoResults
	}

	o.log.Info(
		"Query answered",
		slog.String("query_type", string(queryType)),
		slog.Int("chunks", len(chunks)),
		slog.String("model", answer.Model),
	)

	return model.QueryResponse{
		Answer:     answer.Answer,
		Sources:    answer.Sources,
		Confidence: answer.Confidence,
		QueryType:  queryType,
	}
}

// errorResponse folds a failure into a response the caller can always use.
func errorResponse(message string) model.QueryResponse {
	return model.QueryResponse{
		Answer:     fmt.Sprintf("I encountered an error processing your question: %s", message),
		Sources:    []model.Source{},
		Confidence: 0.0,
		QueryType:  model.QueryTypeError,
	}
}
