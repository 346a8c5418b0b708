package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/docquery/core/pipeline"
	"github.com/siherrmann/docquery/helper"
	"github.com/siherrmann/docquery/model"
)

// storeTimeout bounds every single call against the primary store
const storeTimeout = 10 * time.Second

// ChunkStore defines the primary-store operations used by retrieval
type ChunkStore interface {
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, documentRIDs []uuid.UUID) ([]*model.Chunk, error)
	SelectChunksByIDs(ctx context.Context, ids []int) ([]*model.Chunk, error)
	SelectChunkIDsByDocuments(ctx context.Context, documentRIDs []uuid.UUID, limit int) ([]int, error)
}

// Retriever is the gateway to the persisted chunk store. It embeds the query
// and runs a similarity search, optionally restricted to a set of documents.
// Store errors surface to the caller, the retriever never fabricates results.
type Retriever struct {
	chunks ChunkStore
	embed  pipeline.EmbedFunc
	log    *slog.Logger
}

// NewRetriever creates a new chunk store gateway
func NewRetriever(chunks ChunkStore, embed pipeline.EmbedFunc, logger *slog.Logger) *Retriever {
	return &Retriever{
		chunks: chunks,
		embed:  embed,
		log:    logger,
	}
}

// Retrieve returns up to maxResults chunks ranked by similarity to the query,
// with Similarity populated and Embedding omitted. A non-empty documentRIDs
// set restricts results to those documents, filtered in the store.
func (r *Retriever) Retrieve(ctx context.Context, query string, maxResults int, documentRIDs []uuid.UUID) ([]*model.Chunk, error) {
	if maxResults <= 0 {
		return nil, helper.NewError("retrieve", fmt.Errorf("max results must be positive, got %d", maxResults))
	}

	embedding, err := r.embed(query)
	if err != nil {
		return nil, helper.NewError("generate query embedding", err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	chunks, err := r.chunks.SelectChunksBySimilarity(queryCtx, embedding, maxResults, documentRIDs)
	if err != nil {
		return nil, helper.NewError("similarity search", err)
	}

	r.log.Debug("Retrieved chunks by similarity",
		slog.Int("num_chunks", len(chunks)),
		slog.Int("max_results", maxResults),
		slog.Int("num_document_filters", len(documentRIDs)),
	)

	return chunks, nil
}
