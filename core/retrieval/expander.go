package retrieval

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/docquery/core/graph"
	"github.com/siherrmann/docquery/model"
)

// graphTimeout bounds the relation traversal as a whole
const graphTimeout = 10 * time.Second

// Expander widens a retrieved chunk set by following document-level relations
// in the graph store. The graph store is a soft-optional dependency: when no
// relation source is configured, or when traversal fails, expansion degrades
// to returning the input unchanged. It never fails the overall query.
type Expander struct {
	chunks    ChunkStore
	relations graph.RelationSource // nil when no graph store is configured
	log       *slog.Logger
}

// NewExpander creates a new relational expander. Pass a nil relations source
// to run without a graph store.
func NewExpander(chunks ChunkStore, relations graph.RelationSource, logger *slog.Logger) *Expander {
	return &Expander{
		chunks:    chunks,
		relations: relations,
		log:       logger,
	}
}

// Expand returns the input chunks followed by up to config.ExpansionCap
// related chunks. The input order is preserved and appended chunks carry no
// similarity score. Appended chunks are deduplicated against each other and
// against the input, first seen wins.
func (e *Expander) Expand(ctx context.Context, chunks []*model.Chunk, config *model.RetrievalConfig) []*model.Chunk {
	if e.relations == nil || len(chunks) == 0 {
		return chunks
	}
	if config == nil {
		defaultConfig := model.DefaultRetrievalConfig()
		config = &defaultConfig
	}

	expandCtx, cancel := context.WithTimeout(ctx, graphTimeout)
	defer cancel()

	// Documents containing the input chunks, deduplicated
	seenDocs := make(map[uuid.UUID]bool, len(chunks))
	var documentRIDs []uuid.UUID
	for _, chunk := range chunks {
		if seenDocs[chunk.DocumentRID] {
			continue
		}
		seenDocs[chunk.DocumentRID] = true
		documentRIDs = append(documentRIDs, chunk.DocumentRID)
	}

	maxHops := config.MaxHops
	if maxHops <= 0 {
		maxHops = 1
	}
	expansionCap := config.ExpansionCap
	if expansionCap <= 0 {
		expansionCap = 20
	}

	relatedDocs, err := graph.RelatedDocuments(expandCtx, e.relations, documentRIDs, maxHops, config.RelationTypes)
	if err != nil {
		e.log.Warn("Relation traversal failed, returning unexpanded results", slog.String("error", err.Error()))
		return chunks
	}
	if len(relatedDocs) == 0 {
		return chunks
	}

	relatedIDs, err := e.chunks.SelectChunkIDsByDocuments(expandCtx, relatedDocs, expansionCap)
	if err != nil {
		e.log.Warn("Related chunk lookup failed, returning unexpanded results", slog.String("error", err.Error()))
		return chunks
	}

	// Drop ids already present in the input so a relation looping back to a
	// source document cannot duplicate a chunk in the result
	seenChunks := make(map[int]bool, len(chunks))
	for _, chunk := range chunks {
		seenChunks[chunk.ID] = true
	}
	var fetchIDs []int
	for _, id := range relatedIDs {
		if seenChunks[id] {
			continue
		}
		seenChunks[id] = true
		fetchIDs = append(fetchIDs, id)
	}
	if len(fetchIDs) == 0 {
		return chunks
	}

	related, err := e.chunks.SelectChunksByIDs(expandCtx, fetchIDs)
	if err != nil {
		e.log.Warn("Related chunk fetch failed, returning unexpanded results", slog.String("error", err.Error()))
		return chunks
	}

	for _, chunk := range related {
		chunk.RetrievalMethod = model.RetrievalMethodExpansion
	}

	e.log.Debug("Expanded retrieval results",
		slog.Int("num_input", len(chunks)),
		slog.Int("num_related", len(related)),
	)

	return append(chunks, related...)
}
