package retrieval

import (
	"context"

	"github.com/siherrmann/docquery/model"
)

// Strategy defines a retrieval strategy
type Strategy interface {
	Retrieve(ctx context.Context, query string, config *model.RetrievalConfig) ([]*model.Chunk, error)
}

// SimpleStrategy performs pure vector similarity retrieval
type SimpleStrategy struct {
	retriever *Retriever
}

// NewSimpleStrategy creates a new similarity-only strategy
func NewSimpleStrategy(retriever *Retriever) *SimpleStrategy {
	return &SimpleStrategy{retriever: retriever}
}

// Retrieve performs similarity-only retrieval
func (s *SimpleStrategy) Retrieve(ctx context.Context, query string, config *model.RetrievalConfig) ([]*model.Chunk, error) {
	return s.retriever.Retrieve(ctx, query, config.MaxResults, config.DocumentRIDs)
}

// ExpandedStrategy performs similarity retrieval followed by best-effort
// relational expansion, for queries that benefit from multi-hop context
type ExpandedStrategy struct {
	retriever *Retriever
	expander  *Expander
}

// NewExpandedStrategy creates a new expanded strategy
func NewExpandedStrategy(retriever *Retriever, expander *Expander) *ExpandedStrategy {
	return &ExpandedStrategy{
		retriever: retriever,
		expander:  expander,
	}
}

// Retrieve performs similarity retrieval and appends related chunks.
// The ranked prefix keeps its order, appended chunks are unscored.
func (s *ExpandedStrategy) Retrieve(ctx context.Context, query string, config *model.RetrievalConfig) ([]*model.Chunk, error) {
	chunks, err := s.retriever.Retrieve(ctx, query, config.MaxResults, config.DocumentRIDs)
	if err != nil {
		return nil, err
	}

	return s.expander.Expand(ctx, chunks, config), nil
}
