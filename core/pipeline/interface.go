package pipeline

import "github.com/siherrmann/docquery/model"

// ChunkFunc is a function that splits text into index-ordered chunks
type ChunkFunc func(text string) ([]ChunkPiece, error)

// EmbedFunc is a function that generates a fixed-length embedding for text.
// Implementations are assumed deterministic and side-effect-free.
type EmbedFunc func(text string) ([]float32, error)

// ChunkPiece represents a chunk of text with its position in the document
type ChunkPiece struct {
	Content    string
	ChunkIndex *int
	Metadata   map[string]interface{}
}

// Pipeline combines chunking and embedding functions for document ingestion
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Process processes text through the pipeline, returning chunks with embeddings
func (p *Pipeline) Process(text string) ([]*model.Chunk, error) {
	pieces, err := p.Chunker(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]*model.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		embedding, err := p.Embedder(piece.Content)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, &model.Chunk{
			Content:    piece.Content,
			ChunkIndex: piece.ChunkIndex,
			Embedding:  embedding,
			Metadata:   piece.Metadata,
		})
	}

	return chunks, nil
}
