package model

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type RetrievalMethod string

const (
	RetrievalMethodVector    RetrievalMethod = "vector"
	RetrievalMethodExpansion RetrievalMethod = "expansion"
)

// Chunk represents a retrievable unit of document text.
// Chunks are created by ingestion and are read-only to the query pipeline.
type Chunk struct {
	ID          int       `json:"id"`
	DocumentID  int64     `json:"document_id"`
	DocumentRID uuid.UUID `json:"document_rid"`
	Content     string    `json:"content"`
	ChunkIndex  *int      `json:"chunk_index,omitempty"`
	Embedding   []float32 `json:"embedding,omitempty"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// Results
	// Similarity is 1 - cosine distance, populated only by similarity retrieval.
	Similarity      *float64        `json:"similarity,omitempty"`
	RetrievalMethod RetrievalMethod `json:"retrieval_method,omitempty"`
}

// Preview returns at most the first n bytes of the chunk content,
// never cutting a UTF-8 rune mid-sequence.
func (c *Chunk) Preview(n int) string {
	if len(c.Content) <= n {
		return c.Content
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(c.Content[cut]) {
		cut--
	}
	return c.Content[:cut]
}
