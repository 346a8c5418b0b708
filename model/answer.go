package model

// QueryType classifies how a query response was produced.
// It exists for observability, not for control flow.
type QueryType string

const (
	QueryTypeNoResults QueryType = "no-results"
	QueryTypeEnhanced  QueryType = "enhanced"
	QueryTypeError     QueryType = "error"
)

// Source points back at a chunk that contributed to an answer
type Source struct {
	ChunkID        int    `json:"chunk_id"`
	DocumentID     int64  `json:"document_id"`
	ContentPreview string `json:"content_preview"`
}

// GeneratedAnswer is the result of answer synthesis.
// Confidence is a coarse provenance indicator (which tier produced the
// answer), not a calibrated probability.
type GeneratedAnswer struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []Source `json:"sources"`
	Model      string   `json:"model"`
}

// QueryResponse is the externally visible result of answering a query
type QueryResponse struct {
	Answer     string    `json:"answer"`
	Sources    []Source  `json:"sources"`
	Confidence float64   `json:"confidence"`
	QueryType  QueryType `json:"query_type"`
}
