package model

import (
	"time"

	"github.com/google/uuid"
)

// RelationType represents the type of relationship between documents
type RelationType string

const (
	RelationTypeCites      RelationType = "cites"
	RelationTypeAuthoredBy RelationType = "authored_by"
	RelationTypeSimilarTo  RelationType = "similar_to"
)

// Relation represents a document-level relationship used for retrieval expansion
type Relation struct {
	ID                uuid.UUID    `json:"id"`
	SourceDocumentRID uuid.UUID    `json:"source_document_rid"`
	TargetDocumentRID uuid.UUID    `json:"target_document_rid"`
	RelationType      RelationType `json:"relation_type"`
	Weight            float64      `json:"weight"`
	Bidirectional     bool         `json:"bidirectional"`
	Metadata          Metadata     `json:"metadata,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
}
