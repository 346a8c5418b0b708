package model

import "github.com/google/uuid"

// RetrievalConfig represents configuration for a retrieval query
type RetrievalConfig struct {
	// Vector search parameters
	MaxResults int `json:"max_results"`

	// Document filtering
	DocumentRIDs []uuid.UUID `json:"document_rids,omitempty"` // Filter by specific documents

	// Expansion parameters
	MaxHops             int            `json:"max_hops,omitempty"`
	RelationTypes       []RelationType `json:"relation_types,omitempty"` // Filter by relation types
	FollowBidirectional bool           `json:"follow_bidirectional"`
	ExpansionCap        int            `json:"expansion_cap"` // Max related chunks appended by expansion
}

// DefaultRetrievalConfig returns a sensible default configuration
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		MaxResults:          15,
		MaxHops:             1,
		RelationTypes:       nil, // All types
		FollowBidirectional: true,
		ExpansionCap:        20,
	}
}
