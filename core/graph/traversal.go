package graph

import (
	"context"

	"github.com/google/uuid"
	"github.com/siherrmann/docquery/model"
)

// RelationSource defines the graph-store operations needed for traversal
type RelationSource interface {
	SelectRelationsConnectedToDocument(ctx context.Context, documentRID uuid.UUID, relationTypes []model.RelationType) ([]*model.Relation, error)
}

// TraversalResult contains a document and its distance from the start set
type TraversalResult struct {
	DocumentRID uuid.UUID
	Distance    int
}

// RelatedDocuments performs a bounded breadth-first walk over document
// relations starting from the given documents. It returns the documents
// reachable within maxHops, excluding the start set, in discovery order.
// Outgoing relations are always followed; incoming ones only when the
// relation is bidirectional (the source decides, see RelationSource).
func RelatedDocuments(ctx context.Context, source RelationSource, startRIDs []uuid.UUID, maxHops int, relationTypes []model.RelationType) ([]uuid.UUID, error) {
	visited := make(map[uuid.UUID]bool, len(startRIDs))
	var queue []TraversalResult
	for _, rid := range startRIDs {
		if visited[rid] {
			continue
		}
		visited[rid] = true
		queue = append(queue, TraversalResult{DocumentRID: rid, Distance: 0})
	}

	var related []uuid.UUID

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.Distance > 0 {
			related = append(related, current.DocumentRID)
		}

		if current.Distance >= maxHops {
			continue
		}

		relations, err := source.SelectRelationsConnectedToDocument(ctx, current.DocumentRID, relationTypes)
		if err != nil {
			return nil, err
		}

		for _, relation := range relations {
			targetRID := relation.TargetDocumentRID
			if targetRID == current.DocumentRID {
				// Incoming bidirectional relation, walk it backwards
				targetRID = relation.SourceDocumentRID
			}

			if visited[targetRID] {
				continue
			}
			visited[targetRID] = true

			queue = append(queue, TraversalResult{
				DocumentRID: targetRID,
				Distance:    current.Distance + 1,
			})
		}
	}

	return related, nil
}
