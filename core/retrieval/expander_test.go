package retrieval

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/docquery/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChunkStore is an in-memory ChunkStore for failure-path tests
type fakeChunkStore struct {
	chunksByID map[int]*model.Chunk
	idsByDoc   map[uuid.UUID][]int
	idsErr     error
	fetchErr   error
}

func (f *fakeChunkStore) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, documentRIDs []uuid.UUID) ([]*model.Chunk, error) {
	return nil, nil
}

func (f *fakeChunkStore) SelectChunksByIDs(ctx context.Context, ids []int) ([]*model.Chunk, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var chunks []*model.Chunk
	for _, id := range ids {
		if chunk, ok := f.chunksByID[id]; ok {
			copied := *chunk
			chunks = append(chunks, &copied)
		}
	}
	return chunks, nil
}

func (f *fakeChunkStore) SelectChunkIDsByDocuments(ctx context.Context, documentRIDs []uuid.UUID, limit int) ([]int, error) {
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	var ids []int
	for _, rid := range documentRIDs {
		ids = append(ids, f.idsByDoc[rid]...)
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// fakeRelations returns fixed relations or an error
type fakeRelations struct {
	relations []*model.Relation
	err       error
}

func (f *fakeRelations) SelectRelationsConnectedToDocument(ctx context.Context, documentRID uuid.UUID, relationTypes []model.RelationType) ([]*model.Relation, error) {
	if f.err != nil {
		return nil, f.err
	}
	var connected []*model.Relation
	for _, relation := range f.relations {
		if relation.SourceDocumentRID == documentRID {
			connected = append(connected, relation)
		}
	}
	return connected, nil
}

func TestExpanderExpandWithDatabase(t *testing.T) {
	chunks, documents, relations := initHandlers(t)
	ctx := context.Background()

	docA := &model.Document{Title: "Document A", Metadata: map[string]interface{}{}}
	require.NoError(t, documents.InsertDocument(docA))
	docB := &model.Document{Title: "Document B", Metadata: map[string]interface{}{}}
	require.NoError(t, documents.InsertDocument(docB))

	chunkA := &model.Chunk{
		DocumentID: docA.ID,
		Content:    "Chunk in document A",
		Embedding:  axisEmbedding(0),
		Metadata:   map[string]interface{}{},
	}
	require.NoError(t, chunks.InsertChunk(chunkA))

	chunkB1 := &model.Chunk{
		DocumentID: docB.ID,
		Content:    "First chunk in document B",
		Embedding:  axisEmbedding(1),
		Metadata:   map[string]interface{}{},
	}
	require.NoError(t, chunks.InsertChunk(chunkB1))

	chunkB2 := &model.Chunk{
		DocumentID: docB.ID,
		Content:    "Second chunk in document B",
		Embedding:  axisEmbedding(2),
		Metadata:   map[string]interface{}{},
	}
	require.NoError(t, chunks.InsertChunk(chunkB2))

	relation := &model.Relation{
		SourceDocumentRID: docA.RID,
		TargetDocumentRID: docB.RID,
		RelationType:      model.RelationTypeCites,
	}
	require.NoError(t, relations.InsertRelation(relation))

	retriever := NewRetriever(chunks, axisEmbedder(0), testLogger())

	t.Run("Expansion appends chunks of related documents", func(t *testing.T) {
		expander := NewExpander(chunks, relations, testLogger())

		input, err := retriever.Retrieve(ctx, "query", 10, []uuid.UUID{docA.RID})
		require.NoError(t, err)
		require.Len(t, input, 1)

		config := model.DefaultRetrievalConfig()
		expanded := expander.Expand(ctx, input, &config)

		require.Len(t, expanded, 3, "Expected both chunks of the related document to be appended")
		assert.Equal(t, chunkA.ID, expanded[0].ID, "Expected the ranked prefix to keep its order")
		for _, chunk := range expanded[1:] {
			assert.Equal(t, docB.RID, chunk.DocumentRID)
			assert.Equal(t, model.RetrievalMethodExpansion, chunk.RetrievalMethod)
			assert.Nil(t, chunk.Similarity, "Expected appended chunks to carry no similarity score")
		}
	})

	t.Run("Expansion cap limits appended chunks", func(t *testing.T) {
		expander := NewExpander(chunks, relations, testLogger())

		input, err := retriever.Retrieve(ctx, "query", 10, []uuid.UUID{docA.RID})
		require.NoError(t, err)

		config := model.DefaultRetrievalConfig()
		config.ExpansionCap = 1
		expanded := expander.Expand(ctx, input, &config)

		assert.Len(t, expanded, 2, "Expected at most one appended chunk")
	})

	t.Run("No relations leaves results unchanged", func(t *testing.T) {
		expander := NewExpander(chunks, relations, testLogger())

		input, err := retriever.Retrieve(ctx, "query", 10, []uuid.UUID{docB.RID})
		require.NoError(t, err)
		require.Len(t, input, 2)

		config := model.DefaultRetrievalConfig()
		expanded := expander.Expand(ctx, input, &config)

		assert.Len(t, expanded, 2, "Expected no expansion for a document without outgoing relations")
	})

	// Cleanup
	documents.DeleteDocument(docA.RID)
	documents.DeleteDocument(docB.RID)
}

func TestExpanderExpandDegradation(t *testing.T) {
	ctx := context.Background()
	docRID := uuid.New()
	relatedRID := uuid.New()

	input := []*model.Chunk{
		{ID: 1, DocumentRID: docRID, Content: "input chunk"},
	}

	t.Run("Nil relation source passes input through", func(t *testing.T) {
		expander := NewExpander(&fakeChunkStore{}, nil, testLogger())

		expanded := expander.Expand(ctx, input, nil)
		assert.Equal(t, input, expanded, "Expected pass-through without a graph store")
	})

	t.Run("Nil config falls back to defaults", func(t *testing.T) {
		relations := &fakeRelations{relations: []*model.Relation{
			{SourceDocumentRID: docRID, TargetDocumentRID: relatedRID, RelationType: model.RelationTypeCites},
		}}
		store := &fakeChunkStore{
			chunksByID: map[int]*model.Chunk{
				2: {ID: 2, DocumentRID: relatedRID, Content: "related chunk"},
			},
			idsByDoc: map[uuid.UUID][]int{relatedRID: {2}},
		}
		expander := NewExpander(store, relations, testLogger())

		var expanded []*model.Chunk
		assert.NotPanics(t, func() {
			expanded = expander.Expand(ctx, input, nil)
		}, "Expected a nil config to be handled")
		require.Len(t, expanded, 2, "Expected expansion to run with default settings")
		assert.Equal(t, 2, expanded[1].ID)
	})

	t.Run("Empty input passes through", func(t *testing.T) {
		expander := NewExpander(&fakeChunkStore{}, &fakeRelations{}, testLogger())

		config := model.DefaultRetrievalConfig()
		expanded := expander.Expand(ctx, nil, &config)
		assert.Empty(t, expanded)
	})

	t.Run("Traversal failure returns input unchanged", func(t *testing.T) {
		expander := NewExpander(&fakeChunkStore{}, &fakeRelations{err: assert.AnError}, testLogger())

		config := model.DefaultRetrievalConfig()
		expanded := expander.Expand(ctx, input, &config)
		assert.Equal(t, input, expanded, "Expected degradation to similarity-only results")
	})

	t.Run("Chunk lookup failure returns input unchanged", func(t *testing.T) {
		relations := &fakeRelations{relations: []*model.Relation{
			{SourceDocumentRID: docRID, TargetDocumentRID: relatedRID, RelationType: model.RelationTypeCites},
		}}
		store := &fakeChunkStore{idsErr: assert.AnError}
		expander := NewExpander(store, relations, testLogger())

		config := model.DefaultRetrievalConfig()
		expanded := expander.Expand(ctx, input, &config)
		assert.Equal(t, input, expanded)
	})

	t.Run("Chunk ids already in the input are not duplicated", func(t *testing.T) {
		relations := &fakeRelations{relations: []*model.Relation{
			{SourceDocumentRID: docRID, TargetDocumentRID: relatedRID, RelationType: model.RelationTypeCites},
		}}
		store := &fakeChunkStore{
			chunksByID: map[int]*model.Chunk{
				1: {ID: 1, DocumentRID: docRID, Content: "input chunk"},
				2: {ID: 2, DocumentRID: relatedRID, Content: "related chunk"},
			},
			// The store reports the input chunk id again for the related doc
			idsByDoc: map[uuid.UUID][]int{relatedRID: {1, 2}},
		}
		expander := NewExpander(store, relations, testLogger())

		config := model.DefaultRetrievalConfig()
		expanded := expander.Expand(ctx, input, &config)

		require.Len(t, expanded, 2, "Expected the duplicate id to be dropped")
		assert.Equal(t, 1, expanded[0].ID)
		assert.Equal(t, 2, expanded[1].ID)
	})
}
