package docquery

import (
	"context"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/docquery/core/pipeline"
	"github.com/siherrmann/docquery/helper"
	"github.com/siherrmann/docquery/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

// testEmbedder creates a simple deterministic embedder for testing
func testEmbedder(dimension int) pipeline.EmbedFunc {
	return func(text string) ([]float32, error) {
		embedding := make([]float32, dimension)
		for i := 0; i < dimension; i++ {
			embedding[i] = float32((len(text)+i)%100) / 100.0
		}
		return embedding, nil
	}
}

func initDocQuery(t *testing.T) *DocQuery {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")

	d, err := NewDocQuery(context.Background(), dbConfig, 384, nil)
	require.NoError(t, err, "failed to create docquery")
	require.NotNil(t, d, "expected docquery to be non-nil")

	t.Cleanup(func() {
		d.Close()
	})

	return d
}

func TestNewDocQuery(t *testing.T) {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err)

	t.Run("Valid call NewDocQuery", func(t *testing.T) {
		d, err := NewDocQuery(context.Background(), dbConfig, 384, nil)
		require.NoError(t, err, "Expected NewDocQuery to not return an error")
		require.NotNil(t, d, "Expected NewDocQuery to return a non-nil instance")
		assert.NotNil(t, d.DB, "Expected docquery to have a database instance")
		assert.NotNil(t, d.Chunks, "Expected docquery to have chunks handler")
		assert.NotNil(t, d.Documents, "Expected docquery to have documents handler")
		assert.NotNil(t, d.Relations, "Expected docquery to have relations handler")
		assert.NotNil(t, d.Orchestrator, "Expected docquery to have an orchestrator")
		assert.Nil(t, d.Pipeline, "Expected pipeline to be nil initially")

		assert.False(t, d.Synthesizer.Availability().Available, "Expected no backend to mean unavailable synthesis")

		// Cleanup
		err = d.Close()
		assert.NoError(t, err, "Expected Close to not return an error")
	})

	t.Run("DocQuery with nil database handles Close gracefully", func(t *testing.T) {
		d := &DocQuery{}

		err := d.Close()
		assert.NoError(t, err, "Expected Close to handle nil DB gracefully")
	})
}

func TestSetPipeline(t *testing.T) {
	d := initDocQuery(t)

	t.Run("Set pipeline successfully", func(t *testing.T) {
		chunker := pipeline.SentenceChunker(5)
		embedder := testEmbedder(384)
		p := pipeline.NewPipeline(chunker, embedder)

		d.SetPipeline(p)

		assert.NotNil(t, d.Pipeline, "Expected pipeline to be set")
		assert.Equal(t, p, d.Pipeline, "Expected pipeline to match")
	})

	t.Run("Set pipeline to nil", func(t *testing.T) {
		d.SetPipeline(nil)

		assert.Nil(t, d.Pipeline, "Expected pipeline to be nil")
	})
}

func TestProcessAndInsertDocument(t *testing.T) {
	d := initDocQuery(t)

	t.Run("Process document without pipeline", func(t *testing.T) {
		doc := &model.Document{Title: "No Pipeline", Content: "Some content."}

		_, err := d.ProcessAndInsertDocument(doc)
		assert.Error(t, err, "Expected error when pipeline is not set")
	})

	d.SetPipeline(pipeline.NewPipeline(pipeline.SentenceChunker(2), testEmbedder(384)))

	t.Run("Process document with empty content", func(t *testing.T) {
		doc := &model.Document{Title: "Empty"}

		_, err := d.ProcessAndInsertDocument(doc)
		assert.Error(t, err, "Expected error for empty document content")
	})

	t.Run("Process and insert document", func(t *testing.T) {
		doc := &model.Document{
			Title:    "Test Document",
			Source:   "test.txt",
			Content:  "First sentence. Second sentence. Third sentence.",
			Metadata: model.Metadata{"topic": "testing"},
		}

		numChunks, err := d.ProcessAndInsertDocument(doc)
		assert.NoError(t, err, "Expected ProcessAndInsertDocument to not return an error")
		assert.Equal(t, 2, numChunks, "Expected two chunks for three sentences with max two per chunk")
		assert.NotEqual(t, uuid.Nil, doc.RID, "Expected document to be inserted")
		assert.Empty(t, doc.Content, "Expected content to be cleared before insert")

		chunks, err := d.Chunks.SelectChunksByDocument(doc.RID)
		require.NoError(t, err)
		assert.Len(t, chunks, 2)

		// Cleanup
		d.Documents.DeleteDocument(doc.RID)
	})
}

func TestSearchAndAnswer(t *testing.T) {
	d := initDocQuery(t)
	ctx := context.Background()

	d.SetPipeline(pipeline.NewPipeline(pipeline.ParagraphChunker(), testEmbedder(384)))

	t.Run("Answer without any documents", func(t *testing.T) {
		response := d.AnswerQuery(ctx, "anything at all", nil)

		assert.Equal(t, model.QueryTypeNoResults, response.QueryType)
		assert.InDelta(t, 0.1, response.Confidence, 0.001)
	})

	docA := &model.Document{
		Title:   "Document A",
		Content: "Document A talks about retrieval.",
	}
	_, err := d.ProcessAndInsertDocument(docA)
	require.NoError(t, err)

	docB := &model.Document{
		Title:   "Document B",
		Content: "Document B talks about citations.",
	}
	_, err = d.ProcessAndInsertDocument(docB)
	require.NoError(t, err)

	require.NoError(t, d.RelateDocuments(&model.Relation{
		SourceDocumentRID: docA.RID,
		TargetDocumentRID: docB.RID,
		RelationType:      model.RelationTypeCites,
	}))

	t.Run("Search returns similarity results", func(t *testing.T) {
		results, err := d.Search(ctx, "retrieval", nil)
		assert.NoError(t, err, "Expected Search to not return an error")
		require.NotEmpty(t, results)
		assert.Equal(t, model.RetrievalMethodVector, results[0].RetrievalMethod)
		assert.NotNil(t, results[0].Similarity)
	})

	t.Run("Expanded search follows relations", func(t *testing.T) {
		config := model.DefaultRetrievalConfig()
		config.DocumentRIDs = []uuid.UUID{docA.RID}

		results, err := d.ExpandedSearch(ctx, "retrieval", &config)
		assert.NoError(t, err, "Expected ExpandedSearch to not return an error")
		require.Len(t, results, 2, "Expected the related document's chunk to be appended")
		assert.Equal(t, docA.RID, results[0].DocumentRID)
		assert.Equal(t, docB.RID, results[1].DocumentRID)
		assert.Equal(t, model.RetrievalMethodExpansion, results[1].RetrievalMethod)
	})

	t.Run("Answer query without backend uses extraction", func(t *testing.T) {
		response := d.AnswerQuery(ctx, "What does document A talk about?", nil)

		assert.Equal(t, model.QueryTypeEnhanced, response.QueryType)
		assert.InDelta(t, 0.75, response.Confidence, 0.001, "Expected the extraction confidence without a backend")
		assert.NotEmpty(t, response.Sources)
		assert.Contains(t, response.Answer, "Based on the available documents")
	})

	// Cleanup
	d.Documents.DeleteDocument(docA.RID)
	d.Documents.DeleteDocument(docB.RID)
}
