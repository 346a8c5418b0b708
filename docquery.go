package docquery

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/docquery/core/pipeline"
	"github.com/siherrmann/docquery/core/query"
	"github.com/siherrmann/docquery/core/retrieval"
	"github.com/siherrmann/docquery/core/synthesis"
	"github.com/siherrmann/docquery/database"
	"github.com/siherrmann/docquery/helper"
	"github.com/siherrmann/docquery/model"
	loadSql "github.com/siherrmann/docquery/sql"
)

// DocQuery provides a unified interface to document ingestion, retrieval
// and question answering
type DocQuery struct {
	DB        *helper.Database
	Chunks    *database.ChunksDBHandler
	Documents *database.DocumentsDBHandler
	Relations *database.RelationsDBHandler // nil when the relation store could not be set up
	Pipeline  *pipeline.Pipeline           // Optional chunking pipeline
	// Query answering components
	Retriever    *retrieval.Retriever
	Expander     *retrieval.Expander
	Synthesizer  *synthesis.Synthesizer
	Orchestrator *query.Orchestrator
	// Logging
	log *slog.Logger
}

// NewDocQuery creates a new DocQuery instance with all handlers initialized.
// The backend may be nil, question answering then falls back to extraction
// based answers. The relation store is soft-optional: if its setup fails the
// instance still works, expansion just returns similarity results unchanged.
func NewDocQuery(ctx context.Context, config *helper.DatabaseConfiguration, embeddingDim int, backend synthesis.Backend) (*DocQuery, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("docquery", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (documents first, then chunks)
	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	relations, err := database.NewRelationsDBHandler(db, false)
	if err != nil {
		logger.Warn("Relation store unavailable, expansion disabled", slog.Any("error", err))
		relations = nil
	}

	d := &DocQuery{
		DB:        db,
		Chunks:    chunks,
		Documents: documents,
		Relations: relations,
		log:       logger,
	}

	// Query answering components. The retriever embeds with whatever
	// pipeline is configured at call time.
	d.Retriever = retrieval.NewRetriever(chunks, d.embedQuery, logger)
	// A typed nil handler must not reach the interface, the expander checks
	// the interface value against nil to decide whether a graph store exists
	if relations != nil {
		d.Expander = retrieval.NewExpander(chunks, relations, logger)
	} else {
		d.Expander = retrieval.NewExpander(chunks, nil, logger)
	}
	d.Synthesizer = synthesis.NewSynthesizer(ctx, backend, logger)
	strategy := retrieval.NewExpandedStrategy(d.Retriever, d.Expander)
	d.Orchestrator = query.NewOrchestrator(strategy, d.Synthesizer, logger)

	return d, nil
}

// Close closes the database connection
func (d *DocQuery) Close() error {
	if d.DB != nil && d.DB.Instance != nil {
		return d.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the chunking pipeline for document processing
func (d *DocQuery) SetPipeline(pipeline *pipeline.Pipeline) {
	d.Pipeline = pipeline
}

// UseDefaultPipeline sets up the default chunking and embedding pipeline.
// This uses DefaultChunker with 500 char max chunks and DefaultEmbedder with
// the all-MiniLM-L6-v2 model (384 dimensions).
func (d *DocQuery) UseDefaultPipeline() error {
	chunker := pipeline.DefaultChunker(500)
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	d.Pipeline = pipeline.NewPipeline(chunker, embedder)
	return nil
}

// embedQuery embeds a query with the configured pipeline embedder
func (d *DocQuery) embedQuery(text string) ([]float32, error) {
	if d.Pipeline == nil || d.Pipeline.Embedder == nil {
		return nil, fmt.Errorf("pipeline with embedder not set, use SetPipeline() first")
	}
	return d.Pipeline.Embedder(text)
}

// ProcessAndInsertDocument processes a document by:
// 1. Inserting the document metadata (without content)
// 2. Processing the content into chunks using the pipeline
// 3. Inserting all chunks with the document ID
// The document's Content field is used for processing but not stored in the database.
// Returns the number of chunks inserted and any error encountered.
func (d *DocQuery) ProcessAndInsertDocument(doc *model.Document) (int, error) {
	if d.Pipeline == nil {
		return 0, helper.NewError("process document", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	if doc.Content == "" {
		return 0, helper.NewError("process document", fmt.Errorf("document content is empty"))
	}

	// Store content temporarily and clear it before DB insert
	content := doc.Content
	doc.Content = ""

	// Insert document metadata
	if err := d.Documents.InsertDocument(doc); err != nil {
		return 0, helper.NewError("insert document", err)
	}

	d.log.Info("Inserted document", slog.String("document_id", doc.RID.String()), slog.String("title", doc.Title))

	// Process content into chunks
	chunks, err := d.Pipeline.Process(content)
	if err != nil {
		return 0, helper.NewError("process chunks", err)
	}

	d.log.Info("Processed document into chunks", slog.Int("num_chunks", len(chunks)), slog.String("document_id", doc.RID.String()))

	// Insert all chunks
	for i, chunk := range chunks {
		chunk.DocumentID = doc.ID
		if err := d.Chunks.InsertChunk(chunk); err != nil {
			return i, helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}

	return len(chunks), nil
}

// RelateDocuments records a typed relation between two documents.
// Relations drive the expansion step of query answering.
func (d *DocQuery) RelateDocuments(relation *model.Relation) error {
	if d.Relations == nil {
		return helper.NewError("relate documents", fmt.Errorf("relation store not available"))
	}
	return d.Relations.InsertRelation(relation)
}

// Search performs vector similarity search, optionally restricted to documents
func (d *DocQuery) Search(ctx context.Context, queryText string, config *model.RetrievalConfig) ([]*model.Chunk, error) {
	if config == nil {
		defaultConfig := model.DefaultRetrievalConfig()
		config = &defaultConfig
	}
	strategy := retrieval.NewSimpleStrategy(d.Retriever)
	return strategy.Retrieve(ctx, queryText, config)
}

// ExpandedSearch performs similarity search followed by relational expansion
func (d *DocQuery) ExpandedSearch(ctx context.Context, queryText string, config *model.RetrievalConfig) ([]*model.Chunk, error) {
	if config == nil {
		defaultConfig := model.DefaultRetrievalConfig()
		config = &defaultConfig
	}
	strategy := retrieval.NewExpandedStrategy(d.Retriever, d.Expander)
	return strategy.Retrieve(ctx, queryText, config)
}

// AnswerQuery answers a natural language question from the stored documents.
// It always returns a usable response, failures are reported inside it.
func (d *DocQuery) AnswerQuery(ctx context.Context, queryText string, documentRIDs []uuid.UUID) model.QueryResponse {
	return d.Orchestrator.AnswerQuery(ctx, queryText, documentRIDs)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (d *DocQuery) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return d.Chunks.ChangeIndexType(ctx, indexType, params)
}
