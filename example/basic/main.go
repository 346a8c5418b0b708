package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/siherrmann/docquery"
	"github.com/siherrmann/docquery/core/synthesis"
	"github.com/siherrmann/docquery/helper"
	"github.com/siherrmann/docquery/model"
)

const vectorDatabasesContent = `This is a sample document about vector databases.

Vector databases store high dimensional embeddings and answer nearest neighbor queries.
They are the backbone of retrieval augmented generation, where relevant text chunks
are looked up by semantic similarity and handed to a language model as context.

PostgreSQL with the pgvector extension turns a relational database into a capable
vector store, with HNSW and IVFFlat indexes for approximate nearest neighbor search.`

const citationGraphsContent = `This is a related document about citation graphs.

Documents rarely stand alone. Papers cite other papers, reports reference earlier
reports, and following those links often surfaces context that pure similarity
search misses. A one hop expansion along citation edges is a cheap way to widen
a retrieved result set with structurally related material.`

func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(ctx)

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// Optional generative backend. Without an API key answers come from the
	// extraction fallback instead of a model.
	var backend synthesis.Backend
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		backend, err = synthesis.NewGeminiBackend(ctx, apiKey, "")
		if err != nil {
			log.Fatalf("Failed to create Gemini backend: %v", err)
		}
	}

	dq, err := docquery.NewDocQuery(ctx, dbConfig, 384, backend)
	if err != nil {
		log.Fatalf("Failed to create docquery: %v", err)
	}
	defer dq.Close()

	// Set up the default pipeline (chunking + embeddings)
	if err := dq.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Ingest two documents
	docA := &model.Document{
		Title:   "Introduction to Vector Databases",
		Source:  "basic_example",
		Content: vectorDatabasesContent,
		Metadata: model.Metadata{
			"topic": "vector databases",
		},
	}
	docB := &model.Document{
		Title:   "Citation Graphs in Retrieval",
		Source:  "basic_example",
		Content: citationGraphsContent,
		Metadata: model.Metadata{
			"topic": "citation graphs",
		},
	}

	fmt.Println("Ingesting documents...")
	for _, doc := range []*model.Document{docA, docB} {
		numChunks, err := dq.ProcessAndInsertDocument(doc)
		if err != nil {
			log.Fatalf("Failed to process and insert document: %v", err)
		}
		fmt.Printf("Document %q inserted with ID %s (%d chunks)\n", doc.Title, doc.RID, numChunks)
	}

	// Relate the documents so expansion can follow the link
	relation := &model.Relation{
		SourceDocumentRID: docA.RID,
		TargetDocumentRID: docB.RID,
		RelationType:      model.RelationTypeCites,
		Weight:            1.0,
		Bidirectional:     true,
	}
	if err := dq.RelateDocuments(relation); err != nil {
		log.Fatalf("Failed to relate documents: %v", err)
	}

	// Ask a question
	question := "What are vector databases used for?"
	fmt.Printf("\nAsking: %s\n", question)

	response := dq.AnswerQuery(ctx, question, nil)

	fmt.Printf("\nQuery type: %s\n", response.QueryType)
	fmt.Printf("Confidence: %.2f\n", response.Confidence)
	fmt.Printf("Answer:\n%s\n", response.Answer)
	fmt.Printf("\nSources (%d):\n", len(response.Sources))
	for i, source := range response.Sources {
		fmt.Printf("\n--- Source %d ---\n", i+1)
		fmt.Printf("Chunk: %d (document %d)\n", source.ChunkID, source.DocumentID)
		fmt.Printf("Preview: %s\n", source.ContentPreview)
	}

	fmt.Println("\nBasic example completed successfully!")
}
