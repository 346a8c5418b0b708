package retrieval

import (
	"context"
	"log"
	"log/slog"
	"testing"

	"github.com/siherrmann/docquery/database"
	"github.com/siherrmann/docquery/helper"
	loadSql "github.com/siherrmann/docquery/sql"
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

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	db := helper.NewTestDatabase(dbConfig)

	err = loadSql.Init(db.Instance)
	require.NoError(t, err)

	return db
}

func initHandlers(t *testing.T) (*database.ChunksDBHandler, *database.DocumentsDBHandler, *database.RelationsDBHandler) {
	db := initDB(t)

	documents, err := database.NewDocumentsDBHandler(db, true)
	require.NoError(t, err)

	chunks, err := database.NewChunksDBHandler(db, 384, true)
	require.NoError(t, err)

	relations, err := database.NewRelationsDBHandler(db, true)
	require.NoError(t, err)

	return chunks, documents, relations
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// axisEmbedding creates a 384-dimension unit vector with 1.0 at the given axis
func axisEmbedding(axis int) []float32 {
	embedding := make([]float32, 384)
	embedding[axis%384] = 1.0
	return embedding
}

// axisEmbedder returns an embedder that always produces the given axis vector
func axisEmbedder(axis int) func(text string) ([]float32, error) {
	return func(text string) ([]float32, error) {
		return axisEmbedding(axis), nil
	}
}
