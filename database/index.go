package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/siherrmann/docquery/helper"
)

// embeddingIndexName is the single vector index on the chunks table.
const embeddingIndexName = "idx_chunks_embedding"

// intParam reads an int from params, falling back to def when absent
// or of the wrong type.
func intParam(params map[string]interface{}, key string, def int) int {
	if value, ok := params[key].(int); ok {
		return value
	}
	return def
}

// buildEmbeddingIndexSQL returns the CREATE INDEX statement for the
// requested index type.
//   - "hnsw": "m" (default 16), "ef_construction" (default 64)
//   - "ivfflat": "lists" (default 100)
func buildEmbeddingIndexSQL(indexType string, params map[string]interface{}) (string, error) {
	switch indexType {
	case "hnsw":
		return fmt.Sprintf(
			`CREATE INDEX %s ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			embeddingIndexName,
			intParam(params, "m", 16),
			intParam(params, "ef_construction", 64),
		), nil
	case "ivfflat":
		return fmt.Sprintf(
			`CREATE INDEX %s ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			embeddingIndexName,
			intParam(params, "lists", 100),
		), nil
	default:
		return "", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType)
	}
}

// ChangeIndexType rebuilds the vector index on the chunks table as the
// given type ("hnsw" or "ivfflat") with optional creation parameters.
// The old index is dropped first, so similarity search runs unindexed
// until the rebuild finishes.
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	createIndexSQL, err := buildEmbeddingIndexSQL(indexType, params)
	if err != nil {
		return helper.NewError("change index type", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	_, err = h.db.Instance.ExecContext(ctx, fmt.Sprintf(`DROP INDEX IF EXISTS %s;`, embeddingIndexName))
	if err != nil {
		return helper.NewError("drop index", err)
	}

	_, err = h.db.Instance.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	h.db.Logger.Info("Rebuilt vector index", slog.String("type", indexType))

	return nil
}
