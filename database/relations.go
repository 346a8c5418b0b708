package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/docquery/helper"
	"github.com/siherrmann/docquery/model"
	loadSql "github.com/siherrmann/docquery/sql"
)

// RelationsDBHandlerFunctions defines the interface for Relations database operations.
type RelationsDBHandlerFunctions interface {
	InsertRelation(relation *model.Relation) error
	SelectRelation(id uuid.UUID) (*model.Relation, error)
	SelectRelationsConnectedToDocument(ctx context.Context, documentRID uuid.UUID, relationTypes []model.RelationType) ([]*model.Relation, error)
	DeleteRelation(id uuid.UUID) error
}

// RelationsDBHandler handles document-relation database operations.
// It backs the optional relational expansion of retrieval results.
type RelationsDBHandler struct {
	db *helper.Database
}

// NewRelationsDBHandler creates a new relations database handler.
// It initializes the database connection and loads relation-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRelationsDBHandler(db *helper.Database, force bool) (*RelationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationsDbHandler := &RelationsDBHandler{
		db: db,
	}

	err := loadSql.LoadRelationsSql(relationsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relations sql", err)
	}

	err = relationsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationsDBHandler")

	return relationsDbHandler, nil
}

// CreateTable creates the 'relations' table in the database.
// If the table already exists, it does not create it again.
// It also creates the relation_type enum and all necessary indexes.
func (h *RelationsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relations();`)
	if err != nil {
		log.Panicf("error initializing relations table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table relations")

	return nil
}

// InsertRelation inserts a new document relation
func (h *RelationsDBHandler) InsertRelation(relation *model.Relation) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_relation($1, $2, $3, $4, $5, $6)`,
		relation.SourceDocumentRID,
		relation.TargetDocumentRID,
		relation.RelationType,
		relation.Weight,
		relation.Bidirectional,
		relation.Metadata,
	)

	err := row.Scan(
		&relation.ID,
		&relation.SourceDocumentRID,
		&relation.TargetDocumentRID,
		&relation.RelationType,
		&relation.Weight,
		&relation.Bidirectional,
		&relation.Metadata,
		&relation.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectRelation retrieves a relation by ID
func (h *RelationsDBHandler) SelectRelation(id uuid.UUID) (*model.Relation, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_relation($1)`,
		id,
	)

	relation := &model.Relation{}
	err := row.Scan(
		&relation.ID,
		&relation.SourceDocumentRID,
		&relation.TargetDocumentRID,
		&relation.RelationType,
		&relation.Weight,
		&relation.Bidirectional,
		&relation.Metadata,
		&relation.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return relation, nil
}

// SelectRelationsConnectedToDocument retrieves relations reachable from a
// document: outgoing relations plus incoming bidirectional ones. An empty
// relationTypes filter matches all types.
func (h *RelationsDBHandler) SelectRelationsConnectedToDocument(ctx context.Context, documentRID uuid.UUID, relationTypes []model.RelationType) ([]*model.Relation, error) {
	var relationTypesParam interface{}
	if len(relationTypes) > 0 {
		typeStrings := make([]string, len(relationTypes))
		for i, rt := range relationTypes {
			typeStrings[i] = string(rt)
		}
		relationTypesParam = pq.Array(typeStrings)
	} else {
		relationTypesParam = nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relations_connected_to_document($1, $2)`,
		documentRID,
		relationTypesParam,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var relations []*model.Relation
	for rows.Next() {
		relation := &model.Relation{}
		err := rows.Scan(
			&relation.ID,
			&relation.SourceDocumentRID,
			&relation.TargetDocumentRID,
			&relation.RelationType,
			&relation.Weight,
			&relation.Bidirectional,
			&relation.Metadata,
			&relation.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		relations = append(relations, relation)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return relations, nil
}

// DeleteRelation deletes a relation by ID
func (h *RelationsDBHandler) DeleteRelation(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_relation($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
