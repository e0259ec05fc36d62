package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/wbupdate/core/validate"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
	"github.com/siherrmann/wbupdate/sql"
)

// RevisionsDBHandlerFunctions defines the interface for revision snapshot operations.
type RevisionsDBHandlerFunctions interface {
	InsertRevision(doc model.EntityDocument) (*model.Revision, error)
	SelectRevision(entityID model.EntityID, revisionID int64) (*model.Revision, error)
	SelectLatestRevision(entityID model.EntityID) (*model.Revision, error)
	SelectRevisionsByEntity(entityID model.EntityID, limit int) ([]*model.Revision, error)
	DeleteRevisions(entityID model.EntityID) (int, error)
}

// RevisionsDBHandler stores entity documents as base revisions for seeded builders.
type RevisionsDBHandler struct {
	db *helper.Database
}

// NewRevisionsDBHandler creates a new revisions database handler.
// It loads the revision SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRevisionsDBHandler(db *helper.Database, force bool) (*RevisionsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	revisionsDbHandler := &RevisionsDBHandler{
		db: db,
	}

	err := sql.LoadRevisionsSql(revisionsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load revisions sql", err)
	}

	err = revisionsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RevisionsDBHandler")

	return revisionsDbHandler, nil
}

// CreateTable creates the 'revisions' table and its index if missing.
func (h *RevisionsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_revisions();`)
	if err != nil {
		log.Panicf("error initializing revisions table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table revisions")

	return nil
}

// InsertRevision stores doc under its id and revision. Storing the same
// revision twice replaces the earlier snapshot.
func (h *RevisionsDBHandler) InsertRevision(doc model.EntityDocument) (*model.Revision, error) {
	if err := validate.BaseRevision("insert revision", doc); err != nil {
		return nil, err
	}
	id := doc.EntityID()

	data, err := model.MarshalDocument(doc)
	if err != nil {
		return nil, err
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_revision($1, $2, $3, $4, $5)`,
		id.ID(),
		string(id.Kind()),
		doc.Revision(),
		id.SiteIRI(),
		data,
	)

	return scanRevision(row)
}

// SelectRevision retrieves one snapshot of an entity.
func (h *RevisionsDBHandler) SelectRevision(entityID model.EntityID, revisionID int64) (*model.Revision, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_revision($1, $2)`,
		entityID.ID(),
		revisionID,
	)

	return scanRevision(row)
}

// SelectLatestRevision retrieves the snapshot with the highest revision id.
// It returns sql.ErrNoRows wrapped in a helper.Error if nothing is stored.
func (h *RevisionsDBHandler) SelectLatestRevision(entityID model.EntityID) (*model.Revision, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_latest_revision($1)`,
		entityID.ID(),
	)

	return scanRevision(row)
}

// SelectRevisionsByEntity retrieves up to limit snapshots, newest first.
func (h *RevisionsDBHandler) SelectRevisionsByEntity(entityID model.EntityID, limit int) ([]*model.Revision, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_revisions_by_entity($1, $2)`,
		entityID.ID(),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var revisions []*model.Revision
	for rows.Next() {
		revision, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, revision)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return revisions, nil
}

// DeleteRevisions deletes every snapshot of an entity and returns how many were removed.
func (h *RevisionsDBHandler) DeleteRevisions(entityID model.EntityID) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRow(
		`SELECT delete_revisions($1)`,
		entityID.ID(),
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("exec", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner) (*model.Revision, error) {
	revision := &model.Revision{}
	var document []byte
	err := row.Scan(
		&revision.ID,
		&revision.EntityID,
		&revision.Kind,
		&revision.RevisionID,
		&revision.SiteIRI,
		&document,
		&revision.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}
	revision.Document = document

	return revision, nil
}
