package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/wbupdate/core/update"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
	"github.com/siherrmann/wbupdate/sql"
)

// UpdatesDBHandlerFunctions defines the interface for update queue operations.
type UpdatesDBHandlerFunctions interface {
	InsertUpdate(u update.EntityUpdate, metadata model.Metadata) (*model.QueuedUpdate, error)
	SelectUpdate(rid uuid.UUID) (*model.QueuedUpdate, error)
	SelectUpdatesByEntity(entityID model.EntityID) ([]*model.QueuedUpdate, error)
	DeleteUpdate(rid uuid.UUID) (bool, error)
}

// UpdatesDBHandler queues built updates as wire JSON until they are submitted.
type UpdatesDBHandler struct {
	db *helper.Database
}

// NewUpdatesDBHandler creates a new update queue handler.
// If force is true, it will reload the SQL functions even if they already exist.
func NewUpdatesDBHandler(db *helper.Database, force bool) (*UpdatesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	updatesDbHandler := &UpdatesDBHandler{
		db: db,
	}

	err := sql.LoadUpdatesSql(updatesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load updates sql", err)
	}

	err = updatesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized UpdatesDBHandler")

	return updatesDbHandler, nil
}

// CreateTable creates the 'updates' table and its index if missing.
func (h *UpdatesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_updates();`)
	if err != nil {
		log.Panicf("error initializing updates table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table updates")

	return nil
}

// InsertUpdate queues the wire JSON of u. Empty updates are rejected since
// there is nothing to submit.
func (h *UpdatesDBHandler) InsertUpdate(u update.EntityUpdate, metadata model.Metadata) (*model.QueuedUpdate, error) {
	if u == nil {
		return nil, helper.NullArgument("insert update", "update")
	}
	if u.IsEmpty() {
		return nil, helper.InvalidArgument("insert update", "update of %s is empty", u.EntityID())
	}

	payload, err := u.MarshalJSON()
	if err != nil {
		return nil, helper.NewError("marshal update", err)
	}

	id := u.EntityID()
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_update($1, $2, $3, $4, $5, $6)`,
		uuid.New(),
		id.ID(),
		string(id.Kind()),
		u.BaseRevisionID(),
		payload,
		metadata,
	)

	return scanUpdate(row)
}

// SelectUpdate retrieves a queued update by RID.
func (h *UpdatesDBHandler) SelectUpdate(rid uuid.UUID) (*model.QueuedUpdate, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_update($1)`,
		rid,
	)

	return scanUpdate(row)
}

// SelectUpdatesByEntity retrieves the queued updates of an entity, oldest first.
func (h *UpdatesDBHandler) SelectUpdatesByEntity(entityID model.EntityID) ([]*model.QueuedUpdate, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_updates_by_entity($1)`,
		entityID.ID(),
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var updates []*model.QueuedUpdate
	for rows.Next() {
		queued, err := scanUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, queued)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return updates, nil
}

// DeleteUpdate removes a queued update. It reports whether a row was deleted.
func (h *UpdatesDBHandler) DeleteUpdate(rid uuid.UUID) (bool, error) {
	var deleted int
	err := h.db.Instance.QueryRow(
		`SELECT delete_update($1)`,
		rid,
	).Scan(&deleted)
	if err != nil {
		return false, helper.NewError("exec", err)
	}
	return deleted > 0, nil
}

func scanUpdate(row rowScanner) (*model.QueuedUpdate, error) {
	queued := &model.QueuedUpdate{}
	var payload []byte
	err := row.Scan(
		&queued.ID,
		&queued.RID,
		&queued.EntityID,
		&queued.Kind,
		&queued.BaseRevisionID,
		&payload,
		&queued.Metadata,
		&queued.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}
	queued.Payload = payload

	return queued, nil
}
