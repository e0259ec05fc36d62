package wbupdate

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/wbupdate/core/update"
	"github.com/siherrmann/wbupdate/database"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
	loadSql "github.com/siherrmann/wbupdate/sql"
)

// Updater stores base revisions and queues the updates built against them.
type Updater struct {
	DB        *helper.Database
	Revisions *database.RevisionsDBHandler
	Updates   *database.UpdatesDBHandler
	// Logging
	log *slog.Logger
}

// NewUpdater creates a new Updater with all handlers initialized.
func NewUpdater(config *helper.DatabaseConfiguration) (*Updater, error) {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	db := helper.NewDatabase("wbupdate", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database types", err)
	}

	// force=false to not reload if functions already exist
	revisions, err := database.NewRevisionsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create revisions handler", err)
	}

	updates, err := database.NewUpdatesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create updates handler", err)
	}

	return &Updater{
		DB:        db,
		Revisions: revisions,
		Updates:   updates,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (u *Updater) Close() error {
	return u.DB.Close()
}

// StoreRevision stores doc as a base revision of its entity.
func (u *Updater) StoreRevision(doc model.EntityDocument) (*model.Revision, error) {
	revision, err := u.Revisions.InsertRevision(doc)
	if err != nil {
		return nil, helper.NewError("store revision", err)
	}

	u.log.Info("Stored revision", slog.String("entity_id", revision.EntityID), slog.Int64("revision_id", revision.RevisionID))

	return revision, nil
}

// LatestRevision returns the newest stored document of an entity. The second
// result is false if nothing is stored for it.
func (u *Updater) LatestRevision(entityID model.EntityID) (model.EntityDocument, bool, error) {
	revision, err := u.Revisions.SelectLatestRevision(entityID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, helper.NewError("latest revision", err)
	}

	doc, err := revision.Decode()
	if err != nil {
		return nil, false, helper.NewError("latest revision", err)
	}
	return doc, true, nil
}

// NewUpdateBuilder returns a builder for entityID. If a revision of the entity
// is stored, the builder is seeded with the latest one. Forms and senses are
// seeded from the latest revision of their lexeme. Otherwise the builder is blind.
func (u *Updater) NewUpdateBuilder(ctx context.Context, entityID model.EntityID) (update.EntityUpdateBuilder, error) {
	if err := ctx.Err(); err != nil {
		return nil, helper.NewError("new update builder", err)
	}
	if entityID.IsZero() {
		return nil, helper.NullArgument("new update builder", "entity id")
	}

	lookupID := entityID
	if lexemeID, ok := entityID.LexemeID(); ok {
		lookupID = lexemeID
	}

	doc, found, err := u.LatestRevision(lookupID)
	if err != nil {
		return nil, helper.NewError("new update builder", err)
	}
	if !found {
		u.log.Debug("No stored revision, building blind", slog.String("entity_id", entityID.String()))
		return update.ForEntityID(entityID)
	}

	if lookupID != entityID {
		doc, err = subEntityDocument(doc, entityID)
		if err != nil {
			return nil, helper.NewError("new update builder", err)
		}
	}

	return update.ForBaseRevision(doc)
}

// subEntityDocument picks the form or sense id out of a stored lexeme.
// Nested documents carry the revision of their lexeme.
func subEntityDocument(doc model.EntityDocument, id model.EntityID) (model.EntityDocument, error) {
	lexeme, ok := doc.(*model.LexemeDocument)
	if !ok {
		return nil, helper.InvalidArgument("sub-entity document", "stored revision of %s is not a lexeme", doc.EntityID())
	}

	switch id.Kind() {
	case model.KindForm:
		form, ok := lexeme.Form(id)
		if !ok {
			return nil, helper.InvalidArgument("sub-entity document", "form %s not found in %s", id, lexeme.ID)
		}
		f := *form
		f.RevisionID = lexeme.RevisionID
		return &f, nil
	case model.KindSense:
		sense, ok := lexeme.Sense(id)
		if !ok {
			return nil, helper.InvalidArgument("sub-entity document", "sense %s not found in %s", id, lexeme.ID)
		}
		s := *sense
		s.RevisionID = lexeme.RevisionID
		return &s, nil
	}
	return nil, helper.InvalidArgument("sub-entity document", "%s is not a form or sense id", id)
}

// QueueUpdate stores a built update for later submission.
func (u *Updater) QueueUpdate(entityUpdate update.EntityUpdate, metadata model.Metadata) (*model.QueuedUpdate, error) {
	queued, err := u.Updates.InsertUpdate(entityUpdate, metadata)
	if err != nil {
		return nil, helper.NewError("queue update", err)
	}

	u.log.Info("Queued update", slog.String("rid", queued.RID.String()), slog.String("entity_id", queued.EntityID), slog.Int64("base_revision_id", queued.BaseRevisionID))

	return queued, nil
}

// QueuedUpdates returns the queued updates of an entity, oldest first.
func (u *Updater) QueuedUpdates(entityID model.EntityID) ([]*model.QueuedUpdate, error) {
	queued, err := u.Updates.SelectUpdatesByEntity(entityID)
	if err != nil {
		return nil, helper.NewError("queued updates", err)
	}
	return queued, nil
}

// DiscardQueuedUpdate drops a queued update, typically after it was submitted.
func (u *Updater) DiscardQueuedUpdate(rid uuid.UUID) error {
	deleted, err := u.Updates.DeleteUpdate(rid)
	if err != nil {
		return helper.NewError("discard queued update", err)
	}
	if !deleted {
		return helper.InvalidArgument("discard queued update", "no queued update %s", rid)
	}

	u.log.Info("Discarded queued update", slog.String("rid", rid.String()))

	return nil
}
