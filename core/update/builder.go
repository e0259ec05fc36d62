package update

import (
	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// EntityUpdateBuilder is implemented by the builders of all entity kinds.
type EntityUpdateBuilder interface {
	EntityID() model.EntityID
	BaseRevisionID() int64
	// AppendUpdate merges an update of the same kind and entity.
	AppendUpdate(u EntityUpdate) error
	BuildUpdate() (EntityUpdate, error)
}

// StatementDocumentUpdateBuilder builds updates of entities with statements.
type StatementDocumentUpdateBuilder interface {
	EntityUpdateBuilder
	UpdateStatements(u diff.StatementUpdate) error
}

// LabeledDocumentUpdateBuilder builds updates of entities with labels.
type LabeledDocumentUpdateBuilder interface {
	EntityUpdateBuilder
	UpdateLabels(u diff.TermUpdate) error
}

// LabeledStatementDocumentUpdateBuilder builds updates of entities with labels and statements.
type LabeledStatementDocumentUpdateBuilder interface {
	LabeledDocumentUpdateBuilder
	StatementDocumentUpdateBuilder
}

// TermedStatementDocumentUpdateBuilder builds updates of entities with
// labels, descriptions, aliases and statements.
type TermedStatementDocumentUpdateBuilder interface {
	LabeledStatementDocumentUpdateBuilder
	UpdateDescriptions(u diff.TermUpdate) error
	SetAliases(lang string, u diff.AliasUpdate) error
}

var (
	_ TermedStatementDocumentUpdateBuilder  = (*ItemUpdateBuilder)(nil)
	_ TermedStatementDocumentUpdateBuilder  = (*PropertyUpdateBuilder)(nil)
	_ LabeledStatementDocumentUpdateBuilder = (*MediaInfoUpdateBuilder)(nil)
	_ StatementDocumentUpdateBuilder        = (*LexemeUpdateBuilder)(nil)
	_ StatementDocumentUpdateBuilder        = (*FormUpdateBuilder)(nil)
	_ StatementDocumentUpdateBuilder        = (*SenseUpdateBuilder)(nil)
)

// ForEntityID returns a blind builder matching the kind of id.
func ForEntityID(id model.EntityID) (EntityUpdateBuilder, error) {
	return ForBaseRevisionID(id, 0)
}

// ForBaseRevisionID returns a blind builder matching the kind of id for
// changes based on the given revision.
func ForBaseRevisionID(id model.EntityID, baseRevisionID int64) (EntityUpdateBuilder, error) {
	switch id.Kind() {
	case model.KindItem:
		b, err := NewItemUpdateBuilderForBaseRevisionID(id, baseRevisionID)
		return asBuilder(b, err)
	case model.KindProperty:
		b, err := NewPropertyUpdateBuilderForBaseRevisionID(id, baseRevisionID)
		return asBuilder(b, err)
	case model.KindMediaInfo:
		b, err := NewMediaInfoUpdateBuilderForBaseRevisionID(id, baseRevisionID)
		return asBuilder(b, err)
	case model.KindLexeme:
		b, err := NewLexemeUpdateBuilderForBaseRevisionID(id, baseRevisionID)
		return asBuilder(b, err)
	case model.KindForm:
		b, err := NewFormUpdateBuilderForBaseRevisionID(id, baseRevisionID)
		return asBuilder(b, err)
	case model.KindSense:
		b, err := NewSenseUpdateBuilderForBaseRevisionID(id, baseRevisionID)
		return asBuilder(b, err)
	}
	if id.IsZero() {
		return nil, helper.NullArgument("update builder", "entity id")
	}
	return nil, helper.InvalidArgument("update builder", "unsupported entity kind %q", id.Kind())
}

// ForBaseRevision returns a builder seeded with doc.
func ForBaseRevision(doc model.EntityDocument) (EntityUpdateBuilder, error) {
	switch d := doc.(type) {
	case *model.ItemDocument:
		b, err := NewItemUpdateBuilderForBaseRevision(d)
		return asBuilder(b, err)
	case *model.PropertyDocument:
		b, err := NewPropertyUpdateBuilderForBaseRevision(d)
		return asBuilder(b, err)
	case *model.MediaInfoDocument:
		b, err := NewMediaInfoUpdateBuilderForBaseRevision(d)
		return asBuilder(b, err)
	case *model.LexemeDocument:
		b, err := NewLexemeUpdateBuilderForBaseRevision(d)
		return asBuilder(b, err)
	case *model.FormDocument:
		b, err := NewFormUpdateBuilderForBaseRevision(d)
		return asBuilder(b, err)
	case *model.SenseDocument:
		b, err := NewSenseUpdateBuilderForBaseRevision(d)
		return asBuilder(b, err)
	case nil:
		return nil, helper.NullArgument("update builder for base revision", "base revision")
	}
	return nil, helper.InvalidArgument("update builder for base revision", "unsupported document %T", doc)
}

// asBuilder keeps a failed constructor from returning a non-nil interface.
func asBuilder[B EntityUpdateBuilder](b B, err error) (EntityUpdateBuilder, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

// narrow checks that b offers capability B.
func narrow[B EntityUpdateBuilder](b EntityUpdateBuilder, err error, capability string) (B, error) {
	var zero B
	if err != nil {
		return zero, err
	}
	narrowed, ok := b.(B)
	if !ok {
		return zero, helper.InvalidArgument("update builder", "%s entities have no %s", b.EntityID().Kind(), capability)
	}
	return narrowed, nil
}

func ForLabeledEntityID(id model.EntityID) (LabeledStatementDocumentUpdateBuilder, error) {
	b, err := ForEntityID(id)
	return narrow[LabeledStatementDocumentUpdateBuilder](b, err, "labels")
}

func ForLabeledBaseRevisionID(id model.EntityID, baseRevisionID int64) (LabeledStatementDocumentUpdateBuilder, error) {
	b, err := ForBaseRevisionID(id, baseRevisionID)
	return narrow[LabeledStatementDocumentUpdateBuilder](b, err, "labels")
}

func ForLabeledBaseRevision(doc model.LabeledDocument) (LabeledStatementDocumentUpdateBuilder, error) {
	b, err := ForBaseRevision(doc)
	return narrow[LabeledStatementDocumentUpdateBuilder](b, err, "labels")
}

func ForTermedEntityID(id model.EntityID) (TermedStatementDocumentUpdateBuilder, error) {
	b, err := ForEntityID(id)
	return narrow[TermedStatementDocumentUpdateBuilder](b, err, "descriptions and aliases")
}

func ForTermedBaseRevisionID(id model.EntityID, baseRevisionID int64) (TermedStatementDocumentUpdateBuilder, error) {
	b, err := ForBaseRevisionID(id, baseRevisionID)
	return narrow[TermedStatementDocumentUpdateBuilder](b, err, "descriptions and aliases")
}

func ForTermedBaseRevision(doc model.TermedDocument) (TermedStatementDocumentUpdateBuilder, error) {
	b, err := ForBaseRevision(doc)
	return narrow[TermedStatementDocumentUpdateBuilder](b, err, "descriptions and aliases")
}

func ForStatementEntityID(id model.EntityID) (StatementDocumentUpdateBuilder, error) {
	b, err := ForEntityID(id)
	return narrow[StatementDocumentUpdateBuilder](b, err, "statements")
}

func ForStatementBaseRevisionID(id model.EntityID, baseRevisionID int64) (StatementDocumentUpdateBuilder, error) {
	b, err := ForBaseRevisionID(id, baseRevisionID)
	return narrow[StatementDocumentUpdateBuilder](b, err, "statements")
}

func ForStatementBaseRevision(doc model.StatementDocument) (StatementDocumentUpdateBuilder, error) {
	b, err := ForBaseRevision(doc)
	return narrow[StatementDocumentUpdateBuilder](b, err, "statements")
}
