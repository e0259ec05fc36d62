package update

import (
	"encoding/json"

	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// MediaInfoUpdate changes labels and statements of a media file.
type MediaInfoUpdate struct {
	entityPart
	labelsPart
	statementsPart
}

var _ LabeledStatementDocumentUpdate = (*MediaInfoUpdate)(nil)

func newMediaInfoUpdate(id model.EntityID, baseRevisionID int64, labels diff.TermUpdate, statements diff.StatementUpdate) (*MediaInfoUpdate, error) {
	const trace = "new media info update"
	entity, err := newEntityPart(trace, id, model.KindMediaInfo, baseRevisionID)
	if err != nil {
		return nil, err
	}
	s, err := newStatementsPart(trace, id, statements)
	if err != nil {
		return nil, err
	}
	return &MediaInfoUpdate{entityPart: entity, labelsPart: labelsPart{labels: labels}, statementsPart: s}, nil
}

func (u *MediaInfoUpdate) IsEmpty() bool {
	return u.labels.IsEmpty() && u.statements.IsEmpty()
}

func (u *MediaInfoUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(updateJSON{
		Labels: termsJSON(u.labels),
		Claims: statementsJSON(u.statements),
	})
}

// MediaInfoUpdateBuilder accumulates changes of one media file.
type MediaInfoUpdateBuilder struct {
	entityBuilder
	labelsBuilder
	statementsBuilder
}

// NewMediaInfoUpdateBuilderForEntityID creates a blind builder for the media info id.
func NewMediaInfoUpdateBuilderForEntityID(id model.EntityID) (*MediaInfoUpdateBuilder, error) {
	return NewMediaInfoUpdateBuilderForBaseRevisionID(id, 0)
}

// NewMediaInfoUpdateBuilderForBaseRevisionID creates a blind builder for changes
// based on the given revision.
func NewMediaInfoUpdateBuilderForBaseRevisionID(id model.EntityID, baseRevisionID int64) (*MediaInfoUpdateBuilder, error) {
	const trace = "media info update builder"
	entity, err := newEntityBuilder(trace, id, model.KindMediaInfo, baseRevisionID)
	if err != nil {
		return nil, err
	}
	statements, err := newStatementBuilder(id, false, nil)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return &MediaInfoUpdateBuilder{
		entityBuilder:     entity,
		labelsBuilder:     labelsBuilder{labels: diff.NewTermUpdateBuilder()},
		statementsBuilder: statementsBuilder{statements: statements},
	}, nil
}

// NewMediaInfoUpdateBuilderForBaseRevision creates a builder seeded with doc.
func NewMediaInfoUpdateBuilderForBaseRevision(doc *model.MediaInfoDocument) (*MediaInfoUpdateBuilder, error) {
	const trace = "media info update builder for base revision"
	if doc == nil {
		return nil, helper.NullArgument(trace, "base revision")
	}
	entity, err := newEntityBuilderForDocument(trace, doc, model.KindMediaInfo)
	if err != nil {
		return nil, err
	}
	labels, err := newTermBuilder(true, doc.Labels)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	statements, err := newStatementBuilder(doc.ID, true, doc.Statements)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return &MediaInfoUpdateBuilder{
		entityBuilder:     entity,
		labelsBuilder:     labelsBuilder{labels: labels},
		statementsBuilder: statementsBuilder{statements: statements},
	}, nil
}

// Append merges u into the pending changes. Either all of u is applied or none of it.
func (b *MediaInfoUpdateBuilder) Append(u *MediaInfoUpdate) error {
	const trace = "append media info update"
	if u == nil {
		return helper.NullArgument(trace, "update")
	}
	if err := b.checkAppend(trace, u); err != nil {
		return err
	}
	next := b.clone()
	if err := next.UpdateLabels(u.labels); err != nil {
		return helper.NewError(trace, err)
	}
	if err := next.UpdateStatements(u.statements); err != nil {
		return helper.NewError(trace, err)
	}
	*b = *next
	return nil
}

func (b *MediaInfoUpdateBuilder) AppendUpdate(u EntityUpdate) error {
	mediaInfo, ok := u.(*MediaInfoUpdate)
	if !ok {
		return helper.InvalidArgument("append update", "expected a media info update, got %T", u)
	}
	return b.Append(mediaInfo)
}

func (b *MediaInfoUpdateBuilder) clone() *MediaInfoUpdateBuilder {
	return &MediaInfoUpdateBuilder{
		entityBuilder:     b.entityBuilder,
		labelsBuilder:     b.labelsBuilder.clone(),
		statementsBuilder: b.statementsBuilder.clone(),
	}
}

func (b *MediaInfoUpdateBuilder) Build() (*MediaInfoUpdate, error) {
	const trace = "build media info update"
	labels, err := b.labels.Build()
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	statements, err := b.statements.Build()
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	u, err := newMediaInfoUpdate(b.id, b.baseRevisionID, labels, statements)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return u, nil
}

func (b *MediaInfoUpdateBuilder) BuildUpdate() (EntityUpdate, error) {
	u, err := b.Build()
	if err != nil {
		return nil, err
	}
	return u, nil
}
