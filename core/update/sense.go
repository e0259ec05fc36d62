package update

import (
	"encoding/json"

	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/core/validate"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// SenseUpdate changes glosses and statements of a lexeme sense.
type SenseUpdate struct {
	entityPart
	statementsPart
	glosses diff.TermUpdate
}

var _ StatementDocumentUpdate = (*SenseUpdate)(nil)

func newSenseUpdate(id model.EntityID, baseRevisionID int64, glosses diff.TermUpdate, statements diff.StatementUpdate) (*SenseUpdate, error) {
	const trace = "new sense update"
	entity, err := newEntityPart(trace, id, model.KindSense, baseRevisionID)
	if err != nil {
		return nil, err
	}
	s, err := newStatementsPart(trace, id, statements)
	if err != nil {
		return nil, err
	}
	return &SenseUpdate{entityPart: entity, statementsPart: s, glosses: glosses}, nil
}

func (u *SenseUpdate) Glosses() diff.TermUpdate { return u.glosses }

func (u *SenseUpdate) IsEmpty() bool {
	return u.glosses.IsEmpty() && u.statements.IsEmpty()
}

func (u *SenseUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(updateJSON{
		Glosses: termsJSON(u.glosses),
		Claims:  statementsJSON(u.statements),
	})
}

// SenseUpdateBuilder accumulates changes of one sense.
type SenseUpdateBuilder struct {
	entityBuilder
	statementsBuilder
	glosses *diff.TermUpdateBuilder
}

// NewSenseUpdateBuilderForEntityID creates a blind builder for the sense id.
func NewSenseUpdateBuilderForEntityID(id model.EntityID) (*SenseUpdateBuilder, error) {
	return NewSenseUpdateBuilderForBaseRevisionID(id, 0)
}

// NewSenseUpdateBuilderForBaseRevisionID creates a blind builder for changes
// based on the given revision.
func NewSenseUpdateBuilderForBaseRevisionID(id model.EntityID, baseRevisionID int64) (*SenseUpdateBuilder, error) {
	return newSenseUpdateBuilder("sense update builder", id, baseRevisionID, nil)
}

// NewSenseUpdateBuilderForBaseRevision creates a builder seeded with doc.
func NewSenseUpdateBuilderForBaseRevision(doc *model.SenseDocument) (*SenseUpdateBuilder, error) {
	const trace = "sense update builder for base revision"
	if doc == nil {
		return nil, helper.NullArgument(trace, "base revision")
	}
	if err := validate.BaseRevision(trace, doc); err != nil {
		return nil, err
	}
	return newSenseUpdateBuilder(trace, doc.ID, doc.RevisionID, doc)
}

// newSenseUpdateBuilder seeds the builder with base unless it is nil.
func newSenseUpdateBuilder(trace string, id model.EntityID, baseRevisionID int64, base *model.SenseDocument) (*SenseUpdateBuilder, error) {
	entity, err := newEntityBuilder(trace, id, model.KindSense, baseRevisionID)
	if err != nil {
		return nil, err
	}
	var glossTerms map[string]model.Term
	var statementList []model.Statement
	if base != nil {
		glossTerms, statementList = base.Glosses, base.Statements
	}
	glosses, err := newTermBuilder(base != nil, glossTerms)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	statements, err := newStatementBuilder(id, base != nil, statementList)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return &SenseUpdateBuilder{
		entityBuilder:     entity,
		statementsBuilder: statementsBuilder{statements: statements},
		glosses:           glosses,
	}, nil
}

// UpdateGlosses merges u into the pending gloss changes.
func (b *SenseUpdateBuilder) UpdateGlosses(u diff.TermUpdate) error {
	if err := b.glosses.Append(u); err != nil {
		return helper.NewError("update glosses", err)
	}
	return nil
}

// Append merges u into the pending changes. Either all of u is applied or none of it.
func (b *SenseUpdateBuilder) Append(u *SenseUpdate) error {
	const trace = "append sense update"
	if u == nil {
		return helper.NullArgument(trace, "update")
	}
	if err := b.checkAppend(trace, u); err != nil {
		return err
	}
	next := b.clone()
	if err := next.UpdateGlosses(u.glosses); err != nil {
		return helper.NewError(trace, err)
	}
	if err := next.UpdateStatements(u.statements); err != nil {
		return helper.NewError(trace, err)
	}
	*b = *next
	return nil
}

func (b *SenseUpdateBuilder) AppendUpdate(u EntityUpdate) error {
	sense, ok := u.(*SenseUpdate)
	if !ok {
		return helper.InvalidArgument("append update", "expected a sense update, got %T", u)
	}
	return b.Append(sense)
}

func (b *SenseUpdateBuilder) clone() *SenseUpdateBuilder {
	return &SenseUpdateBuilder{
		entityBuilder:     b.entityBuilder,
		statementsBuilder: b.statementsBuilder.clone(),
		glosses:           b.glosses.Clone(),
	}
}

func (b *SenseUpdateBuilder) Build() (*SenseUpdate, error) {
	const trace = "build sense update"
	glosses, err := b.glosses.Build()
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	statements, err := b.statements.Build()
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	u, err := newSenseUpdate(b.id, b.baseRevisionID, glosses, statements)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return u, nil
}

func (b *SenseUpdateBuilder) BuildUpdate() (EntityUpdate, error) {
	u, err := b.Build()
	if err != nil {
		return nil, err
	}
	return u, nil
}
