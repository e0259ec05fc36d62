package update

import (
	"encoding/json"

	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// PropertyUpdate changes terms and statements of a property.
type PropertyUpdate struct {
	entityPart
	termsPart
	statementsPart
}

var _ TermedStatementDocumentUpdate = (*PropertyUpdate)(nil)

func newPropertyUpdate(id model.EntityID, baseRevisionID int64, terms termsPart, statements diff.StatementUpdate) (*PropertyUpdate, error) {
	const trace = "new property update"
	entity, err := newEntityPart(trace, id, model.KindProperty, baseRevisionID)
	if err != nil {
		return nil, err
	}
	s, err := newStatementsPart(trace, id, statements)
	if err != nil {
		return nil, err
	}
	return &PropertyUpdate{entityPart: entity, termsPart: terms, statementsPart: s}, nil
}

func (u *PropertyUpdate) IsEmpty() bool {
	return u.termsPart.isEmpty() && u.statements.IsEmpty()
}

func (u *PropertyUpdate) MarshalJSON() ([]byte, error) {
	j := updateJSON{Claims: statementsJSON(u.statements)}
	u.termsPart.toJSON(&j)
	return json.Marshal(j)
}

// PropertyUpdateBuilder accumulates changes of one property.
type PropertyUpdateBuilder struct {
	entityBuilder
	termsBuilder
	statementsBuilder
}

// NewPropertyUpdateBuilderForEntityID creates a blind builder for the property id.
func NewPropertyUpdateBuilderForEntityID(id model.EntityID) (*PropertyUpdateBuilder, error) {
	return NewPropertyUpdateBuilderForBaseRevisionID(id, 0)
}

// NewPropertyUpdateBuilderForBaseRevisionID creates a blind builder for changes
// based on the given revision.
func NewPropertyUpdateBuilderForBaseRevisionID(id model.EntityID, baseRevisionID int64) (*PropertyUpdateBuilder, error) {
	const trace = "property update builder"
	entity, err := newEntityBuilder(trace, id, model.KindProperty, baseRevisionID)
	if err != nil {
		return nil, err
	}
	terms, err := newTermsBuilder(trace, nil)
	if err != nil {
		return nil, err
	}
	statements, err := newStatementBuilder(id, false, nil)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return &PropertyUpdateBuilder{
		entityBuilder:     entity,
		termsBuilder:      terms,
		statementsBuilder: statementsBuilder{statements: statements},
	}, nil
}

// NewPropertyUpdateBuilderForBaseRevision creates a builder seeded with doc.
func NewPropertyUpdateBuilderForBaseRevision(doc *model.PropertyDocument) (*PropertyUpdateBuilder, error) {
	const trace = "property update builder for base revision"
	if doc == nil {
		return nil, helper.NullArgument(trace, "base revision")
	}
	entity, err := newEntityBuilderForDocument(trace, doc, model.KindProperty)
	if err != nil {
		return nil, err
	}
	terms, err := newTermsBuilder(trace, doc)
	if err != nil {
		return nil, err
	}
	statements, err := newStatementBuilder(doc.ID, true, doc.Statements)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return &PropertyUpdateBuilder{
		entityBuilder:     entity,
		termsBuilder:      terms,
		statementsBuilder: statementsBuilder{statements: statements},
	}, nil
}

// Append merges u into the pending changes. Either all of u is applied or none of it.
func (b *PropertyUpdateBuilder) Append(u *PropertyUpdate) error {
	const trace = "append property update"
	if u == nil {
		return helper.NullArgument(trace, "update")
	}
	if err := b.checkAppend(trace, u); err != nil {
		return err
	}
	next := b.clone()
	if err := next.termsBuilder.append(trace, u.termsPart); err != nil {
		return err
	}
	if err := next.UpdateStatements(u.statements); err != nil {
		return helper.NewError(trace, err)
	}
	*b = *next
	return nil
}

func (b *PropertyUpdateBuilder) AppendUpdate(u EntityUpdate) error {
	property, ok := u.(*PropertyUpdate)
	if !ok {
		return helper.InvalidArgument("append update", "expected a property update, got %T", u)
	}
	return b.Append(property)
}

func (b *PropertyUpdateBuilder) clone() *PropertyUpdateBuilder {
	return &PropertyUpdateBuilder{
		entityBuilder:     b.entityBuilder,
		termsBuilder:      b.termsBuilder.clone(),
		statementsBuilder: b.statementsBuilder.clone(),
	}
}

func (b *PropertyUpdateBuilder) Build() (*PropertyUpdate, error) {
	const trace = "build property update"
	terms, err := b.termsBuilder.build(trace)
	if err != nil {
		return nil, err
	}
	statements, err := b.statements.Build()
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	u, err := newPropertyUpdate(b.id, b.baseRevisionID, terms, statements)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return u, nil
}

func (b *PropertyUpdateBuilder) BuildUpdate() (EntityUpdate, error) {
	u, err := b.Build()
	if err != nil {
		return nil, err
	}
	return u, nil
}
