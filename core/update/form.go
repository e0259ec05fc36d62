package update

import (
	"encoding/json"
	"slices"

	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/core/validate"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// FormUpdate changes representations, grammatical features and statements
// of a lexeme form.
type FormUpdate struct {
	entityPart
	statementsPart
	representations     diff.TermUpdate
	featuresChanged     bool
	grammaticalFeatures []model.EntityID
}

var _ StatementDocumentUpdate = (*FormUpdate)(nil)

func validateFeatures(trace string, features []model.EntityID) error {
	for _, f := range features {
		if err := validate.Kind(trace, "grammatical feature", f, model.KindItem); err != nil {
			return err
		}
	}
	return validate.RealEntityIDs(trace, "grammatical feature", features)
}

func sameFeatures(a, b []model.EntityID) bool {
	if len(a) != len(b) {
		return false
	}
	for _, f := range a {
		if !slices.Contains(b, f) {
			return false
		}
	}
	return true
}

// newFormUpdate takes nil features for unchanged grammatical features.
func newFormUpdate(id model.EntityID, baseRevisionID int64, representations diff.TermUpdate, features *[]model.EntityID, statements diff.StatementUpdate) (*FormUpdate, error) {
	const trace = "new form update"
	entity, err := newEntityPart(trace, id, model.KindForm, baseRevisionID)
	if err != nil {
		return nil, err
	}
	s, err := newStatementsPart(trace, id, statements)
	if err != nil {
		return nil, err
	}
	u := &FormUpdate{entityPart: entity, statementsPart: s, representations: representations}
	if features != nil {
		if err := validateFeatures(trace, *features); err != nil {
			return nil, err
		}
		u.featuresChanged = true
		u.grammaticalFeatures = append([]model.EntityID{}, *features...)
	}
	return u, nil
}

func (u *FormUpdate) Representations() diff.TermUpdate { return u.representations }

// GrammaticalFeatures returns the new feature set if it changed.
func (u *FormUpdate) GrammaticalFeatures() ([]model.EntityID, bool) {
	if !u.featuresChanged {
		return nil, false
	}
	return slices.Clone(u.grammaticalFeatures), true
}

func (u *FormUpdate) IsEmpty() bool {
	return u.representations.IsEmpty() && !u.featuresChanged && u.statements.IsEmpty()
}

func (u *FormUpdate) MarshalJSON() ([]byte, error) {
	j := updateJSON{
		Representations: termsJSON(u.representations),
		Claims:          statementsJSON(u.statements),
	}
	if u.featuresChanged {
		features := sortedIDs(u.grammaticalFeatures)
		j.GrammaticalFeatures = &features
	}
	return json.Marshal(j)
}

// FormUpdateBuilder accumulates changes of one form.
type FormUpdateBuilder struct {
	entityBuilder
	statementsBuilder
	representations *diff.TermUpdateBuilder
	seeded          bool
	baseFeatures    []model.EntityID
	features        *[]model.EntityID
}

// NewFormUpdateBuilderForEntityID creates a blind builder for the form id.
func NewFormUpdateBuilderForEntityID(id model.EntityID) (*FormUpdateBuilder, error) {
	return NewFormUpdateBuilderForBaseRevisionID(id, 0)
}

// NewFormUpdateBuilderForBaseRevisionID creates a blind builder for changes
// based on the given revision.
func NewFormUpdateBuilderForBaseRevisionID(id model.EntityID, baseRevisionID int64) (*FormUpdateBuilder, error) {
	return newFormUpdateBuilder("form update builder", id, baseRevisionID, nil)
}

// NewFormUpdateBuilderForBaseRevision creates a builder seeded with doc.
func NewFormUpdateBuilderForBaseRevision(doc *model.FormDocument) (*FormUpdateBuilder, error) {
	const trace = "form update builder for base revision"
	if doc == nil {
		return nil, helper.NullArgument(trace, "base revision")
	}
	if err := validate.BaseRevision(trace, doc); err != nil {
		return nil, err
	}
	return newFormUpdateBuilder(trace, doc.ID, doc.RevisionID, doc)
}

// newFormUpdateBuilder seeds the builder with base unless it is nil.
func newFormUpdateBuilder(trace string, id model.EntityID, baseRevisionID int64, base *model.FormDocument) (*FormUpdateBuilder, error) {
	entity, err := newEntityBuilder(trace, id, model.KindForm, baseRevisionID)
	if err != nil {
		return nil, err
	}
	var representationTerms map[string]model.Term
	var statementList []model.Statement
	var features []model.EntityID
	if base != nil {
		representationTerms, statementList = base.Representations, base.Statements
		if err := validateFeatures(trace, base.GrammaticalFeatures); err != nil {
			return nil, err
		}
		features = slices.Clone(base.GrammaticalFeatures)
	}
	representations, err := newTermBuilder(base != nil, representationTerms)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	statements, err := newStatementBuilder(id, base != nil, statementList)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return &FormUpdateBuilder{
		entityBuilder:     entity,
		statementsBuilder: statementsBuilder{statements: statements},
		representations:   representations,
		seeded:            base != nil,
		baseFeatures:      features,
	}, nil
}

// UpdateRepresentations merges u into the pending representation changes.
func (b *FormUpdateBuilder) UpdateRepresentations(u diff.TermUpdate) error {
	if err := b.representations.Append(u); err != nil {
		return helper.NewError("update representations", err)
	}
	return nil
}

// SetGrammaticalFeatures replaces the feature set. Setting the current set
// cancels the change.
func (b *FormUpdateBuilder) SetGrammaticalFeatures(features []model.EntityID) error {
	if err := validateFeatures("set grammatical features", features); err != nil {
		return err
	}
	if b.seeded && sameFeatures(features, b.baseFeatures) {
		b.features = nil
		return nil
	}
	set := append([]model.EntityID{}, features...)
	b.features = &set
	return nil
}

// Append merges u into the pending changes. Either all of u is applied or none of it.
func (b *FormUpdateBuilder) Append(u *FormUpdate) error {
	const trace = "append form update"
	if u == nil {
		return helper.NullArgument(trace, "update")
	}
	if err := b.checkAppend(trace, u); err != nil {
		return err
	}
	next := b.clone()
	if err := next.UpdateRepresentations(u.representations); err != nil {
		return helper.NewError(trace, err)
	}
	if u.featuresChanged {
		if err := next.SetGrammaticalFeatures(u.grammaticalFeatures); err != nil {
			return helper.NewError(trace, err)
		}
	}
	if err := next.UpdateStatements(u.statements); err != nil {
		return helper.NewError(trace, err)
	}
	*b = *next
	return nil
}

func (b *FormUpdateBuilder) AppendUpdate(u EntityUpdate) error {
	form, ok := u.(*FormUpdate)
	if !ok {
		return helper.InvalidArgument("append update", "expected a form update, got %T", u)
	}
	return b.Append(form)
}

func (b *FormUpdateBuilder) clone() *FormUpdateBuilder {
	c := *b
	c.statementsBuilder = b.statementsBuilder.clone()
	c.representations = b.representations.Clone()
	return &c
}

func (b *FormUpdateBuilder) Build() (*FormUpdate, error) {
	const trace = "build form update"
	representations, err := b.representations.Build()
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	statements, err := b.statements.Build()
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	u, err := newFormUpdate(b.id, b.baseRevisionID, representations, b.features, statements)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return u, nil
}

func (b *FormUpdateBuilder) BuildUpdate() (EntityUpdate, error) {
	u, err := b.Build()
	if err != nil {
		return nil, err
	}
	return u, nil
}
