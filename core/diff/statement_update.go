package diff

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/siherrmann/wbupdate/core/validate"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// StatementUpdate changes the statements of one subject. Added statements
// carry no id, replaced statements are keyed by their id. The zero value is empty.
type StatementUpdate struct {
	added    []model.Statement
	replaced map[string]model.Statement
	removed  map[string]struct{}
}

// EmptyStatementUpdate changes nothing.
var EmptyStatementUpdate = StatementUpdate{}

func newStatementUpdate(added []model.Statement, replaced []model.Statement, removed []string) (StatementUpdate, error) {
	const trace = "new statement update"
	var subject model.EntityID
	checkSubject := func(s model.Statement) error {
		if err := validate.EntityID(trace, "statement subject", s.Subject); err != nil {
			return err
		}
		if subject.IsZero() {
			subject = s.Subject
		} else if s.Subject != subject {
			return helper.InvalidArgument(trace, "statement subject %s does not match %s", s.Subject, subject)
		}
		return nil
	}

	for _, s := range added {
		if s.ID != "" {
			return StatementUpdate{}, helper.InvalidArgument(trace, "added statement must not have an id, got %q", s.ID)
		}
		if err := checkSubject(s); err != nil {
			return StatementUpdate{}, err
		}
	}
	ids := make([]string, len(replaced))
	for i, s := range replaced {
		if strings.TrimSpace(s.ID) == "" {
			return StatementUpdate{}, helper.InvalidArgument(trace, "replaced statement must have an id")
		}
		if err := checkSubject(s); err != nil {
			return StatementUpdate{}, err
		}
		ids[i] = s.ID
	}
	if err := validate.Distinct(trace, "replaced statement id", ids); err != nil {
		return StatementUpdate{}, err
	}
	for _, id := range removed {
		if strings.TrimSpace(id) == "" {
			return StatementUpdate{}, helper.InvalidArgument(trace, "removed statement id must not be blank")
		}
	}
	if err := validate.Distinct(trace, "removed statement id", removed); err != nil {
		return StatementUpdate{}, err
	}
	if err := validate.Disjoint(trace, "statement id", ids, removed); err != nil {
		return StatementUpdate{}, err
	}

	u := StatementUpdate{}
	for _, s := range added {
		u.added = append(u.added, s.Clone())
	}
	if len(replaced) > 0 {
		u.replaced = make(map[string]model.Statement, len(replaced))
		for _, s := range replaced {
			u.replaced[s.ID] = s.Clone()
		}
	}
	if len(removed) > 0 {
		u.removed = make(map[string]struct{}, len(removed))
		for _, id := range removed {
			u.removed[id] = struct{}{}
		}
	}
	return u, nil
}

// Added returns the new statements in insertion order.
func (u StatementUpdate) Added() []model.Statement {
	out := make([]model.Statement, len(u.added))
	for i, s := range u.added {
		out[i] = s.Clone()
	}
	return out
}

// Replaced returns the replacement statements keyed by statement id.
func (u StatementUpdate) Replaced() map[string]model.Statement {
	out := make(map[string]model.Statement, len(u.replaced))
	for id, s := range u.replaced {
		out[id] = s.Clone()
	}
	return out
}

// Removed returns the removed statement ids in sorted order.
func (u StatementUpdate) Removed() []string {
	return slices.Sorted(maps.Keys(u.removed))
}

func (u StatementUpdate) IsEmpty() bool {
	return len(u.added) == 0 && len(u.replaced) == 0 && len(u.removed) == 0
}

// Subject returns the subject shared by all statements of the update, if any.
func (u StatementUpdate) Subject() (model.EntityID, bool) {
	if len(u.added) > 0 {
		return u.added[0].Subject, true
	}
	for _, s := range u.replaced {
		return s.Subject, true
	}
	return model.EntityID{}, false
}

type statementRemovalJSON struct {
	ID     string `json:"id"`
	Remove string `json:"remove"`
}

func (u StatementUpdate) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(u.added)+len(u.replaced)+len(u.removed))
	for _, s := range u.added {
		out = append(out, s)
	}
	for _, id := range slices.Sorted(maps.Keys(u.replaced)) {
		out = append(out, u.replaced[id])
	}
	for _, id := range u.Removed() {
		out = append(out, statementRemovalJSON{ID: id})
	}
	return json.Marshal(out)
}

// StatementUpdateBuilder accumulates statement changes of one subject.
// A builder seeded with the current statements rejects unknown statement ids.
// It is not safe for concurrent use.
type StatementUpdateBuilder struct {
	subject  model.EntityID
	base     map[string]model.Statement
	added    []model.Statement
	replaced map[string]model.Statement
	removed  map[string]struct{}
}

// NewStatementUpdateBuilder creates a blind builder without subject constraint.
func NewStatementUpdateBuilder() *StatementUpdateBuilder {
	return &StatementUpdateBuilder{
		replaced: map[string]model.Statement{},
		removed:  map[string]struct{}{},
	}
}

// NewStatementUpdateBuilderForSubject creates a blind builder accepting only
// statements about subject.
func NewStatementUpdateBuilderForSubject(subject model.EntityID) (*StatementUpdateBuilder, error) {
	if err := validate.EntityID("statement update builder for subject", "subject", subject); err != nil {
		return nil, err
	}
	b := NewStatementUpdateBuilder()
	b.subject = subject
	return b, nil
}

// NewStatementUpdateBuilderForStatements creates a builder seeded with the
// current statements. All of them need an id and a shared subject.
func NewStatementUpdateBuilderForStatements(statements []model.Statement) (*StatementUpdateBuilder, error) {
	return newSeededStatementUpdateBuilder(model.EntityID{}, statements)
}

// NewStatementUpdateBuilderForStatementGroups seeds the builder with the statements of all groups.
func NewStatementUpdateBuilderForStatementGroups(groups []model.StatementGroup) (*StatementUpdateBuilder, error) {
	var statements []model.Statement
	for _, g := range groups {
		statements = append(statements, g.Statements...)
	}
	return newSeededStatementUpdateBuilder(model.EntityID{}, statements)
}

// NewStatementUpdateBuilderForEntity seeds the builder with the statements
// of an entity. Unlike NewStatementUpdateBuilderForStatements the subject is
// known even if the entity has no statements yet.
func NewStatementUpdateBuilderForEntity(subject model.EntityID, statements []model.Statement) (*StatementUpdateBuilder, error) {
	if err := validate.EntityID("statement update builder for entity", "subject", subject); err != nil {
		return nil, err
	}
	return newSeededStatementUpdateBuilder(subject, statements)
}

func newSeededStatementUpdateBuilder(subject model.EntityID, statements []model.Statement) (*StatementUpdateBuilder, error) {
	const trace = "statement update builder for statements"
	base := make(map[string]model.Statement, len(statements))
	for _, s := range statements {
		if err := validate.EntityID(trace, "statement subject", s.Subject); err != nil {
			return nil, err
		}
		if strings.TrimSpace(s.ID) == "" {
			return nil, helper.InvalidArgument(trace, "base statement must have an id")
		}
		if subject.IsZero() {
			subject = s.Subject
		} else if s.Subject != subject {
			return nil, helper.InvalidArgument(trace, "statement subject %s does not match %s", s.Subject, subject)
		}
		if _, ok := base[s.ID]; ok {
			return nil, helper.InvalidArgument(trace, "duplicate statement id %q", s.ID)
		}
		base[s.ID] = s.Clone()
	}
	b := NewStatementUpdateBuilder()
	b.subject = subject
	b.base = base
	return b, nil
}

// checkSubject returns the subject the builder is bound to after accepting s.
func (b *StatementUpdateBuilder) checkSubject(trace string, s model.Statement) (model.EntityID, error) {
	if err := validate.EntityID(trace, "statement subject", s.Subject); err != nil {
		return model.EntityID{}, err
	}
	if !b.subject.IsZero() && s.Subject != b.subject {
		return model.EntityID{}, helper.InvalidArgument(trace, "statement subject %s does not match %s", s.Subject, b.subject)
	}
	return s.Subject, nil
}

func (b *StatementUpdateBuilder) checkKnown(trace string, id string) error {
	if b.base == nil {
		return nil
	}
	if _, ok := b.base[id]; !ok {
		return helper.InvalidArgument(trace, "unknown statement id %q", id)
	}
	return nil
}

// AddStatement adds a new statement. Its id is dropped.
func (b *StatementUpdateBuilder) AddStatement(s model.Statement) error {
	subject, err := b.checkSubject("add statement", s)
	if err != nil {
		return err
	}
	b.subject = subject
	b.added = append(b.added, s.WithID(""))
	return nil
}

// ReplaceStatement replaces the statement with the same id. Replacing a
// statement with its current value cancels the replacement.
func (b *StatementUpdateBuilder) ReplaceStatement(s model.Statement) error {
	const trace = "replace statement"
	if strings.TrimSpace(s.ID) == "" {
		return helper.InvalidArgument(trace, "statement must have an id")
	}
	subject, err := b.checkSubject(trace, s)
	if err != nil {
		return err
	}
	if err := b.checkKnown(trace, s.ID); err != nil {
		return err
	}
	b.subject = subject
	delete(b.removed, s.ID)
	if original, ok := b.base[s.ID]; ok && original.Equal(s) {
		delete(b.replaced, s.ID)
		return nil
	}
	b.replaced[s.ID] = s.Clone()
	return nil
}

// RemoveStatement removes the statement with id, dropping a pending replacement.
func (b *StatementUpdateBuilder) RemoveStatement(id string) error {
	const trace = "remove statement"
	if strings.TrimSpace(id) == "" {
		return helper.InvalidArgument(trace, "statement id must not be blank")
	}
	if err := b.checkKnown(trace, id); err != nil {
		return err
	}
	delete(b.replaced, id)
	b.removed[id] = struct{}{}
	return nil
}

// Append applies update after the pending changes. Either all of update is
// applied or none of it.
func (b *StatementUpdateBuilder) Append(update StatementUpdate) error {
	next := b.Clone()
	if err := next.apply(update); err != nil {
		return helper.NewError("append statement update", err)
	}
	*b = *next
	return nil
}

func (b *StatementUpdateBuilder) apply(update StatementUpdate) error {
	for _, s := range update.added {
		if err := b.AddStatement(s); err != nil {
			return err
		}
	}
	for _, id := range slices.Sorted(maps.Keys(update.replaced)) {
		if err := b.ReplaceStatement(update.replaced[id]); err != nil {
			return err
		}
	}
	for _, id := range update.Removed() {
		if err := b.RemoveStatement(id); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy of the builder.
func (b *StatementUpdateBuilder) Clone() *StatementUpdateBuilder {
	c := *b
	c.added = slices.Clone(b.added)
	c.replaced = maps.Clone(b.replaced)
	c.removed = maps.Clone(b.removed)
	return &c
}

func (b *StatementUpdateBuilder) Build() (StatementUpdate, error) {
	replaced := make([]model.Statement, 0, len(b.replaced))
	for _, id := range slices.Sorted(maps.Keys(b.replaced)) {
		replaced = append(replaced, b.replaced[id])
	}
	removed := slices.Sorted(maps.Keys(b.removed))
	u, err := newStatementUpdate(b.added, replaced, removed)
	if err != nil {
		return StatementUpdate{}, helper.NewError("build statement update", err)
	}
	return u, nil
}
