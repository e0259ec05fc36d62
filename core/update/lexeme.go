package update

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/core/validate"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// LexemeUpdate changes a lexeme together with its senses and forms. Added
// senses and forms carry placeholder ids, updated and removed ones real ids
// of the lexeme.
type LexemeUpdate struct {
	entityPart
	statementsPart
	language        model.EntityID
	lexicalCategory model.EntityID
	lemmas          diff.TermUpdate
	addedSenses     []model.SenseDocument
	updatedSenses   map[model.EntityID]*SenseUpdate
	removedSenses   []model.EntityID
	addedForms      []model.FormDocument
	updatedForms    map[model.EntityID]*FormUpdate
	removedForms    []model.EntityID
}

var _ StatementDocumentUpdate = (*LexemeUpdate)(nil)

// lexemeChanges collects the fields of a LexemeUpdate. Zero ids mean unchanged.
type lexemeChanges struct {
	language        model.EntityID
	lexicalCategory model.EntityID
	lemmas          diff.TermUpdate
	statements      diff.StatementUpdate
	addedSenses     []model.SenseDocument
	updatedSenses   []*SenseUpdate
	removedSenses   []model.EntityID
	addedForms      []model.FormDocument
	updatedForms    []*FormUpdate
	removedForms    []model.EntityID
}

func validateItemReference(trace string, what string, id model.EntityID) error {
	if id.IsZero() {
		return nil
	}
	if err := validate.Kind(trace, what, id, model.KindItem); err != nil {
		return err
	}
	return validate.RealEntityID(trace, what, id)
}

// validateSubEntityID checks that id is a real sense or form id of lexeme.
func validateSubEntityID(trace string, kind model.Kind, lexeme model.EntityID, id model.EntityID) error {
	what := string(kind) + " id"
	if err := validate.Kind(trace, what, id, kind); err != nil {
		return err
	}
	if err := validate.RealEntityID(trace, what, id); err != nil {
		return err
	}
	if parent, _ := id.LexemeID(); parent != lexeme {
		return helper.InvalidArgument(trace, "%s %s does not belong to %s", kind, id, lexeme)
	}
	return nil
}

func validateAddedID(trace string, kind model.Kind, id model.EntityID) error {
	what := "added " + string(kind) + " id"
	if err := validate.Kind(trace, what, id, kind); err != nil {
		return err
	}
	if !id.IsPlaceholder() {
		return helper.InvalidArgument(trace, "%s must be the placeholder id, got %s", what, id)
	}
	return nil
}

// validateAddedStatements checks that statements of a new sense or form are
// about that sense or form and carry no id.
func validateAddedStatements(trace string, id model.EntityID, statements []model.Statement) error {
	for _, st := range statements {
		if st.Subject != id {
			return helper.InvalidArgument(trace, "statement subject %s does not match added %s %s", st.Subject, id.Kind(), id)
		}
		if st.ID != "" {
			return helper.InvalidArgument(trace, "statement of added %s must not have an id, got %q", id.Kind(), st.ID)
		}
	}
	return nil
}

func validateTermMap(trace string, terms map[string]model.Term) error {
	for lang, t := range terms {
		if t.Language != lang {
			return helper.InvalidArgument(trace, "term in language %q listed under %q", t.Language, lang)
		}
	}
	return validate.Terms(trace, model.TermList(terms))
}

func validateSubEntities(trace string, kind model.Kind, lexeme model.EntityID, updated []model.EntityID, removed []model.EntityID) error {
	for _, id := range slices.Concat(updated, removed) {
		if err := validateSubEntityID(trace, kind, lexeme, id); err != nil {
			return err
		}
	}
	if err := validate.Distinct(trace, "updated "+string(kind), updated); err != nil {
		return err
	}
	if err := validate.Distinct(trace, "removed "+string(kind), removed); err != nil {
		return err
	}
	return validate.Disjoint(trace, string(kind), updated, removed)
}

func cloneSense(d model.SenseDocument) model.SenseDocument {
	d.Glosses = maps.Clone(d.Glosses)
	d.Statements = cloneStatements(d.Statements)
	return d
}

func cloneForm(d model.FormDocument) model.FormDocument {
	d.Representations = maps.Clone(d.Representations)
	d.GrammaticalFeatures = slices.Clone(d.GrammaticalFeatures)
	d.Statements = cloneStatements(d.Statements)
	return d
}

func cloneStatements(statements []model.Statement) []model.Statement {
	if statements == nil {
		return nil
	}
	out := make([]model.Statement, len(statements))
	for i, s := range statements {
		out[i] = s.Clone()
	}
	return out
}

func newLexemeUpdate(id model.EntityID, baseRevisionID int64, c lexemeChanges) (*LexemeUpdate, error) {
	const trace = "new lexeme update"
	entity, err := newEntityPart(trace, id, model.KindLexeme, baseRevisionID)
	if err != nil {
		return nil, err
	}
	s, err := newStatementsPart(trace, id, c.statements)
	if err != nil {
		return nil, err
	}
	if err := validateItemReference(trace, "language", c.language); err != nil {
		return nil, err
	}
	if err := validateItemReference(trace, "lexical category", c.lexicalCategory); err != nil {
		return nil, err
	}
	for _, d := range c.addedSenses {
		if err := validateAddedID(trace, model.KindSense, d.ID); err != nil {
			return nil, err
		}
		if err := validateTermMap(trace, d.Glosses); err != nil {
			return nil, err
		}
		if err := validateAddedStatements(trace, d.ID, d.Statements); err != nil {
			return nil, err
		}
	}
	for _, d := range c.addedForms {
		if err := validateAddedID(trace, model.KindForm, d.ID); err != nil {
			return nil, err
		}
		if err := validateTermMap(trace, d.Representations); err != nil {
			return nil, err
		}
		if err := validateFeatures(trace, d.GrammaticalFeatures); err != nil {
			return nil, err
		}
		if err := validateAddedStatements(trace, d.ID, d.Statements); err != nil {
			return nil, err
		}
	}
	senseIDs := make([]model.EntityID, len(c.updatedSenses))
	for i, su := range c.updatedSenses {
		if su == nil {
			return nil, helper.NullArgument(trace, "updated sense")
		}
		senseIDs[i] = su.EntityID()
	}
	if err := validateSubEntities(trace, model.KindSense, id, senseIDs, c.removedSenses); err != nil {
		return nil, err
	}
	formIDs := make([]model.EntityID, len(c.updatedForms))
	for i, fu := range c.updatedForms {
		if fu == nil {
			return nil, helper.NullArgument(trace, "updated form")
		}
		formIDs[i] = fu.EntityID()
	}
	if err := validateSubEntities(trace, model.KindForm, id, formIDs, c.removedForms); err != nil {
		return nil, err
	}

	u := &LexemeUpdate{
		entityPart:      entity,
		statementsPart:  s,
		language:        c.language,
		lexicalCategory: c.lexicalCategory,
		lemmas:          c.lemmas,
		removedSenses:   sortedIDs(c.removedSenses),
		removedForms:    sortedIDs(c.removedForms),
	}
	for _, d := range c.addedSenses {
		u.addedSenses = append(u.addedSenses, cloneSense(d))
	}
	for _, d := range c.addedForms {
		u.addedForms = append(u.addedForms, cloneForm(d))
	}
	for _, su := range c.updatedSenses {
		if su.IsEmpty() {
			continue
		}
		if u.updatedSenses == nil {
			u.updatedSenses = map[model.EntityID]*SenseUpdate{}
		}
		u.updatedSenses[su.EntityID()] = su
	}
	for _, fu := range c.updatedForms {
		if fu.IsEmpty() {
			continue
		}
		if u.updatedForms == nil {
			u.updatedForms = map[model.EntityID]*FormUpdate{}
		}
		u.updatedForms[fu.EntityID()] = fu
	}
	return u, nil
}

// Language returns the new language item if it changed.
func (u *LexemeUpdate) Language() (model.EntityID, bool) {
	return u.language, !u.language.IsZero()
}

// LexicalCategory returns the new lexical category item if it changed.
func (u *LexemeUpdate) LexicalCategory() (model.EntityID, bool) {
	return u.lexicalCategory, !u.lexicalCategory.IsZero()
}

func (u *LexemeUpdate) Lemmas() diff.TermUpdate { return u.lemmas }

func (u *LexemeUpdate) AddedSenses() []model.SenseDocument {
	out := make([]model.SenseDocument, len(u.addedSenses))
	for i, d := range u.addedSenses {
		out[i] = cloneSense(d)
	}
	return out
}

func (u *LexemeUpdate) UpdatedSenses() map[model.EntityID]*SenseUpdate {
	return maps.Clone(u.updatedSenses)
}

func (u *LexemeUpdate) RemovedSenses() []model.EntityID {
	return slices.Clone(u.removedSenses)
}

func (u *LexemeUpdate) AddedForms() []model.FormDocument {
	out := make([]model.FormDocument, len(u.addedForms))
	for i, d := range u.addedForms {
		out[i] = cloneForm(d)
	}
	return out
}

func (u *LexemeUpdate) UpdatedForms() map[model.EntityID]*FormUpdate {
	return maps.Clone(u.updatedForms)
}

func (u *LexemeUpdate) RemovedForms() []model.EntityID {
	return slices.Clone(u.removedForms)
}

func (u *LexemeUpdate) IsEmpty() bool {
	return u.language.IsZero() && u.lexicalCategory.IsZero() &&
		u.lemmas.IsEmpty() && u.statements.IsEmpty() &&
		len(u.addedSenses) == 0 && len(u.updatedSenses) == 0 && len(u.removedSenses) == 0 &&
		len(u.addedForms) == 0 && len(u.updatedForms) == 0 && len(u.removedForms) == 0
}

func subEntitiesJSON[U EntityUpdate](added []model.EntityDocument, updated map[model.EntityID]U, removed []model.EntityID) ([]json.RawMessage, error) {
	var out []json.RawMessage
	for _, d := range added {
		data, err := addedDocumentJSON(d)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	for _, id := range sortedIDs(slices.Collect(maps.Keys(updated))) {
		data, err := updatedDocumentJSON(updated[id])
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	for _, id := range removed {
		data, err := removedDocumentJSON(id)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (u *LexemeUpdate) MarshalJSON() ([]byte, error) {
	j := updateJSON{
		Lemmas: termsJSON(u.lemmas),
		Claims: statementsJSON(u.statements),
	}
	if !u.language.IsZero() {
		j.Language = u.language.ID()
	}
	if !u.lexicalCategory.IsZero() {
		j.LexicalCategory = u.lexicalCategory.ID()
	}

	senses := make([]model.EntityDocument, len(u.addedSenses))
	for i := range u.addedSenses {
		senses[i] = &u.addedSenses[i]
	}
	var err error
	if j.Senses, err = subEntitiesJSON(senses, u.updatedSenses, u.removedSenses); err != nil {
		return nil, helper.NewError("marshal lexeme update", err)
	}

	forms := make([]model.EntityDocument, len(u.addedForms))
	for i := range u.addedForms {
		forms[i] = &u.addedForms[i]
	}
	if j.Forms, err = subEntitiesJSON(forms, u.updatedForms, u.removedForms); err != nil {
		return nil, helper.NewError("marshal lexeme update", err)
	}
	return json.Marshal(j)
}

// LexemeUpdateBuilder accumulates changes of one lexeme and its senses and
// forms. Updates of the same sense or form are merged when the lexeme update
// is built.
type LexemeUpdateBuilder struct {
	entityBuilder
	statementsBuilder
	base            *model.LexemeDocument
	language        model.EntityID
	lexicalCategory model.EntityID
	lemmas          *diff.TermUpdateBuilder
	addedSenses     []model.SenseDocument
	updatedSenses   map[model.EntityID][]*SenseUpdate
	removedSenses   map[model.EntityID]struct{}
	addedForms      []model.FormDocument
	updatedForms    map[model.EntityID][]*FormUpdate
	removedForms    map[model.EntityID]struct{}
}

// NewLexemeUpdateBuilderForEntityID creates a blind builder for the lexeme id.
func NewLexemeUpdateBuilderForEntityID(id model.EntityID) (*LexemeUpdateBuilder, error) {
	return NewLexemeUpdateBuilderForBaseRevisionID(id, 0)
}

// NewLexemeUpdateBuilderForBaseRevisionID creates a blind builder for changes
// based on the given revision.
func NewLexemeUpdateBuilderForBaseRevisionID(id model.EntityID, baseRevisionID int64) (*LexemeUpdateBuilder, error) {
	const trace = "lexeme update builder"
	entity, err := newEntityBuilder(trace, id, model.KindLexeme, baseRevisionID)
	if err != nil {
		return nil, err
	}
	statements, err := newStatementBuilder(id, false, nil)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return newLexemeUpdateBuilder(entity, statements, diff.NewTermUpdateBuilder(), nil), nil
}

// NewLexemeUpdateBuilderForBaseRevision creates a builder seeded with doc.
// Sense and form changes are checked against the senses and forms of doc.
func NewLexemeUpdateBuilderForBaseRevision(doc *model.LexemeDocument) (*LexemeUpdateBuilder, error) {
	const trace = "lexeme update builder for base revision"
	if doc == nil {
		return nil, helper.NullArgument(trace, "base revision")
	}
	entity, err := newEntityBuilderForDocument(trace, doc, model.KindLexeme)
	if err != nil {
		return nil, err
	}
	if err := validateItemReference(trace, "language", doc.Language); err != nil {
		return nil, err
	}
	if err := validateItemReference(trace, "lexical category", doc.LexicalCategory); err != nil {
		return nil, err
	}
	for i := range doc.Senses {
		s := &doc.Senses[i]
		if err := validateSubEntityID(trace, model.KindSense, doc.ID, s.ID); err != nil {
			return nil, err
		}
		if _, err := newSenseUpdateBuilder(trace, s.ID, 0, s); err != nil {
			return nil, err
		}
	}
	for i := range doc.Forms {
		f := &doc.Forms[i]
		if err := validateSubEntityID(trace, model.KindForm, doc.ID, f.ID); err != nil {
			return nil, err
		}
		if _, err := newFormUpdateBuilder(trace, f.ID, 0, f); err != nil {
			return nil, err
		}
	}
	lemmas, err := newTermBuilder(true, doc.Lemmas)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	statements, err := newStatementBuilder(doc.ID, true, doc.Statements)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return newLexemeUpdateBuilder(entity, statements, lemmas, doc), nil
}

func newLexemeUpdateBuilder(entity entityBuilder, statements *diff.StatementUpdateBuilder, lemmas *diff.TermUpdateBuilder, base *model.LexemeDocument) *LexemeUpdateBuilder {
	return &LexemeUpdateBuilder{
		entityBuilder:     entity,
		statementsBuilder: statementsBuilder{statements: statements},
		base:              base,
		lemmas:            lemmas,
		updatedSenses:     map[model.EntityID][]*SenseUpdate{},
		removedSenses:     map[model.EntityID]struct{}{},
		updatedForms:      map[model.EntityID][]*FormUpdate{},
		removedForms:      map[model.EntityID]struct{}{},
	}
}

// SetLanguage changes the language item. Setting the current language cancels the change.
func (b *LexemeUpdateBuilder) SetLanguage(language model.EntityID) error {
	const trace = "set language"
	if err := validate.EntityID(trace, "language", language); err != nil {
		return err
	}
	if err := validateItemReference(trace, "language", language); err != nil {
		return err
	}
	if b.base != nil && b.base.Language == language {
		b.language = model.EntityID{}
		return nil
	}
	b.language = language
	return nil
}

// SetLexicalCategory changes the lexical category item. Setting the current
// category cancels the change.
func (b *LexemeUpdateBuilder) SetLexicalCategory(category model.EntityID) error {
	const trace = "set lexical category"
	if err := validate.EntityID(trace, "lexical category", category); err != nil {
		return err
	}
	if err := validateItemReference(trace, "lexical category", category); err != nil {
		return err
	}
	if b.base != nil && b.base.LexicalCategory == category {
		b.lexicalCategory = model.EntityID{}
		return nil
	}
	b.lexicalCategory = category
	return nil
}

// UpdateLemmas merges u into the pending lemma changes.
func (b *LexemeUpdateBuilder) UpdateLemmas(u diff.TermUpdate) error {
	if err := b.lemmas.Append(u); err != nil {
		return helper.NewError("update lemmas", err)
	}
	return nil
}

// AddSense adds a new sense. Its id must be the sense placeholder.
func (b *LexemeUpdateBuilder) AddSense(sense model.SenseDocument) error {
	const trace = "add sense"
	if err := validateAddedID(trace, model.KindSense, sense.ID); err != nil {
		return err
	}
	if err := validateTermMap(trace, sense.Glosses); err != nil {
		return err
	}
	if err := validateAddedStatements(trace, sense.ID, sense.Statements); err != nil {
		return err
	}
	b.addedSenses = append(b.addedSenses, cloneSense(sense))
	return nil
}

func (b *LexemeUpdateBuilder) checkSubEntity(trace string, kind model.Kind, id model.EntityID) error {
	if err := validateSubEntityID(trace, kind, b.id, id); err != nil {
		return err
	}
	if b.base == nil {
		return nil
	}
	var known bool
	if kind == model.KindSense {
		_, known = b.base.Sense(id)
	} else {
		_, known = b.base.Form(id)
	}
	if !known {
		return helper.InvalidArgument(trace, "unknown %s %s", kind, id)
	}
	return nil
}

// UpdateSense records a change of an existing sense. Changes of the same
// sense are merged on Build.
func (b *LexemeUpdateBuilder) UpdateSense(u *SenseUpdate) error {
	const trace = "update sense"
	if u == nil {
		return helper.NullArgument(trace, "sense update")
	}
	if err := b.checkSubEntity(trace, model.KindSense, u.EntityID()); err != nil {
		return err
	}
	if _, ok := b.removedSenses[u.EntityID()]; ok {
		return helper.InvalidArgument(trace, "sense %s is removed", u.EntityID())
	}
	if u.IsEmpty() {
		return nil
	}
	b.updatedSenses[u.EntityID()] = append(b.updatedSenses[u.EntityID()], u)
	return nil
}

// RemoveSense removes an existing sense, dropping its pending changes.
func (b *LexemeUpdateBuilder) RemoveSense(id model.EntityID) error {
	if err := b.checkSubEntity("remove sense", model.KindSense, id); err != nil {
		return err
	}
	delete(b.updatedSenses, id)
	b.removedSenses[id] = struct{}{}
	return nil
}

// AddForm adds a new form. Its id must be the form placeholder.
func (b *LexemeUpdateBuilder) AddForm(form model.FormDocument) error {
	const trace = "add form"
	if err := validateAddedID(trace, model.KindForm, form.ID); err != nil {
		return err
	}
	if err := validateTermMap(trace, form.Representations); err != nil {
		return err
	}
	if err := validateFeatures(trace, form.GrammaticalFeatures); err != nil {
		return err
	}
	if err := validateAddedStatements(trace, form.ID, form.Statements); err != nil {
		return err
	}
	b.addedForms = append(b.addedForms, cloneForm(form))
	return nil
}

// UpdateForm records a change of an existing form. Changes of the same
// form are merged on Build.
func (b *LexemeUpdateBuilder) UpdateForm(u *FormUpdate) error {
	const trace = "update form"
	if u == nil {
		return helper.NullArgument(trace, "form update")
	}
	if err := b.checkSubEntity(trace, model.KindForm, u.EntityID()); err != nil {
		return err
	}
	if _, ok := b.removedForms[u.EntityID()]; ok {
		return helper.InvalidArgument(trace, "form %s is removed", u.EntityID())
	}
	if u.IsEmpty() {
		return nil
	}
	b.updatedForms[u.EntityID()] = append(b.updatedForms[u.EntityID()], u)
	return nil
}

// RemoveForm removes an existing form, dropping its pending changes.
func (b *LexemeUpdateBuilder) RemoveForm(id model.EntityID) error {
	if err := b.checkSubEntity("remove form", model.KindForm, id); err != nil {
		return err
	}
	delete(b.updatedForms, id)
	b.removedForms[id] = struct{}{}
	return nil
}

// Append merges u into the pending changes. Either all of u is applied or none of it.
func (b *LexemeUpdateBuilder) Append(u *LexemeUpdate) error {
	const trace = "append lexeme update"
	if u == nil {
		return helper.NullArgument(trace, "update")
	}
	if err := b.checkAppend(trace, u); err != nil {
		return err
	}
	next := b.clone()
	if err := next.apply(u); err != nil {
		return helper.NewError(trace, err)
	}
	*b = *next
	return nil
}

func (b *LexemeUpdateBuilder) apply(u *LexemeUpdate) error {
	if !u.language.IsZero() {
		if err := b.SetLanguage(u.language); err != nil {
			return err
		}
	}
	if !u.lexicalCategory.IsZero() {
		if err := b.SetLexicalCategory(u.lexicalCategory); err != nil {
			return err
		}
	}
	if err := b.UpdateLemmas(u.lemmas); err != nil {
		return err
	}
	if err := b.UpdateStatements(u.statements); err != nil {
		return err
	}
	for _, d := range u.addedSenses {
		if err := b.AddSense(d); err != nil {
			return err
		}
	}
	for _, id := range sortedIDs(slices.Collect(maps.Keys(u.updatedSenses))) {
		if err := b.UpdateSense(u.updatedSenses[id]); err != nil {
			return err
		}
	}
	for _, id := range u.removedSenses {
		if err := b.RemoveSense(id); err != nil {
			return err
		}
	}
	for _, d := range u.addedForms {
		if err := b.AddForm(d); err != nil {
			return err
		}
	}
	for _, id := range sortedIDs(slices.Collect(maps.Keys(u.updatedForms))) {
		if err := b.UpdateForm(u.updatedForms[id]); err != nil {
			return err
		}
	}
	for _, id := range u.removedForms {
		if err := b.RemoveForm(id); err != nil {
			return err
		}
	}
	return nil
}

func (b *LexemeUpdateBuilder) AppendUpdate(u EntityUpdate) error {
	lexeme, ok := u.(*LexemeUpdate)
	if !ok {
		return helper.InvalidArgument("append update", "expected a lexeme update, got %T", u)
	}
	return b.Append(lexeme)
}

func (b *LexemeUpdateBuilder) clone() *LexemeUpdateBuilder {
	c := *b
	c.statementsBuilder = b.statementsBuilder.clone()
	c.lemmas = b.lemmas.Clone()
	c.addedSenses = slices.Clone(b.addedSenses)
	c.removedSenses = maps.Clone(b.removedSenses)
	c.addedForms = slices.Clone(b.addedForms)
	c.removedForms = maps.Clone(b.removedForms)
	c.updatedSenses = make(map[model.EntityID][]*SenseUpdate, len(b.updatedSenses))
	for id, updates := range b.updatedSenses {
		c.updatedSenses[id] = slices.Clone(updates)
	}
	c.updatedForms = make(map[model.EntityID][]*FormUpdate, len(b.updatedForms))
	for id, updates := range b.updatedForms {
		c.updatedForms[id] = slices.Clone(updates)
	}
	return &c
}

// agreedBaseRevision returns the base revision id shared by all updates that
// set one. Updates without base revision id agree with any.
func agreedBaseRevision[U EntityUpdate](trace string, updates []U) (int64, error) {
	var rev int64
	for _, u := range updates {
		r := u.BaseRevisionID()
		if r == 0 {
			continue
		}
		if rev != 0 && r != rev {
			return 0, helper.InvalidArgument(trace, "updates of %s are based on revisions %d and %d", u.EntityID(), rev, r)
		}
		rev = r
	}
	return rev, nil
}

func (b *LexemeUpdateBuilder) foldSense(trace string, id model.EntityID, updates []*SenseUpdate) (*SenseUpdate, error) {
	rev, err := agreedBaseRevision(trace, updates)
	if err != nil {
		return nil, err
	}
	var base *model.SenseDocument
	if b.base != nil {
		base, _ = b.base.Sense(id)
	}
	sb, err := newSenseUpdateBuilder(trace, id, rev, base)
	if err != nil {
		return nil, err
	}
	for _, u := range updates {
		if err := sb.Append(u); err != nil {
			return nil, err
		}
	}
	return sb.Build()
}

func (b *LexemeUpdateBuilder) foldForm(trace string, id model.EntityID, updates []*FormUpdate) (*FormUpdate, error) {
	rev, err := agreedBaseRevision(trace, updates)
	if err != nil {
		return nil, err
	}
	var base *model.FormDocument
	if b.base != nil {
		base, _ = b.base.Form(id)
	}
	fb, err := newFormUpdateBuilder(trace, id, rev, base)
	if err != nil {
		return nil, err
	}
	for _, u := range updates {
		if err := fb.Append(u); err != nil {
			return nil, err
		}
	}
	return fb.Build()
}

func (b *LexemeUpdateBuilder) Build() (*LexemeUpdate, error) {
	const trace = "build lexeme update"
	lemmas, err := b.lemmas.Build()
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	statements, err := b.statements.Build()
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	c := lexemeChanges{
		language:        b.language,
		lexicalCategory: b.lexicalCategory,
		lemmas:          lemmas,
		statements:      statements,
		addedSenses:     b.addedSenses,
		removedSenses:   slices.Collect(maps.Keys(b.removedSenses)),
		addedForms:      b.addedForms,
		removedForms:    slices.Collect(maps.Keys(b.removedForms)),
	}
	for _, id := range sortedIDs(slices.Collect(maps.Keys(b.updatedSenses))) {
		u, err := b.foldSense("fold sense updates", id, b.updatedSenses[id])
		if err != nil {
			return nil, helper.NewError(trace, err)
		}
		c.updatedSenses = append(c.updatedSenses, u)
	}
	for _, id := range sortedIDs(slices.Collect(maps.Keys(b.updatedForms))) {
		u, err := b.foldForm("fold form updates", id, b.updatedForms[id])
		if err != nil {
			return nil, helper.NewError(trace, err)
		}
		c.updatedForms = append(c.updatedForms, u)
	}
	u, err := newLexemeUpdate(b.id, b.baseRevisionID, c)
	if err != nil {
		return nil, helper.NewError(trace, err)
	}
	return u, nil
}

func (b *LexemeUpdateBuilder) BuildUpdate() (EntityUpdate, error) {
	u, err := b.Build()
	if err != nil {
		return nil, err
	}
	return u, nil
}
