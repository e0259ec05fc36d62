package update

import (
	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/core/validate"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// entityBuilder holds the target of an update under construction.
type entityBuilder struct {
	id             model.EntityID
	baseRevisionID int64
}

func newEntityBuilder(trace string, id model.EntityID, kind model.Kind, baseRevisionID int64) (entityBuilder, error) {
	p, err := newEntityPart(trace, id, kind, baseRevisionID)
	if err != nil {
		return entityBuilder{}, err
	}
	return entityBuilder{id: p.id, baseRevisionID: p.baseRevisionID}, nil
}

func newEntityBuilderForDocument(trace string, doc model.EntityDocument, kind model.Kind) (entityBuilder, error) {
	if err := validate.BaseRevision(trace, doc); err != nil {
		return entityBuilder{}, err
	}
	return newEntityBuilder(trace, doc.EntityID(), kind, doc.Revision())
}

// checkAppend rejects updates of another entity or of another base revision.
func (b entityBuilder) checkAppend(trace string, u EntityUpdate) error {
	if u.EntityID() != b.id {
		return helper.InvalidArgument(trace, "cannot append update of %s to update of %s", u.EntityID(), b.id)
	}
	if u.BaseRevisionID() != 0 && b.baseRevisionID != 0 && u.BaseRevisionID() != b.baseRevisionID {
		return helper.InvalidArgument(trace, "base revision %d does not match %d", u.BaseRevisionID(), b.baseRevisionID)
	}
	return nil
}

func (b entityBuilder) EntityID() model.EntityID { return b.id }
func (b entityBuilder) BaseRevisionID() int64    { return b.baseRevisionID }

func newTermBuilder(seeded bool, base map[string]model.Term) (*diff.TermUpdateBuilder, error) {
	if !seeded {
		return diff.NewTermUpdateBuilder(), nil
	}
	return diff.NewTermUpdateBuilderForTerms(model.TermList(base))
}

func newStatementBuilder(subject model.EntityID, seeded bool, base []model.Statement) (*diff.StatementUpdateBuilder, error) {
	if !seeded {
		return diff.NewStatementUpdateBuilderForSubject(subject)
	}
	return diff.NewStatementUpdateBuilderForEntity(subject, base)
}

type labelsBuilder struct {
	labels *diff.TermUpdateBuilder
}

// UpdateLabels merges u into the pending label changes.
func (b *labelsBuilder) UpdateLabels(u diff.TermUpdate) error {
	if err := b.labels.Append(u); err != nil {
		return helper.NewError("update labels", err)
	}
	return nil
}

func (b labelsBuilder) clone() labelsBuilder {
	return labelsBuilder{labels: b.labels.Clone()}
}

type statementsBuilder struct {
	statements *diff.StatementUpdateBuilder
}

// UpdateStatements merges u into the pending statement changes.
func (b *statementsBuilder) UpdateStatements(u diff.StatementUpdate) error {
	if err := b.statements.Append(u); err != nil {
		return helper.NewError("update statements", err)
	}
	return nil
}

func (b statementsBuilder) clone() statementsBuilder {
	return statementsBuilder{statements: b.statements.Clone()}
}

// termsBuilder accumulates label, description and alias changes.
type termsBuilder struct {
	labelsBuilder
	descriptions *diff.TermUpdateBuilder
	seeded       bool
	aliases      map[string]*diff.AliasUpdateBuilder
}

func newTermsBuilder(trace string, doc model.TermedDocument) (termsBuilder, error) {
	seeded := doc != nil
	var labels, descriptions map[string]model.Term
	var aliases map[string][]model.Term
	if seeded {
		labels, descriptions, aliases = doc.LabelTerms(), doc.DescriptionTerms(), doc.AliasTerms()
	}
	l, err := newTermBuilder(seeded, labels)
	if err != nil {
		return termsBuilder{}, helper.NewError(trace, err)
	}
	d, err := newTermBuilder(seeded, descriptions)
	if err != nil {
		return termsBuilder{}, helper.NewError(trace, err)
	}
	b := termsBuilder{
		labelsBuilder: labelsBuilder{labels: l},
		descriptions:  d,
		seeded:        seeded,
		aliases:       map[string]*diff.AliasUpdateBuilder{},
	}
	for lang, terms := range aliases {
		for _, t := range terms {
			if t.Language != lang {
				return termsBuilder{}, helper.InvalidArgument(trace, "alias %q in language %q listed under %q", t.Text, t.Language, lang)
			}
		}
		a, err := diff.NewAliasUpdateBuilderForAliases(terms)
		if err != nil {
			return termsBuilder{}, helper.NewError(trace, err)
		}
		b.aliases[lang] = a
	}
	return b, nil
}

// UpdateDescriptions merges u into the pending description changes.
func (b *termsBuilder) UpdateDescriptions(u diff.TermUpdate) error {
	if err := b.descriptions.Append(u); err != nil {
		return helper.NewError("update descriptions", err)
	}
	return nil
}

// SetAliases merges u into the pending alias changes of lang.
func (b *termsBuilder) SetAliases(lang string, u diff.AliasUpdate) error {
	const trace = "set aliases"
	if err := validate.LanguageCode(trace, lang); err != nil {
		return err
	}
	if u.Language() != "" && u.Language() != lang {
		return helper.InvalidArgument(trace, "alias update in language %q set for %q", u.Language(), lang)
	}
	a, ok := b.aliases[lang]
	if !ok {
		if b.seeded {
			var err error
			if a, err = diff.NewAliasUpdateBuilderForAliases(nil); err != nil {
				return helper.NewError(trace, err)
			}
		} else {
			a = diff.NewAliasUpdateBuilder()
		}
	}
	if err := a.Append(u); err != nil {
		return helper.NewError(trace, err)
	}
	b.aliases[lang] = a
	return nil
}

func (b termsBuilder) clone() termsBuilder {
	c := termsBuilder{
		labelsBuilder: b.labelsBuilder.clone(),
		descriptions:  b.descriptions.Clone(),
		seeded:        b.seeded,
		aliases:       make(map[string]*diff.AliasUpdateBuilder, len(b.aliases)),
	}
	for lang, a := range b.aliases {
		c.aliases[lang] = a.Clone()
	}
	return c
}

func (b *termsBuilder) append(trace string, p termsPart) error {
	if err := b.UpdateLabels(p.labels); err != nil {
		return helper.NewError(trace, err)
	}
	if err := b.UpdateDescriptions(p.descriptions); err != nil {
		return helper.NewError(trace, err)
	}
	for lang, u := range p.aliases {
		if err := b.SetAliases(lang, u); err != nil {
			return helper.NewError(trace, err)
		}
	}
	return nil
}

func (b termsBuilder) build(trace string) (termsPart, error) {
	labels, err := b.labels.Build()
	if err != nil {
		return termsPart{}, helper.NewError(trace, err)
	}
	descriptions, err := b.descriptions.Build()
	if err != nil {
		return termsPart{}, helper.NewError(trace, err)
	}
	aliases := make(map[string]diff.AliasUpdate, len(b.aliases))
	for lang, a := range b.aliases {
		u, err := a.Build()
		if err != nil {
			return termsPart{}, helper.NewError(trace, err)
		}
		aliases[lang] = u
	}
	return newTermsPart(trace, labels, descriptions, aliases)
}
