package update

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	l1   = model.MustParseEntityID("L1", model.SiteWikidata)
	l1s1 = model.MustParseEntityID("L1-S1", model.SiteWikidata)
	l1s2 = model.MustParseEntityID("L1-S2", model.SiteWikidata)
	l1f1 = model.MustParseEntityID("L1-F1", model.SiteWikidata)
	l2s1 = model.MustParseEntityID("L2-S1", model.SiteWikidata)
)

func testLexeme() *model.LexemeDocument {
	return &model.LexemeDocument{
		ID:              l1,
		RevisionID:      10,
		Lemmas:          model.TermMap(en("run")),
		Language:        q2,
		LexicalCategory: q3,
		Senses: []model.SenseDocument{
			{ID: l1s1, Glosses: model.TermMap(en("to move fast"))},
		},
		Forms: []model.FormDocument{
			{ID: l1f1, Representations: model.TermMap(en("runs")), GrammaticalFeatures: []model.EntityID{q1}},
		},
	}
}

func senseGlossUpdate(t *testing.T, id model.EntityID, rev int64, gloss string) *SenseUpdate {
	t.Helper()
	b, err := NewSenseUpdateBuilderForBaseRevisionID(id, rev)
	require.NoError(t, err)
	require.NoError(t, b.UpdateGlosses(setTerms(t, en(gloss))))
	u, err := b.Build()
	require.NoError(t, err)
	return u
}

func TestLexemeLanguageMerge(t *testing.T) {
	b, err := NewLexemeUpdateBuilderForBaseRevision(testLexeme())
	require.NoError(t, err)
	require.NoError(t, b.SetLanguage(q3))

	other, err := NewLexemeUpdateBuilderForEntityID(l1)
	require.NoError(t, err)
	require.NoError(t, other.SetLanguage(q2))
	restore, err := other.Build()
	require.NoError(t, err)
	language, ok := restore.Language()
	require.True(t, ok)
	assert.Equal(t, q2, language)

	require.NoError(t, b.Append(restore))
	u, err := b.Build()
	require.NoError(t, err)
	_, ok = u.Language()
	assert.False(t, ok)
	assert.True(t, u.IsEmpty())
}

func TestNewLexemeUpdate(t *testing.T) {
	t.Run("Rejects a sense both updated and removed", func(t *testing.T) {
		_, err := newLexemeUpdate(l1, 0, lexemeChanges{
			updatedSenses: []*SenseUpdate{senseGlossUpdate(t, l1s1, 0, "x")},
			removedSenses: []model.EntityID{l1s1},
		})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
	})

	t.Run("Rejects senses of another lexeme", func(t *testing.T) {
		_, err := newLexemeUpdate(l1, 0, lexemeChanges{removedSenses: []model.EntityID{l2s1}})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
	})

	t.Run("Rejects placeholder removals and real additions", func(t *testing.T) {
		_, err := newLexemeUpdate(l1, 0, lexemeChanges{removedSenses: []model.EntityID{model.NullSenseID}})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
		_, err = newLexemeUpdate(l1, 0, lexemeChanges{addedSenses: []model.SenseDocument{{ID: l1s2}}})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
	})

	t.Run("Rejects nil sense updates", func(t *testing.T) {
		_, err := newLexemeUpdate(l1, 0, lexemeChanges{updatedSenses: []*SenseUpdate{nil}})
		assert.ErrorIs(t, err, helper.ErrNullArgument)
	})
}

func TestLexemeUpdateBuilderSenses(t *testing.T) {
	t.Run("Added senses need the placeholder id", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		assert.ErrorIs(t, b.AddSense(model.SenseDocument{ID: l1s1}), helper.ErrInvalidArgument)
		assert.ErrorIs(t, b.AddSense(model.SenseDocument{}), helper.ErrNullArgument)
		require.NoError(t, b.AddSense(model.SenseDocument{ID: model.NullSenseID, Glosses: model.TermMap(en("new"))}))

		u, err := b.Build()
		require.NoError(t, err)
		require.Len(t, u.AddedSenses(), 1)
	})

	t.Run("Seeded builder rejects unknown senses", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForBaseRevision(testLexeme())
		require.NoError(t, err)
		assert.ErrorIs(t, b.RemoveSense(l1s2), helper.ErrInvalidArgument)
		assert.ErrorIs(t, b.UpdateSense(senseGlossUpdate(t, l1s2, 0, "x")), helper.ErrInvalidArgument)
		assert.ErrorIs(t, b.RemoveSense(l2s1), helper.ErrInvalidArgument)
	})

	t.Run("Updates of one sense are merged", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForBaseRevision(testLexeme())
		require.NoError(t, err)
		require.NoError(t, b.UpdateSense(senseGlossUpdate(t, l1s1, 10, "to sprint")))
		require.NoError(t, b.UpdateSense(senseGlossUpdate(t, l1s1, 0, "to jog")))

		u, err := b.Build()
		require.NoError(t, err)
		updated := u.UpdatedSenses()
		require.Contains(t, updated, l1s1)
		assert.Equal(t, map[string]model.Term{"en": en("to jog")}, updated[l1s1].Glosses().Modified())
		assert.Equal(t, int64(10), updated[l1s1].BaseRevisionID())
	})

	t.Run("Restoring a sense drops its update", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForBaseRevision(testLexeme())
		require.NoError(t, err)
		require.NoError(t, b.UpdateSense(senseGlossUpdate(t, l1s1, 0, "to sprint")))
		require.NoError(t, b.UpdateSense(senseGlossUpdate(t, l1s1, 0, "to move fast")))

		u, err := b.Build()
		require.NoError(t, err)
		assert.Empty(t, u.UpdatedSenses())
		assert.True(t, u.IsEmpty())
	})

	t.Run("Mismatched sense base revisions fail on build", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		require.NoError(t, b.UpdateSense(senseGlossUpdate(t, l1s1, 10, "a")))
		require.NoError(t, b.UpdateSense(senseGlossUpdate(t, l1s1, 11, "b")))

		_, err = b.Build()
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
	})

	t.Run("Removal drops pending updates", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		require.NoError(t, b.UpdateSense(senseGlossUpdate(t, l1s1, 0, "a")))
		require.NoError(t, b.RemoveSense(l1s1))
		assert.ErrorIs(t, b.UpdateSense(senseGlossUpdate(t, l1s1, 0, "b")), helper.ErrInvalidArgument)

		u, err := b.Build()
		require.NoError(t, err)
		assert.Empty(t, u.UpdatedSenses())
		assert.Equal(t, []model.EntityID{l1s1}, u.RemovedSenses())
	})
}

func TestLexemeUpdateBuilderForms(t *testing.T) {
	t.Run("Restoring grammatical features cancels", func(t *testing.T) {
		b, err := NewFormUpdateBuilderForBaseRevision(&testLexeme().Forms[0])
		require.NoError(t, err)
		require.NoError(t, b.SetGrammaticalFeatures([]model.EntityID{q2, q3}))
		require.NoError(t, b.SetGrammaticalFeatures([]model.EntityID{q1}))
		u, err := b.Build()
		require.NoError(t, err)
		_, changed := u.GrammaticalFeatures()
		assert.False(t, changed)
		assert.True(t, u.IsEmpty())
	})

	t.Run("Rejects invalid grammatical features", func(t *testing.T) {
		b, err := NewFormUpdateBuilderForEntityID(l1f1)
		require.NoError(t, err)
		assert.ErrorIs(t, b.SetGrammaticalFeatures([]model.EntityID{q1, q1}), helper.ErrInvalidArgument)
		assert.ErrorIs(t, b.SetGrammaticalFeatures([]model.EntityID{l1}), helper.ErrInvalidArgument)
	})

	t.Run("Form updates are nested in the lexeme update", func(t *testing.T) {
		fb, err := NewFormUpdateBuilderForEntityID(l1f1)
		require.NoError(t, err)
		require.NoError(t, fb.SetGrammaticalFeatures([]model.EntityID{q3, q2}))
		fu, err := fb.Build()
		require.NoError(t, err)

		b, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		require.NoError(t, b.UpdateForm(fu))
		require.NoError(t, b.AddForm(model.FormDocument{ID: model.NullFormID, Representations: model.TermMap(en("ran"))}))
		u, err := b.Build()
		require.NoError(t, err)

		data, err := json.Marshal(u)
		require.NoError(t, err)
		assert.JSONEq(t, `{"forms":[
			{"add":"","representations":{"en":{"language":"en","value":"ran"}}},
			{"id":"L1-F1","grammaticalFeatures":["Q2","Q3"]}
		]}`, string(data))
	})
}

func TestLexemeUpdateJSON(t *testing.T) {
	b, err := NewLexemeUpdateBuilderForBaseRevision(testLexeme())
	require.NoError(t, err)
	require.NoError(t, b.SetLexicalCategory(q1))
	require.NoError(t, b.UpdateLemmas(setTerms(t, en("sprint"))))
	require.NoError(t, b.RemoveSense(l1s1))

	statements, err := diff.NewStatementUpdateBuilderForSubject(l1)
	require.NoError(t, err)
	require.NoError(t, statements.AddStatement(stringStatement(l1, "", "x")))
	added, err := statements.Build()
	require.NoError(t, err)
	require.NoError(t, b.UpdateStatements(added))

	u, err := b.Build()
	require.NoError(t, err)
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"lemmas":{"en":{"language":"en","value":"sprint"}},
		"lexicalCategory":"Q1",
		"claims":[{"mainsnak":{"snaktype":"value","property":"P1","datavalue":{"type":"string","value":"x"}},"rank":"normal","type":"statement"}],
		"senses":[{"id":"L1-S1","remove":""}]
	}`, string(data))
}

func TestLexemeAddedSubEntityStatements(t *testing.T) {
	t.Run("Added sense statements must be about the new sense", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		err = b.AddSense(model.SenseDocument{
			ID:         model.NullSenseID,
			Statements: []model.Statement{stringStatement(q1, "", "x")},
		})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)

		require.NoError(t, b.AddSense(model.SenseDocument{
			ID:         model.NullSenseID,
			Statements: []model.Statement{stringStatement(model.NullSenseID, "", "x")},
		}))
		u, err := b.Build()
		require.NoError(t, err)
		require.Len(t, u.AddedSenses(), 1)
		assert.Len(t, u.AddedSenses()[0].Statements, 1)
	})

	t.Run("Added sense statements must not have ids", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		err = b.AddSense(model.SenseDocument{
			ID:         model.NullSenseID,
			Statements: []model.Statement{stringStatement(model.NullSenseID, "L0-S0$1", "x")},
		})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
	})

	t.Run("Added form statements must be about the new form", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		err = b.AddForm(model.FormDocument{
			ID:         model.NullFormID,
			Statements: []model.Statement{stringStatement(l1f1, "", "x")},
		})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)

		err = b.AddForm(model.FormDocument{
			ID:         model.NullFormID,
			Statements: []model.Statement{stringStatement(model.NullFormID, "L0-F0$1", "x")},
		})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)

		require.NoError(t, b.AddForm(model.FormDocument{
			ID:         model.NullFormID,
			Statements: []model.Statement{stringStatement(model.NullFormID, "", "x")},
		}))
	})

	t.Run("Update values reject foreign statements in added sub-entities", func(t *testing.T) {
		_, err := newLexemeUpdate(l1, 0, lexemeChanges{addedSenses: []model.SenseDocument{{
			ID:         model.NullSenseID,
			Statements: []model.Statement{stringStatement(q1, "", "x")},
		}}})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)

		_, err = newLexemeUpdate(l1, 0, lexemeChanges{addedForms: []model.FormDocument{{
			ID:         model.NullFormID,
			Statements: []model.Statement{stringStatement(model.NullFormID, "L0-F0$1", "x")},
		}}})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
	})
}

func TestLexemeUpdateAppendSubEntities(t *testing.T) {
	l1s3 := model.MustParseEntityID("L1-S3", model.SiteWikidata)
	l1f2 := model.MustParseEntityID("L1-F2", model.SiteWikidata)

	newSense := func(gloss string) model.SenseDocument {
		return model.SenseDocument{ID: model.NullSenseID, Glosses: model.TermMap(en(gloss))}
	}
	newForm := func(representation string) model.FormDocument {
		return model.FormDocument{ID: model.NullFormID, Representations: model.TermMap(en(representation))}
	}

	t.Run("Appending merges added, updated and removed sub-entities", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		require.NoError(t, b.AddSense(newSense("first")))
		require.NoError(t, b.AddForm(newForm("ran")))
		require.NoError(t, b.RemoveSense(l1s2))
		require.NoError(t, b.UpdateSense(senseGlossUpdate(t, l1s1, 5, "to sprint")))

		other, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		require.NoError(t, other.AddSense(newSense("second")))
		require.NoError(t, other.AddForm(newForm("running")))
		require.NoError(t, other.RemoveSense(l1s3))
		require.NoError(t, other.RemoveForm(l1f2))
		require.NoError(t, other.UpdateSense(senseGlossUpdate(t, l1s1, 0, "to jog")))
		appended, err := other.Build()
		require.NoError(t, err)

		require.NoError(t, b.Append(appended))
		u, err := b.Build()
		require.NoError(t, err)

		senses := u.AddedSenses()
		require.Len(t, senses, 2)
		assert.Equal(t, "first", senses[0].Glosses["en"].Text)
		assert.Equal(t, "second", senses[1].Glosses["en"].Text)
		forms := u.AddedForms()
		require.Len(t, forms, 2)
		assert.Equal(t, "ran", forms[0].Representations["en"].Text)
		assert.Equal(t, "running", forms[1].Representations["en"].Text)

		assert.Equal(t, []model.EntityID{l1s2, l1s3}, u.RemovedSenses())
		assert.Equal(t, []model.EntityID{l1f2}, u.RemovedForms())

		updated := u.UpdatedSenses()
		require.Len(t, updated, 1)
		require.Contains(t, updated, l1s1)
		assert.Equal(t, map[string]model.Term{"en": en("to jog")}, updated[l1s1].Glosses().Modified())
		assert.Equal(t, int64(5), updated[l1s1].BaseRevisionID())
	})

	t.Run("Disagreeing sense base revisions fail on build", func(t *testing.T) {
		b, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		require.NoError(t, b.UpdateSense(senseGlossUpdate(t, l1s1, 5, "to sprint")))

		other, err := NewLexemeUpdateBuilderForEntityID(l1)
		require.NoError(t, err)
		require.NoError(t, other.UpdateSense(senseGlossUpdate(t, l1s1, 6, "to jog")))
		appended, err := other.Build()
		require.NoError(t, err)

		require.NoError(t, b.Append(appended))
		_, err = b.Build()
		require.ErrorIs(t, err, helper.ErrInvalidArgument)
		assert.Equal(t, 1, strings.Count(err.Error(), "build lexeme update"))
		assert.Contains(t, err.Error(), "fold sense updates")
	})
}
