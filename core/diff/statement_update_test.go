package diff

import (
	"encoding/json"
	"testing"

	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	q1 = model.MustParseEntityID("Q1", model.SiteWikidata)
	q2 = model.MustParseEntityID("Q2", model.SiteWikidata)
)

func testStatement(subject model.EntityID, id string, value string) model.Statement {
	return model.Statement{
		ID:       id,
		Subject:  subject,
		MainSnak: model.NewValueSnak(model.MustParseEntityID("P1", model.SiteWikidata), model.StringValue{Value: value}),
		Rank:     model.RankNormal,
	}
}

func TestStatementUpdateBuilderBlind(t *testing.T) {
	t.Run("Add strips ids and keeps duplicates", func(t *testing.T) {
		b := NewStatementUpdateBuilder()
		require.NoError(t, b.AddStatement(testStatement(q1, "ID1", "a")))
		require.NoError(t, b.AddStatement(testStatement(q1, "", "a")))
		u, err := b.Build()
		require.NoError(t, err)

		added := u.Added()
		require.Len(t, added, 2)
		assert.Empty(t, added[0].ID)
		assert.True(t, added[0].Equal(added[1]))
	})

	t.Run("Rejects inconsistent subjects", func(t *testing.T) {
		b := NewStatementUpdateBuilder()
		require.NoError(t, b.AddStatement(testStatement(q1, "", "a")))
		assert.ErrorIs(t, b.AddStatement(testStatement(q2, "", "b")), helper.ErrInvalidArgument)
		assert.ErrorIs(t, b.ReplaceStatement(testStatement(q2, "ID2", "b")), helper.ErrInvalidArgument)
		assert.ErrorIs(t, b.AddStatement(testStatement(model.EntityID{}, "", "b")), helper.ErrNullArgument)
	})

	t.Run("Subject builder rejects other subjects", func(t *testing.T) {
		b, err := NewStatementUpdateBuilderForSubject(q1)
		require.NoError(t, err)
		assert.ErrorIs(t, b.AddStatement(testStatement(q2, "", "a")), helper.ErrInvalidArgument)

		_, err = NewStatementUpdateBuilderForSubject(model.EntityID{})
		assert.ErrorIs(t, err, helper.ErrNullArgument)
	})

	t.Run("Replace requires an id", func(t *testing.T) {
		b := NewStatementUpdateBuilder()
		assert.ErrorIs(t, b.ReplaceStatement(testStatement(q1, "", "a")), helper.ErrInvalidArgument)
		assert.ErrorIs(t, b.RemoveStatement(""), helper.ErrInvalidArgument)
	})

	t.Run("Remove drops a pending replacement", func(t *testing.T) {
		b := NewStatementUpdateBuilder()
		require.NoError(t, b.ReplaceStatement(testStatement(q1, "ID1", "a")))
		require.NoError(t, b.RemoveStatement("ID1"))
		u, err := b.Build()
		require.NoError(t, err)
		assert.Empty(t, u.Replaced())
		assert.Equal(t, []string{"ID1"}, u.Removed())
	})

	t.Run("Replace drops a pending removal", func(t *testing.T) {
		b := NewStatementUpdateBuilder()
		require.NoError(t, b.RemoveStatement("ID1"))
		require.NoError(t, b.ReplaceStatement(testStatement(q1, "ID1", "a")))
		u, err := b.Build()
		require.NoError(t, err)
		assert.Contains(t, u.Replaced(), "ID1")
		assert.Empty(t, u.Removed())
	})
}

func TestStatementUpdateBuilderSeeded(t *testing.T) {
	original := testStatement(q1, "ID1", "a")

	t.Run("Replacing with the original is a no-op", func(t *testing.T) {
		b, err := NewStatementUpdateBuilderForStatements([]model.Statement{original})
		require.NoError(t, err)
		require.NoError(t, b.ReplaceStatement(testStatement(q1, "ID1", "changed")))
		require.NoError(t, b.ReplaceStatement(original))
		u, err := b.Build()
		require.NoError(t, err)
		assert.Empty(t, u.Replaced())
		assert.True(t, u.IsEmpty())
	})

	t.Run("Unknown ids are rejected", func(t *testing.T) {
		b, err := NewStatementUpdateBuilderForStatements([]model.Statement{original})
		require.NoError(t, err)
		assert.ErrorIs(t, b.RemoveStatement("ID999"), helper.ErrInvalidArgument)
		assert.ErrorIs(t, b.ReplaceStatement(testStatement(q1, "ID999", "a")), helper.ErrInvalidArgument)
	})

	t.Run("Removing a known id is recorded", func(t *testing.T) {
		b, err := NewStatementUpdateBuilderForStatementGroups(model.GroupStatements([]model.Statement{original}))
		require.NoError(t, err)
		require.NoError(t, b.RemoveStatement("ID1"))
		u, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"ID1"}, u.Removed())
	})

	t.Run("Entity builder knows its subject without statements", func(t *testing.T) {
		b, err := NewStatementUpdateBuilderForEntity(q1, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, b.AddStatement(testStatement(q2, "", "a")), helper.ErrInvalidArgument)
		assert.ErrorIs(t, b.RemoveStatement("ID1"), helper.ErrInvalidArgument)
	})

	t.Run("Rejects invalid base statements", func(t *testing.T) {
		_, err := NewStatementUpdateBuilderForStatements([]model.Statement{testStatement(q1, "", "a")})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
		_, err = NewStatementUpdateBuilderForStatements([]model.Statement{original, original})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
		_, err = NewStatementUpdateBuilderForStatements([]model.Statement{original, testStatement(q2, "ID2", "b")})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
		_, err = NewStatementUpdateBuilderForEntity(q2, []model.Statement{original})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
	})
}

func TestStatementUpdateAppend(t *testing.T) {
	original := testStatement(q1, "ID1", "a")

	other := NewStatementUpdateBuilder()
	require.NoError(t, other.AddStatement(testStatement(q1, "", "new")))
	require.NoError(t, other.RemoveStatement("ID1"))
	blind, err := other.Build()
	require.NoError(t, err)

	t.Run("Merges into a seeded builder", func(t *testing.T) {
		b, err := NewStatementUpdateBuilderForStatements([]model.Statement{original})
		require.NoError(t, err)
		require.NoError(t, b.ReplaceStatement(testStatement(q1, "ID1", "changed")))
		require.NoError(t, b.Append(blind))

		u, err := b.Build()
		require.NoError(t, err)
		assert.Len(t, u.Added(), 1)
		assert.Empty(t, u.Replaced())
		assert.Equal(t, []string{"ID1"}, u.Removed())
	})

	t.Run("Failed append leaves the builder unchanged", func(t *testing.T) {
		b, err := NewStatementUpdateBuilderForStatements([]model.Statement{testStatement(q1, "ID2", "b")})
		require.NoError(t, err)
		assert.ErrorIs(t, b.Append(blind), helper.ErrInvalidArgument)

		u, err := b.Build()
		require.NoError(t, err)
		assert.True(t, u.IsEmpty())
	})
}

func TestStatementUpdateJSON(t *testing.T) {
	b, err := NewStatementUpdateBuilderForStatements([]model.Statement{
		testStatement(q1, "ID1", "a"),
		testStatement(q1, "ID2", "b"),
	})
	require.NoError(t, err)
	require.NoError(t, b.AddStatement(testStatement(q1, "", "c")))
	require.NoError(t, b.ReplaceStatement(testStatement(q1, "ID1", "d")))
	require.NoError(t, b.RemoveStatement("ID2"))
	u, err := b.Build()
	require.NoError(t, err)

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"mainsnak":{"snaktype":"value","property":"P1","datavalue":{"type":"string","value":"c"}},"rank":"normal","type":"statement"},
		{"id":"ID1","mainsnak":{"snaktype":"value","property":"P1","datavalue":{"type":"string","value":"d"}},"rank":"normal","type":"statement"},
		{"id":"ID2","remove":""}
	]`, string(data))

	data, err = json.Marshal(EmptyStatementUpdate)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestNewStatementUpdate(t *testing.T) {
	_, err := newStatementUpdate(nil, []model.Statement{testStatement(q1, "ID1", "a")}, []string{"ID1"})
	assert.ErrorIs(t, err, helper.ErrInvalidArgument)

	_, err = newStatementUpdate([]model.Statement{testStatement(q1, "ID1", "a")}, nil, nil)
	assert.ErrorIs(t, err, helper.ErrInvalidArgument)
}
