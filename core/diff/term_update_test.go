package diff

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func en(text string) model.Term { return model.Term{Language: "en", Text: text} }
func de(text string) model.Term { return model.Term{Language: "de", Text: text} }

func TestTermUpdateBuilderBlind(t *testing.T) {
	t.Run("Remove then set cancels the removal", func(t *testing.T) {
		b := NewTermUpdateBuilder()
		require.NoError(t, b.RemoveTerm("x"))
		require.NoError(t, b.SetTerm(model.Term{Language: "x", Text: "v"}))

		u, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, map[string]model.Term{"x": {Language: "x", Text: "v"}}, u.Modified())
		assert.Empty(t, u.Removed())
	})

	t.Run("Set then remove records only the removal", func(t *testing.T) {
		b := NewTermUpdateBuilder()
		require.NoError(t, b.SetTerm(en("hello")))
		require.NoError(t, b.RemoveTerm("en"))

		u, err := b.Build()
		require.NoError(t, err)
		assert.Empty(t, u.Modified())
		assert.Equal(t, []string{"en"}, u.Removed())
	})

	t.Run("Rejects invalid arguments", func(t *testing.T) {
		b := NewTermUpdateBuilder()
		assert.ErrorIs(t, b.SetTerm(model.Term{}), helper.ErrNullArgument)
		assert.ErrorIs(t, b.RemoveTerm(" "), helper.ErrInvalidArgument)

		u, err := b.Build()
		require.NoError(t, err)
		assert.True(t, u.IsEmpty())
	})
}

func TestTermUpdateBuilderSeeded(t *testing.T) {
	base := []model.Term{en("hello"), de("hallo")}

	t.Run("Setting the base term is a no-op", func(t *testing.T) {
		b, err := NewTermUpdateBuilderForTerms(base)
		require.NoError(t, err)
		require.NoError(t, b.SetTerm(en("changed")))
		require.NoError(t, b.SetTerm(en("hello")))
		require.NoError(t, b.RemoveTerm("de"))
		require.NoError(t, b.SetTerm(de("hallo")))

		u, err := b.Build()
		require.NoError(t, err)
		assert.True(t, u.IsEmpty())
	})

	t.Run("Removing a missing language is a no-op", func(t *testing.T) {
		b, err := NewTermUpdateBuilderForTerms(base)
		require.NoError(t, err)
		require.NoError(t, b.SetTerm(model.Term{Language: "fr", Text: "bonjour"}))
		require.NoError(t, b.RemoveTerm("fr"))

		u, err := b.Build()
		require.NoError(t, err)
		assert.True(t, u.IsEmpty())
	})

	t.Run("Rejects duplicate base languages", func(t *testing.T) {
		_, err := NewTermUpdateBuilderForTerms([]model.Term{en("a"), en("b")})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
	})

	t.Run("Build returns independent snapshots", func(t *testing.T) {
		b, err := NewTermUpdateBuilderForTerms(base)
		require.NoError(t, err)
		require.NoError(t, b.SetTerm(en("hi")))
		first, err := b.Build()
		require.NoError(t, err)
		require.NoError(t, b.RemoveTerm("de"))
		second, err := b.Build()
		require.NoError(t, err)

		assert.Empty(t, first.Removed())
		assert.Equal(t, []string{"de"}, second.Removed())
		if diff := cmp.Diff(first.Modified(), second.Modified()); diff != "" {
			t.Errorf("modified terms differ (-first +second):\n%s", diff)
		}
	})
}

func TestTermUpdateAppend(t *testing.T) {
	first := NewTermUpdateBuilder()
	require.NoError(t, first.SetTerm(en("one")))
	require.NoError(t, first.RemoveTerm("de"))

	second := NewTermUpdateBuilder()
	require.NoError(t, second.SetTerm(de("zwei")))
	require.NoError(t, second.RemoveTerm("en"))
	other, err := second.Build()
	require.NoError(t, err)

	require.NoError(t, first.Append(other))
	u, err := first.Build()
	require.NoError(t, err)

	want := map[string]model.Term{"de": de("zwei")}
	if diff := cmp.Diff(want, u.Modified()); diff != "" {
		t.Errorf("unexpected modified terms (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"en"}, u.Removed())
}

func TestTermUpdateJSON(t *testing.T) {
	t.Run("Empty update", func(t *testing.T) {
		data, err := json.Marshal(EmptyTermUpdate)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(data))
	})

	t.Run("Modified and removed", func(t *testing.T) {
		b := NewTermUpdateBuilder()
		require.NoError(t, b.SetTerm(en("hello")))
		require.NoError(t, b.RemoveTerm("de"))
		u, err := b.Build()
		require.NoError(t, err)

		data, err := json.Marshal(u)
		require.NoError(t, err)
		assert.JSONEq(t, `{"en":{"language":"en","value":"hello"},"de":{"language":"de","remove":""}}`, string(data))
	})
}

func TestNewTermUpdate(t *testing.T) {
	_, err := newTermUpdate([]model.Term{en("a")}, []string{"en"})
	assert.ErrorIs(t, err, helper.ErrInvalidArgument)

	_, err = newTermUpdate(nil, []string{"en", "en"})
	assert.ErrorIs(t, err, helper.ErrInvalidArgument)
}
