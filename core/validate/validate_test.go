package validate

import (
	"testing"

	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
	"github.com/stretchr/testify/assert"
)

func TestTerms(t *testing.T) {
	t.Run("Accepts distinct languages", func(t *testing.T) {
		err := Terms("test", []model.Term{{Language: "en", Text: "a"}, {Language: "de", Text: "b"}})
		assert.NoError(t, err)
	})

	t.Run("Rejects duplicate languages", func(t *testing.T) {
		err := Terms("test", []model.Term{{Language: "en", Text: "a"}, {Language: "en", Text: "b"}})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
	})

	t.Run("Rejects zero term", func(t *testing.T) {
		err := Terms("test", []model.Term{{}})
		assert.ErrorIs(t, err, helper.ErrNullArgument)
	})

	t.Run("Rejects blank language", func(t *testing.T) {
		err := Term("test", model.Term{Language: " ", Text: "a"})
		assert.ErrorIs(t, err, helper.ErrInvalidArgument)
	})
}

func TestEntityIDs(t *testing.T) {
	q1 := model.MustParseEntityID("Q1", model.SiteWikidata)

	assert.NoError(t, RealEntityID("test", "id", q1))
	assert.ErrorIs(t, RealEntityID("test", "id", model.EntityID{}), helper.ErrNullArgument)
	assert.ErrorIs(t, RealEntityID("test", "id", model.NullItemID), helper.ErrInvalidArgument)
	assert.ErrorIs(t, Kind("test", "id", q1, model.KindLexeme), helper.ErrInvalidArgument)
	assert.ErrorIs(t, RealEntityIDs("test", "id", []model.EntityID{q1, q1}), helper.ErrInvalidArgument)
	assert.ErrorIs(t, BaseRevision("test", nil), helper.ErrNullArgument)
	assert.ErrorIs(t, BaseRevision("test", &model.ItemDocument{ID: model.NullItemID}), helper.ErrInvalidArgument)
}

func TestDistinctAndDisjoint(t *testing.T) {
	assert.NoError(t, Distinct("test", "site", []string{"enwiki", "dewiki"}))
	assert.ErrorIs(t, Distinct("test", "site", []string{"enwiki", "enwiki"}), helper.ErrInvalidArgument)
	assert.NoError(t, Disjoint("test", "site", []string{"enwiki"}, []string{"dewiki"}))
	assert.ErrorIs(t, Disjoint("test", "site", []string{"enwiki"}, []string{"enwiki"}), helper.ErrInvalidArgument)
}
