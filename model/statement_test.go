package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStatement(id string) Statement {
	return Statement{
		ID:       id,
		Subject:  MustParseEntityID("Q1", SiteWikidata),
		MainSnak: NewValueSnak(MustParseEntityID("P31", SiteWikidata), EntityIDValue{ID: MustParseEntityID("Q5", SiteWikidata)}),
		Qualifiers: []Snak{
			NewValueSnak(MustParseEntityID("P580", SiteWikidata), TimeValue{Time: "+2001-01-01T00:00:00Z", Precision: 11, CalendarModel: "http://www.wikidata.org/entity/Q1985727"}),
		},
		References: []Reference{{Snaks: []Snak{
			NewValueSnak(MustParseEntityID("P854", SiteWikidata), StringValue{Value: "https://example.org"}),
		}}},
	}
}

func TestStatementEqual(t *testing.T) {
	t.Run("Equal statements", func(t *testing.T) {
		assert.True(t, testStatement("Q1$1").Equal(testStatement("Q1$1")))
	})

	t.Run("Unset rank equals normal rank", func(t *testing.T) {
		a := testStatement("Q1$1")
		b := testStatement("Q1$1")
		b.Rank = RankNormal
		assert.True(t, a.Equal(b))
	})

	t.Run("Different id", func(t *testing.T) {
		assert.False(t, testStatement("Q1$1").Equal(testStatement("Q1$2")))
	})

	t.Run("Different qualifier value", func(t *testing.T) {
		b := testStatement("Q1$1")
		b.Qualifiers[0] = NewNoValueSnak(MustParseEntityID("P580", SiteWikidata))
		assert.False(t, testStatement("Q1$1").Equal(b))
	})

	t.Run("WithID copies deeply", func(t *testing.T) {
		a := testStatement("Q1$1")
		b := a.WithID("")
		b.References[0].Snaks[0] = NewSomeValueSnak(MustParseEntityID("P854", SiteWikidata))
		assert.Equal(t, "Q1$1", a.ID)
		assert.Equal(t, StringValue{Value: "https://example.org"}, a.References[0].Snaks[0].Value)
	})
}

func TestGroupStatements(t *testing.T) {
	a := testStatement("Q1$1")
	b := testStatement("Q1$2")
	b.MainSnak = NewNoValueSnak(MustParseEntityID("P279", SiteWikidata))
	c := testStatement("Q1$3")

	groups := GroupStatements([]Statement{a, b, c})
	require.Len(t, groups, 2)
	assert.Equal(t, "P31", groups[0].Property.ID())
	assert.Len(t, groups[0].Statements, 2)
	assert.Equal(t, "P279", groups[1].Property.ID())
}

func TestStatementJSON(t *testing.T) {
	s := testStatement("")
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"mainsnak": {"snaktype": "value", "property": "P31", "datavalue": {"type": "wikibase-entityid", "value": {"entity-type": "item", "id": "Q5"}}},
		"qualifiers": {"P580": [{"snaktype": "value", "property": "P580", "datavalue": {"type": "time", "value": {"time": "+2001-01-01T00:00:00Z", "timezone": 0, "before": 0, "after": 0, "precision": 11, "calendarmodel": "http://www.wikidata.org/entity/Q1985727"}}}]},
		"qualifiers-order": ["P580"],
		"rank": "normal",
		"references": [{"snaks": {"P854": [{"snaktype": "value", "property": "P854", "datavalue": {"type": "string", "value": "https://example.org"}}]}, "snaks-order": ["P854"]}],
		"type": "statement"
	}`, string(b))
}
