package model

import (
	"encoding/json"
	"slices"
)

type Rank string

const (
	RankPreferred  Rank = "preferred"
	RankNormal     Rank = "normal"
	RankDeprecated Rank = "deprecated"
)

type SnakType string

const (
	SnakTypeValue     SnakType = "value"
	SnakTypeSomeValue SnakType = "somevalue"
	SnakTypeNoValue   SnakType = "novalue"
)

// Snak is a property with a value, an unknown value or no value.
type Snak struct {
	Type     SnakType
	Property EntityID
	Value    Value
}

func NewValueSnak(property EntityID, value Value) Snak {
	return Snak{Type: SnakTypeValue, Property: property, Value: value}
}

func NewSomeValueSnak(property EntityID) Snak {
	return Snak{Type: SnakTypeSomeValue, Property: property}
}

func NewNoValueSnak(property EntityID) Snak {
	return Snak{Type: SnakTypeNoValue, Property: property}
}

// Reference is a group of snaks backing a statement.
type Reference struct {
	Snaks []Snak
}

func (r Reference) Equal(other Reference) bool {
	return slices.Equal(r.Snaks, other.Snaks)
}

// Statement is a claim about a subject with qualifiers, references and a rank.
// ID is empty for statements that were not saved yet.
type Statement struct {
	ID         string
	Subject    EntityID
	MainSnak   Snak
	Qualifiers []Snak
	References []Reference
	Rank       Rank
}

// StatementGroup holds the statements of one subject sharing a main property.
type StatementGroup struct {
	Property   EntityID
	Statements []Statement
}

func (s Statement) rank() Rank {
	if s.Rank == "" {
		return RankNormal
	}
	return s.Rank
}

// Equal compares all fields. An unset rank equals RankNormal.
func (s Statement) Equal(other Statement) bool {
	return s.ID == other.ID &&
		s.Subject == other.Subject &&
		s.MainSnak == other.MainSnak &&
		s.rank() == other.rank() &&
		slices.Equal(s.Qualifiers, other.Qualifiers) &&
		slices.EqualFunc(s.References, other.References, Reference.Equal)
}

// Clone returns a deep copy.
func (s Statement) Clone() Statement {
	s.Qualifiers = slices.Clone(s.Qualifiers)
	refs := make([]Reference, len(s.References))
	for i, r := range s.References {
		refs[i] = Reference{Snaks: slices.Clone(r.Snaks)}
	}
	if s.References == nil {
		refs = nil
	}
	s.References = refs
	return s
}

// WithID returns a deep copy carrying id.
func (s Statement) WithID(id string) Statement {
	c := s.Clone()
	c.ID = id
	return c
}

// GroupStatements groups statements by main property, in order of first appearance.
func GroupStatements(statements []Statement) []StatementGroup {
	var groups []StatementGroup
	index := map[EntityID]int{}
	for _, s := range statements {
		p := s.MainSnak.Property
		i, ok := index[p]
		if !ok {
			i = len(groups)
			index[p] = i
			groups = append(groups, StatementGroup{Property: p})
		}
		groups[i].Statements = append(groups[i].Statements, s)
	}
	return groups
}

type snakJSON struct {
	SnakType  SnakType       `json:"snaktype"`
	Property  string         `json:"property"`
	DataValue *dataValueJSON `json:"datavalue,omitempty"`
}

type referenceJSON struct {
	Snaks      map[string][]snakJSON `json:"snaks"`
	SnaksOrder []string              `json:"snaks-order"`
}

type statementJSON struct {
	ID              string                `json:"id,omitempty"`
	MainSnak        snakJSON              `json:"mainsnak"`
	Qualifiers      map[string][]snakJSON `json:"qualifiers,omitempty"`
	QualifiersOrder []string              `json:"qualifiers-order,omitempty"`
	Rank            Rank                  `json:"rank"`
	References      []referenceJSON       `json:"references,omitempty"`
	Type            string                `json:"type"`
}

func (s Snak) MarshalJSON() ([]byte, error) {
	j, err := s.toJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(j)
}

func (s Snak) toJSON() (snakJSON, error) {
	j := snakJSON{SnakType: s.Type, Property: s.Property.ID()}
	if s.Type == SnakTypeValue && s.Value != nil {
		dv, err := marshalValue(s.Value)
		if err != nil {
			return snakJSON{}, err
		}
		j.DataValue = &dv
	}
	return j, nil
}

func groupSnaks(snaks []Snak) (map[string][]snakJSON, []string, error) {
	if len(snaks) == 0 {
		return nil, nil, nil
	}
	groups := map[string][]snakJSON{}
	var order []string
	for _, s := range snaks {
		j, err := s.toJSON()
		if err != nil {
			return nil, nil, err
		}
		p := s.Property.ID()
		if _, ok := groups[p]; !ok {
			order = append(order, p)
		}
		groups[p] = append(groups[p], j)
	}
	return groups, order, nil
}

func (s Statement) toJSON() (statementJSON, error) {
	main, err := s.MainSnak.toJSON()
	if err != nil {
		return statementJSON{}, err
	}
	qualifiers, order, err := groupSnaks(s.Qualifiers)
	if err != nil {
		return statementJSON{}, err
	}
	j := statementJSON{
		ID:              s.ID,
		MainSnak:        main,
		Qualifiers:      qualifiers,
		QualifiersOrder: order,
		Rank:            s.rank(),
		Type:            "statement",
	}
	for _, r := range s.References {
		snaks, order, err := groupSnaks(r.Snaks)
		if err != nil {
			return statementJSON{}, err
		}
		if snaks == nil {
			snaks = map[string][]snakJSON{}
			order = []string{}
		}
		j.References = append(j.References, referenceJSON{Snaks: snaks, SnaksOrder: order})
	}
	return j, nil
}

// MarshalJSON writes the statement in the shape accepted by the edit API.
// The subject is implied by the enclosing entity and is not written.
func (s Statement) MarshalJSON() ([]byte, error) {
	j, err := s.toJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(j)
}

func (j statementJSON) toStatement(subject EntityID, siteIRI string) (Statement, error) {
	main, err := j.MainSnak.toSnak(siteIRI)
	if err != nil {
		return Statement{}, err
	}
	qualifiers, err := ungroupSnaks(j.Qualifiers, j.QualifiersOrder, siteIRI)
	if err != nil {
		return Statement{}, err
	}
	s := Statement{
		ID:         j.ID,
		Subject:    subject,
		MainSnak:   main,
		Qualifiers: qualifiers,
		Rank:       j.Rank,
	}
	for _, r := range j.References {
		snaks, err := ungroupSnaks(r.Snaks, r.SnaksOrder, siteIRI)
		if err != nil {
			return Statement{}, err
		}
		s.References = append(s.References, Reference{Snaks: snaks})
	}
	return s, nil
}

func (j snakJSON) toSnak(siteIRI string) (Snak, error) {
	property, err := NewEntityID(KindProperty, j.Property, siteIRI)
	if err != nil {
		return Snak{}, err
	}
	s := Snak{Type: j.SnakType, Property: property}
	if j.DataValue != nil {
		s.Value, err = unmarshalValue(*j.DataValue, siteIRI)
		if err != nil {
			return Snak{}, err
		}
	}
	return s, nil
}

func ungroupSnaks(groups map[string][]snakJSON, order []string, siteIRI string) ([]Snak, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	if len(order) == 0 {
		for p := range groups {
			order = append(order, p)
		}
		slices.Sort(order)
	}
	var snaks []Snak
	for _, p := range order {
		for _, j := range groups[p] {
			s, err := j.toSnak(siteIRI)
			if err != nil {
				return nil, err
			}
			snaks = append(snaks, s)
		}
	}
	return snaks, nil
}
