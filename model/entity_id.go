package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/siherrmann/wbupdate/helper"
)

// Kind tags the entity type an EntityID refers to.
type Kind string

const (
	KindItem      Kind = "item"
	KindProperty  Kind = "property"
	KindLexeme    Kind = "lexeme"
	KindForm      Kind = "form"
	KindSense     Kind = "sense"
	KindMediaInfo Kind = "mediainfo"
)

// Base IRIs of well-known sites.
const (
	SiteLocal    = "http://localhost/entity/"
	SiteWikidata = "http://www.wikidata.org/entity/"
)

var idPatterns = map[Kind]*regexp.Regexp{
	KindItem:      regexp.MustCompile(`^Q[1-9]\d*$`),
	KindProperty:  regexp.MustCompile(`^P[1-9]\d*$`),
	KindLexeme:    regexp.MustCompile(`^L[1-9]\d*$`),
	KindForm:      regexp.MustCompile(`^L[1-9]\d*-F[1-9]\d*$`),
	KindSense:     regexp.MustCompile(`^L[1-9]\d*-S[1-9]\d*$`),
	KindMediaInfo: regexp.MustCompile(`^M[1-9]\d*$`),
}

// Placeholder ids, one per kind, standing for an entity that has not been created yet.
var (
	NullItemID      = EntityID{kind: KindItem, id: "Q0", siteIRI: SiteLocal}
	NullPropertyID  = EntityID{kind: KindProperty, id: "P0", siteIRI: SiteLocal}
	NullLexemeID    = EntityID{kind: KindLexeme, id: "L0", siteIRI: SiteLocal}
	NullFormID      = EntityID{kind: KindForm, id: "L0-F0", siteIRI: SiteLocal}
	NullSenseID     = EntityID{kind: KindSense, id: "L0-S0", siteIRI: SiteLocal}
	NullMediaInfoID = EntityID{kind: KindMediaInfo, id: "M0", siteIRI: SiteLocal}
)

// EntityID identifies an entity on a site. The zero value means "no id".
type EntityID struct {
	kind    Kind
	id      string
	siteIRI string
}

// NewEntityID validates id against the syntax of kind.
func NewEntityID(kind Kind, id string, siteIRI string) (EntityID, error) {
	pattern, ok := idPatterns[kind]
	if !ok {
		return EntityID{}, helper.InvalidArgument("new entity id", "unknown entity kind %q", kind)
	}
	if id == "" {
		return EntityID{}, helper.NullArgument("new entity id", "id")
	}
	if siteIRI == "" {
		return EntityID{}, helper.NullArgument("new entity id", "site IRI")
	}
	if !pattern.MatchString(id) {
		return EntityID{}, helper.InvalidArgument("new entity id", "%q is not a valid %s id", id, kind)
	}
	return EntityID{kind: kind, id: id, siteIRI: siteIRI}, nil
}

// ParseEntityID derives the kind from the syntax of id.
func ParseEntityID(id string, siteIRI string) (EntityID, error) {
	kind, err := kindOf(id)
	if err != nil {
		return EntityID{}, err
	}
	return NewEntityID(kind, id, siteIRI)
}

// MustParseEntityID is like ParseEntityID but panics on malformed ids.
func MustParseEntityID(id string, siteIRI string) EntityID {
	e, err := ParseEntityID(id, siteIRI)
	if err != nil {
		panic(err)
	}
	return e
}

func kindOf(id string) (Kind, error) {
	if id == "" {
		return "", helper.NullArgument("parse entity id", "id")
	}
	switch id[0] {
	case 'Q':
		return KindItem, nil
	case 'P':
		return KindProperty, nil
	case 'M':
		return KindMediaInfo, nil
	case 'L':
		switch {
		case strings.Contains(id, "-F"):
			return KindForm, nil
		case strings.Contains(id, "-S"):
			return KindSense, nil
		}
		return KindLexeme, nil
	}
	return "", helper.InvalidArgument("parse entity id", "%q has no known entity prefix", id)
}

// NullID returns the placeholder id of kind.
func NullID(kind Kind) EntityID {
	switch kind {
	case KindItem:
		return NullItemID
	case KindProperty:
		return NullPropertyID
	case KindLexeme:
		return NullLexemeID
	case KindForm:
		return NullFormID
	case KindSense:
		return NullSenseID
	case KindMediaInfo:
		return NullMediaInfoID
	}
	return EntityID{}
}

func (e EntityID) Kind() Kind      { return e.kind }
func (e EntityID) ID() string      { return e.id }
func (e EntityID) SiteIRI() string { return e.siteIRI }

// IRI is the full concept IRI of the entity.
func (e EntityID) IRI() string { return e.siteIRI + e.id }

func (e EntityID) IsZero() bool { return e == EntityID{} }

func (e EntityID) IsPlaceholder() bool {
	return !e.IsZero() && e == NullID(e.kind)
}

// LexemeID returns the lexeme a form or sense id belongs to.
func (e EntityID) LexemeID() (EntityID, bool) {
	if e.kind != KindForm && e.kind != KindSense {
		return EntityID{}, false
	}
	if e.IsPlaceholder() {
		return NullLexemeID, true
	}
	lexeme, _, _ := strings.Cut(e.id, "-")
	return EntityID{kind: KindLexeme, id: lexeme, siteIRI: e.siteIRI}, true
}

func (e EntityID) String() string {
	if e.IsZero() {
		return "<none>"
	}
	return e.id
}

// MarshalJSON writes the plain id string, as used by update payloads.
func (e EntityID) MarshalJSON() ([]byte, error) {
	if e.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(e.id)
}

func (e EntityID) GoString() string {
	return fmt.Sprintf("EntityID(%s %s%s)", e.kind, e.siteIRI, e.id)
}
