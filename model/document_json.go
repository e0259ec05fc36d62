package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/siherrmann/wbupdate/helper"
)

type documentJSON struct {
	ID                  string                     `json:"id,omitempty"`
	Type                Kind                       `json:"type"`
	LastRevID           int64                      `json:"lastrevid,omitempty"`
	Datatype            string                     `json:"datatype,omitempty"`
	Labels              map[string]Term            `json:"labels,omitempty"`
	Descriptions        map[string]Term            `json:"descriptions,omitempty"`
	Aliases             map[string][]Term          `json:"aliases,omitempty"`
	Lemmas              map[string]Term            `json:"lemmas,omitempty"`
	Language            string                     `json:"language,omitempty"`
	LexicalCategory     string                     `json:"lexicalCategory,omitempty"`
	Representations     map[string]Term            `json:"representations,omitempty"`
	GrammaticalFeatures []string                   `json:"grammaticalFeatures,omitempty"`
	Glosses             map[string]Term            `json:"glosses,omitempty"`
	Claims              map[string][]statementJSON `json:"claims,omitempty"`
	Statements          map[string][]statementJSON `json:"statements,omitempty"`
	SiteLinks           map[string]siteLinkJSON    `json:"sitelinks,omitempty"`
	Forms               []documentJSON             `json:"forms,omitempty"`
	Senses              []documentJSON             `json:"senses,omitempty"`
}

// MarshalDocument encodes a document in entity JSON.
func MarshalDocument(doc EntityDocument) ([]byte, error) {
	if doc == nil {
		return nil, helper.NullArgument("marshal document", "document")
	}
	j, err := documentToJSON(doc)
	if err != nil {
		return nil, helper.NewError("marshal document", err)
	}
	return json.Marshal(j)
}

// UnmarshalDocument decodes entity JSON. Ids are resolved against siteIRI and
// statement subjects are set to the id of the enclosing entity.
func UnmarshalDocument(data []byte, siteIRI string) (EntityDocument, error) {
	var j documentJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, helper.NewError("unmarshal document", err)
	}
	doc, err := j.toDocument(j.Type, siteIRI)
	if err != nil {
		return nil, helper.NewError("unmarshal document", err)
	}
	return doc, nil
}

func (d *ItemDocument) MarshalJSON() ([]byte, error)      { return MarshalDocument(d) }
func (d *PropertyDocument) MarshalJSON() ([]byte, error)  { return MarshalDocument(d) }
func (d *MediaInfoDocument) MarshalJSON() ([]byte, error) { return MarshalDocument(d) }
func (d *LexemeDocument) MarshalJSON() ([]byte, error)    { return MarshalDocument(d) }
func (d *FormDocument) MarshalJSON() ([]byte, error)      { return MarshalDocument(d) }
func (d *SenseDocument) MarshalJSON() ([]byte, error)     { return MarshalDocument(d) }

func idString(id EntityID) string {
	if id.IsZero() {
		return ""
	}
	return id.ID()
}

func claimsJSON(statements []Statement) (map[string][]statementJSON, error) {
	if len(statements) == 0 {
		return nil, nil
	}
	claims := map[string][]statementJSON{}
	for _, s := range statements {
		j, err := s.toJSON()
		if err != nil {
			return nil, err
		}
		p := s.MainSnak.Property.ID()
		claims[p] = append(claims[p], j)
	}
	return claims, nil
}

func documentToJSON(doc EntityDocument) (documentJSON, error) {
	j := documentJSON{
		ID:        idString(doc.EntityID()),
		Type:      doc.EntityID().Kind(),
		LastRevID: doc.Revision(),
	}
	claims, err := claimsJSON(doc.(StatementDocument).StatementList())
	if err != nil {
		return documentJSON{}, err
	}
	j.Claims = claims

	switch d := doc.(type) {
	case *ItemDocument:
		j.Labels, j.Descriptions, j.Aliases = d.Labels, d.Descriptions, d.Aliases
		if len(d.SiteLinks) > 0 {
			j.SiteLinks = map[string]siteLinkJSON{}
			for site, l := range d.SiteLinks {
				sl := siteLinkJSON{Site: l.Site, Title: l.Title, Badges: []string{}}
				for _, b := range l.Badges {
					sl.Badges = append(sl.Badges, b.ID())
				}
				j.SiteLinks[site] = sl
			}
		}
	case *PropertyDocument:
		j.Labels, j.Descriptions, j.Aliases = d.Labels, d.Descriptions, d.Aliases
		j.Datatype = d.Datatype
	case *MediaInfoDocument:
		j.Labels = d.Labels
		j.Statements, j.Claims = j.Claims, nil
	case *LexemeDocument:
		j.Lemmas = d.Lemmas
		j.Language = idString(d.Language)
		j.LexicalCategory = idString(d.LexicalCategory)
		for i := range d.Forms {
			f, err := documentToJSON(&d.Forms[i])
			if err != nil {
				return documentJSON{}, err
			}
			j.Forms = append(j.Forms, f)
		}
		for i := range d.Senses {
			s, err := documentToJSON(&d.Senses[i])
			if err != nil {
				return documentJSON{}, err
			}
			j.Senses = append(j.Senses, s)
		}
	case *FormDocument:
		j.Representations = d.Representations
		for _, f := range d.GrammaticalFeatures {
			j.GrammaticalFeatures = append(j.GrammaticalFeatures, f.ID())
		}
	case *SenseDocument:
		j.Glosses = d.Glosses
	default:
		return documentJSON{}, fmt.Errorf("unsupported document type %T", doc)
	}
	return j, nil
}

func decodeID(kind Kind, id string, siteIRI string) (EntityID, error) {
	if id == "" {
		return EntityID{}, nil
	}
	if null := NullID(kind); id == null.ID() {
		return null, nil
	}
	return NewEntityID(kind, id, siteIRI)
}

func decodeClaims(claims map[string][]statementJSON, subject EntityID, siteIRI string) ([]Statement, error) {
	var statements []Statement
	for _, p := range slices.Sorted(maps.Keys(claims)) {
		for _, sj := range claims[p] {
			s, err := sj.toStatement(subject, siteIRI)
			if err != nil {
				return nil, err
			}
			statements = append(statements, s)
		}
	}
	return statements, nil
}

func (j documentJSON) toDocument(kind Kind, siteIRI string) (EntityDocument, error) {
	id, err := decodeID(kind, j.ID, siteIRI)
	if err != nil {
		return nil, err
	}
	claims := j.Claims
	if len(claims) == 0 {
		claims = j.Statements
	}
	statements, err := decodeClaims(claims, id, siteIRI)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindItem:
		d := &ItemDocument{ID: id, RevisionID: j.LastRevID, Labels: j.Labels, Descriptions: j.Descriptions, Aliases: j.Aliases, Statements: statements}
		if len(j.SiteLinks) > 0 {
			d.SiteLinks = map[string]SiteLink{}
			for site, sl := range j.SiteLinks {
				l := SiteLink{Site: sl.Site, Title: sl.Title}
				for _, b := range sl.Badges {
					badge, err := NewEntityID(KindItem, b, siteIRI)
					if err != nil {
						return nil, err
					}
					l.Badges = append(l.Badges, badge)
				}
				d.SiteLinks[site] = l
			}
		}
		return d, nil
	case KindProperty:
		return &PropertyDocument{ID: id, RevisionID: j.LastRevID, Labels: j.Labels, Descriptions: j.Descriptions, Aliases: j.Aliases, Statements: statements, Datatype: j.Datatype}, nil
	case KindMediaInfo:
		return &MediaInfoDocument{ID: id, RevisionID: j.LastRevID, Labels: j.Labels, Statements: statements}, nil
	case KindLexeme:
		d := &LexemeDocument{ID: id, RevisionID: j.LastRevID, Lemmas: j.Lemmas, Statements: statements}
		if d.Language, err = decodeID(KindItem, j.Language, siteIRI); err != nil {
			return nil, err
		}
		if d.LexicalCategory, err = decodeID(KindItem, j.LexicalCategory, siteIRI); err != nil {
			return nil, err
		}
		for _, fj := range j.Forms {
			f, err := fj.toDocument(KindForm, siteIRI)
			if err != nil {
				return nil, err
			}
			d.Forms = append(d.Forms, *f.(*FormDocument))
		}
		for _, sj := range j.Senses {
			s, err := sj.toDocument(KindSense, siteIRI)
			if err != nil {
				return nil, err
			}
			d.Senses = append(d.Senses, *s.(*SenseDocument))
		}
		return d, nil
	case KindForm:
		d := &FormDocument{ID: id, RevisionID: j.LastRevID, Representations: j.Representations, Statements: statements}
		for _, g := range j.GrammaticalFeatures {
			f, err := NewEntityID(KindItem, g, siteIRI)
			if err != nil {
				return nil, err
			}
			d.GrammaticalFeatures = append(d.GrammaticalFeatures, f)
		}
		return d, nil
	case KindSense:
		return &SenseDocument{ID: id, RevisionID: j.LastRevID, Glosses: j.Glosses, Statements: statements}, nil
	}
	return nil, helper.InvalidArgument("decode document", "unknown entity type %q", kind)
}
