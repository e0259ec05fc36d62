package update

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/core/validate"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// EntityUpdate is an immutable change of one entity. Implementations are
// *ItemUpdate, *PropertyUpdate, *MediaInfoUpdate, *LexemeUpdate, *FormUpdate
// and *SenseUpdate.
type EntityUpdate interface {
	EntityID() model.EntityID
	// BaseRevisionID is the revision the update was computed against, 0 if unknown.
	BaseRevisionID() int64
	IsEmpty() bool
	json.Marshaler
	entityUpdate()
}

// LabeledDocumentUpdate changes labels.
type LabeledDocumentUpdate interface {
	EntityUpdate
	Labels() diff.TermUpdate
}

// StatementDocumentUpdate changes statements.
type StatementDocumentUpdate interface {
	EntityUpdate
	Statements() diff.StatementUpdate
}

// LabeledStatementDocumentUpdate changes labels and statements.
type LabeledStatementDocumentUpdate interface {
	LabeledDocumentUpdate
	StatementDocumentUpdate
}

// TermedStatementDocumentUpdate changes labels, descriptions, aliases and statements.
type TermedStatementDocumentUpdate interface {
	LabeledStatementDocumentUpdate
	Descriptions() diff.TermUpdate
	Aliases() map[string]diff.AliasUpdate
}

type entityPart struct {
	id             model.EntityID
	baseRevisionID int64
}

func newEntityPart(trace string, id model.EntityID, kind model.Kind, baseRevisionID int64) (entityPart, error) {
	if err := validate.Kind(trace, "entity id", id, kind); err != nil {
		return entityPart{}, err
	}
	if err := validate.RealEntityID(trace, "entity id", id); err != nil {
		return entityPart{}, err
	}
	if baseRevisionID < 0 {
		return entityPart{}, helper.InvalidArgument(trace, "base revision id must not be negative, got %d", baseRevisionID)
	}
	return entityPart{id: id, baseRevisionID: baseRevisionID}, nil
}

func (p entityPart) EntityID() model.EntityID { return p.id }
func (p entityPart) BaseRevisionID() int64    { return p.baseRevisionID }
func (p entityPart) entityUpdate()            {}

type labelsPart struct {
	labels diff.TermUpdate
}

func (p labelsPart) Labels() diff.TermUpdate { return p.labels }

type termsPart struct {
	labelsPart
	descriptions diff.TermUpdate
	aliases      map[string]diff.AliasUpdate
}

func (p termsPart) Descriptions() diff.TermUpdate { return p.descriptions }

// Aliases returns the non-empty alias updates keyed by language code.
func (p termsPart) Aliases() map[string]diff.AliasUpdate { return maps.Clone(p.aliases) }

func (p termsPart) isEmpty() bool {
	return p.labels.IsEmpty() && p.descriptions.IsEmpty() && len(p.aliases) == 0
}

func newTermsPart(trace string, labels, descriptions diff.TermUpdate, aliases map[string]diff.AliasUpdate) (termsPart, error) {
	p := termsPart{labelsPart: labelsPart{labels: labels}, descriptions: descriptions}
	for _, lang := range slices.Sorted(maps.Keys(aliases)) {
		u := aliases[lang]
		if err := validate.LanguageCode(trace, lang); err != nil {
			return termsPart{}, err
		}
		if u.Language() != "" && u.Language() != lang {
			return termsPart{}, helper.InvalidArgument(trace, "alias update in language %q keyed by %q", u.Language(), lang)
		}
		if u.IsEmpty() {
			continue
		}
		if p.aliases == nil {
			p.aliases = map[string]diff.AliasUpdate{}
		}
		p.aliases[lang] = u
	}
	return p, nil
}

type statementsPart struct {
	statements diff.StatementUpdate
}

func (p statementsPart) Statements() diff.StatementUpdate { return p.statements }

func newStatementsPart(trace string, subject model.EntityID, statements diff.StatementUpdate) (statementsPart, error) {
	if s, ok := statements.Subject(); ok && s != subject {
		return statementsPart{}, helper.InvalidArgument(trace, "statement subject %s does not match entity %s", s, subject)
	}
	return statementsPart{statements: statements}, nil
}

// updateJSON is the change payload of all entity kinds. Unchanged fields are omitted.
type updateJSON struct {
	Labels              *diff.TermUpdate            `json:"labels,omitempty"`
	Descriptions        *diff.TermUpdate            `json:"descriptions,omitempty"`
	Aliases             map[string]diff.AliasUpdate `json:"aliases,omitempty"`
	Claims              *diff.StatementUpdate       `json:"claims,omitempty"`
	SiteLinks           map[string]any              `json:"sitelinks,omitempty"`
	Lemmas              *diff.TermUpdate            `json:"lemmas,omitempty"`
	Language            string                      `json:"language,omitempty"`
	LexicalCategory     string                      `json:"lexicalCategory,omitempty"`
	Senses              []json.RawMessage           `json:"senses,omitempty"`
	Forms               []json.RawMessage           `json:"forms,omitempty"`
	Representations     *diff.TermUpdate            `json:"representations,omitempty"`
	GrammaticalFeatures *[]model.EntityID           `json:"grammaticalFeatures,omitempty"`
	Glosses             *diff.TermUpdate            `json:"glosses,omitempty"`
}

func termsJSON(u diff.TermUpdate) *diff.TermUpdate {
	if u.IsEmpty() {
		return nil
	}
	return &u
}

func statementsJSON(u diff.StatementUpdate) *diff.StatementUpdate {
	if u.IsEmpty() {
		return nil
	}
	return &u
}

func (p termsPart) toJSON(j *updateJSON) {
	j.Labels = termsJSON(p.labels)
	j.Descriptions = termsJSON(p.descriptions)
	if len(p.aliases) > 0 {
		j.Aliases = maps.Clone(p.aliases)
	}
}

type removalJSON struct {
	ID     string `json:"id"`
	Remove string `json:"remove"`
}

// addedDocumentJSON writes a new sub-entity as entity JSON marked with "add".
func addedDocumentJSON(doc model.EntityDocument) (json.RawMessage, error) {
	data, err := model.MarshalDocument(doc)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	delete(fields, "id")
	delete(fields, "type")
	delete(fields, "lastrevid")
	fields["add"] = json.RawMessage(`""`)
	return json.Marshal(fields)
}

// updatedDocumentJSON writes the update of a sub-entity together with its id.
func updatedDocumentJSON(u EntityUpdate) (json.RawMessage, error) {
	data, err := u.MarshalJSON()
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	id, err := json.Marshal(u.EntityID().ID())
	if err != nil {
		return nil, err
	}
	fields["id"] = id
	return json.Marshal(fields)
}

func removedDocumentJSON(id model.EntityID) (json.RawMessage, error) {
	return json.Marshal(removalJSON{ID: id.ID()})
}

func sortedIDs(ids []model.EntityID) []model.EntityID {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b model.EntityID) int {
		return strings.Compare(a.ID(), b.ID())
	})
	return out
}
