package diff

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/siherrmann/wbupdate/core/validate"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// TermUpdate changes a language-keyed term map. The zero value is empty.
type TermUpdate struct {
	modified map[string]model.Term
	removed  map[string]struct{}
}

// EmptyTermUpdate changes nothing.
var EmptyTermUpdate = TermUpdate{}

func newTermUpdate(modified []model.Term, removed []string) (TermUpdate, error) {
	const trace = "new term update"
	if err := validate.Terms(trace, modified); err != nil {
		return TermUpdate{}, err
	}
	for _, lang := range removed {
		if err := validate.LanguageCode(trace, lang); err != nil {
			return TermUpdate{}, err
		}
	}
	if err := validate.Distinct(trace, "removed language", removed); err != nil {
		return TermUpdate{}, err
	}
	langs := make([]string, len(modified))
	for i, t := range modified {
		langs[i] = t.Language
	}
	if err := validate.Disjoint(trace, "language", langs, removed); err != nil {
		return TermUpdate{}, err
	}

	u := TermUpdate{}
	if len(modified) > 0 {
		u.modified = model.TermMap(modified...)
	}
	if len(removed) > 0 {
		u.removed = make(map[string]struct{}, len(removed))
		for _, lang := range removed {
			u.removed[lang] = struct{}{}
		}
	}
	return u, nil
}

// Modified returns the new terms keyed by language code.
func (u TermUpdate) Modified() map[string]model.Term {
	return maps.Clone(u.modified)
}

// Removed returns the removed language codes in sorted order.
func (u TermUpdate) Removed() []string {
	return slices.Sorted(maps.Keys(u.removed))
}

func (u TermUpdate) IsEmpty() bool {
	return len(u.modified) == 0 && len(u.removed) == 0
}

type termRemovalJSON struct {
	Language string `json:"language"`
	Remove   string `json:"remove"`
}

func (u TermUpdate) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.modified)+len(u.removed))
	for lang, t := range u.modified {
		out[lang] = t
	}
	for lang := range u.removed {
		out[lang] = termRemovalJSON{Language: lang}
	}
	return json.Marshal(out)
}

// TermUpdateBuilder accumulates changes of a term map.
// It is not safe for concurrent use.
type TermUpdateBuilder struct {
	base     map[string]model.Term
	modified map[string]model.Term
	removed  map[string]struct{}
}

// NewTermUpdateBuilder creates a blind builder.
func NewTermUpdateBuilder() *TermUpdateBuilder {
	return &TermUpdateBuilder{
		modified: map[string]model.Term{},
		removed:  map[string]struct{}{},
	}
}

// NewTermUpdateBuilderForTerms creates a builder seeded with the current terms.
func NewTermUpdateBuilderForTerms(base []model.Term) (*TermUpdateBuilder, error) {
	if err := validate.Terms("term update builder for terms", base); err != nil {
		return nil, err
	}
	b := NewTermUpdateBuilder()
	b.base = model.TermMap(base...)
	return b, nil
}

// SetTerm sets the term of its language. Setting the base term again cancels
// any pending change of that language.
func (b *TermUpdateBuilder) SetTerm(t model.Term) error {
	if err := validate.Term("set term", t); err != nil {
		return err
	}
	delete(b.removed, t.Language)
	if b.base != nil {
		if current, ok := b.base[t.Language]; ok && current == t {
			delete(b.modified, t.Language)
			return nil
		}
	}
	b.modified[t.Language] = t
	return nil
}

// RemoveTerm removes the term of lang. On a seeded builder removing a language
// missing from the base only cancels pending changes.
func (b *TermUpdateBuilder) RemoveTerm(lang string) error {
	if err := validate.LanguageCode("remove term", lang); err != nil {
		return err
	}
	delete(b.modified, lang)
	if b.base == nil {
		b.removed[lang] = struct{}{}
		return nil
	}
	if _, ok := b.base[lang]; ok {
		b.removed[lang] = struct{}{}
	}
	return nil
}

// Append applies all changes of update after the pending ones. Either all of
// update is applied or none of it.
func (b *TermUpdateBuilder) Append(update TermUpdate) error {
	next := b.Clone()
	for _, lang := range slices.Sorted(maps.Keys(update.modified)) {
		if err := next.SetTerm(update.modified[lang]); err != nil {
			return helper.NewError("append term update", err)
		}
	}
	for _, lang := range update.Removed() {
		if err := next.RemoveTerm(lang); err != nil {
			return helper.NewError("append term update", err)
		}
	}
	*b = *next
	return nil
}

// Clone returns an independent copy of the builder.
func (b *TermUpdateBuilder) Clone() *TermUpdateBuilder {
	return &TermUpdateBuilder{
		base:     b.base,
		modified: maps.Clone(b.modified),
		removed:  maps.Clone(b.removed),
	}
}

func (b *TermUpdateBuilder) Build() (TermUpdate, error) {
	u, err := newTermUpdate(model.TermList(b.modified), slices.Sorted(maps.Keys(b.removed)))
	if err != nil {
		return TermUpdate{}, helper.NewError("build term update", err)
	}
	return u, nil
}
