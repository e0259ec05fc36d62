package diff

import (
	"encoding/json"
	"slices"

	"github.com/siherrmann/wbupdate/core/validate"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// AliasUpdate changes the alias list of a single language, either by
// replacing the whole list (recreate mode) or by adding and removing
// individual aliases. The zero value is empty.
type AliasUpdate struct {
	language  string
	recreate  bool
	recreated []model.Term
	added     []model.Term
	removed   []model.Term
}

func checkAliasLanguage(trace string, language string, terms []model.Term) (string, error) {
	for _, t := range terms {
		if err := validate.Term(trace, t); err != nil {
			return "", err
		}
		if language == "" {
			language = t.Language
		} else if t.Language != language {
			return "", helper.InvalidArgument(trace, "alias %q is in language %q, expected %q", t.Text, t.Language, language)
		}
	}
	return language, nil
}

func newAliasRecreation(recreated []model.Term) (AliasUpdate, error) {
	const trace = "new alias recreation"
	language, err := checkAliasLanguage(trace, "", recreated)
	if err != nil {
		return AliasUpdate{}, err
	}
	if err := validate.Distinct(trace, "alias", recreated); err != nil {
		return AliasUpdate{}, err
	}
	return AliasUpdate{
		language:  language,
		recreate:  true,
		recreated: append([]model.Term{}, recreated...),
	}, nil
}

func newAliasUpdate(added []model.Term, removed []model.Term) (AliasUpdate, error) {
	const trace = "new alias update"
	language, err := checkAliasLanguage(trace, "", added)
	if err != nil {
		return AliasUpdate{}, err
	}
	language, err = checkAliasLanguage(trace, language, removed)
	if err != nil {
		return AliasUpdate{}, err
	}
	if err := validate.Distinct(trace, "removed alias", removed); err != nil {
		return AliasUpdate{}, err
	}
	for _, t := range added {
		if slices.Contains(removed, t) {
			return AliasUpdate{}, helper.InvalidArgument(trace, "alias %q is both added and removed", t.Text)
		}
	}
	return AliasUpdate{
		language: language,
		added:    slices.Clone(added),
		removed:  slices.Clone(removed),
	}, nil
}

// Language returns the language of the aliases, empty if no alias is involved.
func (u AliasUpdate) Language() string {
	return u.language
}

// Recreated returns the replacement list if the update is a recreation.
func (u AliasUpdate) Recreated() ([]model.Term, bool) {
	if !u.recreate {
		return nil, false
	}
	return append([]model.Term{}, u.recreated...), true
}

func (u AliasUpdate) Added() []model.Term {
	return slices.Clone(u.added)
}

func (u AliasUpdate) Removed() []model.Term {
	return slices.Clone(u.removed)
}

func (u AliasUpdate) IsEmpty() bool {
	return !u.recreate && len(u.added) == 0 && len(u.removed) == 0
}

type aliasAddJSON struct {
	Add      string `json:"add"`
	Language string `json:"language"`
	Value    string `json:"value"`
}

type aliasRemoveJSON struct {
	Language string `json:"language"`
	Remove   string `json:"remove"`
	Value    string `json:"value"`
}

func (u AliasUpdate) MarshalJSON() ([]byte, error) {
	if u.IsEmpty() {
		return []byte("null"), nil
	}
	if u.recreate {
		return json.Marshal(append([]model.Term{}, u.recreated...))
	}
	out := make([]any, 0, len(u.added)+len(u.removed))
	for _, t := range u.added {
		out = append(out, aliasAddJSON{Language: t.Language, Value: t.Text})
	}
	for _, t := range u.removed {
		out = append(out, aliasRemoveJSON{Language: t.Language, Value: t.Text})
	}
	return json.Marshal(out)
}

// AliasUpdateBuilder accumulates changes of the alias list of one language.
// It is not safe for concurrent use.
type AliasUpdateBuilder struct {
	language  string
	seeded    bool
	base      []model.Term
	recreate  bool
	recreated []model.Term
	added     []model.Term
	removed   []model.Term
}

// NewAliasUpdateBuilder creates a blind builder.
func NewAliasUpdateBuilder() *AliasUpdateBuilder {
	return &AliasUpdateBuilder{}
}

// NewAliasUpdateBuilderForAliases creates a builder seeded with the current aliases.
func NewAliasUpdateBuilderForAliases(base []model.Term) (*AliasUpdateBuilder, error) {
	const trace = "alias update builder for aliases"
	language, err := checkAliasLanguage(trace, "", base)
	if err != nil {
		return nil, err
	}
	if err := validate.Distinct(trace, "alias", base); err != nil {
		return nil, err
	}
	return &AliasUpdateBuilder{
		language: language,
		seeded:   true,
		base:     slices.Clone(base),
	}, nil
}

func (b *AliasUpdateBuilder) checkTerm(trace string, t model.Term) error {
	language, err := checkAliasLanguage(trace, b.language, []model.Term{t})
	if err != nil {
		return err
	}
	b.language = language
	return nil
}

// collapse leaves recreate mode once the recreated list equals the base list.
func (b *AliasUpdateBuilder) collapse() {
	if b.recreate && b.seeded && slices.Equal(b.recreated, b.base) {
		b.recreate = false
		b.recreated = nil
	}
}

// Add adds an alias. Adding a pending removal cancels the removal.
func (b *AliasUpdateBuilder) Add(t model.Term) error {
	if err := b.checkTerm("add alias", t); err != nil {
		return err
	}
	if b.recreate {
		if !slices.Contains(b.recreated, t) {
			b.recreated = append(b.recreated, t)
			b.collapse()
		}
		return nil
	}
	if i := slices.Index(b.removed, t); i >= 0 {
		b.removed = slices.Delete(b.removed, i, i+1)
		return nil
	}
	if b.seeded && slices.Contains(b.base, t) {
		return nil
	}
	b.added = append(b.added, t)
	return nil
}

// Remove removes an alias. Removing a pending addition cancels the first such addition.
func (b *AliasUpdateBuilder) Remove(t model.Term) error {
	if err := b.checkTerm("remove alias", t); err != nil {
		return err
	}
	if b.recreate {
		if i := slices.Index(b.recreated, t); i >= 0 {
			b.recreated = slices.Delete(b.recreated, i, i+1)
			b.collapse()
		}
		return nil
	}
	if i := slices.Index(b.added, t); i >= 0 {
		b.added = slices.Delete(b.added, i, i+1)
		return nil
	}
	if b.seeded && !slices.Contains(b.base, t) {
		return nil
	}
	if !slices.Contains(b.removed, t) {
		b.removed = append(b.removed, t)
	}
	return nil
}

// Recreate replaces the whole alias list with terms, discarding pending
// additions and removals.
func (b *AliasUpdateBuilder) Recreate(terms []model.Term) error {
	const trace = "recreate aliases"
	language, err := checkAliasLanguage(trace, b.language, terms)
	if err != nil {
		return err
	}
	if err := validate.Distinct(trace, "alias", terms); err != nil {
		return err
	}
	b.language = language
	b.added = nil
	b.removed = nil
	b.recreate = true
	b.recreated = append([]model.Term{}, terms...)
	b.collapse()
	return nil
}

// Append applies update after the pending changes. A recreation replaces
// everything pending.
func (b *AliasUpdateBuilder) Append(update AliasUpdate) error {
	next := b.Clone()
	if err := next.apply(update); err != nil {
		return helper.NewError("append alias update", err)
	}
	*b = *next
	return nil
}

func (b *AliasUpdateBuilder) apply(update AliasUpdate) error {
	if update.recreate {
		return b.Recreate(update.recreated)
	}
	for _, t := range update.added {
		if err := b.Add(t); err != nil {
			return err
		}
	}
	for _, t := range update.removed {
		if err := b.Remove(t); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an independent copy of the builder.
func (b *AliasUpdateBuilder) Clone() *AliasUpdateBuilder {
	c := *b
	c.base = slices.Clone(b.base)
	c.recreated = slices.Clone(b.recreated)
	c.added = slices.Clone(b.added)
	c.removed = slices.Clone(b.removed)
	return &c
}

func (b *AliasUpdateBuilder) Build() (AliasUpdate, error) {
	var (
		u   AliasUpdate
		err error
	)
	if b.recreate {
		u, err = newAliasRecreation(b.recreated)
	} else {
		u, err = newAliasUpdate(b.added, b.removed)
	}
	if err != nil {
		return AliasUpdate{}, helper.NewError("build alias update", err)
	}
	if u.language == "" {
		u.language = b.language
	}
	return u, nil
}
