// Package validate holds the argument checks shared by the update builders.
// Every check returns an error wrapping helper.ErrNullArgument or
// helper.ErrInvalidArgument.
package validate

import (
	"strings"

	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

// LanguageCode rejects blank language codes.
func LanguageCode(trace string, code string) error {
	if strings.TrimSpace(code) == "" {
		return helper.InvalidArgument(trace, "language code must not be blank")
	}
	return nil
}

// Term rejects the zero term and terms with a blank language code.
func Term(trace string, t model.Term) error {
	if t == (model.Term{}) {
		return helper.NullArgument(trace, "term")
	}
	return LanguageCode(trace, t.Language)
}

// Terms checks every term and rejects duplicate language codes.
func Terms(trace string, terms []model.Term) error {
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if err := Term(trace, t); err != nil {
			return err
		}
		if _, ok := seen[t.Language]; ok {
			return helper.InvalidArgument(trace, "duplicate language code %q", t.Language)
		}
		seen[t.Language] = struct{}{}
	}
	return nil
}

// EntityID rejects absent ids.
func EntityID(trace string, what string, id model.EntityID) error {
	if id.IsZero() {
		return helper.NullArgument(trace, what)
	}
	return nil
}

// RealEntityID rejects absent and placeholder ids.
func RealEntityID(trace string, what string, id model.EntityID) error {
	if err := EntityID(trace, what, id); err != nil {
		return err
	}
	if id.IsPlaceholder() {
		return helper.InvalidArgument(trace, "%s must not be a placeholder id", what)
	}
	return nil
}

// Kind rejects ids of another kind than want.
func Kind(trace string, what string, id model.EntityID, want model.Kind) error {
	if err := EntityID(trace, what, id); err != nil {
		return err
	}
	if id.Kind() != want {
		return helper.InvalidArgument(trace, "%s %s is not a %s id", what, id, want)
	}
	return nil
}

// BaseRevision rejects documents without a real id.
func BaseRevision(trace string, doc model.EntityDocument) error {
	if doc == nil {
		return helper.NullArgument(trace, "base revision")
	}
	return RealEntityID(trace, "base revision entity id", doc.EntityID())
}

// Distinct rejects duplicate items.
func Distinct[T comparable](trace string, what string, items []T) error {
	seen := make(map[T]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			return helper.InvalidArgument(trace, "duplicate %s %v", what, item)
		}
		seen[item] = struct{}{}
	}
	return nil
}

// Disjoint rejects items present in both a and b.
func Disjoint[T comparable](trace string, what string, a []T, b []T) error {
	in := make(map[T]struct{}, len(a))
	for _, item := range a {
		in[item] = struct{}{}
	}
	for _, item := range b {
		if _, ok := in[item]; ok {
			return helper.InvalidArgument(trace, "%s %v is both modified and removed", what, item)
		}
	}
	return nil
}

// RealEntityIDs checks every id with RealEntityID and rejects duplicates.
func RealEntityIDs(trace string, what string, ids []model.EntityID) error {
	for _, id := range ids {
		if err := RealEntityID(trace, what, id); err != nil {
			return err
		}
	}
	return Distinct(trace, what, ids)
}
