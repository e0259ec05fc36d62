package model

import (
	"maps"
	"slices"
)

// Term is a text in one language, used for labels, descriptions, aliases,
// lemmas, representations and glosses.
type Term struct {
	Language string `json:"language"`
	Text     string `json:"value"`
}

// TermList returns the terms of a language-keyed map ordered by language code.
func TermList(terms map[string]Term) []Term {
	list := make([]Term, 0, len(terms))
	for _, lang := range slices.Sorted(maps.Keys(terms)) {
		list = append(list, terms[lang])
	}
	return list
}

// TermMap keys terms by their language code. Later terms win on duplicates.
func TermMap(terms ...Term) map[string]Term {
	m := make(map[string]Term, len(terms))
	for _, t := range terms {
		m[t.Language] = t
	}
	return m
}
