// Package update holds the per-kind entity updates (items, properties, media
// info, lexemes, forms and senses), their builders and the dispatchers that
// pick a builder from an entity id or a base revision.
//
// An update is built either blind, from an entity id with an optional base
// revision id, or against a base revision document. Builders seeded with a
// document drop changes that restore the current state.
package update
