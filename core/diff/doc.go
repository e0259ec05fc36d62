// Package diff implements the primitive updates of entity documents:
// term maps (TermUpdate), the alias list of one language (AliasUpdate) and
// statement collections (StatementUpdate).
//
// Updates are immutable values created by builders. A builder is either blind
// or seeded with the current values of a base revision; a seeded builder drops
// changes that would leave the base value as it is.
package diff
