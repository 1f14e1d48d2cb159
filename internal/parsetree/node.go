// Package parsetree defines the tagged-variant parse tree produced by
// internal/parser (spec.md §3.1, design note "deep class hierarchies...
// represent as tagged variants matched exhaustively at every site"). Go
// has no sum types, so each node kind is its own struct implementing
// Node, and callers (the modeller, mkedit) type-switch over the concrete
// type rather than over a tag field.
package parsetree

import "github.com/legato-af/mktools/internal/lexer"

// Node is implemented by every parse tree node; it exposes the token
// range the node was built from so diagnostics and edit operations can
// recover exact source bytes.
type Node interface {
	FirstToken() *lexer.Token
	LastToken() *lexer.Token
}

// Base is embedded by every concrete node and implements Node.
type Base struct {
	First *lexer.Token
	Last  *lexer.Token
}

func (b Base) FirstToken() *lexer.Token { return b.First }
func (b Base) LastToken() *lexer.Token  { return b.Last }

// SimpleSection is a "name: value" section with exactly one scalar
// value token (e.g. "maxMemoryBytes: 1000000").
type SimpleSection struct {
	Base
	Name  string
	Value *lexer.Token
}

// TokenListSection is a "name: { tok tok tok }" section whose items are
// bare tokens with no further structure (e.g. "sources:").
type TokenListSection struct {
	Base
	Name  string
	Items []*lexer.Token
}

// ComplexSection is a "name: { item item item }" section whose items are
// themselves structured nodes (e.g. "requires:", "bindings:").
type ComplexSection struct {
	Base
	Name  string
	Items []Node
}

// CompoundItemList is a named sub-list nested inside a ComplexSection
// (e.g. "run:" nested under "processes:").
type CompoundItemList struct {
	Base
	Name  string
	Items []Node
}
