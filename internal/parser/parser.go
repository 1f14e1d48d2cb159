// Package parser turns a lexer.Lexer token stream into an
// internal/parsetree for one of the five definition-file kinds
// (spec.md §4.3). All five parsers are built from the same small set of
// shared section-shape helpers: a definition file is nothing but a flat
// list of "name: ..." sections, and the shape after the colon (a single
// scalar, a bare token list, or a list of structured items) repeats
// across every file kind.
package parser

import (
	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/lexer"
	"github.com/legato-af/mktools/internal/parsetree"
)

// itemParser parses one item inside a ComplexSection's curly braces; the
// caller checks for the section's closing brace before each call.
type itemParser func(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic)

// ParseSimpleSection parses "name: value" where value is a single token
// matching expect, returning the section and the bare value token for
// the caller's own convenience.
func ParseSimpleSection(lx *lexer.Lexer, name *lexer.Token, expect lexer.Kind) (*parsetree.SimpleSection, *lexer.Token, *mkerrors.Diagnostic) {
	if _, diag := lx.Pull(lexer.Colon); diag != nil {
		return nil, nil, diag
	}
	value, diag := lx.Pull(expect)
	if diag != nil {
		return nil, nil, diag
	}
	return &parsetree.SimpleSection{
		Base:  parsetree.Base{First: name, Last: value},
		Name:  name.Text,
		Value: value,
	}, value, nil
}

// ParseTokenListSection parses "name: { tok tok tok }", pulling itemKind
// tokens until the closing brace.
func ParseTokenListSection(lx *lexer.Lexer, name *lexer.Token, itemKind lexer.Kind) (*parsetree.TokenListSection, *mkerrors.Diagnostic) {
	if _, diag := lx.Pull(lexer.Colon); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.OpenCurly); diag != nil {
		return nil, diag
	}
	sec := &parsetree.TokenListSection{Name: name.Text}
	sec.First = name
	for !lx.IsMatch(lexer.CloseCurly) {
		tok, diag := lx.Pull(itemKind)
		if diag != nil {
			return nil, diag
		}
		sec.Items = append(sec.Items, tok)
	}
	close, diag := lx.Pull(lexer.CloseCurly)
	if diag != nil {
		return nil, diag
	}
	sec.Last = close
	return sec, nil
}

// ParseComplexSection parses "name: { item item item }" where each item
// is parsed by parseItem, which must itself consume exactly one item and
// stop before the next one (or the closing brace).
func ParseComplexSection(lx *lexer.Lexer, name *lexer.Token, parseItem itemParser) (*parsetree.ComplexSection, *mkerrors.Diagnostic) {
	if _, diag := lx.Pull(lexer.Colon); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.OpenCurly); diag != nil {
		return nil, diag
	}
	sec := &parsetree.ComplexSection{Name: name.Text}
	sec.First = name
	for !lx.IsMatch(lexer.CloseCurly) {
		item, diag := parseItem(lx)
		if diag != nil {
			return nil, diag
		}
		sec.Items = append(sec.Items, item)
	}
	close, diag := lx.Pull(lexer.CloseCurly)
	if diag != nil {
		return nil, diag
	}
	sec.Last = close
	return sec, nil
}

// ParseNamedComplexSection parses a sub-list nested inside a
// ComplexSection, e.g. "run: { ... }" nested under "processes:". The
// leading name token has already been pulled by the caller.
func ParseNamedComplexSection(lx *lexer.Lexer, name *lexer.Token, parseItem itemParser) (*parsetree.CompoundItemList, *mkerrors.Diagnostic) {
	if _, diag := lx.Pull(lexer.Colon); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.OpenCurly); diag != nil {
		return nil, diag
	}
	list := &parsetree.CompoundItemList{Name: name.Text}
	list.First = name
	for !lx.IsMatch(lexer.CloseCurly) {
		item, diag := parseItem(lx)
		if diag != nil {
			return nil, diag
		}
		list.Items = append(list.Items, item)
	}
	close, diag := lx.Pull(lexer.CloseCurly)
	if diag != nil {
		return nil, diag
	}
	list.Last = close
	return list, nil
}

// sectionName pulls the NAME token that begins every section ("sources",
// "bindings", "executables", ...), retagging a FILE_PATH/FILE_NAME-shaped
// token when the scanner classified it more loosely.
func sectionName(lx *lexer.Lexer) (*lexer.Token, *mkerrors.Diagnostic) {
	tok, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	if diag := lexer.ConvertToName(tok); diag != nil {
		return nil, diag
	}
	return tok, nil
}

// pathPair parses the common "srcPath destPath" shape used
// by file/dir/device entries under "requires:" and "bundles:".
func pathPair(lx *lexer.Lexer) (src, dest *lexer.Token, diag *mkerrors.Diagnostic) {
	src, diag = lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, nil, diag
	}
	dest, diag = lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, nil, diag
	}
	return src, dest, nil
}
