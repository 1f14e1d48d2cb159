package lexer

import mkerrors "github.com/legato-af/mktools/internal/errors"

// Pull matches the next token against the requested kind. On mismatch it
// raises UNEXPECTED_TOKEN with the current location and a description of
// what was expected, as required by spec.md §4.2.
func (lx *Lexer) Pull(kind Kind) (*Token, *mkerrors.Diagnostic) {
	tok, diag := lx.peekToken()
	if diag != nil {
		return nil, diag
	}
	if !acceptsAs(kind, tok.Kind, tok.Text) {
		loc := tok.Loc
		return nil, mkerrors.Parse(loc, "unexpected token: expected %s, got %s (%q)", kind, tok.Kind, tok.Text)
	}
	lx.consumePeeked()
	return tok, nil
}

// PullAny consumes and returns the next token regardless of its kind,
// for callers that need to walk a token span without validating each
// token's grammar.
func (lx *Lexer) PullAny() (*Token, *mkerrors.Diagnostic) {
	tok, diag := lx.peekToken()
	if diag != nil {
		return nil, diag
	}
	lx.consumePeeked()
	return tok, nil
}

// IsMatch reports whether the next token matches kind, without
// consuming it.
func (lx *Lexer) IsMatch(kind Kind) bool {
	tok, diag := lx.peekToken()
	if diag != nil {
		return false
	}
	return acceptsAs(kind, tok.Kind, tok.Text)
}

// ConvertToName re-tags a token (typically FILE_PATH or FILE_NAME) to
// NAME after validating its spelling matches the stricter NAME grammar;
// used when parsing "alias = ..." forms where the prefix must be a name.
func ConvertToName(tok *Token) *mkerrors.Diagnostic {
	if !reName.MatchString(tok.Text) {
		return mkerrors.Parse(tok.Loc, "%q is not a valid name", tok.Text)
	}
	tok.Kind = Name
	return nil
}

// peekState caches the lookahead token so IsMatch doesn't re-scan.
type peekState struct {
	tok  *Token
	diag *mkerrors.Diagnostic
}

func (lx *Lexer) peekToken() (*Token, *mkerrors.Diagnostic) {
	if lx.peeked != nil {
		return lx.peeked.tok, lx.peeked.diag
	}
	tok, diag := lx.NextToken()
	lx.peeked = &peekState{tok: tok, diag: diag}
	return tok, diag
}

func (lx *Lexer) consumePeeked() {
	lx.peeked = nil
}
