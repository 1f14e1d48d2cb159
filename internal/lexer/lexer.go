// Package lexer implements spec.md §4.2: a single-threaded, no-suspension
// scanner over one definition-file fragment at a time, honouring
// #include by pushing nested lexer contexts onto an explicit stack (so
// nesting needs no language-level recursion) and popping on EOF.
package lexer

import (
	"os"
	"strings"

	"github.com/legato-af/mktools/internal/env"
	mkerrors "github.com/legato-af/mktools/internal/errors"
)

// context is the scan cursor for one fragment: its source bytes, byte
// offset, and (line, column) tracking.
type context struct {
	fragment *Fragment
	src      []byte
	pos      int
	line     int
	col      int
}

func (c *context) loc() mkerrors.Location {
	return mkerrors.Location{File: c.fragment.Path, Line: c.line, Column: c.col}
}

func (c *context) eof() bool { return c.pos >= len(c.src) }

func (c *context) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.pos]
}

func (c *context) peekAt(offset int) byte {
	if c.pos+offset >= len(c.src) {
		return 0
	}
	return c.src[c.pos+offset]
}

func (c *context) advance() byte {
	b := c.src[c.pos]
	c.pos++
	if b == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
	return b
}

// Lexer holds the context stack for one top-level definition file plus
// all of its (possibly nested) #include fragments.
type Lexer struct {
	stack      []*context
	searchDirs []string
	root       *Fragment
	peeked     *peekState
	eofTok     *Token
}

// New opens path as the top-level fragment of a new Lexer. searchDirs is
// stored on the Lexer; #include resolution tries only the including
// file's own directory, then LEGATO_ROOT.
func New(path string, searchDirs []string) (*Lexer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mkerrors.IO(mkerrors.Location{File: path}, "read definition file", err)
	}

	root := newFragment(path, nil)
	lx := &Lexer{searchDirs: searchDirs, root: root}
	lx.stack = append(lx.stack, &context{fragment: root, src: data, line: 1, col: 1})
	return lx, nil
}

// Root returns the top-level file fragment.
func (lx *Lexer) Root() *Fragment { return lx.root }

func (lx *Lexer) current() *context {
	if len(lx.stack) == 0 {
		return nil
	}
	return lx.stack[len(lx.stack)-1]
}

// Loc reports the current scan position, used by callers (e.g. the
// parser) to attach provenance to nodes before a token has been pulled.
func (lx *Lexer) Loc() mkerrors.Location {
	if c := lx.current(); c != nil {
		return c.loc()
	}
	return mkerrors.Location{}
}

func isNameStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}
func isNameCont(b byte) bool { return isNameStart(b) || isDigit(b) }
func isDigit(b byte) bool    { return b >= '0' && b <= '9' }

// isWordByte is the permissive FILE_PATH character class: the union of
// every more specific token kind's alphabet, since the scanner produces
// one generic "word" token and Pull/IsMatch classify it against the
// kind the caller actually expects.
func isWordByte(b byte) bool {
	switch {
	case isNameCont(b):
		return true
	case strings.ContainsRune("./_-${}~+<>/", rune(b)):
		return true
	}
	return false
}

// rawNext scans and returns the next token from the current context
// without skipping whitespace, comments, or directives. Returns nil when
// the current context is exhausted (caller should pop).
func (lx *Lexer) rawNext() (*Token, *mkerrors.Diagnostic) {
	c := lx.current()
	if c == nil || c.eof() {
		return nil, nil
	}

	start := c.loc()
	b := c.peek()

	switch {
	case b == ' ' || b == '\t' || b == '\r' || b == '\n':
		for !c.eof() {
			p := c.peek()
			if p != ' ' && p != '\t' && p != '\r' && p != '\n' {
				break
			}
			c.advance()
		}
		return &Token{Kind: Whitespace, Loc: start}, nil

	case b == '/' && c.peekAt(1) == '/':
		for !c.eof() && c.peek() != '\n' {
			c.advance()
		}
		return &Token{Kind: Comment, Loc: start}, nil

	case b == '/' && c.peekAt(1) == '*':
		c.advance()
		c.advance()
		closed := false
		for !c.eof() {
			if c.peek() == '*' && c.peekAt(1) == '/' {
				c.advance()
				c.advance()
				closed = true
				break
			}
			c.advance()
		}
		if !closed {
			return nil, mkerrors.Lex(start, "unterminated block comment")
		}
		return &Token{Kind: Comment, Loc: start}, nil

	case b == '{':
		c.advance()
		return &Token{Kind: OpenCurly, Text: "{", Loc: start}, nil
	case b == '}':
		c.advance()
		return &Token{Kind: CloseCurly, Text: "}", Loc: start}, nil
	case b == '(':
		c.advance()
		return &Token{Kind: OpenParen, Text: "(", Loc: start}, nil
	case b == ')':
		c.advance()
		return &Token{Kind: CloseParen, Text: ")", Loc: start}, nil
	case b == ':':
		c.advance()
		return &Token{Kind: Colon, Text: ":", Loc: start}, nil
	case b == '=':
		c.advance()
		return &Token{Kind: Equals, Text: "=", Loc: start}, nil

	case b == '-' && c.peekAt(1) == '>':
		c.advance()
		c.advance()
		return &Token{Kind: Arrow, Text: "->", Loc: start}, nil

	case b == '.':
		// A lone dot not immediately followed by a word character
		// (isWordByte) is the standalone DOT punctuation used by the
		// bindings grammar ("NAME . NAME"); otherwise it's consumed as
		// part of a word (dotted name / file path such as "../base" /
		// float) below.
		if !isWordByte(c.peekAt(1)) {
			c.advance()
			return &Token{Kind: Dot, Text: ".", Loc: start}, nil
		}

	case b == '*':
		// Standalone STAR (pre-built wildcard binding) vs. part of a
		// word: STAR never appears embedded in any other token kind's
		// grammar, so it is always standalone.
		c.advance()
		return &Token{Kind: Star, Text: "*", Loc: start}, nil

	case b == '"' || b == '\'':
		return lx.scanQuotedString(c, start)

	case b == '[':
		return lx.scanBracketOption(c, start)

	case b == '#':
		return lx.scanDirective(c, start)
	}

	if isWordByte(b) {
		return lx.scanWord(c, start), nil
	}

	return nil, mkerrors.Lex(start, "unexpected character %q", rune(b))
}

func (lx *Lexer) scanQuotedString(c *context, start mkerrors.Location) (*Token, *mkerrors.Diagnostic) {
	quote := c.advance()
	var sb strings.Builder
	for {
		if c.eof() {
			return nil, mkerrors.Lex(start, "unterminated string literal")
		}
		b := c.peek()
		if b == '\n' {
			return nil, mkerrors.Lex(start, "newline inside quoted string")
		}
		if b == quote {
			c.advance()
			break
		}
		sb.WriteByte(c.advance())
	}
	return &Token{Kind: String, Text: sb.String(), Loc: start}, nil
}

func (lx *Lexer) scanBracketOption(c *context, start mkerrors.Location) (*Token, *mkerrors.Diagnostic) {
	c.advance() // '['
	var sb strings.Builder
	for {
		if c.eof() || c.peek() == '\n' {
			return nil, mkerrors.Lex(start, "unterminated bracketed option")
		}
		if c.peek() == ']' {
			c.advance()
			break
		}
		sb.WriteByte(c.advance())
	}
	text := sb.String()
	switch text {
	case "manual-start", "async", "optional", "types-only":
		// Always tagged ClientIPCOption: the parsers pull this kind for
		// both required and provided APIs, and Pull does not change a
		// token's kind.
		return &Token{Kind: ClientIPCOption, Text: text, Loc: start}, nil
	case "r", "w", "x", "rw", "rx", "wx", "rwx":
		return &Token{Kind: FilePermissions, Text: text, Loc: start}, nil
	default:
		return &Token{Kind: ClientIPCOption, Text: text, Loc: start}, nil
	}
}

func (lx *Lexer) scanWord(c *context, start mkerrors.Location) *Token {
	var sb strings.Builder
	for !c.eof() && isWordByte(c.peek()) {
		sb.WriteByte(c.advance())
	}
	return &Token{Kind: classifyWord(sb.String()), Text: sb.String(), Loc: start}
}

// scanDirective handles "#include "path""; every other spelling is
// UNKNOWN_DIRECTIVE.
func (lx *Lexer) scanDirective(c *context, start mkerrors.Location) (*Token, *mkerrors.Diagnostic) {
	c.advance() // '#'
	var sb strings.Builder
	for !c.eof() && c.peek() != '\n' && c.peek() != ' ' && c.peek() != '\t' {
		sb.WriteByte(c.advance())
	}
	if sb.String() != "include" {
		return nil, mkerrors.Lex(start, "unknown processing directive %q", "#"+sb.String())
	}

	for !c.eof() && (c.peek() == ' ' || c.peek() == '\t') {
		c.advance()
	}
	if c.eof() || (c.peek() != '"' && c.peek() != '\'') {
		return nil, mkerrors.Lex(start, "#include must be followed by a quoted path")
	}
	pathTok, diag := lx.scanQuotedString(c, c.loc())
	if diag != nil {
		return nil, diag
	}

	used := map[string]bool{}
	resolvedRaw, err := env.DoSubstitution(pathTok.Text, used)
	if err != nil {
		return nil, mkerrors.Lex(start, "%s", err.Error())
	}

	var usedList []string
	for v := range used {
		usedList = append(usedList, v)
	}

	tok := &Token{Kind: Directive, Text: resolvedRaw, Loc: start, SubstitutedVars: usedList}
	if err := lx.pushInclude(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// pushInclude resolves an #include path relative to the including
// file's directory, then LEGATO_ROOT, and pushes a new context (spec.md
// §4.2 "Processing directives").
func (lx *Lexer) pushInclude(tok *Token) *mkerrors.Diagnostic {
	includerDir := dirOf(lx.current().fragment.Path)
	candidates := []string{joinPath(includerDir, tok.Text)}
	if root := env.Get("LEGATO_ROOT"); root != "" {
		candidates = append(candidates, joinPath(root, tok.Text))
	}

	var data []byte
	var resolvedPath string
	var readErr error
	for _, cand := range candidates {
		b, err := os.ReadFile(cand)
		if err == nil {
			data = b
			resolvedPath = cand
			break
		}
		readErr = err
	}
	if data == nil {
		return mkerrors.Wrap(mkerrors.KindLex, tok.Loc, "#include not found: "+tok.Text, readErr)
	}

	parentFragment := lx.current().fragment
	child := newFragment(resolvedPath, parentFragment)
	parentFragment.Includes[tok] = child
	lx.stack = append(lx.stack, &context{fragment: child, src: data, line: 1, col: 1})
	return nil
}

func dirOf(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "."
	}
	return path[:idx]
}

func joinPath(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return strings.TrimRight(dir, "/") + "/" + name
}

// NextToken advances past whitespace, comments, and directives and
// returns the next semantically meaningful token, popping exhausted
// #include contexts as needed. It returns a Token of kind EndOfFile
// exactly once the outermost fragment is exhausted, and keeps returning
// that token on subsequent calls.
func (lx *Lexer) NextToken() (*Token, *mkerrors.Diagnostic) {
	for {
		if lx.eofTok != nil {
			return lx.eofTok, nil
		}
		c := lx.current()
		if c == nil {
			lx.eofTok = &Token{Kind: EndOfFile}
			return lx.eofTok, nil
		}
		if c.eof() {
			if len(lx.stack) == 1 {
				lx.eofTok = &Token{Kind: EndOfFile, Loc: c.loc()}
				lx.root.append(lx.eofTok)
				return lx.eofTok, nil
			}
			lx.stack = lx.stack[:len(lx.stack)-1]
			continue
		}

		startByte := c.pos
		tok, diag := lx.rawNext()
		if diag != nil {
			return nil, diag
		}
		if tok == nil {
			continue
		}
		tok.StartByte = startByte
		tok.EndByte = c.pos
		switch tok.Kind {
		case Whitespace, Comment, Directive:
			continue
		}
		tok.Fragment = lx.current().fragment
		lx.current().fragment.append(tok)
		return tok, nil
	}
}
