package lexer

import mkerrors "github.com/legato-af/mktools/internal/errors"

// Kind enumerates the closed set of token kinds from spec.md §3.1.
type Kind int

const (
	EndOfFile Kind = iota
	OpenCurly
	CloseCurly
	OpenParen
	CloseParen
	Colon
	Equals
	Dot
	Star
	Arrow
	Whitespace
	Comment
	FilePermissions
	ServerIPCOption
	ClientIPCOption
	Arg
	FilePath
	FileName
	Name
	DottedName
	GroupName
	IPCAgent
	Integer
	SignedInteger
	Boolean
	Float
	String
	MD5Hash
	Directive
)

var kindNames = map[Kind]string{
	EndOfFile:       "END_OF_FILE",
	OpenCurly:       "OPEN_CURLY",
	CloseCurly:      "CLOSE_CURLY",
	OpenParen:       "OPEN_PAREN",
	CloseParen:      "CLOSE_PAREN",
	Colon:           "COLON",
	Equals:          "EQUALS",
	Dot:             "DOT",
	Star:            "STAR",
	Arrow:           "ARROW",
	Whitespace:      "WHITESPACE",
	Comment:         "COMMENT",
	FilePermissions: "FILE_PERMISSIONS",
	ServerIPCOption: "SERVER_IPC_OPTION",
	ClientIPCOption: "CLIENT_IPC_OPTION",
	Arg:             "ARG",
	FilePath:        "FILE_PATH",
	FileName:        "FILE_NAME",
	Name:            "NAME",
	DottedName:      "DOTTED_NAME",
	GroupName:       "GROUP_NAME",
	IPCAgent:        "IPC_AGENT",
	Integer:         "INTEGER",
	SignedInteger:   "SIGNED_INTEGER",
	Boolean:         "BOOLEAN",
	Float:           "FLOAT",
	String:          "STRING",
	MD5Hash:         "MD5_HASH",
	Directive:       "DIRECTIVE",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Token is a single lexical unit. Tokens form a doubly-linked list within
// the file fragment that produced them (spec.md §3.1 Invariant): every
// non-discarded token belongs to exactly one fragment and is reachable by
// following Next from that fragment's FirstToken.
type Token struct {
	Kind Kind
	Text string
	Loc  mkerrors.Location

	// StartByte and EndByte are this token's [start,end) byte offsets
	// within its Fragment's source bytes, the contract the edit
	// subsystem's byte-accurate rewrites are built on (spec.md §4.5
	// "retain token byte offsets during lexing").
	StartByte int
	EndByte   int

	Prev *Token
	Next *Token

	Fragment *Fragment

	// SubstitutedVars records the environment variables expanded while
	// resolving this token, populated only for #include path tokens
	// (spec.md §4.2).
	SubstitutedVars []string
}

// ThrowException builds a diagnostic whose location is this token's
// provenance, the mechanism every parse error in spec.md §4.3 uses in
// place of a language exception.
func (t *Token) ThrowException(format string, args ...any) *mkerrors.Diagnostic {
	return mkerrors.Parse(t.Loc, format, args...)
}
