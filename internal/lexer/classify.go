package lexer

import (
	"regexp"
	"strings"
)

var (
	reBoolean       = regexp.MustCompile(`^(true|false)$`)
	reMD5           = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
	reFloat         = regexp.MustCompile(`^[+-]?[0-9]+\.[0-9]+$`)
	reSignedInteger = regexp.MustCompile(`^[+-][0-9]+$`)
	reInteger       = regexp.MustCompile(`^[0-9]+$`)
	reDottedName    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)+$`)
	reName          = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reIPCAgent      = regexp.MustCompile(`^(<[A-Za-z_][A-Za-z0-9_]*>|[A-Za-z_][A-Za-z0-9_]*)$`)
	reGroupName     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
	reFileName      = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// classifyWord assigns the scanner's default, broadest-applicable kind
// to a raw word token. Pull/IsMatch narrow (or reject) this against the
// kind the caller actually expects, per spec.md §4.2.
func classifyWord(text string) Kind {
	switch {
	case reBoolean.MatchString(text):
		return Boolean
	case reMD5.MatchString(text):
		return MD5Hash
	case reFloat.MatchString(text):
		return Float
	case reSignedInteger.MatchString(text):
		return SignedInteger
	case reInteger.MatchString(text):
		return Integer
	case reDottedName.MatchString(text):
		return DottedName
	case reName.MatchString(text):
		return Name
	case strings.HasPrefix(text, "<") && strings.HasSuffix(text, ">"):
		return IPCAgent
	case reFileName.MatchString(text):
		return FileName
	default:
		return FilePath
	}
}

// acceptsAs reports whether a token scanned with kind `got` may stand in
// for a Pull request of kind `want`, given want's character-class
// grammar is a superset (or exact match) of what got represents.
func acceptsAs(want, got Kind, text string) bool {
	if want == got {
		return true
	}
	switch want {
	case FilePath:
		// FILE_PATH is the broadest grammar: any word-shaped token
		// qualifies, including ones the scanner classified more
		// narrowly (NAME, DOTTED_NAME, FILE_NAME, numbers).
		switch got {
		case Name, DottedName, FileName, Integer, SignedInteger, Float, MD5Hash, IPCAgent, Boolean:
			return true
		}
	case FileName:
		switch got {
		case Name, DottedName:
			return true
		}
	case Name:
		// A token the scanner classified as DottedName/FileName with a
		// single segment is really a NAME; ConvertToName performs the
		// explicit retag, Pull(NAME) does not implicitly widen.
		return false
	case DottedName:
		if got == Name {
			return true
		}
	case SignedInteger:
		// An unsigned spelling satisfies a signed-integer request; the
		// scanner only tags SIGNED_INTEGER when a +/- prefix is present.
		return got == Integer
	case Float:
		return got == Integer || got == SignedInteger
	case GroupName:
		return got == Name && reGroupName.MatchString(text)
	case IPCAgent:
		return (got == Name || got == DottedName) && reIPCAgent.MatchString(text)
	case Arg:
		// ARG accepts essentially anything non-whitespace the scanner
		// produced, since argv entries have no further grammar.
		switch got {
		case Name, DottedName, FileName, FilePath, Integer, SignedInteger, Float, Boolean, MD5Hash, IPCAgent, String:
			return true
		}
	}
	return false
}
