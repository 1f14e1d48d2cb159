package parsetree

import (
	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/lexer"
)

// File is the root of one parsed definition file: an ordered list of
// top-level sections in file order (spec.md §5 "Parse trees preserve
// section order").
type File struct {
	Path     string
	Fragment *lexer.Fragment
	Sections []Node

	// Warnings collects non-fatal diagnostics (deprecations) raised
	// while parsing; the modeller folds them into its Bag so they reach
	// stderr without aborting the parse.
	Warnings []*mkerrors.Diagnostic
}

// CdefFile is the typed view of a parsed .cdef.
type CdefFile struct {
	File
	Sources         []*lexer.Token // classified by extension by the caller
	RequiredApis    []RequiredApi
	ProvidedApis    []ProvidedApi
	RequiredFiles   []RequiredFile
	RequiredDirs    []RequiredDir
	RequiredDevices []RequiredDevice
	BundledFiles    []RequiredFile
	BundledDirs     []RequiredDir
	CFlags          []string
	CxxFlags        []string
	LdFlags         []string
	SubComponents   []string // "requires: component:" entries
	Assets          []Asset
}

// AdefFile is the typed view of a parsed .adef.
type AdefFile struct {
	File
	Executables   []Executable
	Bindings      []Binding
	ProcEnvs      []ProcessEnvSection
	Groups        []string
	ConfigTrees   []RequiredConfigTree
	Externs       []ExternApiInterface
	RequiredFiles   []RequiredFile
	RequiredDirs    []RequiredDir
	RequiredDevices []RequiredDevice
	BundledFiles  []RequiredFile
	BundledDirs   []RequiredDir
	Pools         []Pool
	Version       string

	// Sandboxed, StartManual, MaxMemoryBytes, MaxFileDescs,
	// MaxFileSystemBytes, MaxCoreDumpFileBytes, MaxLockedMemoryBytes,
	// StartPriority, and MaxPriority mirror spec.md §3.2's App limit
	// fields (invariant 9's coherence checks apply to these); a nil
	// pointer means the section was absent and the modeller applies the
	// framework default.
	Sandboxed            *bool
	StartManual          bool
	MaxMemoryBytes       *int
	MaxFileDescs         *int
	MaxFileSystemBytes   *int
	MaxCoreDumpFileBytes *int
	MaxLockedMemoryBytes *int
	StartPriority        string
	MaxPriority          string
	WatchdogAction       string
	WatchdogTimeoutMs    *int
}

// SdefFile is the typed view of a parsed .sdef.
type SdefFile struct {
	File
	Version  string
	Apps     []App
	Bindings []Binding
	Commands []Command
	Modules  []string
}

// MdefFile is the typed view of a parsed .mdef.
type MdefFile struct {
	File
	PreBuilt []*lexer.Token
	Sources  []*lexer.Token
	CFlags   []string
	LdFlags  []string
	KoFlags  []string
	Params   []ModuleParam
}

// ApiFileHeader is the header-only parse of a .api file: just enough to
// drive code-gen directory naming and USETYPES closure resolution
// (spec.md glossary "API file").
type ApiFileHeader struct {
	Path     string
	UseTypes []string
}
