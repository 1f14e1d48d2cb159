// Package model holds the conceptual model the modeller builds by
// cross-linking one or more parse trees: components, executables, apps,
// bindings resolved to concrete endpoints, and the system as a whole
// (spec.md §3.2). Unlike internal/parsetree, which mirrors source
// syntax, these types carry resolved references (pointers, not names)
// so generators never re-resolve a name during code generation.
package model

import (
	"strings"

	mkerrors "github.com/legato-af/mktools/internal/errors"
)

// ApiFile is one .api file, interned so every ApiRef to the same path
// shares a single instance (spec.md Invariant 3: "api files are
// singletons keyed by canonical path").
type ApiFile struct {
	Path     string
	UseTypes []*ApiFile

	// CodeGenDir is the per-API directory generated sources land in,
	// derived from the md5 of the canonical path so two APIs with the
	// same base name never collide (spec.md §3.2 ApiFile "code-gen
	// directory derived from md5(path)").
	CodeGenDir string
}

// ApiInterfaceInstance is one required-or-provided interface attached to
// a component instance: the (alias, ApiFile, options) triple after
// resolution.
type ApiInterfaceInstance struct {
	Alias string

	// Name is the fully-qualified "exe.component.alias" placement name,
	// set when the owning component is instantiated into an executable
	// (spec.md Invariant 4); empty while the interface is still only a
	// per-Component template.
	Name string

	Api         *ApiFile
	IsProvided  bool
	ManualStart bool
	Async       bool
	TypesOnly   bool
	Optional    bool
	Loc         mkerrors.Location

	// Bound is set once the modeller resolves this interface's binding;
	// nil means unbound (a fatal condition for required interfaces that
	// survive to the final unbound-interface audit, spec.md §4.4).
	Bound *ApiInterfaceInstance

	// Owner links back to the component instance this interface belongs
	// to, needed when externalising or auto-binding framework APIs.
	Owner *ComponentInstance
}

// Component is one .cdef, shared by every ComponentInstance that
// references it (spec.md Invariant 4: components are not duplicated per
// executable).
type Component struct {
	Name          string
	Dir           string
	Sources       []string
	CFlags        []string
	CxxFlags      []string
	LdFlags       []string
	SubComponents []*Component
	RequiredApis  []*ApiInterfaceInstance
	ProvidedApis  []*ApiInterfaceInstance
	RequiredFiles []RequiredFileSystemItem
	RequiredDirs  []RequiredFileSystemItem
	BundledFiles  []RequiredFileSystemItem
	BundledDirs   []RequiredFileSystemItem
	Assets        []Asset
}

// RequiredFileSystemItem is a resolved file/dir/device requirement or
// bundle, app-relative destination already computed.
type RequiredFileSystemItem struct {
	SrcPath, DestPath string
	Permissions       string
	IsDevice          bool
}

// HasCOrCppCode reports whether any of c.Sources has a C/C++ extension
// (spec.md §4.3 "extensions .c, .cpp, .cc, .cxx, .java, .py classify the
// source kind").
func (c *Component) HasCOrCppCode() bool {
	for _, s := range c.Sources {
		switch sourceExt(s) {
		case ".c", ".cpp", ".cc", ".cxx":
			return true
		}
	}
	return false
}

// HasJavaCode reports whether any of c.Sources is a .java file.
func (c *Component) HasJavaCode() bool {
	for _, s := range c.Sources {
		if sourceExt(s) == ".java" {
			return true
		}
	}
	return false
}

// HasPythonCode reports whether any of c.Sources is a .py file.
func (c *Component) HasPythonCode() bool {
	for _, s := range c.Sources {
		if sourceExt(s) == ".py" {
			return true
		}
	}
	return false
}

func sourceExt(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i:])
}

// Asset is the resolved form of an AirVantage data-point asset.
type Asset struct {
	Name      string
	Settings  map[string]string
	Variables []AssetVariable
	Commands  []string
}

type AssetVariable struct {
	Name, Type, Default string
}

// ComponentInstance is one occurrence of a Component inside one
// Executable, holding the per-instance interface bindings (spec.md §3.2:
// "the same component used in two executables gets two instances, one
// per exe, since bindings are per-instance").
type ComponentInstance struct {
	Component      *Component
	Exe            *Exe
	RequiredIfaces []*ApiInterfaceInstance
	ProvidedIfaces []*ApiInterfaceInstance

	// InitOrder is this instance's position in the topologically sorted
	// COMPONENT_INIT call order within its executable (spec.md Invariant
	// 5: sub-components initialise before the components that require
	// them).
	InitOrder int
}

// Exe is one "executables:" entry in an app, fully resolved to an
// ordered list of component instances.
type Exe struct {
	Name       string
	App        *App
	Components []*ComponentInstance

	// Language flags, computed once every component instance is known
	// (spec.md §3.2 Exe essentials "flags hasCOrCppCode, hasJavaCode,
	// hasPythonCode"); an Exe may mix languages across components, each
	// generated by its own backend (§4.5 "Java / Python variants").
	HasCOrCppCode bool
	HasJavaCode   bool
	HasPythonCode bool
}

// ComputeSourceLanguages sets e's language flags from the union of its
// component instances' source kinds. Must run after e.Components is in
// its final, ordered form.
func (e *Exe) ComputeSourceLanguages() {
	for _, ci := range e.Components {
		if ci.Component.HasCOrCppCode() {
			e.HasCOrCppCode = true
		}
		if ci.Component.HasJavaCode() {
			e.HasJavaCode = true
		}
		if ci.Component.HasPythonCode() {
			e.HasPythonCode = true
		}
	}
}

// EnvVar is a resolved "envVars:" entry.
type EnvVar struct {
	Name, Value string
}

// Process is one resolved "processes: run:" entry.
type Process struct {
	Name string
	Exe  *Exe
	Args []string
}

// LimitMaxProcessNameLen caps a Process name's byte length; a name at
// exactly this length is accepted, one byte more is rejected.
const LimitMaxProcessNameLen = 47

// ProcessEnv is one resolved "processes:" block: its run list, env-var
// map, fault action, priorities, resource ceilings, and watchdog
// settings (spec.md §3.2). An app owns zero or more of these.
type ProcessEnv struct {
	Processes []*Process
	EnvVars   []EnvVar

	FaultAction          string
	StartPriority        string
	MaxPriority          string
	MaxCoreDumpFileBytes int
	MaxFileBytes         int
	MaxFileDescs         int
	WatchdogAction       string
	WatchdogTimeoutMs    int
}

// EnvVarIsSet reports whether pe's env-var map already carries name.
func (pe *ProcessEnv) EnvVarIsSet(name string) bool {
	for _, e := range pe.EnvVars {
		if e.Name == name {
			return true
		}
	}
	return false
}

// BindingEndpoint names one side of a resolved binding: either an
// internal exe.component.interface triple, or an external app/user
// agent plus the interface alias it exposes.
type BindingEndpoint struct {
	IsExternal bool
	Exe        *Exe
	Component  *Component
	Iface      *ApiInterfaceInstance

	ExternalAgentIsUser bool
	ExternalAgentName   string
	ExternalAlias       string
}

// Binding is a fully resolved client->server interface binding.
type Binding struct {
	Client BindingEndpoint
	Server BindingEndpoint
	Loc    mkerrors.Location
}

// App is one .adef, fully resolved.
type App struct {
	Name          string
	Dir           string
	Version         string
	Exes            []*Exe
	ProcEnvs        []*ProcessEnv
	Bindings        []*Binding
	Groups          []string
	ConfigTrees     []RequiredConfigTree
	RequiredFiles   []RequiredFileSystemItem
	RequiredDirs    []RequiredFileSystemItem
	RequiredDevices []RequiredFileSystemItem
	BundledFiles    []RequiredFileSystemItem
	BundledDirs     []RequiredFileSystemItem
	Pools           []Pool
	Externs         []ExternInterface

	// Limits from spec.md §4.4's limit-conflict audit (Invariant 9) and
	// §3.2's App essentials; zero/empty means "framework default".
	IsSandboxed          bool
	StartManual          bool
	MaxMemoryBytes       int
	MaxFileDescs         int
	MaxFileSystemBytes   int
	MaxCoreDumpFileBytes int
	MaxLockedMemoryBytes int
	StartPriority        string
	MaxPriority          string
	WatchdogAction       string
	WatchdogTimeoutMs    int
}

// Default limit values applied when an .adef leaves the corresponding
// section unset (spec.md §8 scenario 1 "minimal app").
const (
	DefaultMaxMemoryBytes = 40960000
	DefaultMaxFileDescs   = 256
)

type RequiredConfigTree struct {
	Tree     *App // nil means the app's own tree ("." in the source)
	Writable bool
}

type Pool struct {
	Iface *ApiInterfaceInstance
	Size  int
}

// ExternInterface is a resolved "extern:" entry: one app-level interface
// that is exposed (or externally named) for binding by an .sdef.
type ExternInterface struct {
	ExternalName string
	Iface        *ApiInterfaceInstance
	Loc          mkerrors.Location
}

// User is a non-app binding agent ("<user>" in the bindings grammar),
// created on demand during binding resolution. Bindings is keyed by the
// client interface name each outgoing binding serves.
type User struct {
	Name     string
	Bindings map[string]*Binding
}

// Module is one .mdef, fully resolved.
type Module struct {
	Name     string
	Dir      string
	PreBuilt []string
	Sources  []string
	CFlags   []string
	LdFlags  []string
	KoFlags  []string
	Params   map[string]string
}

// Command is one .sdef "commands:" entry, resolved to its target exe.
type Command struct {
	Name string
	Exe  *Exe
	Args []string
}

// System is the top-level conceptual model produced by the modeller for
// one .sdef. For mkapp/mkexe/mkcomp the System is unnamed and its Apps
// list stays empty; only its interning maps (and Users) are used.
type System struct {
	Name     string
	Apps     []*App
	Users    []*User
	Commands []*Command
	Modules  []*Module

	// Interned maps keep every distinct entity built exactly once
	// (spec.md Invariant 3/4).
	ApiFiles   map[string]*ApiFile
	Components map[string]*Component
}

func NewSystem(name string) *System {
	return &System{
		Name:       name,
		ApiFiles:   make(map[string]*ApiFile),
		Components: make(map[string]*Component),
	}
}

// FindOrAddUser returns the User record for name, creating it on first
// reference (spec.md §3.2 User "created on demand during binding
// resolution"). Names arrive in the "<user>" spelling from the bindings
// grammar; the angle brackets are stripped.
func (s *System) FindOrAddUser(name string) *User {
	name = strings.TrimSuffix(strings.TrimPrefix(name, "<"), ">")
	for _, u := range s.Users {
		if u.Name == name {
			return u
		}
	}
	u := &User{Name: name, Bindings: make(map[string]*Binding)}
	s.Users = append(s.Users, u)
	return u
}

// AllProcesses flattens every ProcessEnv's run list, preserving
// definition order.
func (a *App) AllProcesses() []*Process {
	var out []*Process
	for _, pe := range a.ProcEnvs {
		out = append(out, pe.Processes...)
	}
	return out
}
