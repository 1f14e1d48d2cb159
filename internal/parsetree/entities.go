package parsetree

// The remaining node kinds correspond one-to-one with the Content_t
// variants listed in spec.md §3.1: App, Executable, Binding, Command,
// RequiredApi, ProvidedApi, RequiredFile, RequiredDir, RequiredDevice,
// RequiredConfigTree, RunProcess, EnvVar, ModuleParam, Asset,
// AssetSetting, AssetVariable, AssetCommand, ExternApiInterface, Pool.

// App is one "apps:" entry in an .sdef: a path to an .adef, optionally
// followed by a curly-braced override list reusing the .adef section
// grammar (spec.md §4.3 ".sdef apps:").
type App struct {
	Base
	Path      string
	Overrides AppOverrides
}

// Executable is one "executables:" entry in an .adef: a name bound to an
// ordered list of component directories.
type Executable struct {
	Base
	Name           string
	ComponentPaths []string
}

// BindingShape distinguishes the three grammatical shapes spec.md §4.3
// allows a "bindings:" entry to take.
type BindingShape int

const (
	BindingNormal BindingShape = iota
	BindingWildcard
	BindingInternal
)

// Binding is one "bindings:" entry.
type Binding struct {
	Base
	Shape BindingShape

	ClientExe       string // empty for BindingWildcard
	ClientComponent string
	ClientInterface string

	// For BindingInternal, ServerIsUser is always false and
	// ServerExe/ServerComponent name the internal exe.component pair.
	// For BindingNormal/BindingWildcard, ServerIsUser distinguishes an
	// app agent from a "<user>" agent.
	ServerIsUser    bool
	ServerExe       string
	ServerComponent string
	ServerAgent     string // app name or user name
	ServerInterface string
}

// Command is a "commands:" entry.
type Command struct {
	Base
	Name    string
	ExeName string
	ExeArgs []string
}

// RequiredApi is a "requires: api:" entry in a .cdef.
type RequiredApi struct {
	Base
	Alias       string
	Path        string
	ManualStart bool
	TypesOnly   bool
	Optional    bool
}

// ProvidedApi is a "provides: api:" entry in a .cdef.
type ProvidedApi struct {
	Base
	Alias       string
	Path        string
	ManualStart bool
	Async       bool
}

// RequiredFile / RequiredDir / RequiredDevice are "requires:"/"bundles:"
// filesystem-object entries ("srcPath destPath" pairs).
type RequiredFile struct {
	Base
	SrcPath, DestPath string
}

type RequiredDir struct {
	Base
	SrcPath, DestPath string
}

type RequiredDevice struct {
	Base
	SrcPath, DestPath string
	Permissions       string
}

// RequiredConfigTree is a "configTrees:" entry; TreeName "." denotes the
// app's own tree (spec.md Invariant 7).
type RequiredConfigTree struct {
	Base
	TreeName string
	Writable bool
}

// RunProcess is one "processes: run:" entry.
type RunProcess struct {
	Base
	Name    string
	ExeName string
	Args    []string
}

// EnvVar is one "envVars:" entry.
type EnvVar struct {
	Base
	Name, Value string
}

// ProcessEnvSection is one whole "processes:" block of an .adef. An app
// may carry several; each owns its run list, env-var map, fault action,
// priority, resource ceilings, and watchdog settings (spec.md §3.2
// ProcessEnv).
type ProcessEnvSection struct {
	Base
	Run     []RunProcess
	EnvVars []EnvVar

	FaultAction          string
	StartPriority        string
	MaxCoreDumpFileBytes *int
	MaxFileBytes         *int
	MaxFileDescs         *int
	WatchdogAction       string
	WatchdogTimeoutMs    *int
}

// AppOverrides is the overrideable .adef subset an .sdef "apps:" entry
// may follow its path with (spec.md §4.3 ".sdef apps:"). Nil pointers
// and empty strings mean "not overridden".
type AppOverrides struct {
	Sandboxed            *bool
	StartManual          *bool
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

// ModuleParam is one "params:" entry in an .mdef.
type ModuleParam struct {
	Base
	Name, Value string
}

// AssetVariable's Type/Default pairing mirrors spec.md §4.3's
// type-keyword/default-value-token-kind contract.
type AssetVariable struct {
	Base
	Name    string
	Type    string // "bool" | "int" | "float" | "string"
	Default string
}

type AssetSetting struct {
	Base
	Name, Value string
}

type AssetCommand struct {
	Base
	Name string
}

// Asset is one "assets:" entry.
type Asset struct {
	Base
	Name      string
	Settings  []AssetSetting
	Variables []AssetVariable
	Commands  []AssetCommand
}

// ExternApiInterface is one "extern:" entry.
type ExternApiInterface struct {
	Base
	IsServer     bool
	Exe          string
	Component    string
	Alias        string
	ExternalName string // "" means keep the internal alias
}

// Pool is a "pools:" entry sizing a message pool for an api.
type Pool struct {
	Base
	ApiAlias string
	Size     int
}
