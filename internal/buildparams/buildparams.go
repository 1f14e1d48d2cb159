// Package buildparams holds the per-invocation configuration every mk*
// front-end assembles from its CLI flags before invoking the pipeline
// (spec.md §6 "CLI surface"), and the small persisted sidecar that lets a
// rebuild detect whether the interface/source search path changed since
// the last run. This plays the role the teacher's internal/config plays
// for lci's project settings, but the source of truth here is CLI flags,
// not an on-disk project file — the .sdef/.adef trees are the project
// configuration.
package buildparams

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/legato-af/mktools/internal/env"
	mkerrors "github.com/legato-af/mktools/internal/errors"
)

// Params is the resolved set of options common to every mk* front-end.
type Params struct {
	Target        string   // -t
	WorkDir       string   // -w
	SourceDirs    []string // -s, repeatable
	InterfaceDirs []string // -i, repeatable
	Verbose       bool     // -v
}

// SidecarName is the filename buildparams persists under WorkDir,
// distinct from the incremental-build environment snapshot named in
// spec.md §6 ("mktool_environment").
const SidecarName = ".mktools.toml"

// sidecar is the on-disk shape of Params' persisted subset.
type sidecar struct {
	Target        string   `toml:"target"`
	SourceDirs    []string `toml:"source_dirs"`
	InterfaceDirs []string `toml:"interface_dirs"`
}

// Validate checks the minimal set of required flags every front-end
// shares (spec.md §6): a target and a working directory.
func (p *Params) Validate() *mkerrors.Diagnostic {
	if p.Target == "" {
		return mkerrors.New(mkerrors.KindIO, mkerrors.Location{}, "-t <target> is required")
	}
	if p.WorkDir == "" {
		return mkerrors.New(mkerrors.KindIO, mkerrors.Location{}, "-w <workdir> is required")
	}
	return nil
}

// AllSearchDirs returns the interface- and source-search directories in
// the deterministic first-match-wins order env.FindFile/FindDir expect:
// the -i dirs in the order given, then the -s dirs in the order given.
// LEGATO_ROOT is not added here.
func (p *Params) AllSearchDirs() []string {
	dirs := append([]string{}, p.InterfaceDirs...)
	dirs = append(dirs, p.SourceDirs...)
	return dirs
}

// IsCrossBuild reports whether the target is a device target rather
// than the build host; cross builds change config-tree generation
// (spec.md §4.5 "For cross-builds it auto-injects a binding of the
// log-client interface to root").
func (p *Params) IsCrossBuild() bool {
	return p.Target != "" && p.Target != "localhost"
}

// sidecarPath is the path to this run's .mktools.toml under WorkDir.
func (p *Params) sidecarPath() string {
	return filepath.Join(p.WorkDir, SidecarName)
}

// Persist writes the resolved target and search-directory lists to the
// working directory's sidecar. MatchesPersisted compares a later run
// against it; the mk* front-ends write the sidecar but do not call
// MatchesPersisted.
func (p *Params) Persist() error {
	if err := os.MkdirAll(p.WorkDir, 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(sidecar{Target: p.Target, SourceDirs: p.SourceDirs, InterfaceDirs: p.InterfaceDirs})
	if err != nil {
		return err
	}
	return os.WriteFile(p.sidecarPath(), data, 0o644)
}

// MatchesPersisted reports whether this run's target and search-directory
// lists are identical to the previous run's sidecar. A missing sidecar
// (first build) is treated as "does not match".
func (p *Params) MatchesPersisted() (bool, error) {
	data, err := os.ReadFile(p.sidecarPath())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	var prev sidecar
	if err := toml.Unmarshal(data, &prev); err != nil {
		return false, err
	}
	if prev.Target != p.Target {
		return false, nil
	}
	return stringsEqual(prev.SourceDirs, p.SourceDirs) && stringsEqual(prev.InterfaceDirs, p.InterfaceDirs), nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// PrepareEnvironment applies SetTargetSpecific (spec.md §4.1) using this
// run's target, the step every front-end performs before lexing its first
// definition file.
func (p *Params) PrepareEnvironment() error {
	return env.SetTargetSpecific(p.Target)
}
