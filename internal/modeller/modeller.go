// Package modeller lowers parse trees into the cross-linked conceptual
// model (spec.md §3.2, §4.4): it interns components and API files,
// builds per-executable component-instance graphs in COMPONENT_INIT
// order, resolves every binding to a concrete client/server endpoint
// pair, and applies the framework's automatic bindings and interface
// externalisation rules. Like the rest of the pipeline it runs single
// threaded and reports every problem through a shared errors.Bag rather
// than aborting on the first one, so a single `mksys build` run surfaces
// as many diagnostics as it safely can (spec.md §7 "diagnostics
// accumulate; only fatal ones abort").
package modeller

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"

	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/model"
	"github.com/legato-af/mktools/internal/parser"
	"github.com/legato-af/mktools/internal/parsetree"
)

// Modeller holds the interning tables and search path used while
// lowering one build's worth of definition files.
type Modeller struct {
	Bag        mkerrors.Bag
	searchDirs []string
	sys        *model.System

	// contentHashes cross-checks that a canonical path reached through
	// two different relative routes (e.g. two "requires: component:"
	// entries resolving to the same directory) still has the bytes it
	// had the first time it was interned (SPEC_FULL.md §4.4x).
	contentHashes map[string]uint64
}

func New(systemName string, searchDirs []string) *Modeller {
	return &Modeller{sys: model.NewSystem(systemName), searchDirs: searchDirs, contentHashes: map[string]uint64{}}
}

// checkContentHash hashes the file at path with xxhash and compares it
// against the hash recorded the first time canon was interned, raising
// a model error if they diverge. A file that can't be read yet is left
// to the caller's own parse step to report as an IO diagnostic.
func (m *Modeller) checkContentHash(canon, path string) *mkerrors.Diagnostic {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	hash := xxhash.Sum64(data)
	if prev, ok := m.contentHashes[canon]; ok {
		if prev != hash {
			return mkerrors.Model(mkerrors.Location{File: path}, "re-included file changed on disk mid-run: %s", path)
		}
		return nil
	}
	m.contentHashes[canon] = hash
	return nil
}

func (m *Modeller) System() *model.System { return m.sys }

// frameworkAutoBindAgents lists the framework services every app gets an
// automatic client binding to when it requires their API and leaves the
// interface unbound (spec.md §4.4 "automatic bindings").
var frameworkAutoBindAgents = map[string]string{
	"le_cfg.api":  "<root>",
	"le_wdog.api": "<root>",
}

// internApiFile loads (or returns the cached) ApiFile for path,
// recursively resolving its USETYPES closure.
func (m *Modeller) internApiFile(path string) (*model.ApiFile, *mkerrors.Diagnostic) {
	canon, err := filepath.Abs(path)
	if err != nil {
		canon = path
	}
	if diag := m.checkContentHash(canon, path); diag != nil {
		return nil, diag
	}
	if existing, ok := m.sys.ApiFiles[canon]; ok {
		return existing, nil
	}
	api := &model.ApiFile{Path: canon, CodeGenDir: fmt.Sprintf("%x", md5.Sum([]byte(canon)))}
	m.sys.ApiFiles[canon] = api // register before recursing to tolerate cycles

	hdr, diag := parser.ParseApiHeader(path)
	if diag != nil {
		return nil, diag
	}
	for _, dep := range hdr.UseTypes {
		resolved := filepath.Join(filepath.Dir(path), dep)
		depApi, diag := m.internApiFile(resolved)
		if diag != nil {
			return nil, diag
		}
		api.UseTypes = append(api.UseTypes, depApi)
	}
	return api, nil
}

// LoadComponent interns and returns the Component rooted at dir,
// recursively loading sub-components named under "requires: component:"
// (spec.md Invariant 4: one Component per canonical directory).
func (m *Modeller) LoadComponent(dir string) (*model.Component, *mkerrors.Diagnostic) {
	canon, err := filepath.Abs(dir)
	if err != nil {
		canon = dir
	}
	cdefPath := filepath.Join(dir, "Component.cdef")
	if diag := m.checkContentHash(canon, cdefPath); diag != nil {
		return nil, diag
	}
	if existing, ok := m.sys.Components[canon]; ok {
		return existing, nil
	}

	cdef, diag := parser.ParseCdef(cdefPath, m.searchDirs)
	if diag != nil {
		return nil, diag
	}

	comp := &model.Component{Name: filepath.Base(dir), Dir: canon}
	m.sys.Components[canon] = comp // register before recursing

	for _, tok := range cdef.Sources {
		comp.Sources = append(comp.Sources, tok.Text)
	}
	comp.CFlags = cdef.CFlags
	comp.CxxFlags = cdef.CxxFlags
	comp.LdFlags = cdef.LdFlags

	for _, sub := range cdef.SubComponents {
		subDir := filepath.Join(dir, sub)
		subComp, diag := m.LoadComponent(subDir)
		if diag != nil {
			return nil, diag
		}
		comp.SubComponents = append(comp.SubComponents, subComp)
	}

	for _, req := range cdef.RequiredApis {
		api, diag := m.internApiFile(filepath.Join(dir, req.Path))
		if diag != nil {
			return nil, diag
		}
		alias := req.Alias
		if alias == "" {
			alias = apiAliasFromPath(req.Path)
		}
		comp.RequiredApis = append(comp.RequiredApis, &model.ApiInterfaceInstance{
			Alias: alias, Api: api, ManualStart: req.ManualStart,
			TypesOnly: req.TypesOnly, Optional: req.Optional, Loc: req.First.Loc,
		})
	}
	for _, prov := range cdef.ProvidedApis {
		api, diag := m.internApiFile(filepath.Join(dir, prov.Path))
		if diag != nil {
			return nil, diag
		}
		alias := prov.Alias
		if alias == "" {
			alias = apiAliasFromPath(prov.Path)
		}
		comp.ProvidedApis = append(comp.ProvidedApis, &model.ApiInterfaceInstance{
			Alias: alias, Api: api, IsProvided: true, ManualStart: prov.ManualStart,
			Async: prov.Async, Loc: prov.First.Loc,
		})
	}

	for _, f := range cdef.RequiredFiles {
		comp.RequiredFiles = append(comp.RequiredFiles, model.RequiredFileSystemItem{SrcPath: f.SrcPath, DestPath: f.DestPath})
	}
	for _, d := range cdef.RequiredDirs {
		comp.RequiredDirs = append(comp.RequiredDirs, model.RequiredFileSystemItem{SrcPath: d.SrcPath, DestPath: d.DestPath})
	}
	for _, f := range cdef.BundledFiles {
		comp.BundledFiles = append(comp.BundledFiles, model.RequiredFileSystemItem{SrcPath: f.SrcPath, DestPath: f.DestPath})
	}
	for _, d := range cdef.BundledDirs {
		comp.BundledDirs = append(comp.BundledDirs, model.RequiredFileSystemItem{SrcPath: d.SrcPath, DestPath: d.DestPath})
	}
	for _, a := range cdef.Assets {
		comp.Assets = append(comp.Assets, convertAsset(a))
	}

	return comp, nil
}

func convertAsset(a parsetree.Asset) model.Asset {
	out := model.Asset{Name: a.Name, Settings: make(map[string]string)}
	for _, s := range a.Settings {
		out.Settings[s.Name] = s.Value
	}
	for _, v := range a.Variables {
		out.Variables = append(out.Variables, model.AssetVariable{Name: v.Name, Type: v.Type, Default: v.Default})
	}
	for _, c := range a.Commands {
		out.Commands = append(out.Commands, c.Name)
	}
	return out
}

func apiAliasFromPath(path string) string {
	base := filepath.Base(path)
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}

// buildComponentInstance constructs a ComponentInstance for comp inside
// exe, producing one ApiInterfaceInstance copy per required/provided
// interface so bindings stay per-instance (spec.md §3.2).
func buildComponentInstance(comp *model.Component, exe *model.Exe) *model.ComponentInstance {
	ci := &model.ComponentInstance{Component: comp, Exe: exe}
	for _, r := range comp.RequiredApis {
		copy := *r
		ci.RequiredIfaces = append(ci.RequiredIfaces, &copy)
	}
	for _, p := range comp.ProvidedApis {
		copy := *p
		ci.ProvidedIfaces = append(ci.ProvidedIfaces, &copy)
	}
	for _, ri := range ci.RequiredIfaces {
		ri.Owner = ci
		ri.Name = exe.Name + "." + comp.Name + "." + ri.Alias
	}
	for _, pi := range ci.ProvidedIfaces {
		pi.Owner = ci
		pi.Name = exe.Name + "." + comp.Name + "." + pi.Alias
	}
	return ci
}

// orderBySubComponentDependency topologically sorts instances so every
// sub-component instance appears before the component instance that
// requires it (spec.md Invariant 5). Cycles are reported as model
// errors rather than silently broken, since the framework has no
// defined COMPONENT_INIT order for a cyclic "requires: component:" graph.
func orderBySubComponentDependency(instances []*model.ComponentInstance) ([]*model.ComponentInstance, *mkerrors.Diagnostic) {
	byComp := make(map[*model.Component]*model.ComponentInstance, len(instances))
	for _, ci := range instances {
		byComp[ci.Component] = ci
	}

	var out []*model.ComponentInstance
	visiting := map[*model.Component]bool{}
	visited := map[*model.Component]bool{}

	var visit func(ci *model.ComponentInstance) *mkerrors.Diagnostic
	visit = func(ci *model.ComponentInstance) *mkerrors.Diagnostic {
		if visited[ci.Component] {
			return nil
		}
		if visiting[ci.Component] {
			return mkerrors.Model(mkerrors.Location{}, "cyclic component dependency involving %q", ci.Component.Name)
		}
		visiting[ci.Component] = true
		for _, sub := range ci.Component.SubComponents {
			subCi, ok := byComp[sub]
			if !ok {
				subCi = buildComponentInstance(sub, ci.Exe)
				byComp[sub] = subCi
			}
			if diag := visit(subCi); diag != nil {
				return diag
			}
		}
		visiting[ci.Component] = false
		visited[ci.Component] = true
		ci.InitOrder = len(out)
		out = append(out, ci)
		return nil
	}

	for _, ci := range instances {
		if diag := visit(ci); diag != nil {
			return nil, diag
		}
	}
	return out, nil
}

// BuildApp lowers one parsed .adef into a model.App, resolving
// executables and their component-instance graphs but leaving bindings
// as raw parse-tree entries for the caller to resolve once every app in
// the system has been built (ResolveBindings), since a binding may
// target another app entirely.
func (m *Modeller) BuildApp(path string) (*model.App, []parsetree.Binding, *mkerrors.Diagnostic) {
	adef, diag := parser.ParseAdef(path, m.searchDirs)
	if diag != nil {
		return nil, nil, diag
	}
	for _, w := range adef.Warnings {
		m.Bag.Add(w)
	}

	dir := filepath.Dir(path)
	app := &model.App{Name: baseWithoutExt(path), Dir: dir, Version: adef.Version}

	for _, e := range adef.Executables {
		exe := &model.Exe{Name: e.Name, App: app}
		var instances []*model.ComponentInstance
		for _, compPath := range e.ComponentPaths {
			comp, diag := m.LoadComponent(filepath.Join(dir, compPath))
			if diag != nil {
				return nil, nil, diag
			}
			instances = append(instances, buildComponentInstance(comp, exe))
		}
		ordered, diag := orderBySubComponentDependency(instances)
		if diag != nil {
			return nil, nil, diag
		}
		exe.Components = ordered
		exe.ComputeSourceLanguages()
		if diag := checkExeHasSourceCode(exe); diag != nil {
			return nil, nil, diag
		}
		app.Exes = append(app.Exes, exe)
	}

	app.Groups = adef.Groups

	seenTrees := map[string]*parsetree.RequiredConfigTree{}
	for i := range adef.ConfigTrees {
		ct := &adef.ConfigTrees[i]
		if prev := seenTrees[ct.TreeName]; prev != nil {
			return nil, nil, ct.First.ThrowException("config tree %q is listed more than once", ct.TreeName)
		}
		seenTrees[ct.TreeName] = ct
		entry := model.RequiredConfigTree{Writable: ct.Writable}
		if ct.TreeName != "." {
			// A cross-app config tree reference is kept as a placeholder
			// App carrying only the tree's name; no later pass links it
			// to the named app.
			entry.Tree = &model.App{Name: ct.TreeName}
		}
		app.ConfigTrees = append(app.ConfigTrees, entry)
	}
	for _, f := range adef.RequiredFiles {
		app.RequiredFiles = append(app.RequiredFiles, model.RequiredFileSystemItem{SrcPath: f.SrcPath, DestPath: f.DestPath})
	}
	for _, d := range adef.RequiredDirs {
		app.RequiredDirs = append(app.RequiredDirs, model.RequiredFileSystemItem{SrcPath: d.SrcPath, DestPath: d.DestPath})
	}
	for _, dev := range adef.RequiredDevices {
		app.RequiredDevices = append(app.RequiredDevices, model.RequiredFileSystemItem{SrcPath: dev.SrcPath, DestPath: dev.DestPath, Permissions: dev.Permissions, IsDevice: true})
	}
	for _, f := range adef.BundledFiles {
		app.BundledFiles = append(app.BundledFiles, model.RequiredFileSystemItem{SrcPath: f.SrcPath, DestPath: f.DestPath})
	}
	for _, d := range adef.BundledDirs {
		app.BundledDirs = append(app.BundledDirs, model.RequiredFileSystemItem{SrcPath: d.SrcPath, DestPath: d.DestPath})
	}

	for _, e := range adef.Externs {
		exe := findExe(app, e.Exe)
		if exe == nil {
			return nil, nil, e.Base.First.ThrowException("extern: references unknown executable %q", e.Exe)
		}
		iface := findComponentIface(exe, e.Component, e.Alias, e.IsServer)
		if iface == nil {
			return nil, nil, e.Base.First.ThrowException("extern: references unknown interface %s.%s.%s", e.Exe, e.Component, e.Alias)
		}
		name := e.ExternalName
		if name == "" {
			name = e.Alias
		}
		for _, prev := range app.Externs {
			if prev.ExternalName == name {
				return nil, nil, e.Base.First.ThrowException("duplicate external interface name %q", name)
			}
			if prev.Iface == iface {
				return nil, nil, e.Base.First.ThrowException("interface %s is already declared extern as %q", iface.Name, prev.ExternalName)
			}
		}
		app.Externs = append(app.Externs, model.ExternInterface{ExternalName: name, Iface: iface, Loc: e.Base.First.Loc})
	}

	for _, p := range adef.Pools {
		iface := findAnyIfaceByAlias(app, p.ApiAlias)
		app.Pools = append(app.Pools, model.Pool{Iface: iface, Size: p.Size})
	}

	if diag := m.applyLimitDefaults(app, adef); diag != nil {
		return nil, nil, diag
	}

	for i := range adef.ProcEnvs {
		pe, diag := m.buildProcessEnv(app, &adef.ProcEnvs[i])
		if diag != nil {
			return nil, nil, diag
		}
		app.ProcEnvs = append(app.ProcEnvs, pe)
	}

	return app, adef.Bindings, nil
}

// buildProcessEnv lowers one "processes:" block, validating priority
// spellings and process-name lengths and clamping the block's start
// priority against the ceiling (the block's own maxPriority spelling
// does not exist in the grammar; the app-level maxPriority is the
// ceiling every block inherits, spec.md Invariant 7).
func (m *Modeller) buildProcessEnv(app *model.App, sec *parsetree.ProcessEnvSection) (*model.ProcessEnv, *mkerrors.Diagnostic) {
	pe := &model.ProcessEnv{
		FaultAction:    sec.FaultAction,
		MaxPriority:    app.MaxPriority,
		WatchdogAction: sec.WatchdogAction,
	}
	if sec.StartPriority != "" && !ValidPriority(sec.StartPriority) {
		return nil, sec.First.ThrowException("invalid priority %q", sec.StartPriority)
	}
	clamped := false
	pe.StartPriority, clamped = ClampPriority(sec.StartPriority, pe.MaxPriority)
	if clamped {
		m.Bag.Add(mkerrors.LimitWarning(sec.First.Loc, "%s", fmtPriorityWarning(sec.StartPriority, pe.MaxPriority)))
	}
	if sec.MaxCoreDumpFileBytes != nil {
		pe.MaxCoreDumpFileBytes = *sec.MaxCoreDumpFileBytes
	}
	if sec.MaxFileBytes != nil {
		pe.MaxFileBytes = *sec.MaxFileBytes
	}
	if sec.MaxFileDescs != nil {
		pe.MaxFileDescs = *sec.MaxFileDescs
	}
	if sec.WatchdogTimeoutMs != nil {
		pe.WatchdogTimeoutMs = *sec.WatchdogTimeoutMs
	}

	for _, e := range sec.EnvVars {
		pe.EnvVars = append(pe.EnvVars, model.EnvVar{Name: e.Name, Value: e.Value})
	}
	for i := range sec.Run {
		p := &sec.Run[i]
		if len(p.Name) > model.LimitMaxProcessNameLen {
			return nil, p.First.ThrowException("process name %q is longer than %d bytes", p.Name, model.LimitMaxProcessNameLen)
		}
		pe.Processes = append(pe.Processes, &model.Process{Name: p.Name, Exe: findExe(app, p.ExeName), Args: p.Args})
	}
	return pe, nil
}

// InjectDefaultPath gives every process environment missing a PATH key
// the framework default: sandboxed apps see the sandbox bin dirs only,
// unsandboxed apps get the app's own read-only bin dir prepended
// (spec.md §4.4 "PATH injection"). A user-supplied PATH is preserved
// unchanged. Runs after every override is applied, since the sandbox
// flag picks the default.
func InjectDefaultPath(app *model.App) {
	for _, pe := range app.ProcEnvs {
		if pe.EnvVarIsSet("PATH") {
			continue
		}
		path := "/usr/local/bin:/usr/bin:/bin"
		if !app.IsSandboxed {
			path = "/legato/systems/current/apps/" + app.Name + "/read-only/bin:" + path
		}
		pe.EnvVars = append(pe.EnvVars, model.EnvVar{Name: "PATH", Value: path})
	}
}

// applyLimitDefaults fills in the App limit fields from adef's optional
// sections, substituting the framework defaults spec.md §8 scenario 1
// names for anything left unset ("sandboxed" defaults true).
func (m *Modeller) applyLimitDefaults(app *model.App, adef *parsetree.AdefFile) *mkerrors.Diagnostic {
	loc := mkerrors.Location{File: adef.Path}
	for _, p := range []string{adef.StartPriority, adef.MaxPriority} {
		if p != "" && !ValidPriority(p) {
			return mkerrors.Model(loc, "invalid priority %q", p)
		}
	}
	app.IsSandboxed = true
	if adef.Sandboxed != nil {
		app.IsSandboxed = *adef.Sandboxed
	}
	app.StartManual = adef.StartManual

	app.MaxMemoryBytes = model.DefaultMaxMemoryBytes
	if adef.MaxMemoryBytes != nil {
		app.MaxMemoryBytes = *adef.MaxMemoryBytes
	}
	app.MaxFileDescs = model.DefaultMaxFileDescs
	if adef.MaxFileDescs != nil {
		app.MaxFileDescs = *adef.MaxFileDescs
	}
	if adef.MaxFileSystemBytes != nil {
		app.MaxFileSystemBytes = *adef.MaxFileSystemBytes
	}
	if adef.MaxCoreDumpFileBytes != nil {
		app.MaxCoreDumpFileBytes = *adef.MaxCoreDumpFileBytes
	}
	if adef.MaxLockedMemoryBytes != nil {
		app.MaxLockedMemoryBytes = *adef.MaxLockedMemoryBytes
	}

	app.MaxPriority = adef.MaxPriority
	clamped := false
	app.StartPriority, clamped = ClampPriority(adef.StartPriority, adef.MaxPriority)
	if clamped {
		m.Bag.Add(mkerrors.LimitWarning(mkerrors.Location{}, "%s", fmtPriorityWarning(adef.StartPriority, adef.MaxPriority)))
	}
	app.WatchdogAction = adef.WatchdogAction
	if adef.WatchdogTimeoutMs != nil {
		app.WatchdogTimeoutMs = *adef.WatchdogTimeoutMs
	}
	return nil
}

// ApplyOverrides rewrites app's limit fields from an .sdef "apps:"
// entry's override block (spec.md §4.4 "override application"), then
// re-clamps the start priority against the possibly-changed ceiling.
func (m *Modeller) ApplyOverrides(app *model.App, ov parsetree.AppOverrides) *mkerrors.Diagnostic {
	for _, p := range []string{ov.StartPriority, ov.MaxPriority} {
		if p != "" && !ValidPriority(p) {
			return mkerrors.Model(mkerrors.Location{}, "invalid priority %q in .sdef override of app %q", p, app.Name)
		}
	}
	if ov.Sandboxed != nil {
		app.IsSandboxed = *ov.Sandboxed
	}
	if ov.StartManual != nil {
		app.StartManual = *ov.StartManual
	}
	if ov.MaxMemoryBytes != nil {
		app.MaxMemoryBytes = *ov.MaxMemoryBytes
	}
	if ov.MaxFileDescs != nil {
		app.MaxFileDescs = *ov.MaxFileDescs
	}
	if ov.MaxFileSystemBytes != nil {
		app.MaxFileSystemBytes = *ov.MaxFileSystemBytes
	}
	if ov.MaxCoreDumpFileBytes != nil {
		app.MaxCoreDumpFileBytes = *ov.MaxCoreDumpFileBytes
	}
	if ov.MaxLockedMemoryBytes != nil {
		app.MaxLockedMemoryBytes = *ov.MaxLockedMemoryBytes
	}
	if ov.StartPriority != "" {
		app.StartPriority = ov.StartPriority
	}
	if ov.MaxPriority != "" {
		app.MaxPriority = ov.MaxPriority
	}
	if ov.WatchdogAction != "" {
		app.WatchdogAction = ov.WatchdogAction
	}
	if ov.WatchdogTimeoutMs != nil {
		app.WatchdogTimeoutMs = *ov.WatchdogTimeoutMs
	}

	clamped := false
	app.StartPriority, clamped = ClampPriority(app.StartPriority, app.MaxPriority)
	if clamped {
		m.Bag.Add(mkerrors.LimitWarning(mkerrors.Location{}, "%s", fmtPriorityWarning(app.StartPriority, app.MaxPriority)))
	}
	for _, pe := range app.ProcEnvs {
		pe.MaxPriority = app.MaxPriority
		pe.StartPriority, clamped = ClampPriority(pe.StartPriority, pe.MaxPriority)
		if clamped {
			m.Bag.Add(mkerrors.LimitWarning(mkerrors.Location{}, "%s", fmtPriorityWarning(pe.StartPriority, pe.MaxPriority)))
		}
	}
	return nil
}

// AuditLimits reports spec.md Invariant 9 (limit coherence) violations
// for one fully-modelled app: maxCoreDumpFileBytes ≤ maxFileBytes,
// maxLockedMemoryBytes ≤ maxMemoryBytes, and maxFileBytes ≤
// maxFileSystemBytes inside the sandbox. Every violation is a warning,
// never a fatal diagnostic (§3.2 "violations are warned, not
// rejected"). Runs once per app, after any .sdef overrides are applied,
// since an override can introduce or cure a violation.
func AuditLimits(app *model.App, bag *mkerrors.Bag) {
	if !app.IsSandboxed {
		return
	}
	if app.MaxLockedMemoryBytes > 0 && app.MaxLockedMemoryBytes > app.MaxMemoryBytes {
		bag.Add(mkerrors.LimitWarning(mkerrors.Location{}, "maxLockedMemoryBytes %d exceeds maxMemoryBytes %d", app.MaxLockedMemoryBytes, app.MaxMemoryBytes))
	}
	for _, pe := range app.ProcEnvs {
		if pe.MaxCoreDumpFileBytes > 0 && pe.MaxFileBytes > 0 && pe.MaxCoreDumpFileBytes > pe.MaxFileBytes {
			bag.Add(mkerrors.LimitWarning(mkerrors.Location{}, "maxCoreDumpFileBytes %d exceeds maxFileBytes %d", pe.MaxCoreDumpFileBytes, pe.MaxFileBytes))
		}
		if pe.MaxFileBytes > 0 && app.MaxFileSystemBytes > 0 && pe.MaxFileBytes > app.MaxFileSystemBytes {
			bag.Add(mkerrors.LimitWarning(mkerrors.Location{}, "maxFileBytes %d exceeds maxFileSystemBytes %d", pe.MaxFileBytes, app.MaxFileSystemBytes))
		}
	}
}

// BuildFreestandingExe builds a model.Exe owned by no App, the shape
// mkexe's "-c component" command line produces (spec.md §6 "mkexe
// <exepath> -t <target> -w <workdir> -c component … -i interfacedir
// …"): each listed component directory is loaded and wired into a
// single component-instance graph in dependency order, exactly as an
// executables: entry inside an .adef would be.
func (m *Modeller) BuildFreestandingExe(name string, componentDirs []string) (*model.Exe, *mkerrors.Diagnostic) {
	exe := &model.Exe{Name: name}
	var instances []*model.ComponentInstance
	for _, dir := range componentDirs {
		comp, diag := m.LoadComponent(dir)
		if diag != nil {
			return nil, diag
		}
		instances = append(instances, buildComponentInstance(comp, exe))
	}
	ordered, diag := orderBySubComponentDependency(instances)
	if diag != nil {
		return nil, diag
	}
	exe.Components = ordered
	exe.ComputeSourceLanguages()
	if diag := checkExeHasSourceCode(exe); diag != nil {
		return nil, diag
	}
	return exe, nil
}

// checkExeHasSourceCode enforces the boundary behaviour spec.md §8 names:
// "A .cdef with neither sources nor java nor python: the owning
// executable is rejected" with the literal message the original tool
// uses, since nothing downstream (ifgen, maingen) has anything to build
// for an executable with zero source files across every component.
func checkExeHasSourceCode(exe *model.Exe) *mkerrors.Diagnostic {
	if exe.HasCOrCppCode || exe.HasJavaCode || exe.HasPythonCode {
		return nil
	}
	return mkerrors.Model(mkerrors.Location{}, "executable %q doesn't contain any components that have source code files", exe.Name)
}

// BuildSystem parses sdefPath and every .adef/.mdef it reaches, lowering
// the whole thing into the Modeller's System: one App per "apps:" entry,
// one Module per "modules:" entry, and every binding resolved against
// the framework's auto-binding rules (spec.md §4.4 "a system build walks
// the full dependency closure exactly once"). It returns the accumulated
// Bag so a caller can render fatal diagnostics and warnings the same way
// regardless of which stage produced them.
func (m *Modeller) BuildSystem(sdefPath string) (*model.System, *mkerrors.Bag) {
	sdef, diag := parser.ParseSdef(sdefPath, m.searchDirs)
	if diag != nil {
		m.Bag.Add(diag)
		return m.sys, &m.Bag
	}

	sdefDir := filepath.Dir(sdefPath)

	appsAndBindings := make(map[*model.App][]parsetree.Binding)
	for _, appRef := range sdef.Apps {
		app, bindings, diag := m.BuildApp(filepath.Join(sdefDir, appRef.Path))
		if diag != nil {
			m.Bag.Add(diag)
			continue
		}
		if diag := m.ApplyOverrides(app, appRef.Overrides); diag != nil {
			m.Bag.Add(diag)
			continue
		}
		m.sys.Apps = append(m.sys.Apps, app)
		appsAndBindings[app] = bindings
	}

	if diag := m.ResolveBindings(appsAndBindings); diag != nil {
		m.Bag.Add(diag)
	}

	for _, b := range sdef.Bindings {
		if diag := m.applySystemBinding(b); diag != nil {
			m.Bag.Add(diag)
		}
	}

	for _, app := range m.sys.Apps {
		InjectDefaultPath(app)
		AuditLimits(app, &m.Bag)
		AuditUnboundInterfaces(app, &m.Bag)
		AuditPoolSizes(app, &m.Bag)
	}

	for _, modPath := range sdef.Modules {
		mod, diag := m.LoadModule(filepath.Join(sdefDir, modPath))
		if diag != nil {
			m.Bag.Add(diag)
			continue
		}
		m.sys.Modules = append(m.sys.Modules, mod)
	}

	for _, c := range sdef.Commands {
		exe := findExeAcrossApps(m.sys, c.ExeName)
		m.sys.Commands = append(m.sys.Commands, &model.Command{Name: c.Name, Exe: exe, Args: c.ExeArgs})
	}

	return m.sys, &m.Bag
}

// applySystemBinding resolves one .sdef-level "bindings:" entry:
// "clientApp.externName -> serverAgent.serverName". When the client
// interface already carries an app-level binding, the system-level one
// replaces it, with a warning so the override is never silent (spec.md
// §4.4 "each override emits a diagnostic ... and replaces the existing
// binding").
func (m *Modeller) applySystemBinding(b parsetree.Binding) *mkerrors.Diagnostic {
	if b.Shape != parsetree.BindingNormal {
		return b.Base.First.ThrowException("only app.interface -> agent.interface bindings are allowed at system level")
	}

	var app *model.App
	for _, a := range m.sys.Apps {
		if a.Name == b.ClientExe {
			app = a
			break
		}
	}
	if app == nil {
		return b.Base.First.ThrowException("binding references unknown app %q", b.ClientExe)
	}

	var iface *model.ApiInterfaceInstance
	for _, ext := range app.Externs {
		if ext.ExternalName == b.ClientInterface && !ext.Iface.IsProvided {
			iface = ext.Iface
			break
		}
	}
	if iface == nil {
		return b.Base.First.ThrowException("app %q has no external client interface %q", b.ClientExe, b.ClientInterface)
	}

	nb := &model.Binding{
		Loc:    b.Base.First.Loc,
		Client: model.BindingEndpoint{Exe: iface.Owner.Exe, Iface: iface},
		Server: model.BindingEndpoint{
			IsExternal:          true,
			ExternalAgentIsUser: b.ServerIsUser,
			ExternalAgentName:   b.ServerAgent,
			ExternalAlias:       b.ServerInterface,
		},
	}

	replaced := false
	if iface.Bound != nil {
		for i, existing := range app.Bindings {
			if existing.Client.Iface == iface {
				app.Bindings[i] = nb
				replaced = true
				break
			}
		}
		m.Bag.Add(mkerrors.LimitWarning(b.Base.First.Loc, "system-level binding replaces app-level binding of %s", iface.Name))
	}
	if !replaced {
		app.Bindings = append(app.Bindings, nb)
	}
	iface.Bound = iface
	m.recordUserBinding(nb)
	return nil
}

func findExeAcrossApps(sys *model.System, ref string) *model.Exe {
	for _, app := range sys.Apps {
		if exe := findExe(app, ref); exe != nil {
			return exe
		}
	}
	return nil
}

// LoadModule parses and lowers one .mdef into a model.Module, enforcing
// spec.md Invariant 8: a module has either sources or prebuilt, never
// both.
func (m *Modeller) LoadModule(path string) (*model.Module, *mkerrors.Diagnostic) {
	mdef, diag := parser.ParseMdef(path, m.searchDirs)
	if diag != nil {
		return nil, diag
	}

	hasPreBuilt := len(mdef.PreBuilt) > 0
	hasSources := len(mdef.Sources) > 0
	if hasPreBuilt && hasSources {
		return nil, mkerrors.Model(mdef.Fragment.FirstToken.Loc, "module %q declares both preBuilt and sources", baseWithoutExt(path))
	}

	mod := &model.Module{Name: baseWithoutExt(path), Dir: filepath.Dir(path), CFlags: mdef.CFlags, LdFlags: mdef.LdFlags, KoFlags: mdef.KoFlags, Params: map[string]string{}}
	for _, t := range mdef.PreBuilt {
		mod.PreBuilt = append(mod.PreBuilt, t.Text)
	}
	for _, t := range mdef.Sources {
		mod.Sources = append(mod.Sources, t.Text)
	}
	for _, p := range mdef.Params {
		mod.Params[p.Name] = p.Value
	}
	return mod, nil
}

func baseWithoutExt(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

func findExe(app *model.App, name string) *model.Exe {
	for _, e := range app.Exes {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func findComponentIface(exe *model.Exe, compName, alias string, provided bool) *model.ApiInterfaceInstance {
	for _, ci := range exe.Components {
		if ci.Component.Name != compName {
			continue
		}
		list := ci.RequiredIfaces
		if provided {
			list = ci.ProvidedIfaces
		}
		for _, iface := range list {
			if iface.Alias == alias {
				return iface
			}
		}
	}
	return nil
}

func findAnyIfaceByAlias(app *model.App, alias string) *model.ApiInterfaceInstance {
	for _, exe := range app.Exes {
		for _, ci := range exe.Components {
			for _, iface := range ci.ProvidedIfaces {
				if iface.Alias == alias {
					return iface
				}
			}
		}
	}
	return nil
}

// ResolveBindings resolves every app's raw binding entries to concrete
// endpoints, then applies the framework's automatic bindings to any
// required interface still unbound afterward (spec.md §4.4). Two
// bindings naming the same client interface are fatal, except that a
// pre-built wildcard may be re-bound, which replaces the earlier entry
// with a warning (spec.md §7 LIMIT_WARNING "replaced wildcard binding").
func (m *Modeller) ResolveBindings(appsAndBindings map[*model.App][]parsetree.Binding) *mkerrors.Diagnostic {
	for app, bindings := range appsAndBindings {
		boundClients := map[*model.ApiInterfaceInstance]bool{}
		wildcards := map[string]int{} // external alias -> index in app.Bindings
		for _, b := range bindings {
			resolved, diag := m.resolveBinding(app, b)
			if diag != nil {
				return diag
			}
			if resolved.Client.Iface != nil {
				if boundClients[resolved.Client.Iface] {
					return b.Base.First.ThrowException("client interface %s is bound more than once", resolved.Client.Iface.Name)
				}
				boundClients[resolved.Client.Iface] = true
				if resolved.Server.Iface != nil {
					resolved.Client.Iface.Bound = resolved.Server.Iface
				} else {
					resolved.Client.Iface.Bound = resolved.Client.Iface
				}
			} else {
				alias := resolved.Client.ExternalAlias
				if prev, ok := wildcards[alias]; ok {
					m.Bag.Add(mkerrors.LimitWarning(b.Base.First.Loc, "replaced earlier wildcard binding of %q", alias))
					app.Bindings[prev] = resolved
					m.recordUserBinding(resolved)
					continue
				}
				wildcards[alias] = len(app.Bindings)
			}
			app.Bindings = append(app.Bindings, resolved)
			m.recordUserBinding(resolved)
		}
	}

	for app := range appsAndBindings {
		m.applyAutoBindings(app)
	}
	return nil
}

// recordUserBinding registers b on its server-side User record when the
// server agent is a non-app user (spec.md §3.2 User).
func (m *Modeller) recordUserBinding(b *model.Binding) {
	if !b.Server.IsExternal || !b.Server.ExternalAgentIsUser {
		return
	}
	clientName := b.Client.ExternalAlias
	if b.Client.Iface != nil {
		clientName = b.Client.Iface.Name
	}
	m.sys.FindOrAddUser(b.Server.ExternalAgentName).Bindings[clientName] = b
}

func (m *Modeller) resolveBinding(app *model.App, b parsetree.Binding) (*model.Binding, *mkerrors.Diagnostic) {
	mb := &model.Binding{Loc: b.Base.First.Loc}

	switch b.Shape {
	case parsetree.BindingInternal:
		clientExe := findExe(app, b.ClientExe)
		if clientExe == nil {
			return nil, b.Base.First.ThrowException("binding references unknown executable %q", b.ClientExe)
		}
		clientIface := findComponentIface(clientExe, b.ClientComponent, b.ClientInterface, false)
		if clientIface == nil {
			return nil, b.Base.First.ThrowException("binding references unknown client interface %s.%s.%s", b.ClientExe, b.ClientComponent, b.ClientInterface)
		}
		mb.Client = model.BindingEndpoint{Exe: clientExe, Iface: clientIface}

		serverExe := findExe(app, b.ServerExe)
		if serverExe == nil {
			return nil, b.Base.First.ThrowException("binding references unknown executable %q", b.ServerExe)
		}
		serverIface := findComponentIface(serverExe, b.ServerComponent, b.ServerInterface, true)
		if serverIface == nil {
			return nil, b.Base.First.ThrowException("binding references unknown server interface %s.%s.%s", b.ServerExe, b.ServerComponent, b.ServerInterface)
		}
		mb.Server = model.BindingEndpoint{Exe: serverExe, Iface: serverIface}

	default: // BindingNormal, BindingWildcard
		if b.Shape == parsetree.BindingWildcard {
			mb.Client = model.BindingEndpoint{ExternalAlias: b.ClientInterface}
		} else {
			clientExe := findExe(app, b.ClientExe)
			if clientExe == nil {
				return nil, b.Base.First.ThrowException("binding references unknown executable %q", b.ClientExe)
			}
			var clientIface *model.ApiInterfaceInstance
			if b.ClientComponent != "" {
				clientIface = findComponentIface(clientExe, b.ClientComponent, b.ClientInterface, false)
			} else {
				clientIface = findAnyExeClientIface(clientExe, b.ClientInterface)
			}
			if clientIface == nil {
				return nil, b.Base.First.ThrowException("binding references unknown client interface %s.%s", b.ClientExe, b.ClientInterface)
			}
			mb.Client = model.BindingEndpoint{Exe: clientExe, Iface: clientIface}
		}

		mb.Server = model.BindingEndpoint{
			IsExternal:          true,
			ExternalAgentIsUser: b.ServerIsUser,
			ExternalAgentName:   b.ServerAgent,
			ExternalAlias:       b.ServerInterface,
		}
	}

	return mb, nil
}

func findAnyExeClientIface(exe *model.Exe, alias string) *model.ApiInterfaceInstance {
	for _, ci := range exe.Components {
		for _, iface := range ci.RequiredIfaces {
			if iface.Alias == alias {
				return iface
			}
		}
	}
	return nil
}

// applyAutoBindings binds any still-unbound required interface whose API
// matches a known framework service to that service's <root> agent
// (spec.md §4.4 "automatic bindings").
func (m *Modeller) applyAutoBindings(app *model.App) {
	for _, exe := range app.Exes {
		for _, ci := range exe.Components {
			for _, iface := range ci.RequiredIfaces {
				if iface.Bound != nil || iface.Api == nil {
					continue
				}
				agent, ok := frameworkAutoBindAgents[filepath.Base(iface.Api.Path)]
				if !ok {
					continue
				}
				b := &model.Binding{
					Client: model.BindingEndpoint{Exe: exe, Iface: iface},
					Server: model.BindingEndpoint{IsExternal: true, ExternalAgentIsUser: true, ExternalAgentName: agent, ExternalAlias: iface.Alias},
				}
				app.Bindings = append(app.Bindings, b)
				m.recordUserBinding(b)
				iface.Bound = iface // mark bound so the unbound-interface audit skips it
			}
		}
	}
}

// AuditUnboundInterfaces reports a fatal model error for every client
// interface that survives modelling with no binding, no extern
// declaration, and no [optional] flag (spec.md Invariant 5; types-only
// references never connect, so they are exempt too).
func AuditUnboundInterfaces(app *model.App, bag *mkerrors.Bag) {
	extern := map[*model.ApiInterfaceInstance]bool{}
	for _, e := range app.Externs {
		extern[e.Iface] = true
	}
	for _, exe := range app.Exes {
		for _, ci := range exe.Components {
			for _, iface := range ci.RequiredIfaces {
				if iface.Bound == nil && !iface.Optional && !iface.TypesOnly && !extern[iface] {
					bag.Add(mkerrors.Model(iface.Loc, "required interface %q of component %q is never bound", iface.Alias, ci.Component.Name))
				}
			}
		}
	}
}

// AuditPoolSizes warns when a pool's Size is non-positive (spec.md §4.4
// limit-conflict audit). It only warns: the Size is left unchanged.
func AuditPoolSizes(app *model.App, bag *mkerrors.Bag) {
	for _, p := range app.Pools {
		if p.Size <= 0 {
			bag.Add(mkerrors.LimitWarning(mkerrors.Location{}, "pool size %s is not positive, using framework default", strconv.Itoa(p.Size)))
		}
	}
}
