// Package frontend wires buildparams, the modeller, and every generator
// package into the handful of staged operations the mk* command-line
// tools expose (spec.md §6): build a system, an app, an executable, or
// a component, writing the generator output for each under the
// caller-supplied work directory. It does not itself invoke a C
// toolchain or ninja; spec.md §1's Non-goals stop this module's
// responsibility at "emit the build description", matching the
// teacher's own separation between model construction and anything
// that shells out.
package frontend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/legato-af/mktools/internal/buildparams"
	"github.com/legato-af/mktools/internal/env"
	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/generator/adefgen"
	"github.com/legato-af/mktools/internal/generator/avgen"
	"github.com/legato-af/mktools/internal/generator/configgen"
	"github.com/legato-af/mktools/internal/generator/ifgen"
	"github.com/legato-af/mktools/internal/generator/jsongen"
	"github.com/legato-af/mktools/internal/generator/maingen"
	"github.com/legato-af/mktools/internal/generator/ninjagen"
	"github.com/legato-af/mktools/internal/generator/rtosgen"
	"github.com/legato-af/mktools/internal/model"
	"github.com/legato-af/mktools/internal/modeller"
	"github.com/legato-af/mktools/internal/parsetree"
)

// Result carries everything a caller needs to report a build: the
// model produced (nil on fatal parse failure) and the accumulated
// diagnostics bag.
type Result struct {
	System *model.System
	App    *model.App
	Bag    *mkerrors.Bag
}

// BuildSystem runs the whole sdef pipeline: parse, model, resolve
// bindings, then stage every generator's output under params.WorkDir.
func BuildSystem(sdefPath string, p *buildparams.Params) (*Result, error) {
	if diag := p.Validate(); diag != nil {
		return nil, diag
	}
	if err := p.PrepareEnvironment(); err != nil {
		return nil, err
	}

	m := modeller.New(systemName(sdefPath), p.AllSearchDirs())
	sys, bag := m.BuildSystem(sdefPath)
	res := &Result{System: sys, Bag: bag}
	if bag.HasFatal() {
		return res, nil
	}

	stageDir := filepath.Join(p.WorkDir, "system")
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return res, err
	}

	dump := jsongen.BuildDump(sys)
	if err := writeGenerated(stageDir, "system.json", func() ([]byte, error) { return jsongen.Render(dump) }); err != nil {
		return res, err
	}
	if err := writeRaw(stageDir, "tasks.c", rtosgen.TasksC(sys)); err != nil {
		return res, err
	}
	if err := writeRaw(stageDir, "legato.ld", rtosgen.LinkerScript(sys)); err != nil {
		return res, err
	}

	rules := []ninjagen.Rule{}
	for _, app := range sys.Apps {
		appRes, err := buildAppInto(app, p)
		if err != nil {
			return res, err
		}
		rules = append(rules, appRes...)
	}
	if err := writeRaw(stageDir, "build.ninja", ninjagen.Render(rules)); err != nil {
		return res, err
	}
	return res, saveBuildState(p)
}

// BuildApp runs the app-only pipeline: parse one .adef, model it,
// resolve its own bindings (internal, framework auto-bindings, and
// external declarations; cross-app endpoints stay symbolic since no
// system is in scope), audit, and stage its generators.
func BuildApp(adefPath string, p *buildparams.Params) (*Result, error) {
	if diag := p.Validate(); diag != nil {
		return nil, diag
	}
	if err := p.PrepareEnvironment(); err != nil {
		return nil, err
	}

	m := modeller.New("", p.AllSearchDirs())
	app, bindings, diag := m.BuildApp(adefPath)
	if diag != nil {
		m.Bag.Add(diag)
	}
	res := &Result{App: app, Bag: &m.Bag}
	if app == nil {
		return res, nil
	}

	if diag := m.ResolveBindings(map[*model.App][]parsetree.Binding{app: bindings}); diag != nil {
		m.Bag.Add(diag)
		return res, nil
	}
	modeller.InjectDefaultPath(app)
	modeller.AuditLimits(app, &m.Bag)
	modeller.AuditUnboundInterfaces(app, &m.Bag)
	modeller.AuditPoolSizes(app, &m.Bag)
	if m.Bag.HasFatal() {
		return res, nil
	}

	if _, err := buildAppInto(app, p); err != nil {
		return res, err
	}
	return res, saveBuildState(p)
}

// saveBuildState records this run's environment snapshot and search-dir
// sidecar under the work directory. Called only after a fully successful
// build: a failed run leaves the previous snapshot in place so the next
// invocation redoes the work (spec.md §7 "the environment-snapshot file
// is not updated").
func saveBuildState(p *buildparams.Params) error {
	if err := env.Save(filepath.Join(p.WorkDir, env.SnapshotName)); err != nil {
		return err
	}
	return p.Persist()
}

func buildAppInto(app *model.App, p *buildparams.Params) ([]ninjagen.Rule, error) {
	workDir := p.WorkDir
	appDir := filepath.Join(workDir, "app", app.Name)
	if err := os.MkdirAll(filepath.Join(appDir, "staging"), 0o755); err != nil {
		return nil, err
	}

	if err := writeRaw(appDir, app.Name+".adef", adefgen.Render(app, "/legato/systems/current/appsWriteable")); err != nil {
		return nil, err
	}

	cfg := configgen.Render(app, configgen.Options{CrossBuild: p.IsCrossBuild()})
	if err := writeRaw(filepath.Join(appDir, "staging"), "root.cfg", cfg); err != nil {
		return nil, err
	}

	manifest := avgen.BuildManifest(app)
	if err := writeGenerated(appDir, "manifest.app", func() ([]byte, error) { return avgen.Render(manifest) }); err != nil {
		return nil, err
	}

	for _, exe := range app.Exes {
		if err := writeExeEntryPoints(appDir, exe); err != nil {
			return nil, err
		}
	}

	return ninjagen.BuildRulesForApp(app, workDir), nil
}

// BuildExe builds one free-standing executable from a list of
// component directories, staging its generated main files under
// params.WorkDir without an owning app (spec.md §6 "mkexe").
func BuildExe(name string, componentDirs []string, p *buildparams.Params) (*mkerrors.Bag, error) {
	if diag := p.Validate(); diag != nil {
		return nil, diag
	}
	if err := p.PrepareEnvironment(); err != nil {
		return nil, err
	}

	m := modeller.New("", p.AllSearchDirs())
	exe, diag := m.BuildFreestandingExe(name, componentDirs)
	if diag != nil {
		m.Bag.Add(diag)
		return &m.Bag, nil
	}

	exeDir := filepath.Join(p.WorkDir, "exe", name)
	if err := os.MkdirAll(exeDir, 0o755); err != nil {
		return &m.Bag, err
	}
	if err := writeExeEntryPoints(exeDir, exe); err != nil {
		return &m.Bag, err
	}
	return &m.Bag, saveBuildState(p)
}

// writeExeEntryPoints stages exe's generated entry point (and one per
// component instance) under dir, selecting the C, Java, or Python
// generator backend per exe.Component's source-kind flags (spec.md §4.5
// "Java / Python variants … the language is selected from the
// component's source-file set"). An exe may carry both a C _main.c and a
// main.py launcher when it mixes languages across components.
func writeExeEntryPoints(dir string, exe *model.Exe) error {
	if exe.HasCOrCppCode {
		if err := writeRaw(dir, exe.Name+"_main.c", maingen.ExeMain(exe)); err != nil {
			return err
		}
	}
	if exe.HasPythonCode {
		if err := writeRaw(dir, exe.Name+"_main.py", maingen.LauncherPy(exe)); err != nil {
			return err
		}
	}
	for _, ci := range exe.Components {
		switch {
		case ci.Component.HasJavaCode():
			javaFile := fmt.Sprintf("%s_%s_Factory.java", exe.Name, ci.Component.Name)
			if err := writeRaw(dir, javaFile, maingen.FactoryJava(ci)); err != nil {
				return err
			}
		case ci.Component.HasCOrCppCode():
			compFile := fmt.Sprintf("%s_%s_main.c", exe.Name, ci.Component.Name)
			if err := writeRaw(dir, compFile, maingen.ComponentMain(ci)); err != nil {
				return err
			}
		}
	}
	return nil
}

// BuildComponent runs ifgen over one component's interface instances,
// the unit mkcomp operates at (spec.md §6 "mkcomp generates a
// component's client/server interface headers without staging a whole
// app").
func BuildComponent(comp *model.Component, p *buildparams.Params) error {
	if diag := p.Validate(); diag != nil {
		return diag
	}
	compDir := filepath.Join(p.WorkDir, "component", comp.Name)
	if err := os.MkdirAll(compDir, 0o755); err != nil {
		return err
	}
	return writeRaw(compDir, "interfaces.h", ifgen.Render(comp))
}

func writeRaw(dir, name string, content []byte) error {
	return os.WriteFile(filepath.Join(dir, name), content, 0o644)
}

func writeGenerated(dir, name string, render func() ([]byte, error)) error {
	out, err := render()
	if err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return os.WriteFile(filepath.Join(dir, name), out, 0o644)
}

func systemName(sdefPath string) string {
	base := filepath.Base(sdefPath)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
