package edit

import (
	"fmt"
	"os"

	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/parser"
	"github.com/legato-af/mktools/internal/parsetree"
)

// AddApp inserts a new "apps:" entry naming adefPath into sdefPath,
// appending the entry at end-of-file if no "apps:" section exists yet
// (spec.md §4.5 "Adding into a non-existent section appends the section
// at EOF").
func AddApp(sdefPath, adefPath string) error {
	sdef, diag := parser.ParseSdef(sdefPath, nil)
	if diag != nil {
		return diag
	}
	src, err := os.ReadFile(sdefPath)
	if err != nil {
		return err
	}

	if len(sdef.Apps) == 0 {
		return ApplyToFile(sdefPath, []Cut{AppendSection(len(src), "apps", adefPath)})
	}
	last := sdef.Apps[len(sdef.Apps)-1]
	insertAt := last.LastToken().EndByte
	return ApplyToFile(sdefPath, []Cut{{Start: insertAt, End: insertAt, Replacement: fmt.Sprintf("\n\t%s", adefPath)}})
}

// RemoveApp deletes the "apps:" entry referencing an .adef whose base
// name (sans extension) is appName.
func RemoveApp(sdefPath, appName string) error {
	sdef, diag := parser.ParseSdef(sdefPath, nil)
	if diag != nil {
		return diag
	}
	for _, app := range sdef.Apps {
		if baseWithoutExt(app.Path) == appName {
			return ApplyToFile(sdefPath, []Cut{CutForNode(&app, "")})
		}
	}
	return mkerrors.Model(mkerrors.Location{File: sdefPath}, "no apps: entry references app %q", appName)
}

// RenameApp rewrites the "apps:" entry's path component from its current
// spelling to newName, preserving any override block that follows it.
func RenameApp(sdefPath, oldName, newName string) error {
	sdef, diag := parser.ParseSdef(sdefPath, nil)
	if diag != nil {
		return diag
	}
	for i := range sdef.Apps {
		app := &sdef.Apps[i]
		if baseWithoutExt(app.Path) != oldName {
			continue
		}
		pathTok := app.FirstToken()
		cut := Cut{Start: pathTok.StartByte, End: pathTok.EndByte, Replacement: newName + ".adef"}
		return ApplyToFile(sdefPath, []Cut{cut})
	}
	return mkerrors.Model(mkerrors.Location{File: sdefPath}, "no apps: entry references app %q", oldName)
}

// AddModule inserts a new "modules:" entry naming mdefPath into
// sdefPath, appending the section at EOF when it doesn't exist yet,
// mirroring AddApp's contract for the modules: token-list section.
func AddModule(sdefPath, mdefPath string) error {
	sdef, diag := parser.ParseSdef(sdefPath, nil)
	if diag != nil {
		return diag
	}
	src, err := os.ReadFile(sdefPath)
	if err != nil {
		return err
	}

	if len(sdef.Modules) == 0 {
		return ApplyToFile(sdefPath, []Cut{AppendSection(len(src), "modules", mdefPath)})
	}
	tok := FindToken(sdef.Fragment, sdef.Modules[len(sdef.Modules)-1])
	if tok == nil {
		return mkerrors.Model(mkerrors.Location{File: sdefPath}, "could not locate existing modules: entry in token stream")
	}
	return ApplyToFile(sdefPath, []Cut{{Start: tok.EndByte, End: tok.EndByte, Replacement: fmt.Sprintf("\n\t%s", mdefPath)}})
}

// RenameModule rewrites the "modules:" entry whose base name (sans
// extension) is oldName to reference newName's .mdef.
func RenameModule(sdefPath, oldName, newName string) error {
	sdef, diag := parser.ParseSdef(sdefPath, nil)
	if diag != nil {
		return diag
	}
	for _, path := range sdef.Modules {
		if baseWithoutExt(path) != oldName {
			continue
		}
		tok := FindToken(sdef.Fragment, path)
		if tok == nil {
			return mkerrors.Model(mkerrors.Location{File: sdefPath}, "could not locate modules: entry %q in token stream", path)
		}
		return ApplyToFile(sdefPath, []Cut{{Start: tok.StartByte, End: tok.EndByte, Replacement: newName + ".mdef"}})
	}
	return mkerrors.Model(mkerrors.Location{File: sdefPath}, "no modules: entry references module %q", oldName)
}

// RemoveModule deletes the "modules:" entry whose base name (sans
// extension) is moduleName.
func RemoveModule(sdefPath, moduleName string) error {
	sdef, diag := parser.ParseSdef(sdefPath, nil)
	if diag != nil {
		return diag
	}
	for _, path := range sdef.Modules {
		if baseWithoutExt(path) == moduleName {
			tok := FindToken(sdef.Fragment, path)
			if tok == nil {
				return mkerrors.Model(mkerrors.Location{File: sdefPath}, "could not locate modules: entry %q in token stream", path)
			}
			return ApplyToFile(sdefPath, []Cut{{Start: tok.StartByte, End: tok.EndByte, Replacement: ""}})
		}
	}
	return mkerrors.Model(mkerrors.Location{File: sdefPath}, "no modules: entry references module %q", moduleName)
}

func baseWithoutExt(path string) string {
	base := path
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}

// AddComponent inserts a component directory reference at the end of one
// executable's component list in adefPath.
func AddComponent(adefPath, exeName, componentPath string) error {
	adef, diag := parser.ParseAdef(adefPath, nil)
	if diag != nil {
		return diag
	}
	for _, exe := range adef.Executables {
		if exe.Name != exeName {
			continue
		}
		closeParen := exe.LastToken()
		cut := Cut{Start: closeParen.StartByte, End: closeParen.StartByte, Replacement: componentPath + " "}
		return ApplyToFile(adefPath, []Cut{cut})
	}
	return mkerrors.Model(mkerrors.Location{File: adefPath}, "no executables: entry named %q", exeName)
}

// RemoveComponent deletes a component directory reference from one
// executable's component list.
func RemoveComponent(adefPath, exeName, componentPath string) error {
	adef, diag := parser.ParseAdef(adefPath, nil)
	if diag != nil {
		return diag
	}
	for _, exe := range adef.Executables {
		if exe.Name != exeName {
			continue
		}
		for _, tok := range tokensForComponentPaths(&exe) {
			if tok.Text == componentPath {
				return ApplyToFile(adefPath, []Cut{{Start: tok.StartByte, End: tok.EndByte, Replacement: ""}})
			}
		}
		return mkerrors.Model(mkerrors.Location{File: adefPath}, "executable %q does not reference component %q", exeName, componentPath)
	}
	return mkerrors.Model(mkerrors.Location{File: adefPath}, "no executables: entry named %q", exeName)
}

// RenameComponentWithRunReference renames a component directory reference
// inside one executable's component list AND, when that executable is
// also named by a "processes: run:" entry whose process name matches the
// old component-derived default, updates that reference too — one pass,
// two cuts, matching original_source/'s updateDefinitionFile.cpp rename
// propagation (SPEC_FULL.md "SUPPLEMENTED FEATURES").
func RenameComponentWithRunReference(adefPath, exeName, oldComponentPath, newComponentPath string) error {
	adef, diag := parser.ParseAdef(adefPath, nil)
	if diag != nil {
		return diag
	}

	var cuts []Cut
	found := false
	for _, exe := range adef.Executables {
		if exe.Name != exeName {
			continue
		}
		for _, tok := range tokensForComponentPaths(&exe) {
			if tok.Text == oldComponentPath {
				cuts = append(cuts, Cut{Start: tok.StartByte, End: tok.EndByte, Replacement: newComponentPath})
				found = true
			}
		}
	}
	if !found {
		return mkerrors.Model(mkerrors.Location{File: adefPath}, "executable %q does not reference component %q", exeName, oldComponentPath)
	}

	// Second cut: a run: entry whose explicit process name was derived
	// from the old component name gets the same rename.
	oldName := baseWithoutExt(oldComponentPath)
	newName := baseWithoutExt(newComponentPath)
	for i := range adef.ProcEnvs {
		for j := range adef.ProcEnvs[i].Run {
			p := &adef.ProcEnvs[i].Run[j]
			nameTok := p.FirstToken()
			if p.ExeName == exeName && p.Name == oldName && nameTok != nil && nameTok.Text == oldName {
				cuts = append(cuts, Cut{Start: nameTok.StartByte, End: nameTok.EndByte, Replacement: newName})
			}
		}
	}

	return ApplyToFile(adefPath, cuts)
}

// tokensForComponentPaths re-walks an executable's token range to recover
// the individual component-path tokens, since parsetree.Executable only
// retains the resolved strings, not the tokens (spec.md design note "Ad-hoc
// byte-offset editing... retain token byte offsets during lexing").
func tokensForComponentPaths(exe *parsetree.Executable) []*tokenRef {
	var out []*tokenRef
	for t := exe.FirstToken(); t != nil && t != exe.LastToken().Next; t = t.Next {
		for _, p := range exe.ComponentPaths {
			if t.Text == p {
				out = append(out, &tokenRef{StartByte: t.StartByte, EndByte: t.EndByte, Text: t.Text})
			}
		}
	}
	return out
}

// tokenRef is a minimal read-only view of a lexer.Token's byte range,
// avoiding a direct dependency from this helper on lexer.Token's full
// shape.
type tokenRef struct {
	StartByte, EndByte int
	Text               string
}
