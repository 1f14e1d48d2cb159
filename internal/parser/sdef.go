package parser

import (
	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/lexer"
	"github.com/legato-af/mktools/internal/parsetree"
	"github.com/legato-af/mktools/internal/suggest"
)

var sdefSectionNames = []string{"apps", "bindings", "commands", "modules", "version"}

var appOverrideNames = []string{
	"sandboxed", "start", "maxMemoryBytes", "maxFileDescriptors",
	"maxFileSystemBytes", "maxCoreDumpFileBytes", "maxLockedMemoryBytes",
	"startPriority", "maxPriority", "watchdogAction", "watchdogTimeout",
}

// ParseSdef parses a whole .sdef file.
func ParseSdef(path string, searchDirs []string) (*parsetree.SdefFile, *mkerrors.Diagnostic) {
	lx, err := lexer.New(path, searchDirs)
	if err != nil {
		return nil, mkerrors.IO(mkerrors.Location{File: path}, "open .sdef", err)
	}
	out := &parsetree.SdefFile{File: parsetree.File{Path: path, Fragment: lx.Root()}}

	for !lx.IsMatch(lexer.EndOfFile) {
		name, diag := sectionName(lx)
		if diag != nil {
			return nil, diag
		}
		switch name.Text {
		case "apps":
			sec, diag := ParseComplexSection(lx, name, parseAppItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range sec.Items {
				out.Apps = append(out.Apps, *(it.(*parsetree.App)))
			}
			out.Sections = append(out.Sections, sec)
		case "bindings":
			sec, diag := ParseComplexSection(lx, name, ParseBindingItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range sec.Items {
				out.Bindings = append(out.Bindings, *(it.(*parsetree.Binding)))
			}
			out.Sections = append(out.Sections, sec)
		case "version":
			sec, value, diag := ParseSimpleSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			out.Version = value.Text
			out.Sections = append(out.Sections, sec)
		case "commands":
			sec, diag := ParseComplexSection(lx, name, parseCommandItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range sec.Items {
				out.Commands = append(out.Commands, *(it.(*parsetree.Command)))
			}
			out.Sections = append(out.Sections, sec)
		case "modules":
			sec, diag := ParseTokenListSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			for _, t := range sec.Items {
				out.Modules = append(out.Modules, t.Text)
			}
			out.Sections = append(out.Sections, sec)
		default:
			if guess := suggest.Closest(name.Text, sdefSectionNames); guess != "" {
				return nil, name.ThrowException("unrecognised .sdef section %q (did you mean %q?)", name.Text, guess)
			}
			return nil, name.ThrowException("unrecognised .sdef section %q", name.Text)
		}
	}
	return out, nil
}

// parseAppItem parses one "apps:" entry: a path to an .adef, optionally
// followed by a curly-braced override block. Override items reuse the
// .adef section grammar but only for the overrideable subset (spec.md
// §4.3 ".sdef apps:").
func parseAppItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	path, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	app := &parsetree.App{Base: parsetree.Base{First: path, Last: path}, Path: path.Text}
	if !lx.IsMatch(lexer.OpenCurly) {
		return app, nil
	}
	if _, diag := lx.Pull(lexer.OpenCurly); diag != nil {
		return nil, diag
	}
	for !lx.IsMatch(lexer.CloseCurly) {
		name, diag := sectionName(lx)
		if diag != nil {
			return nil, diag
		}
		switch name.Text {
		case "sandboxed":
			_, value, diag := ParseSimpleSection(lx, name, lexer.Boolean)
			if diag != nil {
				return nil, diag
			}
			b := value.Text == "true"
			app.Overrides.Sandboxed = &b
		case "start":
			_, value, diag := ParseSimpleSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			manual := value.Text == "manual"
			app.Overrides.StartManual = &manual
		case "maxMemoryBytes":
			_, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			app.Overrides.MaxMemoryBytes = &n
		case "maxFileDescriptors":
			_, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			app.Overrides.MaxFileDescs = &n
		case "maxFileSystemBytes":
			_, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			app.Overrides.MaxFileSystemBytes = &n
		case "maxCoreDumpFileBytes":
			_, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			app.Overrides.MaxCoreDumpFileBytes = &n
		case "maxLockedMemoryBytes":
			_, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			app.Overrides.MaxLockedMemoryBytes = &n
		case "startPriority":
			_, value, diag := ParseSimpleSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			app.Overrides.StartPriority = value.Text
		case "maxPriority":
			_, value, diag := ParseSimpleSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			app.Overrides.MaxPriority = value.Text
		case "watchdogAction":
			_, value, diag := ParseSimpleSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			app.Overrides.WatchdogAction = value.Text
		case "watchdogTimeout":
			_, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			app.Overrides.WatchdogTimeoutMs = &n
		default:
			if guess := suggest.Closest(name.Text, appOverrideNames); guess != "" {
				return nil, name.ThrowException("section %q cannot be overridden from an .sdef (did you mean %q?)", name.Text, guess)
			}
			return nil, name.ThrowException("section %q cannot be overridden from an .sdef", name.Text)
		}
	}
	close, diag := lx.Pull(lexer.CloseCurly)
	if diag != nil {
		return nil, diag
	}
	app.Last = close
	return app, nil
}

func parseCommandItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	name, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	if diag := lexer.ConvertToName(name); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.Equals); diag != nil {
		return nil, diag
	}
	exe, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	cmd := &parsetree.Command{
		Base: parsetree.Base{First: name, Last: exe}, Name: name.Text, ExeName: exe.Text,
	}
	for lx.IsMatch(lexer.Arg) {
		arg, diag := lx.Pull(lexer.Arg)
		if diag != nil {
			return nil, diag
		}
		cmd.ExeArgs = append(cmd.ExeArgs, arg.Text)
		cmd.Last = arg
	}
	return cmd, nil
}
