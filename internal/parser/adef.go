package parser

import (
	"strconv"

	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/lexer"
	"github.com/legato-af/mktools/internal/parsetree"
	"github.com/legato-af/mktools/internal/suggest"
)

var adefSectionNames = []string{
	"executables", "bindings", "processes", "extern", "requires", "provides", "bundles",
	"pools", "groups", "version", "sandboxed", "start", "maxMemoryBytes",
	"maxFileDescriptors", "maxFileSystemBytes", "maxCoreDumpFileBytes",
	"maxLockedMemoryBytes", "startPriority", "maxPriority", "watchdogAction",
	"watchdogTimeout",
}

// parseIntSection parses "name: N" where N is an unsigned integer limit
// value (spec.md §3.2's BoolLimit/NonNegativeIntLimit template wrappers,
// design note "Template value wrappers").
func parseIntSection(lx *lexer.Lexer, name *lexer.Token) (*parsetree.SimpleSection, int, *mkerrors.Diagnostic) {
	sec, value, diag := ParseSimpleSection(lx, name, lexer.Integer)
	if diag != nil {
		return nil, 0, diag
	}
	n, err := strconv.Atoi(value.Text)
	if err != nil {
		return nil, 0, value.ThrowException("expected integer limit value, got %q", value.Text)
	}
	return sec, n, nil
}

// ParseAdef parses a whole .adef file.
func ParseAdef(path string, searchDirs []string) (*parsetree.AdefFile, *mkerrors.Diagnostic) {
	lx, err := lexer.New(path, searchDirs)
	if err != nil {
		return nil, mkerrors.IO(mkerrors.Location{File: path}, "open .adef", err)
	}
	out := &parsetree.AdefFile{File: parsetree.File{Path: path, Fragment: lx.Root()}}

	for !lx.IsMatch(lexer.EndOfFile) {
		name, diag := sectionName(lx)
		if diag != nil {
			return nil, diag
		}
		switch name.Text {
		case "executables":
			sec, diag := ParseComplexSection(lx, name, parseExecutableItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range sec.Items {
				out.Executables = append(out.Executables, *(it.(*parsetree.Executable)))
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
		case "processes":
			res, diag := ParseProcessesSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.ProcEnvs = append(out.ProcEnvs, *res)
		case "extern":
			sec, diag := ParseComplexSection(lx, name, ParseExternItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range sec.Items {
				out.Externs = append(out.Externs, *(it.(*parsetree.ExternApiInterface)))
			}
			out.Sections = append(out.Sections, sec)
		case "requires":
			res, diag := ParseRequiresSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.RequiredFiles = append(out.RequiredFiles, res.Files...)
			out.RequiredDirs = append(out.RequiredDirs, res.Dirs...)
			out.RequiredDevices = append(out.RequiredDevices, res.Devices...)
			out.ConfigTrees = append(out.ConfigTrees, res.ConfigTrees...)
			if len(res.Apis) > 0 {
				out.Warnings = append(out.Warnings, mkerrors.Deprecation(res.Apis[0].First.Loc,
					"requires: api: in an .adef is deprecated; declare the interface with extern: instead"))
			}
		case "provides":
			res, diag := ParseProvidesSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			if len(res) > 0 {
				out.Warnings = append(out.Warnings, mkerrors.Deprecation(res[0].First.Loc,
					"provides: in an .adef is deprecated; declare the interface with extern: instead"))
			}
		case "bundles":
			res, diag := ParseBundlesSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.BundledFiles = append(out.BundledFiles, res.Files...)
			out.BundledDirs = append(out.BundledDirs, res.Dirs...)
		case "pools":
			sec, diag := ParseComplexSection(lx, name, ParsePoolItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range sec.Items {
				out.Pools = append(out.Pools, *(it.(*parsetree.Pool)))
			}
			out.Sections = append(out.Sections, sec)
		case "groups":
			sec, diag := ParseTokenListSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			for _, t := range sec.Items {
				out.Groups = append(out.Groups, t.Text)
			}
			out.Sections = append(out.Sections, sec)
		case "version":
			sec, value, diag := ParseSimpleSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			out.Version = value.Text
			out.Sections = append(out.Sections, sec)
		case "sandboxed":
			sec, value, diag := ParseSimpleSection(lx, name, lexer.Boolean)
			if diag != nil {
				return nil, diag
			}
			b := value.Text == "true"
			out.Sandboxed = &b
			out.Sections = append(out.Sections, sec)
		case "start":
			sec, value, diag := ParseSimpleSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			out.StartManual = value.Text == "manual"
			out.Sections = append(out.Sections, sec)
		case "maxMemoryBytes":
			sec, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.MaxMemoryBytes = &n
			out.Sections = append(out.Sections, sec)
		case "maxFileDescriptors":
			sec, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.MaxFileDescs = &n
			out.Sections = append(out.Sections, sec)
		case "maxFileSystemBytes":
			sec, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.MaxFileSystemBytes = &n
			out.Sections = append(out.Sections, sec)
		case "maxCoreDumpFileBytes":
			sec, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.MaxCoreDumpFileBytes = &n
			out.Sections = append(out.Sections, sec)
		case "maxLockedMemoryBytes":
			sec, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.MaxLockedMemoryBytes = &n
			out.Sections = append(out.Sections, sec)
		case "startPriority":
			sec, value, diag := ParseSimpleSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			out.StartPriority = value.Text
			out.Sections = append(out.Sections, sec)
		case "maxPriority":
			sec, value, diag := ParseSimpleSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			out.MaxPriority = value.Text
			out.Sections = append(out.Sections, sec)
		case "watchdogAction":
			sec, value, diag := ParseSimpleSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			out.WatchdogAction = value.Text
			out.Sections = append(out.Sections, sec)
		case "watchdogTimeout":
			sec, n, diag := parseIntSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.WatchdogTimeoutMs = &n
			out.Sections = append(out.Sections, sec)
		default:
			if guess := suggest.Closest(name.Text, adefSectionNames); guess != "" {
				return nil, name.ThrowException("unrecognised .adef section %q (did you mean %q?)", name.Text, guess)
			}
			return nil, name.ThrowException("unrecognised .adef section %q", name.Text)
		}
	}
	return out, nil
}

// parseExecutableItem parses "name = ( comp comp comp )".
func parseExecutableItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
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
	if _, diag := lx.Pull(lexer.OpenParen); diag != nil {
		return nil, diag
	}
	exe := &parsetree.Executable{Base: parsetree.Base{First: name}, Name: name.Text}
	for !lx.IsMatch(lexer.CloseParen) {
		comp, diag := lx.Pull(lexer.FilePath)
		if diag != nil {
			return nil, diag
		}
		exe.ComponentPaths = append(exe.ComponentPaths, comp.Text)
	}
	close, diag := lx.Pull(lexer.CloseParen)
	if diag != nil {
		return nil, diag
	}
	exe.Last = close
	return exe, nil
}
