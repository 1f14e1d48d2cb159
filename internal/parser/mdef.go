package parser

import (
	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/lexer"
	"github.com/legato-af/mktools/internal/parsetree"
	"github.com/legato-af/mktools/internal/suggest"
)

var mdefSectionNames = []string{"preBuilt", "sources", "cflags", "ldflags", "koFlags", "params"}

// ParseMdef parses a whole .mdef file.
func ParseMdef(path string, searchDirs []string) (*parsetree.MdefFile, *mkerrors.Diagnostic) {
	lx, err := lexer.New(path, searchDirs)
	if err != nil {
		return nil, mkerrors.IO(mkerrors.Location{File: path}, "open .mdef", err)
	}
	out := &parsetree.MdefFile{File: parsetree.File{Path: path, Fragment: lx.Root()}}

	for !lx.IsMatch(lexer.EndOfFile) {
		name, diag := sectionName(lx)
		if diag != nil {
			return nil, diag
		}
		switch name.Text {
		case "preBuilt":
			sec, diag := ParseTokenListSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			out.PreBuilt = append(out.PreBuilt, sec.Items...)
			out.Sections = append(out.Sections, sec)
		case "sources":
			sec, diag := ParseTokenListSection(lx, name, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			out.Sources = append(out.Sources, sec.Items...)
			out.Sections = append(out.Sections, sec)
		case "cflags":
			sec, diag := ParseTokenListSection(lx, name, lexer.Arg)
			if diag != nil {
				return nil, diag
			}
			for _, t := range sec.Items {
				out.CFlags = append(out.CFlags, t.Text)
			}
			out.Sections = append(out.Sections, sec)
		case "ldflags":
			sec, diag := ParseTokenListSection(lx, name, lexer.Arg)
			if diag != nil {
				return nil, diag
			}
			for _, t := range sec.Items {
				out.LdFlags = append(out.LdFlags, t.Text)
			}
			out.Sections = append(out.Sections, sec)
		case "koFlags":
			sec, diag := ParseTokenListSection(lx, name, lexer.Arg)
			if diag != nil {
				return nil, diag
			}
			for _, t := range sec.Items {
				out.KoFlags = append(out.KoFlags, t.Text)
			}
			out.Sections = append(out.Sections, sec)
		case "params":
			sec, diag := ParseComplexSection(lx, name, parseModuleParamItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range sec.Items {
				out.Params = append(out.Params, *(it.(*parsetree.ModuleParam)))
			}
			out.Sections = append(out.Sections, sec)
		default:
			if guess := suggest.Closest(name.Text, mdefSectionNames); guess != "" {
				return nil, name.ThrowException("unrecognised .mdef section %q (did you mean %q?)", name.Text, guess)
			}
			return nil, name.ThrowException("unrecognised .mdef section %q", name.Text)
		}
	}
	return out, nil
}

func parseModuleParamItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
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
	value, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	return &parsetree.ModuleParam{
		Base: parsetree.Base{First: name, Last: value}, Name: name.Text, Value: value.Text,
	}, nil
}
