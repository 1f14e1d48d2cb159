package parser

import (
	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/lexer"
	"github.com/legato-af/mktools/internal/parsetree"
	"github.com/legato-af/mktools/internal/suggest"
)

var cdefSectionNames = []string{
	"sources", "cflags", "cxxflags", "ldflags", "requires", "provides", "bundles", "assets",
}

// ParseCdef parses a whole .cdef file.
func ParseCdef(path string, searchDirs []string) (*parsetree.CdefFile, *mkerrors.Diagnostic) {
	lx, err := lexer.New(path, searchDirs)
	if err != nil {
		return nil, mkerrors.IO(mkerrors.Location{File: path}, "open .cdef", err)
	}
	out := &parsetree.CdefFile{File: parsetree.File{Path: path, Fragment: lx.Root()}}

	for !lx.IsMatch(lexer.EndOfFile) {
		name, diag := sectionName(lx)
		if diag != nil {
			return nil, diag
		}
		switch name.Text {
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
		case "cxxflags":
			sec, diag := ParseTokenListSection(lx, name, lexer.Arg)
			if diag != nil {
				return nil, diag
			}
			for _, t := range sec.Items {
				out.CxxFlags = append(out.CxxFlags, t.Text)
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
		case "requires":
			res, diag := ParseRequiresSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.RequiredApis = append(out.RequiredApis, res.Apis...)
			out.RequiredFiles = append(out.RequiredFiles, res.Files...)
			out.RequiredDirs = append(out.RequiredDirs, res.Dirs...)
			out.RequiredDevices = append(out.RequiredDevices, res.Devices...)
			out.SubComponents = append(out.SubComponents, res.Components...)
		case "provides":
			if _, diag := lx.Pull(lexer.Colon); diag != nil {
				return nil, diag
			}
			if _, diag := lx.Pull(lexer.OpenCurly); diag != nil {
				return nil, diag
			}
			for !lx.IsMatch(lexer.CloseCurly) {
				sub, diag := sectionName(lx)
				if diag != nil {
					return nil, diag
				}
				if sub.Text != "api" {
					return nil, sub.ThrowException("unrecognised provides: sub-section %q", sub.Text)
				}
				list, diag := ParseNamedComplexSection(lx, sub, parseProvidedApiItem)
				if diag != nil {
					return nil, diag
				}
				for _, it := range list.Items {
					out.ProvidedApis = append(out.ProvidedApis, *(it.(*parsetree.ProvidedApi)))
				}
			}
			if _, diag := lx.Pull(lexer.CloseCurly); diag != nil {
				return nil, diag
			}
		case "bundles":
			res, diag := ParseBundlesSection(lx, name)
			if diag != nil {
				return nil, diag
			}
			out.BundledFiles = append(out.BundledFiles, res.Files...)
			out.BundledDirs = append(out.BundledDirs, res.Dirs...)
		case "assets":
			sec, diag := ParseComplexSection(lx, name, ParseAssetItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range sec.Items {
				out.Assets = append(out.Assets, *(it.(*parsetree.Asset)))
			}
			out.Sections = append(out.Sections, sec)
		default:
			if guess := suggest.Closest(name.Text, cdefSectionNames); guess != "" {
				return nil, name.ThrowException("unrecognised .cdef section %q (did you mean %q?)", name.Text, guess)
			}
			return nil, name.ThrowException("unrecognised .cdef section %q", name.Text)
		}
	}
	return out, nil
}
