package parser

import (
	"os"
	"regexp"

	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/parsetree"
)

// .api files are written in the separate IPC interface-definition
// language (types, functions, handlers), not the "name: { ... }"
// definition-file grammar internal/lexer implements. The pipeline never
// needs a full .api parse: codegen treats an API file's body as opaque
// and only needs the USETYPES closure to lay out generated interface
// headers (spec.md glossary "API file"), so ParseApiHeader scans just
// that directive rather than standing up a second lexer/parser pair for
// a language the rest of the tool never interprets.
var reUseTypes = regexp.MustCompile(`(?m)^\s*USETYPES\s+"([^"]+)"\s*;`)

// ParseApiHeader extracts the USETYPES closure from a .api file without
// parsing its body.
func ParseApiHeader(path string) (*parsetree.ApiFileHeader, *mkerrors.Diagnostic) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mkerrors.IO(mkerrors.Location{File: path}, "read .api file", err)
	}
	hdr := &parsetree.ApiFileHeader{Path: path}
	for _, m := range reUseTypes.FindAllSubmatch(data, -1) {
		hdr.UseTypes = append(hdr.UseTypes, string(m[1]))
	}
	return hdr, nil
}
