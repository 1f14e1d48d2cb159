// Package ifgen emits a component's "interfaces.h", the header that
// #includes one client-, server-, or types-only header per API the
// component uses (spec.md §4.5 "Interface header generator").
package ifgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/legato-af/mktools/internal/model"
)

// Render builds the interfaces.h contents for comp. Includes are sorted
// by generated header name so repeated runs are byte-identical (spec.md
// §5 ordering guarantee 4).
func Render(comp *model.Component) []byte {
	var b strings.Builder
	guard := fmt.Sprintf("%s_INTERFACES_H_INCLUDE_GUARD", strings.ToUpper(comp.Name))
	fmt.Fprintf(&b, "#ifndef %s\n#define %s\n\n", guard, guard)

	var headers []string
	for _, iface := range comp.RequiredApis {
		headers = append(headers, headerFor(iface))
	}
	for _, iface := range comp.ProvidedApis {
		headers = append(headers, headerFor(iface))
	}
	sort.Strings(headers)
	for _, h := range headers {
		fmt.Fprintf(&b, "#include \"%s\"\n", h)
	}

	fmt.Fprintf(&b, "\n#endif // %s\n", guard)
	return []byte(b.String())
}

// headerFor derives the generated per-API header name: types-only APIs
// get "_types.h", client/server APIs get a suffix naming which side, so
// two components requiring and providing the same API don't collide on
// one generated file (spec.md §4.5 generator catalogue).
func headerFor(iface *model.ApiInterfaceInstance) string {
	base := apiBaseName(iface.Api.Path)
	switch {
	case iface.TypesOnly:
		return base + "_types.h"
	case iface.IsProvided:
		return base + "_server.h"
	default:
		return base + "_client.h"
	}
}

func apiBaseName(path string) string {
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
