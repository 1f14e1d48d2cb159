// Package adefgen re-serialises a resolved App model back into a
// binary-redistributable .adef (spec.md §4.5 "Exported-adef generator"):
// rewrites bundled-file source paths to their post-install locations,
// emits the extern: block only when non-empty, skips default-valued
// limits, and preserves executable/component composition.
package adefgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/legato-af/mktools/internal/model"
)

// Render produces the exported .adef text for app. installPrefix is the
// post-install root bundled-file source paths are rewritten under (e.g.
// "/legato/systems/current/apps/<app>/read-only").
func Render(app *model.App, installPrefix string) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "// Exported by mkTools from %s. Do not edit.\n\n", app.Name)

	if app.Version != "" {
		fmt.Fprintf(&b, "version: %s\n", app.Version)
	}
	fmt.Fprintf(&b, "sandboxed: %t\n", app.IsSandboxed)
	if app.MaxMemoryBytes != model.DefaultMaxMemoryBytes {
		fmt.Fprintf(&b, "maxMemoryBytes: %d\n", app.MaxMemoryBytes)
	}
	if app.MaxFileDescs != model.DefaultMaxFileDescs {
		fmt.Fprintf(&b, "maxFileDescriptors: %d\n", app.MaxFileDescs)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "executables:\n{\n")
	for _, exe := range app.Exes {
		fmt.Fprintf(&b, "\t%s = (\n", exe.Name)
		for _, ci := range exe.Components {
			fmt.Fprintf(&b, "\t\t%s\n", ci.Component.Dir)
		}
		fmt.Fprintf(&b, "\t)\n")
	}
	fmt.Fprintf(&b, "}\n\n")

	if len(app.BundledFiles) > 0 || len(app.BundledDirs) > 0 {
		fmt.Fprintf(&b, "bundles:\n{\n")
		if len(app.BundledFiles) > 0 {
			fmt.Fprintf(&b, "\tfile:\n\t{\n")
			for _, f := range app.BundledFiles {
				fmt.Fprintf(&b, "\t\t%s %s\n", rewriteSrcPath(f.SrcPath, installPrefix), f.DestPath)
			}
			fmt.Fprintf(&b, "\t}\n")
		}
		if len(app.BundledDirs) > 0 {
			fmt.Fprintf(&b, "\tdir:\n\t{\n")
			for _, d := range app.BundledDirs {
				fmt.Fprintf(&b, "\t\t%s %s\n", rewriteSrcPath(d.SrcPath, installPrefix), d.DestPath)
			}
			fmt.Fprintf(&b, "\t}\n")
		}
		fmt.Fprintf(&b, "}\n\n")
	}

	if len(app.Externs) > 0 {
		externs := append([]model.ExternInterface{}, app.Externs...)
		sort.Slice(externs, func(i, j int) bool { return externs[i].ExternalName < externs[j].ExternalName })
		fmt.Fprintf(&b, "extern:\n{\n")
		for _, e := range externs {
			owner := ""
			exeName := ""
			if e.Iface.Owner != nil {
				owner = e.Iface.Owner.Component.Name
				if e.Iface.Owner.Exe != nil {
					exeName = e.Iface.Owner.Exe.Name
				}
			}
			fmt.Fprintf(&b, "\t%s.%s.%s = %s\n", exeName, owner, e.Iface.Alias, e.ExternalName)
		}
		fmt.Fprintf(&b, "}\n")
	}

	return []byte(b.String())
}

// rewriteSrcPath rewrites a bundled-file source path to its post-install
// on-target location under installPrefix (spec.md §4.5 "rewrites
// bundled-file source paths to their post-install locations").
func rewriteSrcPath(src, installPrefix string) string {
	base := src
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	return strings.TrimRight(installPrefix, "/") + "/" + base
}
