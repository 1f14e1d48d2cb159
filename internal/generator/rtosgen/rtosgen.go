// Package rtosgen emits the RTOS system generator's artifacts (spec.md
// §4.5 "RTOS system generator"): a tasks.c listing every app task with
// its argv array, a global _le_supervisor_SystemApps array terminated by
// a NULL entry, a CLI command registration block, an
// _le_supervisor_InitAllServices function, and a linker script PROVIDE-ing
// NULL weak symbols for optional client interfaces no server supplies
// (spec.md §8 scenario 6).
package rtosgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/legato-af/mktools/internal/model"
)

// MangleInterfaceName derives the stable C-symbol-safe name used by both
// the tasks.c service registration block and the linker script's weak
// symbol ("exe.component.alias" with every "." turned into "_", spec.md
// SPEC_FULL.md supplemented-features note "the mangled name derivation...
// must be stable and tested").
func MangleInterfaceName(exeName, compName, alias string) string {
	return strings.ReplaceAll(fmt.Sprintf("%s.%s.%s", exeName, compName, alias), ".", "_")
}

// TasksC renders tasks.c for a whole system: one task entry per app
// executable, apps sorted by name for determinism (spec.md §5 ordering
// guarantee 4) and each app's exes in its .adef order.
func TasksC(sys *model.System) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "// Generated by mkTools. Do not edit.\n\n#include \"legato.h\"\n\n")

	apps := append([]*model.App{}, sys.Apps...)
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })

	for _, app := range apps {
		for _, exe := range app.Exes {
			fmt.Fprintf(&b, "static const char *%s_%s_argv[] = { \"%s\", NULL };\n", app.Name, exe.Name, exe.Name)
		}
	}

	fmt.Fprintf(&b, "\nconst le_supervisor_SystemApp_t _le_supervisor_SystemApps[] =\n{\n")
	for _, app := range apps {
		for _, exe := range app.Exes {
			fmt.Fprintf(&b, "\t{ .appName = \"%s\", .exeName = \"%s\", .argv = %s_%s_argv },\n", app.Name, exe.Name, app.Name, exe.Name)
		}
	}
	fmt.Fprintf(&b, "\t{ .appName = NULL },\n};\n\n")

	if len(sys.Commands) > 0 {
		cmds := append([]*model.Command{}, sys.Commands...)
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
		fmt.Fprintf(&b, "void _le_supervisor_RegisterCliCommands(void)\n{\n")
		for _, c := range cmds {
			exeName := ""
			appName := ""
			if c.Exe != nil {
				exeName = c.Exe.Name
				if c.Exe.App != nil {
					appName = c.Exe.App.Name
				}
			}
			fmt.Fprintf(&b, "\tle_cli_AddCommand(\"%s\", \"%s\", \"%s\");\n", c.Name, appName, exeName)
		}
		fmt.Fprintf(&b, "}\n\n")
	}

	fmt.Fprintf(&b, "void _le_supervisor_InitAllServices(void)\n{\n")
	for _, app := range apps {
		for _, exe := range app.Exes {
			for _, ci := range exe.Components {
				for _, iface := range ci.ProvidedIfaces {
					fmt.Fprintf(&b, "\t%s_AdvertiseService();\n", MangleInterfaceName(exe.Name, ci.Component.Name, iface.Alias))
				}
			}
		}
	}
	fmt.Fprintf(&b, "}\n")

	return []byte(b.String())
}

// LinkerScript renders legato.ld: a PROVIDE(name = 0) weak-symbol stub
// for every client interface that is optional and unbound, so a binary
// that never ends up wired to a real server still links (spec.md §8
// scenario 6, Testable Property 5 does not apply to these since they
// never resolve to a server).
func LinkerScript(sys *model.System) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "/* Generated by mkTools. Do not edit. */\n\n")

	var symbols []string
	for _, app := range sys.Apps {
		for _, exe := range app.Exes {
			for _, ci := range exe.Components {
				for _, iface := range ci.RequiredIfaces {
					if iface.Optional && iface.Bound == nil {
						symbols = append(symbols, MangleInterfaceName(exe.Name, ci.Component.Name, iface.Alias))
					}
				}
			}
		}
	}
	sort.Strings(symbols)
	for _, s := range symbols {
		fmt.Fprintf(&b, "PROVIDE(%s = 0);\n", s)
	}
	return []byte(b.String())
}
