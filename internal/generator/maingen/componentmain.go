// Package maingen emits the generated C entry points spec.md §4.5 names:
// a per-component "_componentMain.c" and a per-exe "_main.c". Both are
// plain string-built C source, matching the teacher's own code-generation
// style elsewhere in the pack (no templating library in play).
package maingen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/legato-af/mktools/internal/model"
)

// ComponentMain renders one component instance's "_componentMain.c": weak
// one-time init hook, constructor-attribute library-init function that
// advertises server interfaces, connects client interfaces (except
// manual-start ones), registers with the log daemon, and queues
// COMPONENT_INIT_ONCE then COMPONENT_INIT onto the event loop (spec.md
// §4.5 "Component main generator").
func ComponentMain(ci *model.ComponentInstance) []byte {
	var b strings.Builder
	name := ci.Component.Name

	fmt.Fprintf(&b, "// Generated by mkTools. Do not edit.\n\n")
	fmt.Fprintf(&b, "#include \"legato.h\"\n#include \"interfaces.h\"\n\n")

	for _, iface := range sortedProvided(ci.ProvidedIfaces) {
		fmt.Fprintf(&b, "extern const char *%s_ServiceInstanceName;\n", iface.Alias)
	}
	for _, iface := range sortedRequired(ci.RequiredIfaces) {
		fmt.Fprintf(&b, "extern const char *%s_ServiceInstanceName;\n", iface.Alias)
	}

	fmt.Fprintf(&b, "\nCOMPONENT_INIT_ONCE __attribute__((weak));\nvoid COMPONENT_INIT_ONCE(void) {}\n\n")
	fmt.Fprintf(&b, "void COMPONENT_INIT(void);\n\n")

	fmt.Fprintf(&b, "__attribute__((constructor)) static void %s_Init(void)\n{\n", name)
	for _, iface := range sortedProvided(ci.ProvidedIfaces) {
		fmt.Fprintf(&b, "\t%s_AdvertiseService();\n", iface.Alias)
	}
	for _, iface := range sortedRequired(ci.RequiredIfaces) {
		if iface.ManualStart {
			continue
		}
		fmt.Fprintf(&b, "\t%s_ConnectService();\n", iface.Alias)
	}
	fmt.Fprintf(&b, "\tle_log_ConnectToLogControlDaemon(\"%s\");\n", name)
	fmt.Fprintf(&b, "\tle_event_QueueFunction((le_event_Func_t)COMPONENT_INIT_ONCE, NULL, NULL);\n")
	fmt.Fprintf(&b, "\tle_event_QueueFunction((le_event_Func_t)COMPONENT_INIT, NULL, NULL);\n")
	fmt.Fprintf(&b, "}\n")

	return []byte(b.String())
}

func sortedProvided(ifaces []*model.ApiInterfaceInstance) []*model.ApiInterfaceInstance {
	out := append([]*model.ApiInterfaceInstance{}, ifaces...)
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}

func sortedRequired(ifaces []*model.ApiInterfaceInstance) []*model.ApiInterfaceInstance {
	out := append([]*model.ApiInterfaceInstance{}, ifaces...)
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}
