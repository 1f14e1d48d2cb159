package maingen

import (
	"fmt"
	"strings"

	"github.com/legato-af/mktools/internal/model"
)

// ExeMain renders one executable's generated "_main.c": sets argv,
// registers logging, connects to the log daemon (unless NO_LOG_CONTROL is
// set), dlopen(RTLD_LAZY|RTLD_GLOBAL)s every component's shared library in
// dependency order, installs stack-dump and SIGTERM handlers, runs the
// event loop, and asserts unreachable afterward (spec.md §4.5 "Exe main
// generator"). main() does not queue any component init function itself.
func ExeMain(exe *model.Exe) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "// Generated by mkTools. Do not edit.\n\n")
	fmt.Fprintf(&b, "#include <dlfcn.h>\n#include \"legato.h\"\n\n")
	fmt.Fprintf(&b, "static int ArgC;\nstatic char **ArgV;\n\n")

	fmt.Fprintf(&b, "static void StopHandler(int sigNum)\n{\n")
	fmt.Fprintf(&b, "\tLE_INFO(\"Terminated by signal %%d.\", sigNum);\n")
	fmt.Fprintf(&b, "\texit(EXIT_SUCCESS);\n}\n\n")

	fmt.Fprintf(&b, "static void LoadComponents(void)\n{\n")
	for _, ci := range exe.Components {
		fmt.Fprintf(&b, "\tif (!dlopen(\"lib%s.so\", RTLD_LAZY | RTLD_GLOBAL))\n", ci.Component.Name)
		fmt.Fprintf(&b, "\t{\n\t\tLE_FATAL(\"could not load component library lib%s.so: %%s\", dlerror());\n\t}\n", ci.Component.Name)
	}
	fmt.Fprintf(&b, "}\n\n")

	fmt.Fprintf(&b, "int main(int argc, char **argv)\n{\n")
	fmt.Fprintf(&b, "\tArgC = argc;\n\tArgV = argv;\n\n")
	fmt.Fprintf(&b, "\tle_log_SetFilenameVar(\"%s\");\n", exe.Name)
	fmt.Fprintf(&b, "\tif (getenv(\"NO_LOG_CONTROL\") == NULL)\n\t{\n\t\tle_log_ConnectToLogControlDaemon(\"%s\");\n\t}\n\n", exe.Name)
	fmt.Fprintf(&b, "\tLoadComponents();\n\n")
	fmt.Fprintf(&b, "\tle_sig_InstallShowStackHandler();\n")
	fmt.Fprintf(&b, "\tle_sig_Block(SIGTERM);\n\tle_sig_SetEventHandler(SIGTERM, StopHandler);\n")
	fmt.Fprintf(&b, "\tle_event_RunLoop();\n\n")
	fmt.Fprintf(&b, "\tLE_FATAL(\"event loop returned\");\n")
	fmt.Fprintf(&b, "}\n")

	return []byte(b.String())
}
