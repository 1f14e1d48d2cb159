package maingen

import (
	"fmt"
	"strings"

	"github.com/legato-af/mktools/internal/model"
)

// LauncherPy renders one executable's generated "main.py": the
// structural equivalent of ExeMain for an executable whose default
// component is Python (spec.md §4.5 "Java / Python variants … a
// launcher main.py per exe"). It imports every component module in
// dependency order and calls each one's componentInit() the same way
// ExeMain queues COMPONENT_INIT for C components.
func LauncherPy(exe *model.Exe) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "#!/usr/bin/env python3\n")
	fmt.Fprintf(&b, "# Generated by mkTools. Do not edit.\n\n")
	fmt.Fprintf(&b, "import legato\n\n")

	for _, ci := range exe.Components {
		if !ci.Component.HasPythonCode() {
			continue
		}
		fmt.Fprintf(&b, "import %s\n", ci.Component.Name)
	}
	fmt.Fprintf(&b, "\n\ndef main():\n")
	for _, ci := range exe.Components {
		if !ci.Component.HasPythonCode() {
			continue
		}
		fmt.Fprintf(&b, "    %s.componentInit()\n", ci.Component.Name)
	}
	fmt.Fprintf(&b, "    legato.RunLoop()\n\n\n")
	fmt.Fprintf(&b, "if __name__ == \"__main__\":\n    main()\n")

	return []byte(b.String())
}
