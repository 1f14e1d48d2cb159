package maingen

import (
	"fmt"
	"strings"

	"github.com/legato-af/mktools/internal/model"
)

// FactoryJava renders one component instance's generated "Factory.java":
// the structural equivalent of ComponentMain for a Java component (spec.md
// §4.5 "Java / Python variants … generate a Factory.java per component").
// It advertises the same server interfaces and connects the same client
// interfaces as the C component main, through the Java IPC bindings
// generated alongside it.
func FactoryJava(ci *model.ComponentInstance) []byte {
	var b strings.Builder
	name := ci.Component.Name

	fmt.Fprintf(&b, "// Generated by mkTools. Do not edit.\n\n")
	fmt.Fprintf(&b, "package io.legato.generated.%s;\n\n", name)
	fmt.Fprintf(&b, "import io.legato.LegatoException;\n\n")
	fmt.Fprintf(&b, "public final class Factory\n{\n")
	fmt.Fprintf(&b, "    public static void componentInit() throws LegatoException\n    {\n")
	for _, iface := range sortedProvided(ci.ProvidedIfaces) {
		fmt.Fprintf(&b, "        %s.AdvertiseService();\n", javaIfaceClass(iface.Alias))
	}
	for _, iface := range sortedRequired(ci.RequiredIfaces) {
		if iface.ManualStart {
			continue
		}
		fmt.Fprintf(&b, "        %s.ConnectService();\n", javaIfaceClass(iface.Alias))
	}
	fmt.Fprintf(&b, "        %s.init();\n", name)
	fmt.Fprintf(&b, "    }\n}\n")

	return []byte(b.String())
}

func javaIfaceClass(alias string) string {
	if alias == "" {
		return alias
	}
	return strings.ToUpper(alias[:1]) + alias[1:]
}
