// Package configgen renders an App's resolved limits, processes,
// bindings, filesystem requirements, and assets into the "root.cfg" the
// runtime config daemon imports at install time (spec.md §4.5 "Config
// tree generator", §6 "Legato config-tree textual format, UTF-8"). The
// format is Legato's own: quoted node names, "{ }" containers, "!t"/"!f"
// booleans, and "[n]" integers. It is bespoke to the framework, so the
// writer is hand-rolled text; no serialisation library targets it.
package configgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/legato-af/mktools/internal/model"
)

// Options selects per-target behaviour of the generated tree.
type Options struct {
	// CrossBuild injects the log-client binding to user root that
	// on-target builds get from the running framework (spec.md §4.5 "For
	// cross-builds it auto-injects a binding of the log-client interface
	// to root").
	CrossBuild bool
}

// writer emits the config-tree text with brace-tracked indentation.
type writer struct {
	b      strings.Builder
	indent int
}

func (w *writer) line(format string, args ...any) {
	for i := 0; i < w.indent; i++ {
		w.b.WriteString("  ")
	}
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *writer) open(name string) {
	w.line("%q", name)
	w.line("{")
	w.indent++
}

func (w *writer) close() {
	w.indent--
	w.line("}")
}

func (w *writer) str(name, value string) { w.line("%q %q", name, value) }

func (w *writer) integer(name string, n int) { w.line("%q [%d]", name, n) }

func (w *writer) boolean(name string, v bool) {
	if v {
		w.line("%q !t", name)
	} else {
		w.line("%q !f", name)
	}
}

// Render produces the root.cfg bytes for one fully-modelled app.
func Render(app *model.App, opts Options) []byte {
	w := &writer{}

	if app.Version != "" {
		w.str("version", app.Version)
	}
	w.boolean("sandboxed", app.IsSandboxed)
	w.boolean("startManual", app.StartManual)
	w.integer("maxMemoryBytes", app.MaxMemoryBytes)
	w.integer("maxFileDescriptors", app.MaxFileDescs)
	if app.MaxFileSystemBytes > 0 {
		w.integer("maxFileSystemBytes", app.MaxFileSystemBytes)
	}
	if app.MaxCoreDumpFileBytes > 0 {
		w.integer("maxCoreDumpFileBytes", app.MaxCoreDumpFileBytes)
	}
	if app.MaxLockedMemoryBytes > 0 {
		w.integer("maxLockedMemoryBytes", app.MaxLockedMemoryBytes)
	}
	if app.WatchdogAction != "" {
		w.str("watchdogAction", app.WatchdogAction)
	}
	if app.WatchdogTimeoutMs > 0 {
		w.integer("watchdogTimeout", app.WatchdogTimeoutMs)
	}

	writeGroups(w, app.Groups)
	writeRequires(w, app)
	writeBundles(w, app)
	writeProcs(w, app)
	writeBindings(w, app, opts)
	writeConfigLimits(w, app)
	writeAssets(w, app)

	return []byte(w.b.String())
}

func writeGroups(w *writer, groups []string) {
	if len(groups) == 0 {
		return
	}
	w.open("groups")
	for i, g := range groups {
		w.str(fmt.Sprintf("%d", i), g)
	}
	w.close()
}

func writeFsItems(w *writer, name string, items []model.RequiredFileSystemItem) {
	if len(items) == 0 {
		return
	}
	w.open(name)
	for i, it := range items {
		w.open(fmt.Sprintf("%d", i))
		w.str("src", it.SrcPath)
		w.str("dest", it.DestPath)
		if it.Permissions != "" {
			w.str("perm", it.Permissions)
		}
		w.close()
	}
	w.close()
}

func writeRequires(w *writer, app *model.App) {
	if len(app.RequiredFiles) == 0 && len(app.RequiredDirs) == 0 && len(app.RequiredDevices) == 0 {
		return
	}
	w.open("requires")
	writeFsItems(w, "files", app.RequiredFiles)
	writeFsItems(w, "dirs", app.RequiredDirs)
	writeFsItems(w, "devices", app.RequiredDevices)
	w.close()
}

func writeBundles(w *writer, app *model.App) {
	if len(app.BundledFiles) == 0 && len(app.BundledDirs) == 0 {
		return
	}
	w.open("bundles")
	writeFsItems(w, "files", app.BundledFiles)
	writeFsItems(w, "dirs", app.BundledDirs)
	w.close()
}

func writeProcs(w *writer, app *model.App) {
	if len(app.ProcEnvs) == 0 {
		return
	}
	w.open("procs")
	for _, pe := range app.ProcEnvs {
		for _, p := range pe.Processes {
			w.open(p.Name)

			w.open("args")
			exePath := p.Name
			if p.Exe != nil {
				exePath = p.Exe.Name
			}
			w.str("0", exePath)
			for i, a := range p.Args {
				w.str(fmt.Sprintf("%d", i+1), a)
			}
			w.close()

			if len(pe.EnvVars) > 0 {
				w.open("envVars")
				for _, e := range sortedEnvVars(pe.EnvVars) {
					w.str(e.Name, e.Value)
				}
				w.close()
			}

			if pe.StartPriority != "" {
				w.str("priority", pe.StartPriority)
			}
			if pe.MaxPriority != "" {
				w.str("maxPriority", pe.MaxPriority)
			}
			if pe.FaultAction != "" {
				w.str("faultAction", pe.FaultAction)
			}
			if pe.MaxCoreDumpFileBytes > 0 {
				w.integer("maxCoreDumpFileBytes", pe.MaxCoreDumpFileBytes)
			}
			if pe.MaxFileBytes > 0 {
				w.integer("maxFileBytes", pe.MaxFileBytes)
			}
			if pe.MaxFileDescs > 0 {
				w.integer("maxFileDescriptors", pe.MaxFileDescs)
			}
			if pe.WatchdogAction != "" {
				w.str("watchdogAction", pe.WatchdogAction)
			}
			if pe.WatchdogTimeoutMs > 0 {
				w.integer("watchdogTimeout", pe.WatchdogTimeoutMs)
			}

			w.close()
		}
	}
	w.close()
}

func sortedEnvVars(vars []model.EnvVar) []model.EnvVar {
	out := append([]model.EnvVar{}, vars...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// bindingNode is one rendered "bindings" child, keyed by the client
// interface name.
type bindingNode struct {
	client string
	isUser bool
	agent  string
	ifName string
}

func writeBindings(w *writer, app *model.App, opts Options) {
	var nodes []bindingNode
	for _, b := range app.Bindings {
		nodes = append(nodes, bindingNode{
			client: clientKey(b),
			isUser: !serverIsApp(b),
			agent:  serverAgent(b),
			ifName: serverInterface(b),
		})
	}
	if opts.CrossBuild && !hasClient(nodes, "LogClient") {
		nodes = append(nodes, bindingNode{client: "LogClient", isUser: true, agent: "root", ifName: "LogClient"})
	}
	if len(nodes) == 0 {
		return
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].client < nodes[j].client })

	w.open("bindings")
	for _, n := range nodes {
		w.open(n.client)
		if n.isUser {
			w.str("user", n.agent)
		} else {
			w.str("app", n.agent)
		}
		w.str("interface", n.ifName)
		w.close()
	}
	w.close()
}

func hasClient(nodes []bindingNode, name string) bool {
	for _, n := range nodes {
		if n.client == name {
			return true
		}
	}
	return false
}

func clientKey(b *model.Binding) string {
	if b.Client.Iface != nil {
		if b.Client.Iface.Name != "" {
			return b.Client.Iface.Name
		}
		return b.Client.Iface.Alias
	}
	return b.Client.ExternalAlias
}

func serverIsApp(b *model.Binding) bool {
	if b.Server.IsExternal {
		return !b.Server.ExternalAgentIsUser
	}
	return true
}

func serverAgent(b *model.Binding) string {
	if b.Server.IsExternal {
		return strings.TrimSuffix(strings.TrimPrefix(b.Server.ExternalAgentName, "<"), ">")
	}
	if b.Server.Exe != nil && b.Server.Exe.App != nil {
		return b.Server.Exe.App.Name
	}
	return ""
}

func serverInterface(b *model.Binding) string {
	if b.Server.IsExternal {
		return b.Server.ExternalAlias
	}
	if b.Server.Iface != nil {
		return b.Server.Iface.Alias
	}
	return ""
}

func writeConfigLimits(w *writer, app *model.App) {
	if len(app.ConfigTrees) == 0 {
		return
	}
	w.open("configLimits")
	w.open("acl")
	for _, ct := range app.ConfigTrees {
		name := app.Name // "." means the app's own tree
		if ct.Tree != nil {
			name = ct.Tree.Name
		}
		access := "read"
		if ct.Writable {
			access = "write"
		}
		w.str(name, access)
	}
	w.close()
	w.close()
}

func writeAssets(w *writer, app *model.App) {
	var assets []model.Asset
	seen := map[*model.Component]bool{}
	for _, exe := range app.Exes {
		for _, ci := range exe.Components {
			if seen[ci.Component] {
				continue
			}
			seen[ci.Component] = true
			assets = append(assets, ci.Component.Assets...)
		}
	}
	if len(assets) == 0 {
		return
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })

	w.open("assets")
	for _, a := range assets {
		w.open(a.Name)
		if len(a.Settings) > 0 {
			w.open("settings")
			for _, k := range sortedKeys(a.Settings) {
				w.str(k, a.Settings[k])
			}
			w.close()
		}
		if len(a.Variables) > 0 {
			w.open("variables")
			for _, v := range a.Variables {
				w.open(v.Name)
				w.str("type", v.Type)
				if v.Default != "" {
					w.str("default", v.Default)
				}
				w.close()
			}
			w.close()
		}
		if len(a.Commands) > 0 {
			w.open("commands")
			for i, c := range a.Commands {
				w.str(fmt.Sprintf("%d", i), c)
			}
			w.close()
		}
		w.close()
	}
	w.close()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
