package modeller

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/model"
	"github.com/legato-af/mktools/internal/parsetree"
	"github.com/legato-af/mktools/internal/testutil"
)

func TestBuildAppMinimal(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)

	m := New("testsys", nil)
	app, bindings, diag := m.BuildApp(dir + "/hello.adef")
	require.Nil(t, diag)
	require.Empty(t, bindings)

	require.Len(t, app.Exes, 1)
	exe := app.Exes[0]
	assert.Equal(t, "helloExe", exe.Name)
	require.Len(t, exe.Components, 1)
	assert.Equal(t, "helloComponent", exe.Components[0].Component.Name)

	procs := app.AllProcesses()
	require.Len(t, procs, 1)
	assert.Equal(t, exe, procs[0].Exe)

	assert.True(t, app.IsSandboxed)
	assert.Equal(t, model.DefaultMaxMemoryBytes, app.MaxMemoryBytes)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSubComponentInitOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/base", 0o755))
	require.NoError(t, os.MkdirAll(dir+"/top", 0o755))
	writeFile(t, dir+"/base/Component.cdef", "sources:\n{\n\tbase.c\n}\n")
	writeFile(t, dir+"/base/base.c", "")
	writeFile(t, dir+"/top/Component.cdef", "sources:\n{\n\ttop.c\n}\nrequires:\n{\n\tcomponent:\n\t{\n\t\t../base\n\t}\n}\n")
	writeFile(t, dir+"/top/top.c", "")
	writeFile(t, dir+"/app.adef", "executables:\n{\n\tmyExe = ( top )\n}\n")

	m := New("testsys", nil)
	app, _, diag := m.BuildApp(dir + "/app.adef")
	require.Nil(t, diag)

	require.Len(t, app.Exes[0].Components, 2)
	assert.Equal(t, "base", app.Exes[0].Components[0].Component.Name)
	assert.Equal(t, "top", app.Exes[0].Components[1].Component.Name)
}

func TestResolveBindingsInternal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/client", 0o755))
	require.NoError(t, os.MkdirAll(dir+"/server", 0o755))
	writeFile(t, dir+"/client/Component.cdef", "sources:\n{\n\tclient.c\n}\nrequires:\n{\n\tapi:\n\t{\n\t\tiface = iface.api\n\t}\n}\n")
	writeFile(t, dir+"/client/client.c", "")
	writeFile(t, dir+"/client/iface.api", "FUNCTION Foo();\n")
	writeFile(t, dir+"/server/Component.cdef", "sources:\n{\n\tserver.c\n}\nprovides:\n{\n\tapi:\n\t{\n\t\tiface = ../client/iface.api\n\t}\n}\n")
	writeFile(t, dir+"/server/server.c", "")
	writeFile(t, dir+"/app.adef", `executables:
{
	clientExe = ( client )
	serverExe = ( server )
}
bindings:
{
	clientExe . client . iface -> serverExe . server . iface
}
`)

	m := New("testsys", nil)
	app, bindings, diag := m.BuildApp(dir + "/app.adef")
	require.Nil(t, diag)
	require.Len(t, bindings, 1)

	diag = m.ResolveBindings(map[*model.App][]parsetree.Binding{app: bindings})
	require.Nil(t, diag)
	require.Len(t, app.Bindings, 1)

	b := app.Bindings[0]
	assert.Equal(t, "clientExe", b.Client.Exe.Name)
	assert.Equal(t, "serverExe", b.Server.Exe.Name)
	assert.NotNil(t, b.Client.Iface.Bound)

	var bag mkerrors.Bag
	AuditUnboundInterfaces(app, &bag)
	assert.False(t, bag.HasFatal())
}

func TestPriorityClamp(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)
	writeFile(t, dir+"/hello.adef", "executables:\n{\n\thelloExe = ( helloComponent )\n}\nprocesses:\n{\n\trun:\n\t{\n\t\thelloExe\n\t}\n}\nmaxPriority: medium\nstartPriority: high\n")

	m := New("testsys", nil)
	app, _, diag := m.BuildApp(dir + "/hello.adef")
	require.Nil(t, diag)
	assert.Equal(t, "medium", app.StartPriority)
	require.Len(t, m.Bag.Warnings(), 1)
	assert.Contains(t, m.Bag.Warnings()[0].Message, "clamping")
}

func TestValidPriorityBoundary(t *testing.T) {
	assert.True(t, ValidPriority("rt32"))
	assert.False(t, ValidPriority("rt33"))
	assert.False(t, ValidPriority("rt0"))
}

func TestProcessBlockPriorityClampedToAppCeiling(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)
	writeFile(t, dir+"/hello.adef", "executables:\n{\n\thelloExe = ( helloComponent )\n}\nprocesses:\n{\n\trun:\n\t{\n\t\thelloExe\n\t}\n\tpriority: high\n}\nmaxPriority: medium\n")

	m := New("testsys", nil)
	app, _, diag := m.BuildApp(dir + "/hello.adef")
	require.Nil(t, diag)
	require.Len(t, app.ProcEnvs, 1)
	assert.Equal(t, "medium", app.ProcEnvs[0].StartPriority)
	require.NotEmpty(t, m.Bag.Warnings())
	assert.Contains(t, m.Bag.Warnings()[0].Message, "clamping")
}

func TestInvalidProcessPriorityIsFatal(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)
	writeFile(t, dir+"/hello.adef", "executables:\n{\n\thelloExe = ( helloComponent )\n}\nprocesses:\n{\n\trun:\n\t{\n\t\thelloExe\n\t}\n\tpriority: rt33\n}\n")

	m := New("testsys", nil)
	_, _, diag := m.BuildApp(dir + "/hello.adef")
	require.NotNil(t, diag)
	assert.Contains(t, diag.Error(), "invalid priority")
}

func TestProcessNameLengthBoundary(t *testing.T) {
	atLimit := strings.Repeat("p", model.LimitMaxProcessNameLen)
	overLimit := atLimit + "p"

	build := func(name string) *mkerrors.Diagnostic {
		dir := t.TempDir()
		testutil.MinimalApp().Create(t, dir)
		writeFile(t, dir+"/hello.adef", "executables:\n{\n\thelloExe = ( helloComponent )\n}\nprocesses:\n{\n\trun:\n\t{\n\t\t"+name+" = helloExe\n\t}\n}\n")
		m := New("testsys", nil)
		_, _, diag := m.BuildApp(dir + "/hello.adef")
		return diag
	}

	assert.Nil(t, build(atLimit))
	diag := build(overLimit)
	require.NotNil(t, diag)
	assert.Contains(t, diag.Error(), "longer than")
}

func TestAuditLimitsWarnsOnIncoherentFileSizeCeilings(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)
	writeFile(t, dir+"/hello.adef", "executables:\n{\n\thelloExe = ( helloComponent )\n}\nprocesses:\n{\n\trun:\n\t{\n\t\thelloExe\n\t}\n\tmaxFileBytes: 5000\n}\nmaxFileSystemBytes: 1000\n")

	m := New("testsys", nil)
	app, _, diag := m.BuildApp(dir + "/hello.adef")
	require.Nil(t, diag)

	var bag mkerrors.Bag
	AuditLimits(app, &bag)
	require.Len(t, bag.Warnings(), 1)
	assert.Contains(t, bag.Warnings()[0].Message, "exceeds maxFileSystemBytes")
	assert.False(t, bag.HasFatal())
}

func TestDefaultPathInjection(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)

	m := New("testsys", nil)
	app, _, diag := m.BuildApp(dir + "/hello.adef")
	require.Nil(t, diag)
	InjectDefaultPath(app)

	require.Len(t, app.ProcEnvs, 1)
	pe := app.ProcEnvs[0]
	require.True(t, pe.EnvVarIsSet("PATH"))
	for _, e := range pe.EnvVars {
		if e.Name == "PATH" {
			assert.Equal(t, "/usr/local/bin:/usr/bin:/bin", e.Value)
		}
	}
}

func TestUnsandboxedPathInjectionPrependsAppBinDir(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)
	writeFile(t, dir+"/hello.adef", "sandboxed: false\nexecutables:\n{\n\thelloExe = ( helloComponent )\n}\nprocesses:\n{\n\trun:\n\t{\n\t\thelloExe\n\t}\n}\n")

	m := New("testsys", nil)
	app, _, diag := m.BuildApp(dir + "/hello.adef")
	require.Nil(t, diag)
	InjectDefaultPath(app)

	pe := app.ProcEnvs[0]
	for _, e := range pe.EnvVars {
		if e.Name == "PATH" {
			assert.True(t, strings.HasPrefix(e.Value, "/legato/systems/current/apps/hello/read-only/bin:"))
		}
	}
}

func TestDuplicateExternalInterfaceNameIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/comp", 0o755))
	writeFile(t, dir+"/comp/Component.cdef", "sources:\n{\n\tc.c\n}\nrequires:\n{\n\tapi:\n\t{\n\t\tifaceA = a.api [optional]\n\t\tifaceB = b.api [optional]\n\t}\n}\n")
	writeFile(t, dir+"/comp/c.c", "")
	writeFile(t, dir+"/comp/a.api", "FUNCTION A();\n")
	writeFile(t, dir+"/comp/b.api", "FUNCTION B();\n")
	writeFile(t, dir+"/app.adef", `executables:
{
	myExe = ( comp )
}
extern:
{
	foo = myExe.comp.ifaceA
	foo = myExe.comp.ifaceB
}
`)

	m := New("testsys", nil)
	_, _, diag := m.BuildApp(dir + "/app.adef")
	require.NotNil(t, diag)
	assert.Contains(t, diag.Error(), `duplicate external interface name "foo"`)
}

func TestDuplicateConfigTreeIsFatal(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)
	writeFile(t, dir+"/hello.adef", "executables:\n{\n\thelloExe = ( helloComponent )\n}\nrequires:\n{\n\tconfigTrees:\n\t{\n\t\totherApp\n\t\totherApp [w]\n\t}\n}\n")

	m := New("testsys", nil)
	_, _, diag := m.BuildApp(dir + "/hello.adef")
	require.NotNil(t, diag)
	assert.Contains(t, diag.Error(), "listed more than once")
}

func TestSystemBindingReplacesAppBinding(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/comp", 0o755))
	writeFile(t, dir+"/comp/Component.cdef", "sources:\n{\n\tc.c\n}\nrequires:\n{\n\tapi:\n\t{\n\t\tiface = iface.api\n\t}\n}\n")
	writeFile(t, dir+"/comp/c.c", "")
	writeFile(t, dir+"/comp/iface.api", "FUNCTION Foo();\n")
	writeFile(t, dir+"/hello.adef", `executables:
{
	myExe = ( comp )
}
bindings:
{
	myExe . iface -> oldServer . iface
}
extern:
{
	clientIface = myExe.comp.iface
}
`)
	writeFile(t, dir+"/system.sdef", `apps:
{
	hello.adef
}
bindings:
{
	hello . clientIface -> newServer . iface
}
`)

	m := New("testsys", nil)
	sys, bag := m.BuildSystem(dir + "/system.sdef")
	require.False(t, bag.HasFatal(), "%v", bag)
	require.Len(t, sys.Apps, 1)
	app := sys.Apps[0]
	require.Len(t, app.Bindings, 1)
	assert.Equal(t, "newServer", app.Bindings[0].Server.ExternalAgentName)

	var found bool
	for _, w := range bag.Warnings() {
		if strings.Contains(w.Message, "replaces app-level binding") {
			found = true
		}
	}
	assert.True(t, found, "expected a replaced-binding warning")
}

func TestSdefOverrideRewritesAppLimits(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)
	writeFile(t, dir+"/system.sdef", "apps:\n{\n\thello.adef\n\t{\n\t\tmaxMemoryBytes: 1234\n\t\tsandboxed: false\n\t}\n}\n")

	m := New("testsys", nil)
	sys, bag := m.BuildSystem(dir + "/system.sdef")
	require.False(t, bag.HasFatal(), "%v", bag)
	require.Len(t, sys.Apps, 1)
	assert.Equal(t, 1234, sys.Apps[0].MaxMemoryBytes)
	assert.False(t, sys.Apps[0].IsSandboxed)
}

func TestUserRecordCreatedForUserBindings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/comp", 0o755))
	writeFile(t, dir+"/comp/Component.cdef", "sources:\n{\n\tc.c\n}\nrequires:\n{\n\tapi:\n\t{\n\t\tle_cfg.api\n\t}\n}\n")
	writeFile(t, dir+"/comp/c.c", "")
	writeFile(t, dir+"/comp/le_cfg.api", "FUNCTION Get();\n")
	writeFile(t, dir+"/app.adef", "executables:\n{\n\tmyExe = ( comp )\n}\n")

	m := New("testsys", nil)
	app, bindings, diag := m.BuildApp(dir + "/app.adef")
	require.Nil(t, diag)
	require.Nil(t, m.ResolveBindings(map[*model.App][]parsetree.Binding{app: bindings}))

	require.Len(t, m.System().Users, 1)
	u := m.System().Users[0]
	assert.Equal(t, "root", u.Name)
	assert.Len(t, u.Bindings, 1)
}

func TestAutoBindingToFrameworkService(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/comp", 0o755))
	writeFile(t, dir+"/comp/Component.cdef", "sources:\n{\n\tc.c\n}\nrequires:\n{\n\tapi:\n\t{\n\t\tle_cfg.api\n\t}\n}\n")
	writeFile(t, dir+"/comp/c.c", "")
	writeFile(t, dir+"/comp/le_cfg.api", "FUNCTION Get();\n")
	writeFile(t, dir+"/app.adef", "executables:\n{\n\tmyExe = ( comp )\n}\n")

	m := New("testsys", nil)
	app, bindings, diag := m.BuildApp(dir + "/app.adef")
	require.Nil(t, diag)
	require.Empty(t, bindings)

	diag = m.ResolveBindings(map[*model.App][]parsetree.Binding{app: bindings})
	require.Nil(t, diag)
	require.Len(t, app.Bindings, 1)
	assert.True(t, app.Bindings[0].Server.ExternalAgentIsUser)
	assert.Equal(t, "<root>", app.Bindings[0].Server.ExternalAgentName)

	var bag mkerrors.Bag
	AuditUnboundInterfaces(app, &bag)
	assert.False(t, bag.HasFatal())
}

func TestLoadModuleRejectsPreBuiltAndSourcesTogether(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/mymod.mdef", "preBuilt:\n{\n\tmymod.ko\n}\nsources:\n{\n\tdriver.c\n}\n")

	m := New("testsys", nil)
	mod, diag := m.LoadModule(dir + "/mymod.mdef")
	require.Nil(t, mod)
	require.NotNil(t, diag)
	assert.Contains(t, diag.Error(), "declares both preBuilt and sources")
}

func TestLoadModulePreBuilt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/mymod.mdef", "preBuilt:\n{\n\tmymod.ko\n}\nparams:\n{\n\tdebug = 1\n}\n")

	m := New("testsys", nil)
	mod, diag := m.LoadModule(dir + "/mymod.mdef")
	require.Nil(t, diag)
	assert.Equal(t, "mymod", mod.Name)
	assert.Equal(t, []string{"mymod.ko"}, mod.PreBuilt)
	assert.Equal(t, "1", mod.Params["debug"])
}

func TestBuildSystemWiresAppsAndModules(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)
	writeFile(t, dir+"/mymod.mdef", "preBuilt:\n{\n\tmymod.ko\n}\n")
	writeFile(t, dir+"/system.sdef", "apps:\n{\n\thello.adef\n}\nmodules:\n{\n\tmymod.mdef\n}\n")

	m := New("testsys", nil)
	sys, bag := m.BuildSystem(dir + "/system.sdef")
	require.False(t, bag.HasFatal())
	require.Len(t, sys.Apps, 1)
	assert.Equal(t, "hello", sys.Apps[0].Name)
	require.Len(t, sys.Modules, 1)
	assert.Equal(t, "mymod", sys.Modules[0].Name)
}

func TestContentHashMismatchIsReportedAsModelError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/comp", 0o755))
	writeFile(t, dir+"/comp/Component.cdef", "sources:\n{\n\tc.c\n}\n")
	writeFile(t, dir+"/comp/c.c", "")

	m := New("testsys", nil)
	comp, diag := m.LoadComponent(dir + "/comp")
	require.Nil(t, diag)

	writeFile(t, dir+"/comp/Component.cdef", "sources:\n{\n\td.c\n}\n")
	delete(m.sys.Components, comp.Dir)

	_, diag = m.LoadComponent(dir + "/comp")
	require.NotNil(t, diag)
	assert.Contains(t, diag.Error(), "changed on disk mid-run")
}

func TestBuildAppRejectsExeWithNoSourceCode(t *testing.T) {
	dir := t.TempDir()
	var tf testutil.TestFiles
	tf.AddFile("emptyComponent/Component.cdef", "cflags:\n{\n\t-Wall\n}\n")
	tf.AddFile("hello.adef", "executables:\n{\n\thelloExe = ( emptyComponent )\n}\n")
	tf.Create(t, dir)

	m := New("testsys", nil)
	_, _, diag := m.BuildApp(dir + "/hello.adef")
	require.NotNil(t, diag)
	assert.Contains(t, diag.Error(), "doesn't contain any components that have source code files")
}

func TestBuildAppAcceptsJavaOnlyExe(t *testing.T) {
	dir := t.TempDir()
	var tf testutil.TestFiles
	tf.AddFile("javaComponent/Component.cdef", "sources:\n{\n\tFoo.java\n}\n")
	tf.AddFile("hello.adef", "executables:\n{\n\thelloExe = ( javaComponent )\n}\n")
	tf.Create(t, dir)

	m := New("testsys", nil)
	app, _, diag := m.BuildApp(dir + "/hello.adef")
	require.Nil(t, diag)
	require.Len(t, app.Exes, 1)
	assert.True(t, app.Exes[0].HasJavaCode)
	assert.False(t, app.Exes[0].HasCOrCppCode)
}
