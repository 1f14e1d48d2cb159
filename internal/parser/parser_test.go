package parser

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legato-af/mktools/internal/testutil"
)

func TestParseCdefMinimalApp(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)

	cdef, diag := ParseCdef(dir+"/helloComponent/Component.cdef", nil)
	require.Nil(t, diag)
	require.Len(t, cdef.Sources, 1)
	assert.Equal(t, "hello.c", cdef.Sources[0].Text)
}

func TestParseAdefMinimalApp(t *testing.T) {
	dir := t.TempDir()
	testutil.MinimalApp().Create(t, dir)

	adef, diag := ParseAdef(dir+"/hello.adef", nil)
	require.Nil(t, diag)
	require.Len(t, adef.Executables, 1)
	assert.Equal(t, "helloExe", adef.Executables[0].Name)
	assert.Equal(t, []string{"helloComponent"}, adef.Executables[0].ComponentPaths)
	require.Len(t, adef.ProcEnvs, 1)
	require.Len(t, adef.ProcEnvs[0].Run, 1)
	assert.Equal(t, "helloExe", adef.ProcEnvs[0].Run[0].ExeName)
}

func TestParseAdefProcessesBlockSettings(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.adef"
	writeFile(t, path, `executables:
{
	exe1 = ( comp1 )
}
processes:
{
	run:
	{
		proc1 = exe1 ( --foo bar )
	}
	envVars:
	{
		DEBUG = 1
	}
	priority: high
	faultAction: restart
	maxCoreDumpFileBytes: 100000
	watchdogTimeout: 30000
}
`)
	adef, diag := ParseAdef(path, nil)
	require.Nil(t, diag)
	require.Len(t, adef.ProcEnvs, 1)
	pe := adef.ProcEnvs[0]
	require.Len(t, pe.Run, 1)
	assert.Equal(t, "proc1", pe.Run[0].Name)
	assert.Equal(t, []string{"--foo", "bar"}, pe.Run[0].Args)
	require.Len(t, pe.EnvVars, 1)
	assert.Equal(t, "DEBUG", pe.EnvVars[0].Name)
	assert.Equal(t, "high", pe.StartPriority)
	assert.Equal(t, "restart", pe.FaultAction)
	require.NotNil(t, pe.MaxCoreDumpFileBytes)
	assert.Equal(t, 100000, *pe.MaxCoreDumpFileBytes)
	require.NotNil(t, pe.WatchdogTimeoutMs)
	assert.Equal(t, 30000, *pe.WatchdogTimeoutMs)
}

func TestParseCdefRequiresAndProvides(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.cdef"
	writeFile(t, path, `sources:
{
	foo.c
}
requires:
{
	api:
	{
		le_cfg.api [types-only]
		myAlias = some/path/iface.api [optional]
	}
	file:
	{
		/usr/bin/ls /bin/ls
	}
	configTrees:
	{
		. [w]
		otherApp
	}
}
provides:
{
	api:
	{
		served = served.api [manual-start]
	}
}
`)
	cdef, diag := ParseCdef(path, nil)
	require.Nil(t, diag)
	require.Len(t, cdef.RequiredApis, 2)
	assert.Equal(t, "le_cfg.api", cdef.RequiredApis[0].Path)
	assert.True(t, cdef.RequiredApis[0].TypesOnly)
	assert.Equal(t, "myAlias", cdef.RequiredApis[1].Alias)
	assert.True(t, cdef.RequiredApis[1].Optional)

	require.Len(t, cdef.RequiredFiles, 1)
	assert.Equal(t, "/usr/bin/ls", cdef.RequiredFiles[0].SrcPath)

	require.Len(t, cdef.ProvidedApis, 1)
	assert.Equal(t, "served", cdef.ProvidedApis[0].Alias)
	assert.True(t, cdef.ProvidedApis[0].ManualStart)
}

func TestParseAdefBindingsAllShapes(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.adef"
	writeFile(t, path, `executables:
{
	exe1 = ( comp1 )
}
bindings:
{
	exe1 . comp1 . clientIface -> serverExe . serverComp . serverIface
	exe1 . clientIface2 -> <root> . serverIface2
	* . wildIface -> someApp . wildIface
}
`)
	adef, diag := ParseAdef(path, nil)
	require.Nil(t, diag)
	require.Len(t, adef.Bindings, 3)

	b0 := adef.Bindings[0]
	assert.Equal(t, "exe1", b0.ClientExe)
	assert.Equal(t, "comp1", b0.ClientComponent)
	assert.Equal(t, "clientIface", b0.ClientInterface)
	assert.Equal(t, "serverExe", b0.ServerExe)
	assert.Equal(t, "serverComp", b0.ServerComponent)
	assert.Equal(t, "serverIface", b0.ServerInterface)

	b1 := adef.Bindings[1]
	assert.Equal(t, "exe1", b1.ClientExe)
	assert.Equal(t, "clientIface2", b1.ClientInterface)
	assert.True(t, b1.ServerIsUser)
	assert.Equal(t, "<root>", b1.ServerAgent)

	b2 := adef.Bindings[2]
	assert.Equal(t, "wildIface", b2.ClientInterface)
	assert.Equal(t, "someApp", b2.ServerAgent)
}

func TestParseAdefRequiresApiIsDeprecated(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.adef"
	writeFile(t, path, "executables:\n{\n\texe1 = ( comp1 )\n}\nrequires:\n{\n\tapi:\n\t{\n\t\tle_cfg.api\n\t}\n}\n")
	adef, diag := ParseAdef(path, nil)
	require.Nil(t, diag)
	require.Len(t, adef.Warnings, 1)
	assert.False(t, adef.Warnings[0].IsFatal())
	assert.Contains(t, adef.Warnings[0].Message, "deprecated")
}

func TestParseAdefProvidesIsDeprecated(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.adef"
	writeFile(t, path, "executables:\n{\n\texe1 = ( comp1 )\n}\nprovides:\n{\n\tapi:\n\t{\n\t\tgreet.api\n\t}\n}\n")
	adef, diag := ParseAdef(path, nil)
	require.Nil(t, diag)
	require.Len(t, adef.Warnings, 1)
	assert.Contains(t, adef.Warnings[0].Message, "deprecated")
}

func TestParseSdefAppsWithOverride(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/system.sdef"
	writeFile(t, path, `apps:
{
	hello.adef
	other.adef
	{
		maxMemoryBytes: 1000000
	}
}
`)
	sdef, diag := ParseSdef(path, nil)
	require.Nil(t, diag)
	require.Len(t, sdef.Apps, 2)
	assert.Equal(t, "hello.adef", sdef.Apps[0].Path)
	assert.Equal(t, "other.adef", sdef.Apps[1].Path)
	require.NotNil(t, sdef.Apps[1].Overrides.MaxMemoryBytes)
	assert.Equal(t, 1000000, *sdef.Apps[1].Overrides.MaxMemoryBytes)
}

func TestParseSdefRejectsNonOverrideableSection(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/system.sdef"
	writeFile(t, path, "apps:\n{\n\thello.adef\n\t{\n\t\texecutables:\n\t\t{\n\t\t\tx = ( c )\n\t\t}\n\t}\n}\n")
	_, diag := ParseSdef(path, nil)
	require.NotNil(t, diag)
	assert.Contains(t, diag.Error(), "cannot be overridden")
}

func TestParseSdefSystemBindings(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/system.sdef"
	writeFile(t, path, `apps:
{
	hello.adef
}
bindings:
{
	hello . clientIface -> otherApp . serverIface
}
`)
	sdef, diag := ParseSdef(path, nil)
	require.Nil(t, diag)
	require.Len(t, sdef.Bindings, 1)
	assert.Equal(t, "hello", sdef.Bindings[0].ClientExe)
	assert.Equal(t, "clientIface", sdef.Bindings[0].ClientInterface)
	assert.Equal(t, "otherApp", sdef.Bindings[0].ServerAgent)
}

func TestParseCdefAssetVariableDefaultKindMustMatchType(t *testing.T) {
	dir := t.TempDir()
	good := dir + "/good.cdef"
	writeFile(t, good, "sources:\n{\n\tfoo.c\n}\nassets:\n{\n\tmyAsset\n\t{\n\t\tvariables:\n\t\t{\n\t\t\tcount : int = 5\n\t\t\tlabel : string = \"hi\"\n\t\t}\n\t}\n}\n")
	cdef, diag := ParseCdef(good, nil)
	require.Nil(t, diag)
	require.Len(t, cdef.Assets, 1)
	require.Len(t, cdef.Assets[0].Variables, 2)
	assert.Equal(t, "5", cdef.Assets[0].Variables[0].Default)

	bad := dir + "/bad.cdef"
	writeFile(t, bad, "sources:\n{\n\tfoo.c\n}\nassets:\n{\n\tmyAsset\n\t{\n\t\tvariables:\n\t\t{\n\t\t\tcount : int = notanumber\n\t\t}\n\t}\n}\n")
	_, diag = ParseCdef(bad, nil)
	require.NotNil(t, diag)
	assert.Contains(t, diag.Error(), "unexpected token")
}

func TestParseMdefParams(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/mod.mdef"
	writeFile(t, path, `sources:
{
	driver.c
}
params:
{
	param1 = value1
}
`)
	mdef, diag := ParseMdef(path, nil)
	require.Nil(t, diag)
	require.Len(t, mdef.Sources, 1)
	require.Len(t, mdef.Params, 1)
	assert.Equal(t, "param1", mdef.Params[0].Name)
	assert.Equal(t, "value1", mdef.Params[0].Value)
}

func TestParseApiHeaderUseTypes(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/iface.api"
	writeFile(t, path, `USETYPES "common.api";

FUNCTION Foo();
`)
	hdr, diag := ParseApiHeader(path)
	require.Nil(t, diag)
	assert.Equal(t, []string{"common.api"}, hdr.UseTypes)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
