package configgen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legato-af/mktools/internal/model"
)

func minimalApp() *model.App {
	exe := &model.Exe{Name: "helloExe"}
	return &model.App{
		Name:           "hello",
		IsSandboxed:    true,
		MaxMemoryBytes: model.DefaultMaxMemoryBytes,
		MaxFileDescs:   model.DefaultMaxFileDescs,
		Exes:           []*model.Exe{exe},
		ProcEnvs: []*model.ProcessEnv{{
			Processes: []*model.Process{{Name: "helloExe", Exe: exe}},
			EnvVars:   []model.EnvVar{{Name: "PATH", Value: "/usr/local/bin:/usr/bin:/bin"}},
		}},
	}
}

func TestRenderMinimalAppTree(t *testing.T) {
	out := string(Render(minimalApp(), Options{}))

	assert.Contains(t, out, `"sandboxed" !t`)
	assert.Contains(t, out, `"maxMemoryBytes" [40960000]`)
	assert.Contains(t, out, `"procs"`)
	assert.Contains(t, out, `"helloExe"`)
	assert.Contains(t, out, `"PATH" "/usr/local/bin:/usr/bin:/bin"`)
}

func TestRenderClampedPriorityAppearsInProcs(t *testing.T) {
	app := minimalApp()
	app.ProcEnvs[0].StartPriority = "medium"
	app.ProcEnvs[0].MaxPriority = "medium"

	out := string(Render(app, Options{}))
	assert.Contains(t, out, `"priority" "medium"`)
}

func TestRenderFrameworkAutoBinding(t *testing.T) {
	app := minimalApp()
	iface := &model.ApiInterfaceInstance{Alias: "le_cfg", Name: "helloExe.comp.le_cfg"}
	app.Bindings = []*model.Binding{{
		Client: model.BindingEndpoint{Exe: app.Exes[0], Iface: iface},
		Server: model.BindingEndpoint{IsExternal: true, ExternalAgentIsUser: true, ExternalAgentName: "<root>", ExternalAlias: "le_cfg"},
	}}

	out := string(Render(app, Options{}))
	assert.Contains(t, out, `"helloExe.comp.le_cfg"`)
	assert.Contains(t, out, `"user" "root"`)
	assert.Contains(t, out, `"interface" "le_cfg"`)
}

func TestRenderCrossBuildInjectsLogBinding(t *testing.T) {
	out := string(Render(minimalApp(), Options{CrossBuild: true}))
	assert.Contains(t, out, `"LogClient"`)
	assert.Contains(t, out, `"user" "root"`)

	host := string(Render(minimalApp(), Options{}))
	assert.NotContains(t, host, `"LogClient"`)
}

func TestRenderEmptySectionsEmitNothing(t *testing.T) {
	app := minimalApp()
	out := string(Render(app, Options{}))
	assert.NotContains(t, out, `"requires"`)
	assert.NotContains(t, out, `"bundles"`)
	assert.NotContains(t, out, `"bindings"`)
	assert.NotContains(t, out, `"configLimits"`)
}

func TestRenderConfigTreeAcl(t *testing.T) {
	app := minimalApp()
	app.ConfigTrees = []model.RequiredConfigTree{
		{Writable: true}, // nil Tree means the app's own tree
		{Tree: &model.App{Name: "otherApp"}},
	}
	out := string(Render(app, Options{}))
	assert.Contains(t, out, `"hello" "write"`)
	assert.Contains(t, out, `"otherApp" "read"`)
}

func TestRenderIsDeterministic(t *testing.T) {
	app := minimalApp()
	app.ProcEnvs[0].EnvVars = append(app.ProcEnvs[0].EnvVars,
		model.EnvVar{Name: "ZVAR", Value: "z"}, model.EnvVar{Name: "AVAR", Value: "a"})

	first := Render(app, Options{})
	for i := 0; i < 5; i++ {
		assert.Equal(t, string(first), string(Render(app, Options{})))
	}
}
