package maingen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legato-af/mktools/internal/model"
)

func TestComponentMainAdvertisesServerAndConnectsClient(t *testing.T) {
	comp := &model.Component{Name: "helloComponent"}
	ci := &model.ComponentInstance{Component: comp}
	ci.ProvidedIfaces = []*model.ApiInterfaceInstance{{Alias: "greet", Api: &model.ApiFile{Path: "greet.api"}}}
	ci.RequiredIfaces = []*model.ApiInterfaceInstance{
		{Alias: "cfg", Api: &model.ApiFile{Path: "le_cfg.api"}},
		{Alias: "manual", Api: &model.ApiFile{Path: "x.api"}, ManualStart: true},
	}

	out := string(ComponentMain(ci))
	assert.Contains(t, out, "greet_AdvertiseService();")
	assert.Contains(t, out, "cfg_ConnectService();")
	assert.NotContains(t, out, "manual_ConnectService();")
	assert.Contains(t, out, "COMPONENT_INIT_ONCE")
}

func TestExeMainLoadsEveryComponentLibrary(t *testing.T) {
	exe := &model.Exe{Name: "helloExe"}
	exe.Components = []*model.ComponentInstance{
		{Component: &model.Component{Name: "base"}},
		{Component: &model.Component{Name: "top"}},
	}

	out := string(ExeMain(exe))
	assert.Contains(t, out, "libbase.so")
	assert.Contains(t, out, "libtop.so")
	assert.Contains(t, out, "int main(int argc, char **argv)")
}

func TestFactoryJavaAdvertisesServerAndConnectsClient(t *testing.T) {
	comp := &model.Component{Name: "helloComponent", Sources: []string{"Hello.java"}}
	ci := &model.ComponentInstance{Component: comp}
	ci.ProvidedIfaces = []*model.ApiInterfaceInstance{{Alias: "greet", Api: &model.ApiFile{Path: "greet.api"}}}
	ci.RequiredIfaces = []*model.ApiInterfaceInstance{
		{Alias: "cfg", Api: &model.ApiFile{Path: "le_cfg.api"}},
		{Alias: "manual", Api: &model.ApiFile{Path: "x.api"}, ManualStart: true},
	}

	out := string(FactoryJava(ci))
	assert.Contains(t, out, "Greet.AdvertiseService();")
	assert.Contains(t, out, "Cfg.ConnectService();")
	assert.NotContains(t, out, "Manual.ConnectService();")
	assert.Contains(t, out, "package io.legato.generated.helloComponent;")
}

func TestLauncherPyImportsEveryPythonComponent(t *testing.T) {
	exe := &model.Exe{Name: "helloExe"}
	exe.Components = []*model.ComponentInstance{
		{Component: &model.Component{Name: "pybase", Sources: []string{"base.py"}}},
		{Component: &model.Component{Name: "cTop", Sources: []string{"top.c"}}},
	}

	out := string(LauncherPy(exe))
	assert.Contains(t, out, "import pybase")
	assert.NotContains(t, out, "import cTop")
	assert.Contains(t, out, "pybase.componentInit()")
	assert.Contains(t, out, "legato.RunLoop()")
}
