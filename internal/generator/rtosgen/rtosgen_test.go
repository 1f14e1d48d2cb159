package rtosgen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legato-af/mktools/internal/model"
)

func TestLinkerScriptProvidesOptionalUnboundInterface(t *testing.T) {
	comp := &model.Component{Name: "comp"}
	exe := &model.Exe{Name: "exe"}
	ci := &model.ComponentInstance{Component: comp, Exe: exe}
	ci.RequiredIfaces = []*model.ApiInterfaceInstance{{Alias: "opt", Optional: true}}
	exe.Components = []*model.ComponentInstance{ci}

	app := &model.App{Name: "app", Exes: []*model.Exe{exe}}
	sys := model.NewSystem("sys")
	sys.Apps = []*model.App{app}

	out := string(LinkerScript(sys))
	assert.Contains(t, out, "PROVIDE(exe_comp_opt = 0);")
}

func TestMangleInterfaceNameReplacesDots(t *testing.T) {
	assert.Equal(t, "exe_comp_alias", MangleInterfaceName("exe", "comp", "alias"))
}
