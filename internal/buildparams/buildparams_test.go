package buildparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequiresTargetAndWorkDir(t *testing.T) {
	p := &Params{}
	diag := p.Validate()
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "-t")

	p.Target = "linux"
	diag = p.Validate()
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "-w")

	p.WorkDir = t.TempDir()
	assert.Nil(t, p.Validate())
}

func TestPersistAndMatch(t *testing.T) {
	p := &Params{Target: "wp76xx", WorkDir: t.TempDir(), InterfaceDirs: []string{"/a", "/b"}}
	require.NoError(t, p.Persist())

	match, err := p.MatchesPersisted()
	require.NoError(t, err)
	assert.True(t, match)

	p.InterfaceDirs = append(p.InterfaceDirs, "/c")
	match, err = p.MatchesPersisted()
	require.NoError(t, err)
	assert.False(t, match)
}

func TestMatchesPersistedNoSidecar(t *testing.T) {
	p := &Params{Target: "linux", WorkDir: t.TempDir()}
	match, err := p.MatchesPersisted()
	require.NoError(t, err)
	assert.False(t, match)
}
