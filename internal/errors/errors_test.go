package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticDefaultSeverity(t *testing.T) {
	fatalKinds := []Kind{KindLex, KindParse, KindIO, KindEnvMissing, KindModel}
	for _, k := range fatalKinds {
		d := New(k, Location{}, "boom")
		assert.True(t, d.IsFatal(), "%s should be fatal", k)
	}

	warnKinds := []Kind{KindLimitWarning, KindDeprecation}
	for _, k := range warnKinds {
		d := New(k, Location{}, "boom")
		assert.False(t, d.IsFatal(), "%s should be a warning", k)
	}
}

func TestDiagnosticErrorFormatsLocation(t *testing.T) {
	loc := Location{File: "foo.adef", Line: 12, Column: 4}
	d := Parse(loc, "unexpected token %q", "}")
	assert.Contains(t, d.Error(), "foo.adef:12:4")
	assert.Contains(t, d.Error(), "unexpected token")
}

func TestDiagnosticUnwrap(t *testing.T) {
	underlying := stderrors.New("disk full")
	d := IO(Location{File: "root.cfg"}, "write config", underlying)
	require.ErrorIs(t, d, underlying)
}

func TestBagSeparatesWarningsFromFatal(t *testing.T) {
	var b Bag
	b.Add(LimitWarning(Location{}, "priority clamped"))
	b.Add(Model(Location{}, "duplicate app"))

	assert.Len(t, b.All(), 2)
	assert.Len(t, b.Warnings(), 1)
	assert.True(t, b.HasFatal())
}

func TestBagIgnoresNil(t *testing.T) {
	var b Bag
	b.Add(nil)
	assert.Empty(t, b.All())
	assert.False(t, b.HasFatal())
}

func TestEnvMissingMessageNamesVariable(t *testing.T) {
	d := EnvMissing("LEGATO_ROOT")
	assert.Equal(t, KindEnvMissing, d.Kind)
	assert.Contains(t, d.Error(), "LEGATO_ROOT")
}
