package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSubstitutionUnbracketed(t *testing.T) {
	t.Setenv("FOO", "bar")
	out, err := DoSubstitution("prefix-$FOO-suffix", nil)
	require.NoError(t, err)
	assert.Equal(t, "prefix-bar-suffix", out)
}

func TestDoSubstitutionBracketed(t *testing.T) {
	t.Setenv("FOO", "bar")
	out, err := DoSubstitution("prefix-${FOO}suffix", nil)
	require.NoError(t, err)
	assert.Equal(t, "prefix-barsuffix", out)
}

func TestDoSubstitutionUnsetExpandsEmptyButRecordsUsage(t *testing.T) {
	os.Unsetenv("DEFINITELY_UNSET_VAR")
	used := map[string]bool{}
	out, err := DoSubstitution("[$DEFINITELY_UNSET_VAR]", used)
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
	assert.True(t, used["DEFINITELY_UNSET_VAR"])
}

func TestDoSubstitutionMalformedBracketedFailsOnEOF(t *testing.T) {
	_, err := DoSubstitution("${UNCLOSED", nil)
	assert.Error(t, err)
}

func TestDoSubstitutionMalformedBracketedFailsOnIllegalChar(t *testing.T) {
	_, err := DoSubstitution("${BAD-NAME}", nil)
	assert.Error(t, err)
}

func TestDoSubstitutionIdempotentWithoutDollar(t *testing.T) {
	const text = "no variables here at all"
	once, err := DoSubstitution(text, nil)
	require.NoError(t, err)
	twice, err := DoSubstitution(once, nil)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
	assert.Equal(t, text, once)
}

func TestDoSubstitutionLoneDollarAtEOF(t *testing.T) {
	out, err := DoSubstitution("trailing$", nil)
	require.NoError(t, err)
	assert.Equal(t, "trailing$", out)
}

func TestGetRequiredFailsWhenUnset(t *testing.T) {
	os.Unsetenv("DEFINITELY_UNSET_VAR")
	_, err := GetRequired("DEFINITELY_UNSET_VAR")
	assert.Error(t, err)
}

func TestFindFilePrefersEarlierSearchDir(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "x.cdef"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "x.cdef"), []byte("x"), 0o644))

	got, ok := FindFile("x.cdef", []string{dirA, dirB})
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dirA, "x.cdef"), got)
}

func TestFindFileNotFound(t *testing.T) {
	t.Setenv("LEGATO_ROOT", t.TempDir())
	_, ok := FindFile("missing.cdef", []string{t.TempDir()})
	assert.False(t, ok)
}

func TestSaveAndMatchesSaved(t *testing.T) {
	dir := t.TempDir()
	cache := filepath.Join(dir, "mktool_environment")

	require.NoError(t, Save(cache))
	match, err := MatchesSaved(cache)
	require.NoError(t, err)
	assert.True(t, match)

	t.Setenv("MKTOOLS_CACHE_BUST", "1")
	match, err = MatchesSaved(cache)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestMatchesSavedMissingFile(t *testing.T) {
	match, err := MatchesSaved(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.False(t, match)
}
