package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRelative(t *testing.T) {
	cases := []struct {
		name    string
		abs     string
		root    string
		want    string
	}{
		{"inside root", "/home/user/proj/src/main.c", "/home/user/proj", "src/main.c"},
		{"outside root", "/other/file.c", "/home/user/proj", "/other/file.c"},
		{"already relative", "src/main.c", "/home/user/proj", "src/main.c"},
		{"empty path", "", "/home/user/proj", ""},
		{"empty root", "/home/user/proj/main.c", "", "/home/user/proj/main.c"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ToRelative(c.abs, c.root))
		})
	}
}

func TestToRelativeAllPreservesOrder(t *testing.T) {
	in := []string{"/r/a.c", "/r/b.c"}
	out := ToRelativeAll(in, "/r")
	assert.Equal(t, []string{"a.c", "b.c"}, out)
	// input untouched
	assert.Equal(t, []string{"/r/a.c", "/r/b.c"}, in)
}

func TestMakeCanonicalIdempotent(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "..", "a")

	once, err := MakeCanonical(sub)
	require.NoError(t, err)

	twice, err := MakeCanonical(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestMakeCanonicalResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(real, 0o755))

	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	canon, err := MakeCanonical(link)
	require.NoError(t, err)

	wantReal, err := filepath.EvalSymlinks(real)
	require.NoError(t, err)
	assert.Equal(t, wantReal, canon)
}
