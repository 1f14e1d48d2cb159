package edit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyNonOverlapping(t *testing.T) {
	src := []byte("hello world")
	out, err := Apply(src, []Cut{{Start: 6, End: 11, Replacement: "there"}})
	require.NoError(t, err)
	assert.Equal(t, "hello there", string(out))
}

func TestApplyDelete(t *testing.T) {
	src := []byte("one two three")
	out, err := Apply(src, []Cut{{Start: 4, End: 8, Replacement: ""}})
	require.NoError(t, err)
	assert.Equal(t, "one three", string(out))
}

func TestApplyOverlapRejected(t *testing.T) {
	src := []byte("abcdef")
	_, err := Apply(src, []Cut{{Start: 0, End: 3, Replacement: "x"}, {Start: 2, End: 4, Replacement: "y"}})
	assert.Error(t, err)
}

func TestApplyToFileAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sys.sdef")
	require.NoError(t, os.WriteFile(path, []byte("apps:\n{\n\tfoo.adef\n}\n"), 0o644))

	err := ApplyToFile(path, []Cut{{Start: 8, End: 16, Replacement: "bar.adef"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bar.adef")
}

func TestAddAndRemoveApp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sys.sdef")
	require.NoError(t, os.WriteFile(path, []byte("apps:\n{\n\tfoo.adef\n}\n"), 0o644))

	require.NoError(t, AddApp(path, "bar.adef"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "foo.adef")
	assert.Contains(t, string(data), "bar.adef")

	require.NoError(t, RemoveApp(path, "foo"))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "foo.adef")
	assert.Contains(t, string(data), "bar.adef")
}

func TestAddAndRemoveComponent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.adef")
	require.NoError(t, os.WriteFile(path, []byte("executables:\n{\n\tmyExe = ( compA )\n}\n"), 0o644))

	require.NoError(t, AddComponent(path, "myExe", "compB"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "compA")
	assert.Contains(t, string(data), "compB")

	require.NoError(t, RemoveComponent(path, "myExe", "compA"))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "compA")
	assert.Contains(t, string(data), "compB")
}

func TestRenameModuleRewritesEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sys.sdef")
	require.NoError(t, os.WriteFile(path, []byte("modules:\n{\n\told.mdef\n}\n"), 0o644))

	require.NoError(t, RenameModule(path, "old", "new"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "new.mdef")
	assert.NotContains(t, string(data), "old.mdef")
}

func TestRenameComponentPropagatesRunReference(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.adef")
	src := "executables:\n{\n\tmyExe = ( oldComp )\n}\nprocesses:\n{\n\trun:\n\t{\n\t\toldComp = myExe\n\t}\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	require.NoError(t, RenameComponentWithRunReference(path, "myExe", "oldComp", "newComp"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "myExe = ( newComp )")
	assert.Contains(t, string(data), "newComp = myExe")
	assert.NotContains(t, string(data), "oldComp")
}

func TestAddAppCreatesSectionWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sys.sdef")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	require.NoError(t, AddApp(path, "foo.adef"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apps:")
	assert.Contains(t, string(data), "foo.adef")
}
