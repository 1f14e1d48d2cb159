// Package testutil holds fixture builders shared across the pipeline's
// test suites, adapted from the teacher's internal/testing helpers: a
// small TestFiles builder that materializes a directory tree of
// definition files for one test, plus common file-existence assertions.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFile represents one file (or directory, when IsDir) to materialize.
type TestFile struct {
	Path    string
	Content string
	IsDir   bool
}

// TestFiles is a collection of TestFile entries built up fluently and
// then written to disk in one call.
type TestFiles []TestFile

func (tf *TestFiles) AddFile(path, content string) {
	*tf = append(*tf, TestFile{Path: path, Content: content})
}

func (tf *TestFiles) AddDirectory(path string) {
	*tf = append(*tf, TestFile{Path: path, IsDir: true})
}

// Create writes every entry in tf under basePath.
func (tf TestFiles) Create(t *testing.T, basePath string) {
	t.Helper()
	for _, f := range tf {
		full := filepath.Join(basePath, f.Path)
		if f.IsDir {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(f.Content), 0o644))
	}
}

// MinimalApp returns the fixture for end-to-end scenario 1 of spec.md §8:
// a single executable referencing a component with one .c source.
func MinimalApp() TestFiles {
	var tf TestFiles
	tf.AddFile("helloComponent/Component.cdef", "sources:\n{\n\thello.c\n}\n")
	tf.AddFile("helloComponent/hello.c", "void hello_COMPONENT_INIT(void) {}\n")
	tf.AddFile("hello.adef", "executables:\n{\n\thelloExe = ( helloComponent )\n}\nprocesses:\n{\n\trun:\n\t{\n\t\thelloExe\n\t}\n}\n")
	return tf
}

// AssertFileExists fails the test if path does not exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.NoErrorf(t, err, "expected %s to exist", path)
}

// AssertFileContains fails the test if path does not exist or does not
// contain substr.
func AssertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), substr)
}
