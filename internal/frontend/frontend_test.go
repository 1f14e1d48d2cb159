package frontend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legato-af/mktools/internal/buildparams"
	"github.com/legato-af/mktools/internal/model"
	"github.com/legato-af/mktools/internal/testutil"
)

func TestBuildAppStagesMinimalAppArtifacts(t *testing.T) {
	t.Setenv("LEGATO_ROOT", t.TempDir())
	root := t.TempDir()
	testutil.MinimalApp().Create(t, root)

	workDir := filepath.Join(root, "_build")
	p := &buildparams.Params{Target: "localhost", WorkDir: workDir}
	res, err := BuildApp(filepath.Join(root, "hello.adef"), p)
	require.NoError(t, err)
	require.False(t, res.Bag.HasFatal(), "%v", res.Bag)

	assert.True(t, res.App.IsSandboxed)
	assert.Equal(t, model.DefaultMaxMemoryBytes, res.App.MaxMemoryBytes)

	appDir := filepath.Join(workDir, "app", "hello")
	testutil.AssertFileContains(t, filepath.Join(appDir, "staging", "root.cfg"), `"maxMemoryBytes" [40960000]`)
	testutil.AssertFileExists(t, filepath.Join(appDir, "manifest.app"))
	testutil.AssertFileContains(t, filepath.Join(appDir, "helloExe_helloComponent_main.c"), "void COMPONENT_INIT(void);")
	testutil.AssertFileExists(t, filepath.Join(workDir, "mktool_environment"))
}

func TestBuildAppEmitsFrameworkAutoBindingInRootCfg(t *testing.T) {
	t.Setenv("LEGATO_ROOT", t.TempDir())
	root := t.TempDir()
	var tf testutil.TestFiles
	tf.AddFile("comp/Component.cdef", "sources:\n{\n\tc.c\n}\nrequires:\n{\n\tapi:\n\t{\n\t\tle_cfg = le_cfg.api\n\t}\n}\n")
	tf.AddFile("comp/c.c", "")
	tf.AddFile("comp/le_cfg.api", "FUNCTION Get();\n")
	tf.AddFile("app.adef", "executables:\n{\n\tmyExe = ( comp )\n}\n")
	tf.Create(t, root)

	workDir := filepath.Join(root, "_build")
	p := &buildparams.Params{Target: "localhost", WorkDir: workDir}
	res, err := BuildApp(filepath.Join(root, "app.adef"), p)
	require.NoError(t, err)
	require.False(t, res.Bag.HasFatal(), "%v", res.Bag)

	cfg := filepath.Join(workDir, "app", "app", "staging", "root.cfg")
	testutil.AssertFileContains(t, cfg, `"user" "root"`)
	testutil.AssertFileContains(t, cfg, `"interface" "le_cfg"`)
}

func TestBuildAppUnboundInterfaceIsFatal(t *testing.T) {
	t.Setenv("LEGATO_ROOT", t.TempDir())
	root := t.TempDir()
	var tf testutil.TestFiles
	tf.AddFile("comp/Component.cdef", "sources:\n{\n\tc.c\n}\nrequires:\n{\n\tapi:\n\t{\n\t\tiface.api\n\t}\n}\n")
	tf.AddFile("comp/c.c", "")
	tf.AddFile("comp/iface.api", "FUNCTION Foo();\n")
	tf.AddFile("app.adef", "executables:\n{\n\tmyExe = ( comp )\n}\n")
	tf.Create(t, root)

	workDir := filepath.Join(root, "_build")
	p := &buildparams.Params{Target: "localhost", WorkDir: workDir}
	res, err := BuildApp(filepath.Join(root, "app.adef"), p)
	require.NoError(t, err)
	assert.True(t, res.Bag.HasFatal())

	_, statErr := os.Stat(filepath.Join(workDir, "app", "app", "staging", "root.cfg"))
	assert.True(t, os.IsNotExist(statErr), "no artifacts should be staged after a fatal diagnostic")
	_, statErr = os.Stat(filepath.Join(workDir, "mktool_environment"))
	assert.True(t, os.IsNotExist(statErr), "snapshot must not be updated on a failed run")
}
