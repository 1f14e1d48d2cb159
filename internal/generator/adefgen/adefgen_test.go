package adefgen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legato-af/mktools/internal/model"
)

func TestRenderOmitsDefaultLimitsAndRewritesBundledPaths(t *testing.T) {
	app := &model.App{
		Name:           "myApp",
		IsSandboxed:    true,
		MaxMemoryBytes: model.DefaultMaxMemoryBytes,
		MaxFileDescs:   model.DefaultMaxFileDescs,
		BundledFiles:   []model.RequiredFileSystemItem{{SrcPath: "/host/cfg.json", DestPath: "/cfg.json"}},
	}
	out := string(Render(app, "/legato/systems/current/apps/myApp/read-only"))
	assert.NotContains(t, out, "maxMemoryBytes:")
	assert.Contains(t, out, "/legato/systems/current/apps/myApp/read-only/cfg.json")
}
