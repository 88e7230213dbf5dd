package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plantmesh.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1e-5, cfg.Tessellate.FaceEpsilon)
	assert.Equal(t, 1e-3, cfg.Tessellate.CornerTolerance)
	assert.Equal(t, 1.05, cfg.Tessellate.RadiusSlack)
	assert.Equal(t, 64, cfg.Tessellate.PreviewCells)
	assert.Equal(t, "sdfx", cfg.Tessellate.PreviewKernel)
	assert.Equal(t, 48, cfg.Tessellate.PreviewSegments)
	assert.False(t, cfg.Tessellate.Preview)
	assert.True(t, cfg.Instancing.Enabled)
	assert.True(t, cfg.Connect.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissing(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := writeFile(t, `
[tessellate]
corner_tolerance = 0.01
workers = 4
preview = true
preview_kernel = "manifold"

[instancing]
enabled = false

[log]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Tessellate.CornerTolerance = 0.01
	want.Tessellate.Workers = 4
	want.Tessellate.Preview = true
	want.Tessellate.PreviewKernel = "manifold"
	want.Instancing.Enabled = false
	want.Log.Level = "debug"
	assert.Equal(t, want, cfg)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown key", "[tessellate]\nface_epsilom = 1.0\n", "face_epsilom"},
		{"wrong type", "[connect]\ntolerance = \"tight\"\n", "plantmesh.toml"},
		{"syntax", "[tessellate\n", "plantmesh.toml"},
		{"negative tolerance", "[connect]\ntolerance = -1.0\n", "connect.tolerance"},
		{"slack below one", "[tessellate]\nradius_slack = 0.5\n", "radius_slack"},
		{"negative workers", "[instancing]\nworkers = -2\n", "instancing.workers"},
		{"unknown kernel", "[tessellate]\npreview_kernel = \"cgal\"\n", "preview_kernel"},
		{"few segments", "[tessellate]\npreview_segments = 2\n", "preview_segments"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Tessellate.FaceEpsilon = 0
	cfg.Instancing.Tolerance = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tessellate.face_epsilon")
	assert.Contains(t, err.Error(), "instancing.tolerance")
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Connect.Tolerance = 0.5

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))
	assert.True(t, strings.Contains(buf.String(), "[connect]"))

	got := Config{}
	require.NoError(t, Read(&got, &buf))
	assert.Equal(t, cfg, got)
}
