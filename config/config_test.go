package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
camera:
  fov_degrees: 60
  near: 1
  far: 100
lights:
  workers: 4
profiler:
  enabled: true
  interval: 250ms
`))
	require.NoError(t, err)

	assert.Equal(t, float32(60), cfg.Camera.FovDegrees)
	assert.Equal(t, float32(1), cfg.Camera.Near)
	assert.Equal(t, float32(1), cfg.Camera.Aspect, "aspect keeps its default")
	assert.Equal(t, 8, cfg.Octree.MaxDepth)
	assert.Equal(t, [3]float32{-1000, -1000, -1000}, cfg.Octree.Min)
	assert.Equal(t, 4, cfg.Lights.Workers)
	assert.Equal(t, 64, cfg.Lights.ParallelThreshold)
	assert.True(t, cfg.Profiler.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Profiler.Interval)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"inverted octree", "octree:\n  min: [10, 0, 0]\n  max: [0, 1, 1]\n"},
		{"negative depth", "octree:\n  max_depth: -1\n"},
		{"far before near", "camera:\n  near: 10\n  far: 5\n"},
		{"zero fov", "camera:\n  fov_degrees: 0\n"},
		{"negative lag", "camera:\n  lag: -2\n"},
		{"negative workers", "lights:\n  workers: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, ErrInvalid, errors.Cause(err))
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("octree: [unterminated"))
	require.Error(t, err)
	assert.NotEqual(t, ErrInvalid, errors.Cause(err))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("octree:\n  max_depth: 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Octree.MaxDepth)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}
