package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coursewatcher.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
root = "/media/courses"
listen = ":9000"
completion_threshold = 0.8
watch = false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/media/courses", cfg.Root)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, 0.8, cfg.CompletionThreshold)
	assert.False(t, cfg.Watch)
	// untouched keys keep their defaults
	assert.Equal(t, ".coursewatcher", cfg.DataDirName)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coursewatcher.toml")
	require.NoError(t, os.WriteFile(path, []byte("root = [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty root", func(c *Config) { c.Root = "" }},
		{"empty listen", func(c *Config) { c.Listen = "" }},
		{"dot data dir", func(c *Config) { c.DataDirName = "." }},
		{"zero threshold", func(c *Config) { c.CompletionThreshold = 0 }},
		{"threshold above one", func(c *Config) { c.CompletionThreshold = 1.5 }},
		{"negative interval", func(c *Config) { c.ScanIntervalMinutes = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	require.NoError(t, WriteSample(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Default().CompletionThreshold, cfg.CompletionThreshold)

	// refuses to clobber
	assert.Error(t, WriteSample(path))
}
