package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestEnsureUserConfig_WritesDefaultsOnce(t *testing.T) {
	dir := t.TempDir()

	path, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	// second call must not clobber user edits
	cfg.App.Port = 40000
	require.NoError(t, SaveAtomic(path, cfg))

	again, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40000, reloaded.App.Port)
}

func TestSaveAtomic_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := Default()
	cfg.Store.Database = "traincenter"
	cfg.Cleanup.MinIntervalHours = 12
	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSaveAtomic_KeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	first := Default()
	require.NoError(t, SaveAtomic(path, first))

	second := first
	second.App.Port = 40001
	require.NoError(t, SaveAtomic(path, second))

	_, err := os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestSaveAtomic_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	cfg := Default()
	cfg.App.Port = 0
	require.Error(t, SaveAtomic(path, cfg))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "invalid config must not be written")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bad port", func(c *Config) { c.App.Port = 70000 }, false},
		{"missing database", func(c *Config) { c.Store.Database = "" }, false},
		{"missing collection", func(c *Config) { c.Store.Collection = " " }, false},
		{"zero poll seconds", func(c *Config) { c.Feed.PollSeconds = 0 }, false},
		{"zero cleanup interval", func(c *Config) { c.Cleanup.MinIntervalHours = 0 }, false},
		{"non-http endpoint", func(c *Config) { c.AI.Endpoint = "ftp://x" }, false},
		{"missing model", func(c *Config) { c.AI.Model = "" }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
