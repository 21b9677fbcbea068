package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) (home string, cfgDir string) {
	t.Helper()
	home = t.TempDir()
	cfgDir = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvRoot, "")
	t.Setenv(EnvLogLevel, "")
	homedir.DisableCache = true
	orig := userConfigDir
	userConfigDir = func() (string, error) { return cfgDir, nil }
	t.Cleanup(func() {
		userConfigDir = orig
		homedir.DisableCache = false
		homedir.Reset()
	})
	return home, cfgDir
}

func writeConfig(t *testing.T, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home, cfgDir := isolate(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "datalad"), cfg.Handles.Root)
	assert.Equal(t, "git", cfg.Backend.Git)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Annex.Direct)
	assert.Equal(t, filepath.Join(cfgDir, appDirName, cookiesFile), cfg.Cookies.Path)
}

func TestLoadFile(t *testing.T) {
	home, _ := isolate(t)
	path := writeConfig(t, t.TempDir(), `
[handles]
root = "~/handles"

[backend]
git = "/usr/local/bin/git"

[annex]
direct = true

[log]
level = "DEBUG"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "handles"), cfg.Handles.Root)
	assert.Equal(t, "/usr/local/bin/git", cfg.Backend.Git)
	assert.True(t, cfg.Annex.Direct)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadDefaultPathFromEnv(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "[log]\nlevel = \"warn\"\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "[handles]\nroot = \"/from/file\"\n")
	root := t.TempDir()
	t.Setenv(EnvRoot, root)
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, root, cfg.Handles.Root)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "[handles]\nroots = \"/x\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.False(t, errors.Is(err, ErrConfigValidation))
}

func TestLoadValidation(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		body string
	}{
		{"empty root", "[handles]\nroot = \"\"\n"},
		{"empty git", "[backend]\ngit = \" \"\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.body))
			assert.ErrorIs(t, err, ErrConfigValidation)
		})
	}
}

func TestParseIgnoresEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")

	cfg, err := Parse([]byte("[log]\nlevel = \"debug\"\n"), "inline")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestExpandPath(t *testing.T) {
	home, _ := isolate(t)
	t.Setenv("DH_TEST_DIR", "data")

	got, err := ExpandPath("~/$DH_TEST_DIR/x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "x"), got)

	got, err = ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
