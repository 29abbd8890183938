package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	want := Config{LogLevel: "warn", LogFormat: "text"}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("LoadDefaults() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NoFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv(EnvHome, "/tmp/trusty-home")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/trusty-home", cfg.Home)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"home":"/from/file","log_level":"info"}`), 0o600))
	t.Setenv(EnvHome, "/from/env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Home)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvHome:      "/h",
		EnvLogFormat: "json",
		EnvNoColor:   "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	applyEnv(cfg, lookup)

	want := &Config{Home: "/h", LogLevel: "warn", LogFormat: "json", NoColor: true}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("applyEnv() mismatch (-want +got):\n%s", diff)
	}
}

func TestDBPath_CreatesDataDir(t *testing.T) {
	home := t.TempDir()
	cfg := &Config{Home: home}

	path, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DataDirName, DBFileName), path)

	fi, err := os.Stat(filepath.Join(home, DataDirName))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	assert.Equal(t, os.FileMode(0o700), fi.Mode().Perm())
}
