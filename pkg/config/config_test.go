package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsEmptyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, cfg.Path())
	require.Empty(t, cfg.Keys())
}

func TestLoadAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[github]
token = "hunter2"

[jlink]
path = "/opt/SEGGER/JLinkExe"
speed = 4000
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	token, ok := cfg.Get("github.token")
	require.True(t, ok)
	require.Equal(t, "hunter2", token)

	// Non-string values stringify.
	speed, ok := cfg.Get("jlink.speed")
	require.True(t, ok)
	require.Equal(t, "4000", speed)

	_, ok = cfg.Get("github.missing")
	require.False(t, ok)
	_, ok = cfg.Get("github.token.nested")
	require.False(t, ok)
}

func TestSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, cfg.Set("multimeter.resource", "USB0::0x2A8D"))

	reloaded, err := Load(path)
	require.NoError(t, err)
	v, ok := reloaded.Get("multimeter.resource")
	require.True(t, ok)
	require.Equal(t, "USB0::0x2A8D", v)
}

func TestSetCreatesIntermediateTables(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	require.NoError(t, cfg.Set("a.b.c", "deep"))
	v, ok := cfg.Get("a.b.c")
	require.True(t, ok)
	require.Equal(t, "deep", v)
}

func TestGetOrDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)

	v, err := cfg.GetOrDefault("oscilloscope.resource", "TCPIP::scope.local")
	require.NoError(t, err)
	require.Equal(t, "TCPIP::scope.local", v)

	// The default is now stored.
	reloaded, err := Load(path)
	require.NoError(t, err)
	got, ok := reloaded.Get("oscilloscope.resource")
	require.True(t, ok)
	require.Equal(t, "TCPIP::scope.local", got)
}

func TestKeys(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Set("b.two", "2"))
	require.NoError(t, cfg.Set("a.one", "1"))
	require.NoError(t, cfg.Set("top", "t"))

	require.Equal(t, []string{"a.one", "b.two", "top"}, cfg.Keys())
}

func TestWriteModeIsPrivate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Set("github.token", "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
