package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func readConfig(t *testing.T, path string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSetValue_UpdatesExistingKeyAndKeepsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	require.NoError(t, SetValue(path, "watch.containers", "5s"))

	cfg := readConfig(t, path)
	require.Equal(t, 5*time.Second, cfg.Watch.Containers)
	require.Equal(t, 2*time.Second, cfg.Watch.Images)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "# container-kit configuration")
	require.Contains(t, string(data), "# looked up on PATH")
}

func TestSetValue_CreatesFileAndMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	require.NoError(t, SetValue(path, "cli.sidecar_path", "/opt/kit/container"))
	require.NoError(t, SetValue(path, "cli.prefer_sidecar", "true"))
	require.NoError(t, SetValue(path, "debug", "true"))

	cfg := readConfig(t, path)
	require.Equal(t, "/opt/kit/container", cfg.CLI.SidecarPath)
	require.True(t, cfg.CLI.PreferSidecar)
	require.True(t, cfg.Debug)
}

func TestSetValue_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: false\n"), 0o600))

	err := SetValue(path, "debug.level", "x")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "not a mapping"))

	require.Error(t, SetValue(path, "watch..dns", "1s"))

	require.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0o600))
	require.Error(t, SetValue(path, "debug", "true"))
}
