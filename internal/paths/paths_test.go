package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, home, ExpandHome("~"))
	require.Equal(t, filepath.Join(home, "data", "x.db"), ExpandHome("~/data/x.db"))
	require.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	require.Equal(t, "~other/path", ExpandHome("~other/path"))
}

func TestConfigPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "container-kit")
	require.Equal(t, dir, ConfigDir())
	require.Equal(t, filepath.Join(dir, "config.yaml"), DefaultConfigPath())
	require.Equal(t, filepath.Join(dir, "debug.log"), DefaultLogPath())
	require.Equal(t, filepath.Join(dir, "traces", "traces.jsonl"), DefaultTracesPath())
}

func TestDataPaths(t *testing.T) {
	require.Equal(t, RuntimeDataDirName, filepath.Base(DefaultDataDir()))
	require.Equal(t, "container-kit.db", filepath.Base(DefaultDatabasePath()))
}
