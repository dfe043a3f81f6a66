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

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "container", cfg.CLI.Program)
	require.Equal(t, 2*time.Second, cfg.Watch.Containers)
	require.Equal(t, time.Second, cfg.Watch.Resolver)
	require.Equal(t, "/etc/resolver", cfg.Paths.ResolverDir)
	require.False(t, cfg.Tracing.Enabled)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no program", func(c *Config) { c.CLI.Program = "" }, "cli.program"},
		{"prefer sidecar without path", func(c *Config) { c.CLI.PreferSidecar = true }, "cli.prefer_sidecar"},
		{"no data dir", func(c *Config) { c.Paths.DataDir = "" }, "paths.data_dir"},
		{"no database", func(c *Config) { c.Paths.Database = "" }, "paths.database"},
		{"negative debounce", func(c *Config) { c.Watch.Networks = -time.Second }, "watch.networks"},
		{"bad format", func(c *Config) { c.Highlight.Format = "pdf" }, "highlight.format"},
		{"bad sample rate", func(c *Config) { c.Tracing.SampleRate = 2 }, "tracing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Paths.DataDir = "/data"
			cfg.Paths.Database = "/data/db"
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_SidecarOnly(t *testing.T) {
	cfg := Defaults()
	cfg.CLI.Program = ""
	cfg.CLI.SidecarPath = "/opt/kit/container"
	cfg.Paths.DataDir = "/data"
	cfg.Paths.Database = "/data/db"
	require.NoError(t, cfg.Validate())
}

func TestExpand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Defaults()
	cfg.Paths.Database = "~/kit.db"
	cfg.CLI.SidecarPath = "~/bin/container"

	got := cfg.Expand()
	require.Equal(t, filepath.Join(home, "kit.db"), got.Paths.Database)
	require.Equal(t, filepath.Join(home, "bin", "container"), got.CLI.SidecarPath)
	require.Equal(t, "/etc/resolver", got.Paths.ResolverDir)
}

// The template must decode through viper to the same values Defaults uses
// for every setting it spells out.
func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(DefaultConfigTemplate())))

	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	require.Equal(t, Defaults(), cfg)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
