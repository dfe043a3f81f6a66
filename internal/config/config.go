// Package config provides configuration types and defaults for container-kit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/container-kit/containerkit/internal/highlight"
	"github.com/container-kit/containerkit/internal/log"
	"github.com/container-kit/containerkit/internal/paths"
	"github.com/container-kit/containerkit/internal/tracing"
	"github.com/container-kit/containerkit/internal/watcher"
)

// Config holds all configuration options for container-kit.
type Config struct {
	CLI       CLIConfig       `mapstructure:"cli"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Highlight HighlightConfig `mapstructure:"highlight"`
	Tracing   tracing.Config  `mapstructure:"tracing"`
	Debug     bool            `mapstructure:"debug"`
	LogFile   string          `mapstructure:"log_file"`
}

// CLIConfig selects the container binary and how it is invoked.
type CLIConfig struct {
	Program       string `mapstructure:"program"`        // CLI looked up on PATH
	SidecarPath   string `mapstructure:"sidecar_path"`   // bundled binary, optional
	PreferSidecar bool   `mapstructure:"prefer_sidecar"` // run SidecarPath for every command
	AppName       string `mapstructure:"app_name"`       // shown in the elevation prompt
}

// PathsConfig locates the runtime data root, the resolver directory and the
// local database.
type PathsConfig struct {
	DataDir     string `mapstructure:"data_dir"`
	ResolverDir string `mapstructure:"resolver_dir"`
	Database    string `mapstructure:"database"`
}

// WatchConfig holds the debounce window of each domain watcher.
type WatchConfig struct {
	Containers time.Duration `mapstructure:"containers"`
	Images     time.Duration `mapstructure:"images"`
	Networks   time.Duration `mapstructure:"networks"`
	DNS        time.Duration `mapstructure:"dns"`
	Resolver   time.Duration `mapstructure:"resolver"`
}

// HighlightConfig controls syntax highlighting of logs and inspect output.
type HighlightConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Style   string `mapstructure:"style"`
	Format  string `mapstructure:"format"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = paths.DefaultTracesPath()

	return Config{
		CLI: CLIConfig{
			Program: "container",
			AppName: "ContainerKit",
		},
		Paths: PathsConfig{
			DataDir:     paths.DefaultDataDir(),
			ResolverDir: watcher.DefaultResolverDir,
			Database:    paths.DefaultDatabasePath(),
		},
		Watch: WatchConfig{
			Containers: watcher.DefaultContainerDelay,
			Images:     watcher.DefaultImageDelay,
			Networks:   watcher.DefaultNetworkDelay,
			DNS:        watcher.DefaultDNSDelay,
			Resolver:   watcher.DefaultResolverDelay,
		},
		Highlight: HighlightConfig{
			Enabled: true,
			Style:   highlight.DefaultStyle,
			Format:  highlight.FormatTerminal256,
		},
		Tracing: tc,
		LogFile: paths.DefaultLogPath(),
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	var errs []error

	if c.CLI.Program == "" && c.CLI.SidecarPath == "" {
		errs = append(errs, errors.New("cli.program or cli.sidecar_path is required"))
	}
	if c.CLI.PreferSidecar && c.CLI.SidecarPath == "" {
		errs = append(errs, errors.New("cli.prefer_sidecar requires cli.sidecar_path"))
	}
	if c.Paths.DataDir == "" {
		errs = append(errs, errors.New("paths.data_dir is required"))
	}
	if c.Paths.Database == "" {
		errs = append(errs, errors.New("paths.database is required"))
	}

	for name, d := range map[string]time.Duration{
		"containers": c.Watch.Containers,
		"images":     c.Watch.Images,
		"networks":   c.Watch.Networks,
		"dns":        c.Watch.DNS,
		"resolver":   c.Watch.Resolver,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("watch.%s must not be negative, got %s", name, d))
		}
	}

	switch c.Highlight.Format {
	case "", highlight.FormatHTML, highlight.FormatTerminal256, highlight.FormatTrueColor, highlight.FormatPlain:
	default:
		errs = append(errs, fmt.Errorf("highlight.format must be %q, %q, %q or %q, got %q",
			highlight.FormatTerminal256, highlight.FormatTrueColor, highlight.FormatHTML, highlight.FormatPlain,
			c.Highlight.Format))
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	return errors.Join(errs...)
}

// Expand resolves "~" in every path setting.
func (c Config) Expand() Config {
	c.CLI.SidecarPath = paths.ExpandHome(c.CLI.SidecarPath)
	c.Paths.DataDir = paths.ExpandHome(c.Paths.DataDir)
	c.Paths.ResolverDir = paths.ExpandHome(c.Paths.ResolverDir)
	c.Paths.Database = paths.ExpandHome(c.Paths.Database)
	c.Tracing.FilePath = paths.ExpandHome(c.Tracing.FilePath)
	c.LogFile = paths.ExpandHome(c.LogFile)
	return c
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# container-kit configuration

# How the container CLI is invoked
cli:
  program: container        # looked up on PATH
  # sidecar_path: /Applications/ContainerKit.app/Contents/MacOS/container
  prefer_sidecar: false     # run sidecar_path for every command
  app_name: ContainerKit    # shown in the administrator prompt

# Locations (defaults are derived from your home directory)
paths:
  # data_dir: ~/Library/Application Support/com.apple.container
  resolver_dir: /etc/resolver
  # database: ~/Library/Application Support/container-kit/container-kit.db

# Debounce windows for 'container-kit watch'
watch:
  containers: 2s
  images: 2s
  networks: 1s
  dns: 1s
  resolver: 1s

# Syntax highlighting for logs and inspect output
highlight:
  enabled: true
  style: github-dark
  format: terminal256       # terminal256, terminal16m, html or noop

# Tracing of CLI invocations
tracing:
  enabled: false
  exporter: file            # file, stdout, otlp or none
  # file_path: ~/.config/container-kit/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: container-kit

# Debug logging (also enabled by --debug or CONTAINER_KIT_DEBUG=1)
debug: false
# log_file: ~/.config/container-kit/debug.log
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
