package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/term"

	"github.com/container-kit/containerkit/internal/config"
	"github.com/container-kit/containerkit/internal/container"
	"github.com/container-kit/containerkit/internal/highlight"
	"github.com/container-kit/containerkit/internal/infrastructure/sqlite"
	"github.com/container-kit/containerkit/internal/log"
	"github.com/container-kit/containerkit/internal/paths"
	"github.com/container-kit/containerkit/internal/presentation"
	"github.com/container-kit/containerkit/internal/registry"
	"github.com/container-kit/containerkit/internal/tracing"
)

var version = "dev"

// EnvPrefix prefixes every environment override, e.g. CONTAINER_KIT_CLI_PROGRAM.
const EnvPrefix = "CONTAINER_KIT"

const skipValidation = "skip-validation"

// RunnerFactory builds the process runner used for every CLI invocation.
type RunnerFactory func(cfg config.Config, tracer trace.Tracer) container.Runner

func defaultRunner(cfg config.Config, tracer trace.Tracer) container.Runner {
	return container.NewExecRunner(
		container.WithTracer(tracer),
		container.WithAppName(cfg.CLI.AppName),
	)
}

// app holds the state shared by one command tree.
type app struct {
	cfgFile string
	debug   bool
	json    bool

	v         *viper.Viper
	cfg       config.Config
	newRunner RunnerFactory

	provider    *tracing.Provider
	client      *container.Client
	db          *sqlite.DB
	highlighted *highlight.Highlighter
	closeLog    func()

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

func newRootCmd(newRunner RunnerFactory) *cobra.Command {
	a := &app{v: viper.New(), newRunner: newRunner}

	rootCmd := &cobra.Command{
		Use:   "container-kit",
		Short: "A companion CLI for Apple's container runtime",
		Long: `container-kit drives the container CLI: it lists and manages containers,
images, networks, registries and local DNS domains, and watches the
runtime's data directory for changes.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ~/.config/container-kit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "write debug logs to the log file")
	rootCmd.PersistentFlags().BoolVar(&a.json, "json", false, "print results as JSON")

	rootCmd.AddCommand(
		newContainersCmd(a),
		newImagesCmd(a),
		newNetworksCmd(a),
		newRegistryCmd(a),
		newSystemCmd(a),
		newDNSCmd(a),
		newWatchCmd(a),
		newDBCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := newRootCmd(defaultRunner)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}

func (a *app) setup(cmd *cobra.Command) error {
	a.stdout = cmd.OutOrStdout()
	a.stderr = cmd.ErrOrStderr()
	a.stdin = cmd.InOrStdin()

	if err := a.initConfig(annotated(cmd, skipValidation)); err != nil {
		return err
	}

	if a.debug || a.cfg.Debug || os.Getenv(EnvPrefix+"_DEBUG") != "" {
		if err := os.MkdirAll(filepath.Dir(a.cfg.LogFile), 0o750); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		closeLog, err := log.Init(a.cfg.LogFile)
		if err != nil {
			return err
		}
		a.closeLog = closeLog
		log.Info(log.CatConfig, "container-kit starting", "version", version, "command", cmd.CommandPath())
	}

	if annotated(cmd, skipValidation) {
		return nil
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// initConfig resolves configuration: --config, then .container-kit/config.yaml,
// then ~/.config/container-kit/config.yaml, then defaults. A missing --config
// file is only tolerated when allowMissing is set, so `config init` can
// create it.
func (a *app) initConfig(allowMissing bool) error {
	v := a.v
	setDefaults(v, config.Defaults())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else if _, err := os.Stat(filepath.Join(".container-kit", "config.yaml")); err == nil {
		v.SetConfigFile(filepath.Join(".container-kit", "config.yaml"))
	} else {
		v.AddConfigPath(paths.ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case allowMissing && errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	a.cfg = cfg.Expand()
	return nil
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("cli.program", d.CLI.Program)
	v.SetDefault("cli.sidecar_path", d.CLI.SidecarPath)
	v.SetDefault("cli.prefer_sidecar", d.CLI.PreferSidecar)
	v.SetDefault("cli.app_name", d.CLI.AppName)
	v.SetDefault("paths.data_dir", d.Paths.DataDir)
	v.SetDefault("paths.resolver_dir", d.Paths.ResolverDir)
	v.SetDefault("paths.database", d.Paths.Database)
	v.SetDefault("watch.containers", d.Watch.Containers)
	v.SetDefault("watch.images", d.Watch.Images)
	v.SetDefault("watch.networks", d.Watch.Networks)
	v.SetDefault("watch.dns", d.Watch.DNS)
	v.SetDefault("watch.resolver", d.Watch.Resolver)
	v.SetDefault("highlight.enabled", d.Highlight.Enabled)
	v.SetDefault("highlight.style", d.Highlight.Style)
	v.SetDefault("highlight.format", d.Highlight.Format)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_file", d.LogFile)
}

func (a *app) teardown() error {
	var errs []error
	if a.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flushing traces: %w", err))
		}
	}
	if a.closeLog != nil {
		a.closeLog()
	}
	return errors.Join(errs...)
}

func annotated(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[key]; ok {
			return true
		}
	}
	return false
}

// containerClient builds the CLI client on first use.
func (a *app) containerClient() (*container.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	provider, err := tracing.NewProvider(a.cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}
	a.provider = provider

	builder := container.NewBuilder(container.BuilderConfig{
		Program:       a.cfg.CLI.Program,
		SidecarPath:   a.cfg.CLI.SidecarPath,
		PreferSidecar: a.cfg.CLI.PreferSidecar,
		AppName:       a.cfg.CLI.AppName,
	})
	a.client = container.NewClient(a.newRunner(a.cfg, provider.Tracer()), builder)
	return a.client, nil
}

// database opens the local database, applying migrations and seeds.
// Statement errors the proxy degrades are reported as warnings on stderr.
func (a *app) database(ctx context.Context) (*sqlite.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := sqlite.NewDB(a.cfg.Paths.Database, sqlite.WithErrorHook(a.warnDatabase))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Seed(ctx); err != nil {
		return nil, fmt.Errorf("seeding database: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *app) warnDatabase(_ string, err error) {
	fmt.Fprintln(a.stderr, "Warning: database error:", err)
}

func (a *app) registryService(ctx context.Context) (*registry.RegistryService, error) {
	client, err := a.containerClient()
	if err != nil {
		return nil, err
	}
	db, err := a.database(ctx)
	if err != nil {
		return nil, err
	}
	return registry.NewRegistryService(client, db.RegistryRepository()), nil
}

func (a *app) formatter() *presentation.Formatter {
	return presentation.NewFormatter(a.stdout, a.json)
}

// report prints a validated CLI result, or turns a failed one into an error.
func (a *app) report(out container.Output, err error) error {
	if err != nil {
		return err
	}
	if out.Error {
		return &container.CommandError{Output: out}
	}
	if a.json {
		return a.formatter().FormatResult(out)
	}
	_, werr := fmt.Fprintln(a.stdout, strings.TrimRight(out.Stdout, "\n"))
	return werr
}

// reportHighlighted is report with syntax highlighting when writing to a
// terminal.
func (a *app) reportHighlighted(ctx context.Context, out container.Output, err error, lang string) error {
	if err != nil || out.Error || a.json || !a.cfg.Highlight.Enabled || !isTerminal(a.stdout) {
		return a.report(out, err)
	}
	rendered, herr := a.highlighter().Highlight(ctx, out.Stdout, lang)
	if herr != nil {
		log.ErrorErr(log.CatHighlight, "highlighting failed", herr, "lang", lang)
		return a.report(out, nil)
	}
	_, werr := fmt.Fprintln(a.stdout, strings.TrimRight(rendered, "\n"))
	return werr
}

// highlighter returns the app's highlighter, so that its render cache is
// shared by every highlighted result of the command tree.
func (a *app) highlighter() *highlight.Highlighter {
	if a.highlighted == nil {
		a.highlighted = highlight.New(
			highlight.WithStyle(a.cfg.Highlight.Style),
			highlight.WithFormat(a.cfg.Highlight.Format),
		)
	}
	return a.highlighted
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd fits in int
}
