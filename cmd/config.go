package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/container-kit/containerkit/internal/config"
	"github.com/container-kit/containerkit/internal/paths"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Create, inspect and edit the configuration file",
		Annotations: map[string]string{skipValidation: "true"},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			path := a.configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			_, err := fmt.Fprintf(a.stdout, "Wrote %s\n", path)
			return err
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	setCmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a value in the configuration file",
		Long: `Set a value in the configuration file, keeping its comments.

Example:
  container-kit config set watch.containers 5s`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			path := a.configPath()
			if err := config.SetValue(path, args[0], args[1]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(a.stdout, "Set %s in %s\n", args[0], path)
			return err
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if a.json {
				return a.formatter().FormatResult(a.v.AllSettings())
			}
			data, err := yaml.Marshal(a.v.AllSettings())
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := a.cfg.Validate(); err != nil {
				return errors.Join(errors.New("invalid configuration"), err)
			}
			_, err := fmt.Fprintln(a.stdout, "Configuration is valid")
			return err
		},
	}

	cmd.AddCommand(initCmd, setCmd, showCmd, validateCmd)
	return cmd
}

// configPath is the file config commands write to: --config, then the file
// that was read, then the user default.
func (a *app) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			return used
		}
	}
	return paths.DefaultConfigPath()
}
