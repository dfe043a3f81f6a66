package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/container-kit/containerkit/internal/container"
	"github.com/container-kit/containerkit/internal/presentation"
)

func newRegistryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "registry",
		Aliases: []string{"r"},
		Short:   "Manage image registries",
	}
	cmd.AddCommand(
		newRegistryLoginCmd(a),
		newRegistryLogoutCmd(a),
		newRegistryAddCmd(a),
		newRegistryListCmd(a),
		newRegistryDefaultCmd(a),
	)
	return cmd
}

func newRegistryLoginCmd(a *app) *cobra.Command {
	var (
		params        container.LoginParams
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login REGISTRY",
		Short: "Log in to a registry",
		Long: `Log in to a registry. The password is handed to the container CLI on
standard input and never appears in its arguments.

Examples:
  container-kit registry login -u alice ghcr.io
  echo "$TOKEN" | container-kit registry login -u alice --password-stdin ghcr.io`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if params.Username == "" {
				return errors.New("--username is required")
			}
			password, err := a.readPassword(cmd, passwordStdin)
			if err != nil {
				return err
			}
			params.Password = password
			params.Registry = args[0]

			svc, err := a.registryService(cmd.Context())
			if err != nil {
				return err
			}
			return a.report(svc.Login(cmd.Context(), params))
		},
	}
	cmd.Flags().StringVarP(&params.Username, "username", "u", "", "registry user name")
	cmd.Flags().StringVar(&params.Scheme, "scheme", container.DefaultScheme, "registry scheme: http, https or auto")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from standard input")
	return cmd
}

// readPassword reads the whole of stdin with --password-stdin, otherwise
// prompts on the terminal without echo.
func (a *app) readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		password := strings.TrimRight(string(data), "\r\n")
		if password == "" {
			return "", errors.New("empty password on standard input")
		}
		return password, nil
	}

	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: fd fits in int
		return "", errors.New("no terminal to prompt for a password; use --password-stdin")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	data, err := term.ReadPassword(int(f.Fd())) //nolint:gosec // G115: fd fits in int
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(data), nil
}

func newRegistryLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout REGISTRY",
		Short: "Log out of a registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.registryService(cmd.Context())
			if err != nil {
				return err
			}
			return a.report(svc.Logout(cmd.Context(), args[0]))
		},
	}
}

func newRegistryAddCmd(a *app) *cobra.Command {
	var displayName string
	cmd := &cobra.Command{
		Use:   "add URL",
		Short: "Record a registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.registryService(cmd.Context())
			if err != nil {
				return err
			}
			reg, err := svc.Add(cmd.Context(), displayName, args[0])
			if err != nil {
				return err
			}
			if a.json {
				return a.formatter().FormatResult(reg)
			}
			_, err = fmt.Fprintf(a.stdout, "Added %s (%s)\n", reg.Name, reg.URL)
			return err
		},
	}
	cmd.Flags().StringVar(&displayName, "name", "", "display name (default: the registry host)")
	return cmd
}

func newRegistryListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded registries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.database(cmd.Context())
			if err != nil {
				return err
			}
			regs, err := db.RegistryRepository().List(cmd.Context())
			if err != nil {
				return err
			}
			return a.formatter().FormatRegistries(presentation.FromRegistries(regs))
		},
	}
}

func newRegistryDefaultCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "default",
		Short: "Manage the default registry",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "inspect",
			Short: "Show the default registry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				client, err := a.containerClient()
				if err != nil {
					return err
				}
				return a.report(client.DefaultRegistry(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "set REGISTRY",
			Short: "Set the default registry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, err := a.registryService(cmd.Context())
				if err != nil {
					return err
				}
				return a.report(svc.SetDefault(cmd.Context(), args[0]))
			},
		},
		&cobra.Command{
			Use:     "unset REGISTRY",
			Aliases: []string{"remove", "clear"},
			Short:   "Unset the default registry",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.containerClient()
				if err != nil {
					return err
				}
				return a.report(client.UnsetDefaultRegistry(cmd.Context(), args[0]))
			},
		},
	)
	return cmd
}
