package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/container-kit/containerkit/internal/container"
)

func newSystemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "system",
		Aliases: []string{"s"},
		Short:   "Control the containerization service",
	}
	for _, sub := range []struct {
		use, short string
		run        func(*container.Client, context.Context) (container.Output, error)
	}{
		{"start", "Start the service", (*container.Client).StartSystem},
		{"stop", "Stop the service", (*container.Client).StopSystem},
		{"status", "Show whether the service is running", (*container.Client).SystemStatus},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				client, err := a.containerClient()
				if err != nil {
					return err
				}
				return a.report(sub.run(client, cmd.Context()))
			},
		})
	}
	return cmd
}

func newDNSCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dns",
		Short: "Manage local DNS domains",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create DOMAIN",
			Short: "Create a local DNS domain (asks for administrator access)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.containerClient()
				if err != nil {
					return err
				}
				return a.report(client.CreateDNS(cmd.Context(), args[0]))
			},
		},
		&cobra.Command{
			Use:     "delete DOMAIN",
			Aliases: []string{"rm"},
			Short:   "Delete a local DNS domain (asks for administrator access)",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.containerClient()
				if err != nil {
					return err
				}
				return a.report(client.DeleteDNS(cmd.Context(), args[0]))
			},
		},
		&cobra.Command{
			Use:     "ls",
			Aliases: []string{"list"},
			Short:   "List local DNS domains",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				client, err := a.containerClient()
				if err != nil {
					return err
				}
				domains, err := client.DNSDomains(cmd.Context())
				if err != nil {
					return err
				}
				return a.formatter().FormatDomains(domains)
			},
		},
	)
	return cmd
}
