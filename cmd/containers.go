package cmd

import (
	"github.com/spf13/cobra"

	"github.com/container-kit/containerkit/internal/container"
	"github.com/container-kit/containerkit/internal/highlight"
	"github.com/container-kit/containerkit/internal/presentation"
)

func newContainersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "containers",
		Aliases: []string{"container", "c"},
		Short:   "Manage containers",
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all containers, running or not",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.containerClient()
			if err != nil {
				return err
			}
			cs, err := client.Containers(cmd.Context())
			if err != nil {
				return err
			}
			return a.formatter().FormatContainers(presentation.FromContainers(cs))
		},
	}

	create := &cobra.Command{
		Use:   "create NAME IMAGE",
		Short: "Create a container (not supported yet)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.containerClient()
			if err != nil {
				return err
			}
			return a.report(client.CreateContainer(cmd.Context(), args[0], args[1]))
		},
	}

	byID := func(use, short string, run func(*container.Client, *cobra.Command, string) (container.Output, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.containerClient()
				if err != nil {
					return err
				}
				return a.report(run(client, cmd, args[0]))
			},
		}
	}

	start := byID("start", "Start a container", func(c *container.Client, cmd *cobra.Command, id string) (container.Output, error) {
		return c.StartContainer(cmd.Context(), id)
	})
	stop := byID("stop", "Stop a container", func(c *container.Client, cmd *cobra.Command, id string) (container.Output, error) {
		return c.StopContainer(cmd.Context(), id)
	})
	rm := byID("rm", "Remove a container", func(c *container.Client, cmd *cobra.Command, id string) (container.Output, error) {
		return c.RemoveContainer(cmd.Context(), id)
	})
	rm.Aliases = []string{"remove", "delete"}

	inspect := &cobra.Command{
		Use:   "inspect ID",
		Short: "Show a container's full configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.containerClient()
			if err != nil {
				return err
			}
			out, err := client.InspectContainer(cmd.Context(), args[0])
			return a.reportHighlighted(cmd.Context(), out, err, highlight.LangJSON)
		},
	}

	var logOpts container.LogsOptions
	logs := &cobra.Command{
		Use:   "logs ID",
		Short: "Show a container's logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.containerClient()
			if err != nil {
				return err
			}
			out, err := client.ContainerLogs(cmd.Context(), args[0], logOpts)
			return a.reportHighlighted(cmd.Context(), out, err, highlight.LangLog)
		},
	}
	logs.Flags().BoolVar(&logOpts.Boot, "boot", false, "show the VM boot log")
	logs.Flags().IntVarP(&logOpts.Lines, "lines", "n", 0, "show only the last n lines")

	cmd.AddCommand(ls, create, start, stop, rm, inspect, logs)
	return cmd
}

func newImagesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "images",
		Aliases: []string{"image", "i"},
		Short:   "Inspect local images",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List local images",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.containerClient()
			if err != nil {
				return err
			}
			images, err := client.Images(cmd.Context())
			if err != nil {
				return err
			}
			return a.formatter().FormatImages(presentation.FromImages(images))
		},
	})
	return cmd
}

func newNetworksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "networks",
		Aliases: []string{"network", "n"},
		Short:   "Inspect container networks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List networks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.containerClient()
			if err != nil {
				return err
			}
			networks, err := client.Networks(cmd.Context())
			if err != nil {
				return err
			}
			return a.formatter().FormatNetworks(presentation.FromNetworks(networks))
		},
	})
	return cmd
}
