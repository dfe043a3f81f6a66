package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/container-kit/containerkit/internal/log"
	"github.com/container-kit/containerkit/internal/monitor"
	"github.com/container-kit/containerkit/internal/presentation"
	"github.com/container-kit/containerkit/internal/watcher"
)

type changeRecord struct {
	Resource monitor.Resource `json:"resource"`
	Event    string           `json:"event,omitempty"`
	At       time.Time        `json:"at"`
}

func newWatchCmd(a *app) *cobra.Command {
	var relist bool
	cmd := &cobra.Command{
		Use:   "watch [RESOURCE...]",
		Short: "Print changes to containers, images, networks and DNS as they happen",
		Long: `Watch the container runtime's data directory and /etc/resolver and print
a line per change. Resources are containers, images, networks, dns and
resolver; all of them are watched when none are named.

With --relist the affected resource is listed again after each change.`,
		ValidArgs: []string{"containers", "images", "networks", "dns", "resolver"},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := a.containerClient(); err != nil {
				return err
			}

			manager := watcher.NewManager(a.cfg.Paths.DataDir, watcher.WithResolverDir(a.cfg.Paths.ResolverDir))
			mon := monitor.New(manager,
				monitor.WithTracer(a.provider.Tracer()),
				monitor.WithDelays(monitor.Delays{
					Containers: a.cfg.Watch.Containers,
					Images:     a.cfg.Watch.Images,
					Networks:   a.cfg.Watch.Networks,
					DNS:        a.cfg.Watch.DNS,
					Resolver:   a.cfg.Watch.Resolver,
				}),
			)
			defer func() { _ = mon.Stop() }()

			changes := mon.Subscribe(ctx)

			resources := make([]monitor.Resource, len(args))
			for i, arg := range args {
				resources[i] = monitor.Resource(arg)
			}
			if err := mon.Start(resources...); err != nil {
				if len(mon.Active()) == 0 {
					return fmt.Errorf("nothing to watch: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %v (ctrl+c to stop)\n", mon.Active())

			for ev := range changes {
				if err := a.printChange(ev.Payload, ev.Timestamp); err != nil {
					return err
				}
				if relist {
					if err := a.relist(ctx, ev.Payload.Resource); err != nil {
						log.ErrorErr(log.CatWatch, "relist failed", err, "resource", string(ev.Payload.Resource))
						fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&relist, "relist", false, "list the changed resource after each change")
	return cmd
}

func (a *app) printChange(c monitor.Change, at time.Time) error {
	rec := changeRecord{Resource: c.Resource, At: at}
	if c.Event != nil {
		rec.Event = c.Event.String()
	}
	if a.json {
		return a.formatter().FormatResult(rec)
	}
	line := fmt.Sprintf("%s %s changed", at.Format(time.TimeOnly), c.Resource)
	if rec.Event != "" {
		line += ": " + rec.Event
	}
	_, err := fmt.Fprintln(a.stdout, line)
	return err
}

func (a *app) relist(ctx context.Context, r monitor.Resource) error {
	client, err := a.containerClient()
	if err != nil {
		return err
	}
	f := a.formatter()
	switch r {
	case monitor.ResourceContainers:
		cs, err := client.Containers(ctx)
		if err != nil {
			return err
		}
		return f.FormatContainers(presentation.FromContainers(cs))
	case monitor.ResourceImages:
		images, err := client.Images(ctx)
		if err != nil {
			return err
		}
		return f.FormatImages(presentation.FromImages(images))
	case monitor.ResourceNetworks:
		networks, err := client.Networks(ctx)
		if err != nil {
			return err
		}
		return f.FormatNetworks(presentation.FromNetworks(networks))
	case monitor.ResourceDNS, monitor.ResourceResolver:
		domains, err := client.DNSDomains(ctx)
		if err != nil {
			return err
		}
		return f.FormatDomains(domains)
	}
	return nil
}
