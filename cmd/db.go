package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Maintain the local database",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "seed",
			Short: "Apply migrations and seeds",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := a.database(cmd.Context())
				if err != nil {
					return err
				}
				seeds, err := db.SeedRepository().List(cmd.Context())
				if err != nil {
					return err
				}
				if a.json {
					return a.formatter().FormatResult(seeds)
				}
				for _, s := range seeds {
					fmt.Fprintf(a.stdout, "%s applied=%t\n", s.Name, s.Applied)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the database location",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				_, err := fmt.Fprintln(a.stdout, a.cfg.Paths.Database)
				return err
			},
		},
	)
	return cmd
}
