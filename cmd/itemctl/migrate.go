package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ghuser/itemstore/migrations/item"
	"github.com/ghuser/itemstore/pkg/database"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the items table schema (SQL backends only)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := c.sqlDB(cmd)
				if err != nil {
					return err
				}
				applied, err := item.Up(ctxOf(cmd), db)
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no pending migrations")
				}
				for _, src := range applied {
					fmt.Fprintln(cmd.OutOrStdout(), "applied", src)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := c.sqlDB(cmd)
				if err != nil {
					return err
				}
				src, err := item.Down(ctxOf(cmd), db)
				if err != nil {
					return err
				}
				if src == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing to roll back")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "rolled back", src)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show which migrations are applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := c.sqlDB(cmd)
				if err != nil {
					return err
				}
				statuses, err := item.Status(ctxOf(cmd), db)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tSTATE\tSOURCE")
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Version, state, s.Source)
				}
				return tw.Flush()
			},
		},
	)
	return cmd
}

func (c *cli) sqlDB(cmd *cobra.Command) (*database.Database, error) {
	if err := c.open(cmd, false); err != nil {
		return nil, err
	}
	if c.app.Db == nil {
		return nil, fmt.Errorf("backend %s has no schema to migrate", c.app.Backend)
	}
	return c.app.Db, nil
}
