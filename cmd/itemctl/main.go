// Command itemctl administers the item store from the shell: schema
// migrations plus direct item reads, creates and deletes against whichever
// backend DATABASE_URL selects.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ghuser/itemstore/pkg/app"
	"github.com/ghuser/itemstore/pkg/config"
	"github.com/ghuser/itemstore/pkg/logger"
	"github.com/ghuser/itemstore/services/item/application/services"
)

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds flag values and the infrastructure opened for one command.
type cli struct {
	loadConfig func() (*config.Config, error)

	databaseURL string
	logLevel    string
	asJSON      bool

	app   *app.Application
	items *services.ItemService
}

func newRootCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	c := &cli{loadConfig: loadConfig}
	root := &cobra.Command{
		Use:           "itemctl",
		Short:         "Administer the item store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}
	root.PersistentFlags().StringVar(&c.databaseURL, "database-url", "", "store URL (default: $DATABASE_URL)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level written to stderr")
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(
		newMigrateCmd(c),
		newListCmd(c),
		newGetCmd(c),
		newCreateCmd(c),
		newDeleteCmd(c),
	)
	return root
}

// open connects the configured store. Item commands also get an ItemService.
func (c *cli) open(cmd *cobra.Command, withItems bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if c.databaseURL != "" {
		cfg.DatabaseURL = c.databaseURL
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), c.logLevel)

	// Writes from the CLI are not fanned out as events; there is no
	// forwarder running in a short-lived process.
	c.app, err = app.Open(ctxOf(cmd), cfg, log, app.OpenOptions{Migrate: withItems && cfg.AutoMigrate})
	if err != nil {
		return err
	}
	if !withItems {
		return nil
	}
	svcs, err := services.New(c.app)
	if err != nil {
		return err
	}
	c.items = svcs.Item
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
