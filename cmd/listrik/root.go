package main

import (
	"github.com/spf13/cobra"

	"listrik/internal/catalog"
	"listrik/internal/cli"
	"listrik/internal/config"
)

// rootOptions are the persistent flags. A flag that is set wins over the
// matching environment variable.
type rootOptions struct {
	port        string
	catalogPath string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "listrik",
		Short: "Household electricity ledger and dashboard",
		Long: `listrik tracks household appliances, estimates their monthly consumption
and cost under a tariff class, and suggests how to cut usage. It serves an
htmx dashboard and renders the same reports as text tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.port, "port", "", "HTTP port (overrides PORT)")
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "catalog file with tariffs and seed appliances (overrides CATALOG_PATH)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	cmd.AddCommand(
		newServeCmd(opts),
		newReportCmd(opts),
		newCatalogCmd(),
		newEventsCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) apply(c *config.Config) {
	if o.port != "" {
		c.Port = o.port
	}
	if o.catalogPath != "" {
		c.CatalogPath = o.catalogPath
	}
	if o.logLevel != "" {
		c.LogLevel = o.logLevel
	}
}

// loadConfig reads .env and the environment, then applies the flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cli.LoadEnvFile()
	return cli.LoadAndValidateConfig(o.apply)
}

// loadCatalog reads the catalog named by the flag or environment without
// requiring the rest of the server configuration to be valid.
func (o *rootOptions) loadCatalog() (*catalog.Catalog, error) {
	path := o.catalogPath
	if path == "" {
		cli.LoadEnvFile()
		path = config.Load().CatalogPath
	}
	return catalog.Load(path)
}
