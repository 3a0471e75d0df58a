package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"listrik/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the tariff and seed appliance catalog",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write the built-in catalog to a YAML file",
		Long: `Writes the built-in tariff table and seed appliances so they can be edited.
Point CATALOG_PATH or --catalog at the file to use it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			c := catalog.Default()
			if err := catalog.Save(path, c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d tariffs and %d appliances to %s\n", len(c.Tariffs), len(c.Appliances), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	checkCmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Validate a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("reading catalog file: %w", err)
			}
			c, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d tariffs, %d appliances, default %s)\n",
				args[0], len(c.Tariffs), len(c.Appliances), c.DefaultClass)
			return nil
		},
	}

	cmd.AddCommand(initCmd, checkCmd)
	return cmd
}
