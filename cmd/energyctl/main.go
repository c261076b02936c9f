package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"energydash/adapters/sqlstore"
	"energydash/internal/config"
	"energydash/internal/container"
	"energydash/internal/migration"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "energyctl",
		Short:         "Energy dashboard maintenance and offline analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateCmd(),
		newImportCmd(),
		newAnalyzeCmd(),
		newSweepCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads .env when present, then the environment.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	return config.Load()
}

func openContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Open(ctx); err != nil {
		c.Shutdown(ctx)
		return nil, err
	}
	return c, nil
}

func newMigrateCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create the buildings, readings, weather and alerts tables and the default
building if they do not exist.

Example: DATABASE_URL=energy.db DB_DRIVER=sqlite3 energyctl migrate --reset`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := sqlstore.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			runner := migration.NewRunner()
			if reset {
				if err := runner.Reset(cmd.Context(), db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "dropped existing tables")
			}
			if err := runner.Run(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %s (%s)\n", runner.Version(), cfg.Database.Driver)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Drop all tables before migrating")
	return cmd
}
