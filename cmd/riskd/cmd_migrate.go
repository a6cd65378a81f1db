package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/bibbank/breachrisk/internal/infrastructure/config"
	infraPostgres "github.com/bibbank/breachrisk/internal/infrastructure/postgres"
	"github.com/bibbank/breachrisk/pkg/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the incident store schema",
	}
	cmd.AddCommand(
		migrateStep("up", "Apply every pending migration", postgres.RunMigrations),
		migrateStep("down", "Roll back every migration", postgres.RunMigrationsDown),
	)
	return cmd
}

func migrateStep(use, short string, run func(fsys fs.FS, dir, dsn string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate needs the %s driver, configured %q", config.DriverPostgres, cfg.Database.Driver)
			}
			if err := run(infraPostgres.Migrations, infraPostgres.MigrationsDir, cfg.Database.DSN()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations %s\n", use)
			return nil
		},
	}
}
