package cmd

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/autoledger/internal/platform/config"
	"github.com/SscSPs/autoledger/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.StorageDriver != config.DriverPostgres {
				return fmt.Errorf("migrate needs STORAGE_DRIVER=%s, got %s", config.DriverPostgres, cfg.StorageDriver)
			}
			if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, slog.Default()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations up to date")
			return nil
		},
	}
}
