// Package cmd provides the ledgerctl commands.
package cmd

import (
	"log/slog"
	"os"

	"github.com/SscSPs/autoledger/internal/platform/app"
	"github.com/SscSPs/autoledger/internal/platform/config"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the autoledger posting subsystem",
		Long: `ledgerctl runs operator tasks against the ledger database configured
through the same environment variables as the server (PGSQL_URL, STORAGE_DRIVER, ...).

Example:
  ledgerctl migrate
  ledgerctl seed-chart
  ledgerctl sync-queue --limit 100 --kind pos_sale
  ledgerctl trial-balance --as-of 2025-12-31
  ledgerctl unreconciled --source-type pos_refund
  ledgerctl issue-token --actor pos-terminal-3`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel := slog.LevelInfo
			if debug {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			}))
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSeedChartCmd(),
		newSyncQueueCmd(),
		newTrialBalanceCmd(),
		newUnreconciledCmd(),
		newIssueTokenCmd(),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}

// openApp loads the configuration and wires the services for one command run.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, slog.Default())
}
