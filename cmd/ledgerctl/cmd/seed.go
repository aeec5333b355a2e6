package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedChartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-chart",
		Short: "Create the accounts referenced by the posting rules",
		Long: `Creates every account the posting rules map to. Existing account codes are
left untouched, so the command is safe to re-run after editing POSTING_RULES_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.SeedChart(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d accounts\n", created)
			return nil
		},
	}
}
