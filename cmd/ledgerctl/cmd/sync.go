package cmd

import (
	"fmt"

	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/spf13/cobra"
)

func newSyncQueueCmd() *cobra.Command {
	var (
		limit int
		kind  string
	)

	syncCmd := &cobra.Command{
		Use:   "sync-queue",
		Short: "Post queued source events",
		Long: `Claims up to --limit pending queue items and posts them. Items that fail
permanently move to error; transient failures stay pending until they run out of attempts.

Example:
  ledgerctl sync-queue --limit 200 --kind pos_refund`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceType := domain.SourceType(kind)
			if kind != "" && !sourceType.Valid() {
				return fmt.Errorf("unknown source type %q", kind)
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Services.Outbox.RunQueueSync(cmd.Context(), limit, sourceType)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "claimed %d, synced %d, failed %d, retrying %d\n",
				result.Claimed, result.Synced, result.Failed, result.Retrying)
			for _, f := range result.Errors {
				fmt.Fprintf(out, "  %s %s/%s [%s, attempt %d]: %s\n",
					f.ItemID, f.SourceType, f.SourceID, f.Status, f.Attempts, f.Message)
			}
			return nil
		},
	}

	syncCmd.Flags().IntVar(&limit, "limit", 0, "maximum items to process (0 uses QUEUE_BATCH_SIZE)")
	syncCmd.Flags().StringVar(&kind, "kind", "", "only process this source type")
	return syncCmd
}
