package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/spf13/cobra"
)

func newTrialBalanceCmd() *cobra.Command {
	var asOf string

	tbCmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var date time.Time
			if asOf != "" {
				parsed, err := time.Parse(time.DateOnly, asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of %q, want YYYY-MM-DD: %w", asOf, err)
				}
				date = parsed
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Services.Reconciliation.TrialBalance(cmd.Context(), date)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(w, "Trial balance as of %s\n", report.AsOf.Format(time.DateOnly))
			fmt.Fprintln(w, "CODE\tACCOUNT\tDEBIT\tCREDIT\tBALANCE\t")
			for _, row := range report.Rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
					row.Code, row.AccountName, row.Debit.StringFixed(2), row.Credit.StringFixed(2), row.Balance.StringFixed(2))
			}
			fmt.Fprintf(w, "\tTOTAL\t%s\t%s\t%s\t\n",
				report.TotalDebit.StringFixed(2), report.TotalCredit.StringFixed(2), report.NetBalance.StringFixed(2))
			if err := w.Flush(); err != nil {
				return err
			}

			if !report.Balanced {
				return fmt.Errorf("trial balance is off by %s", report.NetBalance.StringFixed(2))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "balanced")
			return nil
		},
	}

	tbCmd.Flags().StringVar(&asOf, "as-of", "", "include entries dated on or before this day (default today)")
	return tbCmd
}

func newUnreconciledCmd() *cobra.Command {
	var (
		sourceType string
		limit      int
	)

	unCmd := &cobra.Command{
		Use:   "unreconciled",
		Short: "List source records that have no journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sources, err := a.Services.Reconciliation.Unreconciled(cmd.Context(), domain.SourceType(sourceType), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sources) == 0 {
				fmt.Fprintf(out, "all %s records are posted\n", sourceType)
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SOURCE ID\tQUEUE\tATTEMPTS\tLAST ERROR")
			for _, s := range sources {
				status, attempts, lastErr := "-", "-", ""
				if s.QueueStatus != nil {
					status = string(*s.QueueStatus)
				}
				if s.Attempts != nil {
					attempts = fmt.Sprint(*s.Attempts)
				}
				if s.LastError != nil {
					lastErr = *s.LastError
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.SourceID, status, attempts, lastErr)
			}
			return w.Flush()
		},
	}

	unCmd.Flags().StringVar(&sourceType, "source-type", "", "source type to check, e.g. pos_sale")
	unCmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (default 100)")
	_ = unCmd.MarkFlagRequired("source-type")
	return unCmd
}
