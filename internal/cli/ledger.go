package cli

import (
	"errors"

	ledgerapp "github.com/fiado/backend/internal/application/ledger"
	"github.com/spf13/cobra"
)

// ErrInconsistent is returned by validate --strict when findings were reported
var ErrInconsistent = errors.New("ledger has consistency findings")

func preview(cmd *cobra.Command, opts *rootOptions, args []string, view string) (*ledgerapp.PreviewResponse, error) {
	events, err := readEvents(cmd, args)
	if err != nil {
		return nil, err
	}
	return opts.service(ledgerapp.ViewSummary).Preview(cmd.Context(), ledgerapp.PreviewRequest{
		Events: events,
		View:   view,
	})
}

func newCalculateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "calculate [FILE]",
		Short: "Calculate the balance of an event list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := preview(cmd, opts, args, "")
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp.Debt)
			}
			return renderDebt(cmd.OutOrStdout(), resp.Debt)
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "history [FILE]",
		Short: "Render the history of an event list, newest first",
		Long: `Render the history of an event list, newest first.
The summary view folds overpayments into a single split row; the detailed
view shows the paying and crediting parts as separate rows.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := preview(cmd, opts, args, view)
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp.History)
			}
			return renderHistory(cmd.OutOrStdout(), resp.History)
		},
	}

	cmd.Flags().StringVar(&view, "view", string(ledgerapp.ViewSummary), "History view: summary or detailed")
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Check an event list for negative balances and mismatched sale totals",
		Long: `Check an event list for negative balances and mismatched sale totals.
Findings are advisory: a negative running total is reported even when it is
legitimate credit. Use --strict to exit non-zero on any finding.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := preview(cmd, opts, args, "")
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				err = writeJSON(cmd.OutOrStdout(), resp.Consistency)
			} else {
				err = renderConsistency(cmd.OutOrStdout(), resp.Consistency)
			}
			if err != nil {
				return err
			}
			if strict && !resp.Consistency.IsValid {
				return ErrInconsistent
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when findings are reported")
	return cmd
}
