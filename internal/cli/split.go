package cli

import (
	"fmt"

	ledgerapp "github.com/fiado/backend/internal/application/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newSplitCmd(opts *rootOptions) *cobra.Command {
	var debt, payment string

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Show how a payment would be applied to a debt",
		Example: `  ledgerctl split --debt 1000 --payment 1200
  ledgerctl split --debt 0 --payment 50 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			currentDebt, err := decimal.NewFromString(debt)
			if err != nil {
				return fmt.Errorf("invalid --debt %q: %w", debt, err)
			}
			amount, err := decimal.NewFromString(payment)
			if err != nil {
				return fmt.Errorf("invalid --payment %q: %w", payment, err)
			}

			resp, err := opts.service(ledgerapp.ViewSummary).Split(ledgerapp.SplitRequest{
				CurrentDebt:   currentDebt,
				PaymentAmount: amount,
			})
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return renderSplit(cmd.OutOrStdout(), *resp)
		},
	}

	cmd.Flags().StringVar(&debt, "debt", "0", "Current debt")
	cmd.Flags().StringVar(&payment, "payment", "", "Payment amount")
	_ = cmd.MarkFlagRequired("payment")
	return cmd
}
