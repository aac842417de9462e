// Package cli implements ledgerctl, an offline companion to the fiado API.
// It runs the same calculations over exported event files and can follow
// ledger events published to NATS.
package cli

import (
	"fmt"

	ledgerapp "github.com/fiado/backend/internal/application/ledger"
	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/spf13/cobra"
)

const (
	outputJSON = "json"
	outputText = "text"
)

type rootOptions struct {
	output   string
	locale   string
	currency string
}

func (o *rootOptions) validate() error {
	switch o.output {
	case outputJSON, outputText:
		return nil
	}
	return fmt.Errorf("unknown output format %q (use json or text)", o.output)
}

// service returns a ledger service without storage; only the stateless
// operations are usable on it.
func (o *rootOptions) service(view ledgerapp.HistoryView) *ledgerapp.Service {
	return ledgerapp.NewService(ledgerapp.ServiceConfig{
		Labels:      ledger.LabelsForLocale(o.locale, o.currency),
		DefaultView: view,
	})
}

// NewRootCmd builds the ledgerctl command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Inspect client debt ledgers",
		Long: `ledgerctl recalculates client balances from exported event files.
Input is a JSON array of sale (venta) and payment (pago) records read from
a file argument or from stdin. Deleted records are ignored.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text or json")
	cmd.PersistentFlags().StringVar(&opts.locale, "locale", "es-419", "BCP 47 locale for balance labels")
	cmd.PersistentFlags().StringVar(&opts.currency, "currency", "$", "Currency symbol for balance labels")

	cmd.AddCommand(
		newCalculateCmd(opts),
		newHistoryCmd(opts),
		newValidateCmd(opts),
		newSplitCmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}
