package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	ledgerapp "github.com/fiado/backend/internal/application/ledger"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02 15:04"

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func eventAmount(e ledgerapp.EventResponse) decimal.Decimal {
	switch {
	case e.TotalVenta != nil:
		return *e.TotalVenta
	case e.MontoPago != nil:
		return e.MontoPago.Neg()
	}
	return decimal.Zero
}

func renderDebt(w io.Writer, debt ledgerapp.DebtResponse) error {
	fmt.Fprintf(w, "Total debt:    %s\n", money(debt.TotalDebt))
	fmt.Fprintf(w, "Favor balance: %s\n", money(debt.FavorBalance))
	fmt.Fprintf(w, "Events:        %d\n", len(debt.Events))
	if len(debt.Events) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := newTable(w)
	fmt.Fprintln(tw, "FECHA\tTIPO\tAMOUNT\tBALANCE\t")
	for _, e := range debt.Events {
		marker := ""
		if e.IsZeroBalance {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s%s\t\n",
			e.Fecha.Format(dateLayout), e.Tipo, money(eventAmount(e.EventResponse)), money(e.RunningTotal), marker)
	}
	return tw.Flush()
}

func renderHistory(w io.Writer, history ledgerapp.HistoryResponse) error {
	fmt.Fprintf(w, "View:          %s\n", history.View)
	fmt.Fprintf(w, "Total debt:    %s\n", money(history.TotalDebt))
	fmt.Fprintf(w, "Favor balance: %s\n", money(history.FavorBalance))
	fmt.Fprintf(w, "Net movement:  %s\n", money(history.NetMovement))
	if len(history.Groups) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := newTable(w)
	fmt.Fprintln(tw, "TYPE\tFECHA\tDETAIL\tAMOUNT\t")
	for _, g := range history.Groups {
		fecha, detail, amount := "", g.Message, ""
		if g.Event != nil {
			fecha = g.Event.Fecha.Format(dateLayout)
			if detail == "" {
				detail = g.Event.Tipo
				if g.Event.Producto != "" {
					detail += " " + g.Event.Producto
				}
			}
		}
		switch {
		case g.DebtPortion != nil && g.FavorPortion != nil:
			amount = fmt.Sprintf("%s + %s", money(*g.DebtPortion), money(*g.FavorPortion))
		case g.Amount != nil:
			amount = money(*g.Amount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", g.Type, fecha, detail, amount)
	}
	return tw.Flush()
}

func renderConsistency(w io.Writer, report ledgerapp.ConsistencyResponse) error {
	if report.IsValid {
		_, err := fmt.Fprintln(w, "OK: no findings")
		return err
	}
	fmt.Fprintf(w, "%d finding(s):\n", len(report.Errors))
	for _, finding := range report.Errors {
		if _, err := fmt.Fprintf(w, "  - %s\n", finding); err != nil {
			return err
		}
	}
	return nil
}

func renderSplit(w io.Writer, split ledgerapp.SplitResponse) error {
	fmt.Fprintf(w, "Debt payment:  %s\n", money(split.DebtPayment))
	fmt.Fprintf(w, "Favor payment: %s\n", money(split.FavorPayment))
	fmt.Fprintf(w, "Overpayment:   %t\n", split.IsOverpayment)
	fmt.Fprintf(w, "Reaches zero:  %t\n", split.ZeroBalanceReached)

	fmt.Fprintln(w)
	tw := newTable(w)
	fmt.Fprintln(tw, "STEP\tAMOUNT\t")
	for _, step := range split.Steps {
		fmt.Fprintf(tw, "%s\t%s\t\n", step.Type, money(step.Amount))
	}
	return tw.Flush()
}
