package ledger

import "github.com/shopspring/decimal"

// DetailedFormatter splits every payment against the balance before it, so
// each overpayment shows its debt part, the zero point and its credit part.
type DetailedFormatter struct {
	labels Labels
}

// NewDetailedFormatter creates a detailed formatter
func NewDetailedFormatter(labels Labels) *DetailedFormatter {
	return &DetailedFormatter{labels: labels}
}

// Format renders result newest first. Within a split payment the steps are
// reversed too, so credit appears above the debt part that preceded it.
func (f *DetailedFormatter) Format(result DebtCalculationResult) []FormattedGroup {
	groups := make([]FormattedGroup, 0, len(result.Events)+2)
	for i := len(result.Events) - 1; i >= 0; i-- {
		event := result.Events[i]
		payment, ok := event.Event.(*PaymentEvent)
		if !ok {
			groups = f.appendPlain(groups, event)
			continue
		}

		previous := decimal.Zero
		if i > 0 {
			previous = result.Events[i-1].RunningTotal
		}
		if !SplitPayment(previous, payment.MontoPago).IsOverpayment {
			groups = f.appendPlain(groups, event)
			continue
		}

		steps := ApplyPaymentWithVisualization(previous, payment)
		for j := len(steps) - 1; j >= 0; j-- {
			step := steps[j]
			switch step.Kind {
			case StepFavor:
				source := event
				groups = append(groups, FavorBalanceGroup{
					Amount:  step.Amount,
					Message: f.labels.FavorMessage(step.Amount),
					Event:   &source,
				})
			case StepZeroBalance:
				groups = append(groups, ZeroBalanceGroup{Message: f.labels.ZeroBalance})
			case StepPayment:
				amount := step.Amount
				groups = append(groups, TransactionGroup{Event: event, Amount: &amount})
			}
		}
	}
	return groups
}

func (f *DetailedFormatter) appendPlain(groups []FormattedGroup, event AnnotatedEvent) []FormattedGroup {
	groups = append(groups, TransactionGroup{Event: event})
	if event.IsZeroBalance {
		groups = append(groups, ZeroBalanceGroup{Message: f.labels.ZeroBalance})
	}
	return groups
}
