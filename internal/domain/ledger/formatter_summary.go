package ledger

import "github.com/shopspring/decimal"

// SummaryFormatter renders one row per event, expanding only payments that
// cross from debt into credit.
type SummaryFormatter struct {
	labels Labels
}

// NewSummaryFormatter creates a summary formatter
func NewSummaryFormatter(labels Labels) *SummaryFormatter {
	return &SummaryFormatter{labels: labels}
}

// Format renders result newest first.
func (f *SummaryFormatter) Format(result DebtCalculationResult) []FormattedGroup {
	crossings := make(map[int]ZeroBalanceTransition)
	for _, transition := range DetectZeroBalanceTransitions(result.Events) {
		if transition.TransitionType == TransitionThroughZero {
			crossings[transition.EventIndex] = transition
		}
	}

	groups := make([]FormattedGroup, 0, len(result.Events)+2*len(crossings))
	for i := len(result.Events) - 1; i >= 0; i-- {
		event := result.Events[i]
		if payment, ok := event.Event.(*PaymentEvent); ok {
			if crossing, crossed := crossings[i]; crossed {
				debtPortion := decimal.Min(payment.MontoPago, crossing.PreviousDebt)
				favorPortion := payment.MontoPago.Sub(debtPortion)
				groups = append(groups,
					PaymentSplitGroup{Event: event, DebtPortion: debtPortion, FavorPortion: favorPortion},
					ZeroBalanceGroup{Message: f.labels.ZeroBalance},
					FavorBalanceGroup{Amount: favorPortion, Message: f.labels.FavorMessage(favorPortion)},
				)
				continue
			}
		}

		groups = append(groups, TransactionGroup{Event: event})
		if event.IsZeroBalance {
			groups = append(groups, ZeroBalanceGroup{Message: f.labels.ZeroBalance})
		}
	}
	return groups
}
