package ledger

import "github.com/shopspring/decimal"

// GroupType tags a FormattedGroup
type GroupType string

const (
	GroupTransaction  GroupType = "transaction"
	GroupZeroBalance  GroupType = "zero-balance"
	GroupFavorBalance GroupType = "favor-balance"
	GroupPaymentSplit GroupType = "payment-split"
)

// FormattedGroup is one display row of a history. Implementations are
// TransactionGroup, ZeroBalanceGroup, FavorBalanceGroup and PaymentSplitGroup.
type FormattedGroup interface {
	Type() GroupType
	isFormattedGroup()
}

// TransactionGroup shows one event. Amount is set when only part of a
// payment is shown in this row.
type TransactionGroup struct {
	Event  AnnotatedEvent
	Amount *decimal.Decimal
}

// ZeroBalanceGroup separates periods where the account was settled.
type ZeroBalanceGroup struct {
	Message string
}

// FavorBalanceGroup shows credit created by an overpayment. Event is set by
// the detailed view to point at the payment that produced it.
type FavorBalanceGroup struct {
	Amount  decimal.Decimal
	Message string
	Event   *AnnotatedEvent
}

// PaymentSplitGroup shows a payment that crossed zero, split into the part
// that paid debt and the part that became credit.
type PaymentSplitGroup struct {
	Event        AnnotatedEvent
	DebtPortion  decimal.Decimal
	FavorPortion decimal.Decimal
}

func (TransactionGroup) Type() GroupType { return GroupTransaction }
func (ZeroBalanceGroup) Type() GroupType { return GroupZeroBalance }
func (FavorBalanceGroup) Type() GroupType { return GroupFavorBalance }
func (PaymentSplitGroup) Type() GroupType { return GroupPaymentSplit }

func (TransactionGroup) isFormattedGroup() {}
func (ZeroBalanceGroup) isFormattedGroup() {}
func (FavorBalanceGroup) isFormattedGroup() {}
func (PaymentSplitGroup) isFormattedGroup() {}

// DisplayAmount is the amount shown in the row: the partial amount when set,
// the full event amount otherwise.
func (g TransactionGroup) DisplayAmount() decimal.Decimal {
	if g.Amount != nil {
		return *g.Amount
	}
	return g.Event.Event.SignedAmount().Abs()
}

// HistoryFormatter turns a calculation into display groups, newest first.
type HistoryFormatter interface {
	Format(result DebtCalculationResult) []FormattedGroup
}

// FormatTransactionHistory renders the summary view with default labels.
func FormatTransactionHistory(result DebtCalculationResult) []FormattedGroup {
	return NewSummaryFormatter(DefaultLabels()).Format(result)
}

// FormatTransactionHistoryDetailed renders the detailed view with default labels.
func FormatTransactionHistoryDetailed(result DebtCalculationResult) []FormattedGroup {
	return NewDetailedFormatter(DefaultLabels()).Format(result)
}

// NetMovement sums the balance effect of every group. For any history
// produced by this package it equals the final running total.
//
// Sales count +amount and payments -amount in transaction rows, split rows
// count -debtPortion, credit rows count -amount and separators count nothing.
func NetMovement(groups []FormattedGroup) decimal.Decimal {
	total := decimal.Zero
	for _, group := range groups {
		switch g := group.(type) {
		case TransactionGroup:
			amount := g.DisplayAmount()
			if g.Event.Event.Kind() == KindPayment {
				amount = amount.Neg()
			}
			total = total.Add(amount)
		case PaymentSplitGroup:
			total = total.Sub(g.DebtPortion)
		case FavorBalanceGroup:
			total = total.Sub(g.Amount)
		}
	}
	return total
}
