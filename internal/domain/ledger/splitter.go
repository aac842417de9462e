package ledger

import "github.com/shopspring/decimal"

// PaymentSplit divides a payment between outstanding debt and credit.
// DebtPayment + FavorPayment always equals the payment amount.
type PaymentSplit struct {
	DebtPayment        decimal.Decimal `json:"debtPayment"`
	FavorPayment       decimal.Decimal `json:"favorPayment"`
	IsOverpayment      bool            `json:"isOverpayment"`
	ZeroBalanceReached bool            `json:"zeroBalanceReached"`
}

// SplitPayment applies paymentAmount against currentDebt.
func SplitPayment(currentDebt, paymentAmount decimal.Decimal) PaymentSplit {
	switch {
	case currentDebt.LessThanOrEqual(Tolerance):
		return PaymentSplit{
			DebtPayment:   decimal.Zero,
			FavorPayment:  paymentAmount,
			IsOverpayment: true,
		}
	case paymentAmount.LessThanOrEqual(currentDebt):
		return PaymentSplit{
			DebtPayment:        paymentAmount,
			FavorPayment:       decimal.Zero,
			ZeroBalanceReached: IsZeroAmount(paymentAmount.Sub(currentDebt)),
		}
	default:
		return PaymentSplit{
			DebtPayment:        currentDebt,
			FavorPayment:       paymentAmount.Sub(currentDebt),
			IsOverpayment:      true,
			ZeroBalanceReached: true,
		}
	}
}

// StepKind names one step of a visualized payment.
type StepKind string

const (
	StepPayment     StepKind = "payment"
	StepZeroBalance StepKind = "zero-balance"
	StepFavor       StepKind = "favor"
)

// PaymentStep is one display step of a payment: the part that paid debt,
// the moment the account hit zero, or the part that became credit.
type PaymentStep struct {
	Kind    StepKind        `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Payment *PaymentEvent   `json:"payment,omitempty"`
}

// ApplyPaymentWithVisualization renders a payment as ordered steps. A payment
// that does not overpay is a single payment step carrying its full amount.
// Steps with a zero amount are omitted.
func ApplyPaymentWithVisualization(currentDebt decimal.Decimal, payment *PaymentEvent) []PaymentStep {
	if payment == nil {
		return nil
	}
	split := SplitPayment(currentDebt, payment.MontoPago)
	if !split.IsOverpayment {
		return []PaymentStep{{Kind: StepPayment, Amount: payment.MontoPago, Payment: payment}}
	}

	steps := make([]PaymentStep, 0, 3)
	if split.DebtPayment.IsPositive() {
		steps = append(steps, PaymentStep{Kind: StepPayment, Amount: split.DebtPayment, Payment: payment})
	}
	if split.ZeroBalanceReached {
		steps = append(steps, PaymentStep{Kind: StepZeroBalance, Amount: decimal.Zero})
	}
	if split.FavorPayment.IsPositive() {
		steps = append(steps, PaymentStep{Kind: StepFavor, Amount: split.FavorPayment, Payment: payment})
	}
	return steps
}
