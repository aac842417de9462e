package ledger

import "github.com/shopspring/decimal"

// Tolerance is the absolute difference under which two amounts are treated
// as equal. Every balance comparison in this package goes through it.
var Tolerance = decimal.New(1, -2)

// IsZeroAmount reports whether |amount| < Tolerance.
func IsZeroAmount(amount decimal.Decimal) bool {
	return amount.Abs().LessThan(Tolerance)
}

// owes reports a balance strictly above the tolerance band.
func owes(balance decimal.Decimal) bool {
	return balance.GreaterThan(Tolerance)
}

// inCredit reports a balance strictly below the negative tolerance band.
func inCredit(balance decimal.Decimal) bool {
	return balance.LessThan(Tolerance.Neg())
}
