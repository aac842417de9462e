package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPayment(t *testing.T) {
	tests := []struct {
		name         string
		debt         string
		payment      string
		debtPayment  string
		favorPayment string
		overpayment  bool
		zeroReached  bool
	}{
		{name: "partial", debt: "1000", payment: "300", debtPayment: "300", favorPayment: "0", overpayment: false, zeroReached: false},
		{name: "exact", debt: "500", payment: "500", debtPayment: "500", favorPayment: "0", overpayment: false, zeroReached: true},
		{name: "within tolerance of exact", debt: "500", payment: "499.995", debtPayment: "499.995", favorPayment: "0", overpayment: false, zeroReached: true},
		{name: "overpayment", debt: "300", payment: "500", debtPayment: "300", favorPayment: "200", overpayment: true, zeroReached: true},
		{name: "no debt", debt: "0", payment: "150", debtPayment: "0", favorPayment: "150", overpayment: true, zeroReached: false},
		{name: "debt at tolerance", debt: "0.01", payment: "5", debtPayment: "0", favorPayment: "5", overpayment: true, zeroReached: false},
		{name: "already in credit", debt: "-80", payment: "20", debtPayment: "0", favorPayment: "20", overpayment: true, zeroReached: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := SplitPayment(dec(tt.debt), dec(tt.payment))

			assert.True(t, split.DebtPayment.Equal(dec(tt.debtPayment)), "debt part %s", split.DebtPayment)
			assert.True(t, split.FavorPayment.Equal(dec(tt.favorPayment)), "favor part %s", split.FavorPayment)
			assert.Equal(t, tt.overpayment, split.IsOverpayment)
			assert.Equal(t, tt.zeroReached, split.ZeroBalanceReached)
			assert.True(t, split.DebtPayment.Add(split.FavorPayment).Equal(dec(tt.payment)))
		})
	}
}

func TestApplyPaymentWithVisualization(t *testing.T) {
	t.Run("overpayment yields payment, zero and favor steps", func(t *testing.T) {
		p := payment("p1", at(0), "500")
		steps := ApplyPaymentWithVisualization(dec("300"), p)

		require.Len(t, steps, 3)
		assert.Equal(t, StepPayment, steps[0].Kind)
		assert.True(t, steps[0].Amount.Equal(dec("300")))
		assert.Same(t, p, steps[0].Payment)
		assert.Equal(t, StepZeroBalance, steps[1].Kind)
		assert.Equal(t, StepFavor, steps[2].Kind)
		assert.True(t, steps[2].Amount.Equal(dec("200")))
	})

	t.Run("payment with no debt is all favor", func(t *testing.T) {
		steps := ApplyPaymentWithVisualization(dec("0"), payment("p1", at(0), "150"))

		require.Len(t, steps, 1)
		assert.Equal(t, StepFavor, steps[0].Kind)
		assert.True(t, steps[0].Amount.Equal(dec("150")))
	})

	t.Run("partial payment is a single step", func(t *testing.T) {
		steps := ApplyPaymentWithVisualization(dec("1000"), payment("p1", at(0), "300"))

		require.Len(t, steps, 1)
		assert.Equal(t, StepPayment, steps[0].Kind)
		assert.True(t, steps[0].Amount.Equal(dec("300")))
	})

	t.Run("exact payoff has no zero step", func(t *testing.T) {
		steps := ApplyPaymentWithVisualization(dec("500"), payment("p1", at(0), "500"))

		require.Len(t, steps, 1)
		assert.Equal(t, StepPayment, steps[0].Kind)
	})

	t.Run("nil payment", func(t *testing.T) {
		assert.Nil(t, ApplyPaymentWithVisualization(dec("10"), nil))
	})
}
