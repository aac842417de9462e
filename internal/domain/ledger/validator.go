package ledger

import "fmt"

// ConsistencyReport lists problems found in a client's events. It is
// advisory: callers decide whether to surface the findings.
type ConsistencyReport struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateTransactionConsistency recomputes the balance from input and flags
// running totals below -Tolerance and sales whose total does not match
// cantidad × (costoUnitario + gananciaUnitaria). A negative running total is
// flagged even though it can be legitimate credit.
func ValidateTransactionConsistency(input any) ConsistencyReport {
	result := CalculateClientDebt(input)
	findings := make([]string, 0)
	for i, annotated := range result.Events {
		base := annotated.Event.Base()
		if inCredit(annotated.RunningTotal) {
			findings = append(findings, fmt.Sprintf(
				"negative balance %s after event %d (%s)",
				annotated.RunningTotal.StringFixed(2), i, base.ID))
		}
		if sale, ok := annotated.Event.(*SaleEvent); ok {
			expected := ExpectedSaleTotal(sale.Cantidad, sale.CostoUnitario, sale.GananciaUnitaria)
			if sale.TotalVenta.Sub(expected).Abs().GreaterThan(Tolerance) {
				findings = append(findings, fmt.Sprintf(
					"sale %s total %s does not match expected %s",
					base.ID, sale.TotalVenta.StringFixed(2), expected.StringFixed(2)))
			}
		}
	}
	return ConsistencyReport{IsValid: len(findings) == 0, Errors: findings}
}
