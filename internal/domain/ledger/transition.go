package ledger

import "github.com/shopspring/decimal"

// TransitionType classifies how the balance moved relative to zero.
type TransitionType string

const (
	TransitionToZero      TransitionType = "to-zero"
	TransitionFromZero    TransitionType = "from-zero"
	TransitionThroughZero TransitionType = "through-zero"
)

// ZeroBalanceTransition is a step where the balance reached, left or crossed zero.
type ZeroBalanceTransition struct {
	EventIndex     int             `json:"eventIndex"`
	PreviousDebt   decimal.Decimal `json:"previousDebt"`
	NewDebt        decimal.Decimal `json:"newDebt"`
	TransitionType TransitionType  `json:"transitionType"`
}

// DetectZeroBalanceTransitions compares each event's running total with the
// one before it. The first event is compared against zero.
func DetectZeroBalanceTransitions(events []AnnotatedEvent) []ZeroBalanceTransition {
	transitions := make([]ZeroBalanceTransition, 0)
	previous := decimal.Zero
	for i, event := range events {
		current := event.RunningTotal
		if kind, ok := classifyTransition(previous, current); ok {
			transitions = append(transitions, ZeroBalanceTransition{
				EventIndex:     i,
				PreviousDebt:   previous,
				NewDebt:        current,
				TransitionType: kind,
			})
		}
		previous = current
	}
	return transitions
}

func classifyTransition(previous, current decimal.Decimal) (TransitionType, bool) {
	wasZero := IsZeroAmount(previous)
	isZero := IsZeroAmount(current)
	switch {
	case !wasZero && isZero:
		return TransitionToZero, true
	case wasZero && !isZero:
		return TransitionFromZero, true
	case (owes(previous) && inCredit(current)) || (inCredit(previous) && owes(current)):
		return TransitionThroughZero, true
	}
	return "", false
}
