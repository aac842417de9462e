package ledger

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// AnnotatedEvent is an active event with the balance after applying it.
type AnnotatedEvent struct {
	Event         TransactionEvent `json:"event"`
	RunningTotal  decimal.Decimal  `json:"runningTotal"`
	IsZeroBalance bool             `json:"isZeroBalance"`
}

// DebtCalculationResult is the full derivation of a client balance.
type DebtCalculationResult struct {
	TotalDebt         decimal.Decimal  `json:"totalDebt"`
	FavorBalance      decimal.Decimal  `json:"favorBalance"`
	Events            []AnnotatedEvent `json:"events"`
	ZeroBalancePoints []int            `json:"zeroBalancePoints"`
}

// FinalBalance is the running total after the last event, negative when in credit.
func (r DebtCalculationResult) FinalBalance() decimal.Decimal {
	if len(r.Events) == 0 {
		return decimal.Zero
	}
	return r.Events[len(r.Events)-1].RunningTotal
}

// LastEventAt returns the fecha of the latest active event, or nil when there are none.
func (r DebtCalculationResult) LastEventAt() *time.Time {
	if len(r.Events) == 0 {
		return nil
	}
	fecha := r.Events[len(r.Events)-1].Event.Base().Fecha
	return &fecha
}

// CalculateClientDebt derives a balance from anything that looks like a list
// of events: typed events, raw records, loosely typed maps or a JSON array.
// Input that is not a list yields the zero result.
func CalculateClientDebt(input any) DebtCalculationResult {
	events, ok := eventsFromInput(input)
	if !ok {
		return emptyResult()
	}
	return Calculate(events)
}

// Calculate folds the active events in chronological order. Events with equal
// fecha keep their input order. The input slice is not modified.
func Calculate(events []TransactionEvent) DebtCalculationResult {
	active := make([]TransactionEvent, 0, len(events))
	for _, event := range events {
		if event == nil || event.Base() == nil || event.Base().Borrado {
			continue
		}
		active = append(active, event)
	}

	slices.SortStableFunc(active, func(a, b TransactionEvent) int {
		return cmp.Compare(a.Base().Fecha.UnixMilli(), b.Base().Fecha.UnixMilli())
	})

	result := emptyResult()
	result.Events = make([]AnnotatedEvent, 0, len(active))

	running := decimal.Zero
	previous := decimal.Zero
	for i, event := range active {
		running = running.Add(event.SignedAmount())
		zero := IsZeroAmount(running)
		result.Events = append(result.Events, AnnotatedEvent{
			Event:         event,
			RunningTotal:  running,
			IsZeroBalance: zero,
		})
		if zero || (owes(previous) && inCredit(running)) {
			result.ZeroBalancePoints = append(result.ZeroBalancePoints, i)
		}
		previous = running
	}

	result.TotalDebt = decimal.Max(decimal.Zero, running)
	if running.IsNegative() {
		result.FavorBalance = running.Neg()
	}
	return result
}

func emptyResult() DebtCalculationResult {
	return DebtCalculationResult{
		TotalDebt:         decimal.Zero,
		FavorBalance:      decimal.Zero,
		Events:            []AnnotatedEvent{},
		ZeroBalancePoints: []int{},
	}
}
