package ledger

import (
	"context"
	"time"
)

// Unlock releases a client lock. It is safe to call once.
type Unlock func(ctx context.Context) error

// ClientLocker serializes the read-recompute-write cycle of one client
// across goroutines and, for distributed implementations, processes.
// Lock blocks until the lock is held or ctx is done.
type ClientLocker interface {
	Lock(ctx context.Context, clientID string) (Unlock, error)
}

// Metrics receives service measurements. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ObserveRecalculation(outcome string, duration time.Duration, activeEvents int)
	ObserveConsistency(findings int)
	ObserveLockWait(duration time.Duration, acquired bool)
}

// Recalculation outcomes reported to Metrics
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeError     = "error"
)

type nopMetrics struct{}

func (nopMetrics) ObserveRecalculation(string, time.Duration, int) {}
func (nopMetrics) ObserveConsistency(int) {}
func (nopMetrics) ObserveLockWait(time.Duration, bool) {}
