package cache

import (
	"context"
	"sync"

	"github.com/fiado/backend/internal/application/ledger"
)

// lockSlot is a one-token semaphore shared by the waiters of one client
type lockSlot struct {
	ch   chan struct{}
	refs int
}

// MemoryClientLocker implements ledger.ClientLocker inside one process.
// Slots are reference counted so idle clients do not accumulate.
type MemoryClientLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

// NewMemoryClientLocker creates a new in-process locker
func NewMemoryClientLocker() *MemoryClientLocker {
	return &MemoryClientLocker{slots: make(map[string]*lockSlot)}
}

// Lock blocks until the client's slot is free or ctx is done
func (l *MemoryClientLocker) Lock(ctx context.Context, clientID string) (ledger.Unlock, error) {
	slot := l.acquireSlot(clientID)

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(clientID)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-slot.ch
			l.releaseSlot(clientID)
		})
		return nil
	}, nil
}

// Len returns the number of clients with a holder or waiter
func (l *MemoryClientLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func (l *MemoryClientLocker) acquireSlot(clientID string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[clientID]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[clientID] = slot
	}
	slot.refs++
	return slot
}

func (l *MemoryClientLocker) releaseSlot(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot := l.slots[clientID]
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, clientID)
	}
}

var _ ledger.ClientLocker = (*MemoryClientLocker)(nil)
