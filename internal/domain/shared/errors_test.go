package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches by code", func(t *testing.T) {
		err := NewDomainError("NOT_FOUND", "client abc not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("load client: %w", NewDomainError("CONCURRENCY_CONFLICT", "busy"))
		assert.True(t, errors.Is(err, ErrConcurrencyConflict))
	})

	t.Run("plain errors never match", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("NOT_FOUND"), ErrNotFound))
	})
}

func TestBaseAggregateRoot_DomainEvents(t *testing.T) {
	root := NewBaseAggregateRootWithID("client-1")
	assert.Equal(t, "client-1", root.GetID())
	assert.Equal(t, 1, root.GetVersion())

	evt := NewBaseDomainEvent("TestEvent", "Client", root.GetID())
	root.AddDomainEvent(&evt)
	assert.Len(t, root.GetDomainEvents(), 1)
	assert.Equal(t, "client-1", root.GetDomainEvents()[0].AggregateID())

	root.IncrementVersion()
	assert.Equal(t, 2, root.GetVersion())

	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}
