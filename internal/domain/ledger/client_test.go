package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient("  Doña Rosa ", "11-5555-0000", "paga los viernes")
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Doña Rosa", c.Name)
	assert.True(t, c.DeudaActual.IsZero())
	assert.Nil(t, c.UltimaTransaccion)
	assert.Equal(t, 1, c.GetVersion())
	require.Len(t, c.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeClientCreated, c.GetDomainEvents()[0].EventType())

	_, err = NewClient(" ", "", "")
	assert.Error(t, err)
}

func TestClient_ApplyLedger(t *testing.T) {
	t.Run("stores signed balance and last event", func(t *testing.T) {
		c, err := NewClient("Rosa", "", "")
		require.NoError(t, err)
		c.ClearDomainEvents()

		changed := c.ApplyLedger(Calculate([]TransactionEvent{
			sale("s1", at(0), "100"),
			payment("p1", at(4), "300"),
		}))

		require.True(t, changed)
		assert.True(t, c.DeudaActual.Equal(dec("-200")))
		assert.True(t, c.TotalDebt().IsZero())
		assert.True(t, c.FavorBalance().Equal(dec("200")))
		require.NotNil(t, c.UltimaTransaccion)
		assert.True(t, c.UltimaTransaccion.Equal(at(4)))
		assert.Equal(t, 2, c.GetVersion())

		require.Len(t, c.GetDomainEvents(), 1)
		evt, ok := c.GetDomainEvents()[0].(*ClientDebtRecalculatedEvent)
		require.True(t, ok)
		assert.True(t, evt.PreviousBalance.IsZero())
		assert.True(t, evt.NewBalance.Equal(dec("-200")))
		assert.Equal(t, 2, evt.ActiveEvents)
	})

	t.Run("unchanged result records nothing", func(t *testing.T) {
		c, err := NewClient("Rosa", "", "")
		require.NoError(t, err)
		events := []TransactionEvent{sale("s1", at(0), "100")}
		require.True(t, c.ApplyLedger(Calculate(events)))
		c.ClearDomainEvents()

		assert.False(t, c.ApplyLedger(Calculate(events)))
		assert.Empty(t, c.GetDomainEvents())
		assert.Equal(t, 2, c.GetVersion())
	})

	t.Run("empty history clears the last transaction", func(t *testing.T) {
		c, err := NewClient("Rosa", "", "")
		require.NoError(t, err)
		require.True(t, c.ApplyLedger(Calculate([]TransactionEvent{sale("s1", at(0), "100")})))

		require.True(t, c.ApplyLedger(Calculate(nil)))
		assert.True(t, c.IsSettled())
		assert.Nil(t, c.UltimaTransaccion)
	})
}

func TestClient_Update(t *testing.T) {
	c, err := NewClient("Rosa", "", "")
	require.NoError(t, err)

	require.NoError(t, c.Update("Rosa María", "123", "nota"))
	assert.Equal(t, "Rosa María", c.Name)
	assert.Equal(t, 2, c.GetVersion())
	assert.Error(t, c.Update("", "", ""))
}

func TestClientFilter_Bounds(t *testing.T) {
	tests := []struct {
		name         string
		filter       ClientFilter
		wantPage     int
		wantPageSize int
	}{
		{"defaults", ClientFilter{}, 1, DefaultPageSize},
		{"explicit", ClientFilter{Page: 3, PageSize: 10}, 3, 10},
		{"capped", ClientFilter{Page: 1, PageSize: 500}, 1, MaxPageSize},
		{"negative page", ClientFilter{Page: -2, PageSize: 5}, 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, pageSize := tt.filter.Bounds()
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}
