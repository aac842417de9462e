package ledger

import (
	"context"
	"testing"

	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/fiado/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebtChangeHandler(t *testing.T) {
	newHandler := func() (*DebtChangeHandler, *observer.ObservedLogs) {
		core, logs := observer.New(zapcore.InfoLevel)
		return NewDebtChangeHandler(zap.New(core)), logs
	}
	recalculated := func(previous, next string) *ledger.ClientDebtRecalculatedEvent {
		client := &ledger.Client{BaseAggregateRoot: shared.NewBaseAggregateRootWithID("c1")}
		client.DeudaActual = decimal.RequireFromString(next)
		result := ledger.DebtCalculationResult{
			TotalDebt:    decimal.Max(decimal.Zero, client.DeudaActual),
			FavorBalance: client.FavorBalance(),
		}
		return ledger.NewClientDebtRecalculatedEvent(client, decimal.RequireFromString(previous), result)
	}

	t.Run("subscribes to recalculations", func(t *testing.T) {
		h, _ := newHandler()
		assert.Equal(t, []string{ledger.EventTypeClientDebtRecalculated}, h.EventTypes())
	})

	t.Run("logs settled accounts", func(t *testing.T) {
		h, logs := newHandler()
		require.NoError(t, h.Handle(context.Background(), recalculated("500", "0")))
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "client account settled", logs.All()[0].Message)
	})

	t.Run("logs new credit", func(t *testing.T) {
		h, logs := newHandler()
		require.NoError(t, h.Handle(context.Background(), recalculated("100", "-200")))
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "client has favor balance", logs.All()[0].Message)
	})

	t.Run("ordinary changes are quiet", func(t *testing.T) {
		h, logs := newHandler()
		require.NoError(t, h.Handle(context.Background(), recalculated("100", "300")))
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("rejects other events", func(t *testing.T) {
		h, _ := newHandler()
		evt := shared.NewBaseDomainEvent("Other", "Client", "c1")
		assert.Error(t, h.Handle(context.Background(), &evt))
	})
}
