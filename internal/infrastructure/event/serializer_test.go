package event

import (
	"encoding/json"
	"testing"

	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedgerSerializer_RegisteredTypes(t *testing.T) {
	serializer := NewLedgerSerializer()

	assert.Equal(t, []string{
		ledger.EventTypeClientCreated,
		ledger.EventTypeClientDebtRecalculated,
		ledger.EventTypePaymentRecorded,
		ledger.EventTypeSaleRecorded,
		ledger.EventTypeTransactionDeleted,
		ledger.EventTypeTransactionEdited,
	}, serializer.RegisteredTypes())
	assert.False(t, serializer.IsRegistered("SalesOrderCreated"))
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	serializer := NewLedgerSerializer()
	client, err := ledger.NewClient("Doña Rosa", "", "")
	require.NoError(t, err)
	payment, err := ledger.NewPaymentEvent(client.ID, ledger.PaymentInput{MontoPago: decimal.RequireFromString("150.50")})
	require.NoError(t, err)
	original := ledger.NewTransactionChangedEvent(ledger.EventTypePaymentRecorded, payment)

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, original.EventID(), env.ID)
	assert.Equal(t, ledger.EventTypePaymentRecorded, env.Type)
	assert.Equal(t, client.ID, env.AggregateID)
	assert.Equal(t, ledger.AggregateTypeClient, env.AggregateType)

	decoded, err := serializer.Deserialize(data)
	require.NoError(t, err)
	changed, ok := decoded.(*ledger.TransactionChangedEvent)
	require.True(t, ok)
	assert.Equal(t, payment.ID, changed.TransactionID)
	assert.Equal(t, ledger.KindPayment, changed.Tipo)
	assert.True(t, changed.Amount.Equal(decimal.RequireFromString("150.50")))
}

func TestEventSerializer_Deserialize_Errors(t *testing.T) {
	serializer := NewLedgerSerializer()

	tests := []struct {
		name string
		data string
		want string
	}{
		{"malformed envelope", `{`, "failed to unmarshal envelope"},
		{"unknown type", `{"type":"StockIncreased","payload":{}}`, "unknown event type"},
		{"bad payload", `{"type":"ClientCreated","payload":{"name":1}}`, "failed to unmarshal event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := serializer.Deserialize([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
