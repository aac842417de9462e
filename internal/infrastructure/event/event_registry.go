package event

import (
	"github.com/fiado/backend/internal/domain/ledger"
)

// RegisterLedgerEvents registers every ledger event type with the serializer
func RegisterLedgerEvents(serializer *EventSerializer) {
	serializer.Register(ledger.EventTypeClientCreated, &ledger.ClientCreatedEvent{})
	serializer.Register(ledger.EventTypeClientDebtRecalculated, &ledger.ClientDebtRecalculatedEvent{})

	// One payload type covers every transaction change
	serializer.Register(ledger.EventTypeSaleRecorded, &ledger.TransactionChangedEvent{})
	serializer.Register(ledger.EventTypePaymentRecorded, &ledger.TransactionChangedEvent{})
	serializer.Register(ledger.EventTypeTransactionEdited, &ledger.TransactionChangedEvent{})
	serializer.Register(ledger.EventTypeTransactionDeleted, &ledger.TransactionChangedEvent{})
}

// NewLedgerSerializer returns a serializer with the ledger events registered
func NewLedgerSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterLedgerEvents(s)
	return s
}
