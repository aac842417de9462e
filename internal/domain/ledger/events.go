package ledger

import (
	"github.com/fiado/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeClient = "Client"

// Event type constants
const (
	EventTypeClientCreated          = "ClientCreated"
	EventTypeClientDebtRecalculated = "ClientDebtRecalculated"
	EventTypeSaleRecorded           = "SaleRecorded"
	EventTypePaymentRecorded        = "PaymentRecorded"
	EventTypeTransactionEdited      = "TransactionEdited"
	EventTypeTransactionDeleted     = "TransactionDeleted"
)

// ClientCreatedEvent is published when a new client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(client *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, client.ID),
		ClientID:        client.ID,
		Name:            client.Name,
	}
}

// ClientDebtRecalculatedEvent is published when a recalculation changes the stored balance
type ClientDebtRecalculatedEvent struct {
	shared.BaseDomainEvent
	ClientID         string          `json:"client_id"`
	PreviousBalance  decimal.Decimal `json:"previous_balance"`
	NewBalance       decimal.Decimal `json:"new_balance"`
	TotalDebt        decimal.Decimal `json:"total_debt"`
	FavorBalance     decimal.Decimal `json:"favor_balance"`
	ActiveEvents     int             `json:"active_events"`
	ZeroBalanceCount int             `json:"zero_balance_count"`
}

// NewClientDebtRecalculatedEvent creates a new ClientDebtRecalculatedEvent
func NewClientDebtRecalculatedEvent(client *Client, previous decimal.Decimal, result DebtCalculationResult) *ClientDebtRecalculatedEvent {
	return &ClientDebtRecalculatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeClientDebtRecalculated, AggregateTypeClient, client.ID),
		ClientID:         client.ID,
		PreviousBalance:  previous,
		NewBalance:       client.DeudaActual,
		TotalDebt:        result.TotalDebt,
		FavorBalance:     result.FavorBalance,
		ActiveEvents:     len(result.Events),
		ZeroBalanceCount: len(result.ZeroBalancePoints),
	}
}

// TransactionChangedEvent is published when a sale or payment is recorded, edited or deleted
type TransactionChangedEvent struct {
	shared.BaseDomainEvent
	ClientID      string          `json:"client_id"`
	TransactionID string          `json:"transaction_id"`
	Tipo          EventKind       `json:"tipo"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewTransactionChangedEvent creates the event matching eventType for the given transaction
func NewTransactionChangedEvent(eventType string, event TransactionEvent) *TransactionChangedEvent {
	base := event.Base()
	return &TransactionChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeClient, base.ClientID),
		ClientID:        base.ClientID,
		TransactionID:   base.ID,
		Tipo:            event.Kind(),
		Amount:          event.SignedAmount().Abs(),
	}
}
