package ledger

import (
	"context"
	"fmt"

	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/fiado/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DebtChangeHandler handles ClientDebtRecalculatedEvent and reports the
// account milestones shop owners care about: settled accounts and new credit.
type DebtChangeHandler struct {
	logger *zap.Logger
}

// NewDebtChangeHandler creates a new handler for recalculation events
func NewDebtChangeHandler(logger *zap.Logger) *DebtChangeHandler {
	return &DebtChangeHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *DebtChangeHandler) EventTypes() []string {
	return []string{ledger.EventTypeClientDebtRecalculated}
}

// Handle processes a ClientDebtRecalculatedEvent
func (h *DebtChangeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	recalculated, ok := event.(*ledger.ClientDebtRecalculatedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ledger.EventTypeClientDebtRecalculated),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ledger.EventTypeClientDebtRecalculated, event.EventType())
	}

	wasSettled := ledger.IsZeroAmount(recalculated.PreviousBalance)
	switch {
	case ledger.IsZeroAmount(recalculated.NewBalance) && !wasSettled:
		h.logger.Info("client account settled",
			zap.String("client_id", recalculated.ClientID),
			zap.String("previous_balance", recalculated.PreviousBalance.String()),
		)
	case recalculated.FavorBalance.IsPositive() && !recalculated.PreviousBalance.IsNegative():
		h.logger.Info("client has favor balance",
			zap.String("client_id", recalculated.ClientID),
			zap.String("favor_balance", recalculated.FavorBalance.String()),
		)
	}
	return nil
}
