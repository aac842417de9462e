package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/fiado/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/fiado/backend/internal/application/ledger"

// DefaultLockWait bounds how long a mutation waits for another one on the same client
const DefaultLockWait = 5 * time.Second

// ServiceConfig holds the dependencies of Service. Publisher and Metrics are optional.
type ServiceConfig struct {
	Events      ledger.EventRepository
	Clients     ledger.ClientRepository
	Locker      ClientLocker
	Publisher   shared.EventPublisher
	Metrics     Metrics
	Logger      *zap.Logger
	Labels      ledger.Labels
	LockWait    time.Duration
	DefaultView HistoryView
}

// Service records sales and payments and keeps each client's stored balance
// equal to a fresh calculation over its events.
type Service struct {
	events      ledger.EventRepository
	clients     ledger.ClientRepository
	locker      ClientLocker
	publisher   shared.EventPublisher
	metrics     Metrics
	logger      *zap.Logger
	labels      ledger.Labels
	lockWait    time.Duration
	defaultView HistoryView
	tracer      trace.Tracer
}

// NewService creates a new ledger Service
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		events:      cfg.Events,
		clients:     cfg.Clients,
		locker:      cfg.Locker,
		publisher:   cfg.Publisher,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		labels:      cfg.Labels,
		lockWait:    cfg.LockWait,
		defaultView: cfg.DefaultView,
		tracer:      otel.Tracer(tracerName),
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.labels.ZeroBalance == "" {
		s.labels = ledger.DefaultLabels()
	}
	if s.lockWait <= 0 {
		s.lockWait = DefaultLockWait
	}
	if s.defaultView == "" {
		s.defaultView = ViewSummary
	}
	return s
}

// DefaultView returns the view used when a caller does not ask for one
func (s *Service) DefaultView() HistoryView {
	return s.defaultView
}

// =============================================================================
// Clients
// =============================================================================

// CreateClient creates a client with a zero balance
func (s *Service) CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := ledger.NewClient(req.Name, req.Phone, req.Notes)
	if err != nil {
		return nil, err
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	s.publish(ctx, client.GetDomainEvents()...)
	client.ClearDomainEvents()

	s.logger.Info("client created", zap.String("client_id", client.ID))
	resp := ToClientResponse(client)
	return &resp, nil
}

// GetClient returns a client with its stored balance
func (s *Service) GetClient(ctx context.Context, clientID string) (*ClientResponse, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}

// ListClients returns a page of clients with their stored balances
func (s *Service) ListClients(ctx context.Context, req ListClientsRequest) (*ClientListResponse, error) {
	filter := req.toFilter()
	clients, total, err := s.clients.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := ToClientListResponse(clients, total, filter)
	return &resp, nil
}

// UpdateClient changes a client's contact data
func (s *Service) UpdateClient(ctx context.Context, clientID string, req UpdateClientRequest) (*ClientResponse, error) {
	var resp ClientResponse
	err := s.withClientLock(ctx, clientID, func(ctx context.Context) error {
		client, err := s.clients.FindByID(ctx, clientID)
		if err != nil {
			return err
		}
		if err := client.Update(req.Name, req.Phone, req.Notes); err != nil {
			return err
		}
		if err := s.clients.Save(ctx, client); err != nil {
			return err
		}
		resp = ToClientResponse(client)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// Mutations
// =============================================================================

// RecordSale adds a sale and recalculates the client balance
func (s *Service) RecordSale(ctx context.Context, clientID string, req RecordSaleRequest) (*MutationResponse, error) {
	return s.mutate(ctx, "RecordSale", clientID, ledger.EventTypeSaleRecorded,
		func(ctx context.Context, client *ledger.Client) (ledger.TransactionEvent, error) {
			return ledger.NewSaleEvent(client.ID, req.toInput())
		})
}

// RecordPayment adds a payment and recalculates the client balance
func (s *Service) RecordPayment(ctx context.Context, clientID string, req RecordPaymentRequest) (*MutationResponse, error) {
	return s.mutate(ctx, "RecordPayment", clientID, ledger.EventTypePaymentRecorded,
		func(ctx context.Context, client *ledger.Client) (ledger.TransactionEvent, error) {
			return ledger.NewPaymentEvent(client.ID, req.toInput())
		})
}

// UpdateSale edits a sale and recalculates the client balance
func (s *Service) UpdateSale(ctx context.Context, clientID, eventID string, req RecordSaleRequest) (*MutationResponse, error) {
	return s.mutate(ctx, "UpdateSale", clientID, ledger.EventTypeTransactionEdited,
		func(ctx context.Context, client *ledger.Client) (ledger.TransactionEvent, error) {
			event, err := s.events.FindByID(ctx, client.ID, eventID)
			if err != nil {
				return nil, err
			}
			sale, ok := event.(*ledger.SaleEvent)
			if !ok {
				return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Event %s is not a sale", eventID))
			}
			if err := sale.Edit(req.toInput()); err != nil {
				return nil, err
			}
			return sale, nil
		})
}

// UpdatePayment edits a payment and recalculates the client balance
func (s *Service) UpdatePayment(ctx context.Context, clientID, eventID string, req RecordPaymentRequest) (*MutationResponse, error) {
	return s.mutate(ctx, "UpdatePayment", clientID, ledger.EventTypeTransactionEdited,
		func(ctx context.Context, client *ledger.Client) (ledger.TransactionEvent, error) {
			event, err := s.events.FindByID(ctx, client.ID, eventID)
			if err != nil {
				return nil, err
			}
			payment, ok := event.(*ledger.PaymentEvent)
			if !ok {
				return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Event %s is not a payment", eventID))
			}
			if err := payment.Edit(req.toInput()); err != nil {
				return nil, err
			}
			return payment, nil
		})
}

// DeleteEvent soft-deletes a sale or payment and recalculates the client balance
func (s *Service) DeleteEvent(ctx context.Context, clientID, eventID string) (*MutationResponse, error) {
	return s.mutate(ctx, "DeleteEvent", clientID, ledger.EventTypeTransactionDeleted,
		func(ctx context.Context, client *ledger.Client) (ledger.TransactionEvent, error) {
			event, err := s.events.FindByID(ctx, client.ID, eventID)
			if err != nil {
				return nil, err
			}
			if err := event.Base().SoftDelete(); err != nil {
				return nil, err
			}
			return event, nil
		})
}

// Recalculate rebuilds the stored balance from the client's events
func (s *Service) Recalculate(ctx context.Context, clientID string) (*DebtResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.Recalculate", trace.WithAttributes(attribute.String("client.id", clientID)))
	defer span.End()

	var resp DebtResponse
	err := s.withClientLock(ctx, clientID, func(ctx context.Context) error {
		client, err := s.clients.FindByID(ctx, clientID)
		if err != nil {
			return err
		}
		result, err := s.recalculate(ctx, client)
		if err != nil {
			return err
		}
		resp = ToDebtResponse(client.ID, result)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &resp, nil
}

type mutation func(ctx context.Context, client *ledger.Client) (ledger.TransactionEvent, error)

// mutate runs one write inside the client lock: change an event, store it,
// then recalculate and store the client.
func (s *Service) mutate(ctx context.Context, op, clientID, eventType string, fn mutation) (*MutationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attribute.String("client.id", clientID)))
	defer span.End()

	var resp MutationResponse
	err := s.withClientLock(ctx, clientID, func(ctx context.Context) error {
		client, err := s.clients.FindByID(ctx, clientID)
		if err != nil {
			return err
		}
		event, err := fn(ctx, client)
		if err != nil {
			return err
		}
		if err := s.events.Save(ctx, event); err != nil {
			return fmt.Errorf("failed to save %s: %w", event.Kind(), err)
		}
		if _, err := s.recalculate(ctx, client, ledger.NewTransactionChangedEvent(eventType, event)); err != nil {
			return err
		}
		resp = MutationResponse{Event: ToEventResponse(event), Client: ToClientResponse(client)}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &resp, nil
}

// recalculate must run inside the client lock.
func (s *Service) recalculate(ctx context.Context, client *ledger.Client, extra ...shared.DomainEvent) (ledger.DebtCalculationResult, error) {
	start := time.Now()
	events, err := s.events.FindByClient(ctx, client.ID)
	if err != nil {
		s.metrics.ObserveRecalculation(OutcomeError, time.Since(start), 0)
		return ledger.DebtCalculationResult{}, fmt.Errorf("failed to load events: %w", err)
	}

	result := ledger.Calculate(events)
	outcome := OutcomeUnchanged
	if client.ApplyLedger(result) {
		outcome = OutcomeChanged
		if err := s.clients.Save(ctx, client); err != nil {
			s.metrics.ObserveRecalculation(OutcomeError, time.Since(start), len(result.Events))
			return ledger.DebtCalculationResult{}, err
		}
	}
	s.metrics.ObserveRecalculation(outcome, time.Since(start), len(result.Events))

	s.logger.Info("client debt recalculated",
		zap.String("client_id", client.ID),
		zap.String("outcome", outcome),
		zap.String("deuda_actual", client.DeudaActual.String()),
		zap.Int("active_events", len(result.Events)),
		zap.Duration("duration", time.Since(start)),
	)

	s.publish(ctx, append(extra, client.GetDomainEvents()...)...)
	client.ClearDomainEvents()
	return result, nil
}

func (s *Service) withClientLock(ctx context.Context, clientID string, fn func(ctx context.Context) error) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	start := time.Now()
	unlock, err := s.locker.Lock(waitCtx, clientID)
	cancel()
	s.metrics.ObserveLockWait(time.Since(start), err == nil)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("client lock not acquired",
			zap.String("client_id", clientID),
			zap.Duration("waited", time.Since(start)),
			zap.Error(err),
		)
		return shared.NewDomainError("CONCURRENCY_CONFLICT",
			fmt.Sprintf("Client %s is being updated by another request", clientID))
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release client lock", zap.String("client_id", clientID), zap.Error(err))
		}
	}()
	return fn(ctx)
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}

// =============================================================================
// Queries
// =============================================================================

func (s *Service) load(ctx context.Context, clientID string) (*ledger.Client, ledger.DebtCalculationResult, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, ledger.DebtCalculationResult{}, err
	}
	events, err := s.events.FindByClient(ctx, client.ID)
	if err != nil {
		return nil, ledger.DebtCalculationResult{}, fmt.Errorf("failed to load events: %w", err)
	}
	return client, ledger.Calculate(events), nil
}

// GetDebt calculates the balance from the stored events without writing
func (s *Service) GetDebt(ctx context.Context, clientID string) (*DebtResponse, error) {
	client, result, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	resp := ToDebtResponse(client.ID, result)
	return &resp, nil
}

// GetHistory renders the client history with the given view
func (s *Service) GetHistory(ctx context.Context, clientID string, view HistoryView) (*HistoryResponse, error) {
	if view == "" {
		view = s.defaultView
	}
	client, result, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	resp := ToHistoryResponse(client.ID, view, s.labels, result)
	return &resp, nil
}

// CheckConsistency validates the client's events
func (s *Service) CheckConsistency(ctx context.Context, clientID string) (*ConsistencyResponse, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	events, err := s.events.FindByClient(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	report := ledger.ValidateTransactionConsistency(events)
	s.metrics.ObserveConsistency(len(report.Errors))
	if !report.IsValid {
		s.logger.Warn("client ledger inconsistent",
			zap.String("client_id", client.ID),
			zap.Strings("findings", report.Errors),
		)
	}
	resp := ToConsistencyResponse(client.ID, report)
	return &resp, nil
}

// Preview calculates over caller-supplied records without touching storage
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (*PreviewResponse, error) {
	_, span := s.tracer.Start(ctx, "ledger.Preview")
	defer span.End()

	view, err := ParseHistoryView(req.View, s.defaultView)
	if err != nil {
		return nil, err
	}
	result := ledger.CalculateClientDebt([]byte(req.Events))
	span.SetAttributes(attribute.Int("ledger.active_events", len(result.Events)))

	return &PreviewResponse{
		Debt:        ToDebtResponse("", result),
		History:     ToHistoryResponse("", view, s.labels, result),
		Consistency: ToConsistencyResponse("", ledger.ValidateTransactionConsistency([]byte(req.Events))),
	}, nil
}

// Split shows how a payment would be applied to a debt
func (s *Service) Split(req SplitRequest) (*SplitResponse, error) {
	if !req.PaymentAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	resp := ToSplitResponse(req)
	return &resp, nil
}
