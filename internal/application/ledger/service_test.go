package ledger

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/fiado/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test doubles
// =============================================================================

// MockEventRepository is a mock implementation of ledger.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) FindByClient(ctx context.Context, clientID string) ([]ledger.TransactionEvent, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.TransactionEvent), args.Error(1)
}

func (m *MockEventRepository) FindByID(ctx context.Context, clientID, eventID string) (ledger.TransactionEvent, error) {
	args := m.Called(ctx, clientID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ledger.TransactionEvent), args.Error(1)
}

func (m *MockEventRepository) Save(ctx context.Context, event ledger.TransactionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockClientRepository is a mock implementation of ledger.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id string) (*ledger.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Client), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context, filter ledger.ClientFilter) ([]ledger.Client, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ledger.Client), args.Get(1).(int64), args.Error(2)
}

func (m *MockClientRepository) Create(ctx context.Context, client *ledger.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Save(ctx context.Context, client *ledger.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

// MockEventPublisher records published domain events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// mutexLocker is a process-local ClientLocker backed by one channel per client
type mutexLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newMutexLocker() *mutexLocker {
	return &mutexLocker{locks: make(map[string]chan struct{})}
}

func (l *mutexLocker) Lock(ctx context.Context, clientID string) (Unlock, error) {
	l.mu.Lock()
	ch, ok := l.locks[clientID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[clientID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func(context.Context) error { <-ch; return nil }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// memoryStore is a goroutine-safe in-memory implementation of both repositories
type memoryStore struct {
	mu      sync.Mutex
	clients map[string]ledger.Client
	events  map[string][]ledger.TransactionEvent
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		clients: make(map[string]ledger.Client),
		events:  make(map[string][]ledger.TransactionEvent),
	}
}

type memoryClients struct{ *memoryStore }
type memoryEvents struct{ *memoryStore }

func (s memoryClients) FindByID(_ context.Context, id string) (*ledger.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c.ClearDomainEvents()
	return &c, nil
}

func (s memoryClients) List(_ context.Context, filter ledger.ClientFilter) ([]ledger.Client, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ledger.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if filter.Search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (s memoryClients) Create(_ context.Context, client *ledger.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.ID] = *client
	return nil
}

func (s memoryClients) Save(_ context.Context, client *ledger.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.clients[client.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != client.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	s.clients[client.ID] = *client
	return nil
}

func (s memoryEvents) FindByClient(_ context.Context, clientID string) ([]ledger.TransactionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ledger.TransactionEvent(nil), s.events[clientID]...), nil
}

func (s memoryEvents) FindByID(_ context.Context, clientID, eventID string) (ledger.TransactionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events[clientID] {
		if e.Base().ID == eventID {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s memoryEvents) Save(_ context.Context, event ledger.TransactionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.events[event.Base().ClientID]
	for i, e := range list {
		if e.Base().ID == event.Base().ID {
			list[i] = event
			return nil
		}
	}
	s.events[event.Base().ClientID] = append(list, event)
	return nil
}

func newMemoryService(t *testing.T) (*Service, *memoryStore, string) {
	t.Helper()
	store := newMemoryStore()
	svc := NewService(ServiceConfig{
		Events:  memoryEvents{store},
		Clients: memoryClients{store},
		Locker:  newMutexLocker(),
	})
	client, err := svc.CreateClient(context.Background(), CreateClientRequest{Name: "Doña Rosa"})
	require.NoError(t, err)
	return svc, store, client.ID
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// Clients
// =============================================================================

func TestService_ListClients(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newMemoryService(t)
	_, err := svc.CreateClient(ctx, CreateClientRequest{Name: "Almacén Don Pedro"})
	require.NoError(t, err)

	all, err := svc.ListClients(ctx, ListClientsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, ledger.DefaultPageSize, all.PageSize)
	require.Len(t, all.Items, 2)
	assert.Equal(t, "Almacén Don Pedro", all.Items[0].Name)

	filtered, err := svc.ListClients(ctx, ListClientsRequest{Search: "rosa", Page: 1})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, "Doña Rosa", filtered.Items[0].Name)
}

func TestService_ListClients_RepositoryError(t *testing.T) {
	clients := new(MockClientRepository)
	svc := NewService(ServiceConfig{
		Events:  new(MockEventRepository),
		Clients: clients,
		Locker:  newMutexLocker(),
	})
	filter := ledger.ClientFilter{Search: "x", Page: 2, PageSize: 10}
	clients.On("List", mock.Anything, filter).Return(nil, int64(0), errors.New("db down"))

	_, err := svc.ListClients(context.Background(), ListClientsRequest{Search: "x", Page: 2, PageSize: 10})
	require.Error(t, err)
	clients.AssertExpectations(t)
}

// =============================================================================
// Mutations
// =============================================================================

func TestService_RecordSaleAndPayment(t *testing.T) {
	ctx := context.Background()
	svc, _, clientID := newMemoryService(t)

	sale, err := svc.RecordSale(ctx, clientID, RecordSaleRequest{
		Producto:         "Zapatillas",
		Cantidad:         dec("2"),
		CostoUnitario:    dec("300"),
		GananciaUnitaria: dec("200"),
	})
	require.NoError(t, err)
	assert.Equal(t, "venta", sale.Event.Tipo)
	require.NotNil(t, sale.Event.TotalVenta)
	assert.True(t, sale.Event.TotalVenta.Equal(dec("1000")))
	assert.True(t, sale.Client.DeudaActual.Equal(dec("1000")))
	require.NotNil(t, sale.Client.UltimaTransaccion)

	paid, err := svc.RecordPayment(ctx, clientID, RecordPaymentRequest{MontoPago: dec("1300")})
	require.NoError(t, err)
	assert.True(t, paid.Client.DeudaActual.Equal(dec("-300")))
	assert.True(t, paid.Client.TotalDebt.IsZero())
	assert.True(t, paid.Client.FavorBalance.Equal(dec("300")))

	debt, err := svc.GetDebt(ctx, clientID)
	require.NoError(t, err)
	assert.True(t, debt.FavorBalance.Equal(dec("300")))
	assert.Equal(t, []int{1}, debt.ZeroBalancePoints)
}

func TestService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, clientID := newMemoryService(t)

	sale, err := svc.RecordSale(ctx, clientID, RecordSaleRequest{Producto: "Buzo", Cantidad: dec("1"), CostoUnitario: dec("500")})
	require.NoError(t, err)
	payment, err := svc.RecordPayment(ctx, clientID, RecordPaymentRequest{MontoPago: dec("200")})
	require.NoError(t, err)

	t.Run("edit payment", func(t *testing.T) {
		resp, err := svc.UpdatePayment(ctx, clientID, payment.Event.ID, RecordPaymentRequest{MontoPago: dec("500")})
		require.NoError(t, err)
		assert.NotNil(t, resp.Event.Editado)
		assert.True(t, resp.Client.DeudaActual.IsZero())
	})

	t.Run("edit with the wrong kind", func(t *testing.T) {
		_, err := svc.UpdateSale(ctx, clientID, payment.Event.ID, RecordSaleRequest{Producto: "x", Cantidad: dec("1")})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("delete sale", func(t *testing.T) {
		resp, err := svc.DeleteEvent(ctx, clientID, sale.Event.ID)
		require.NoError(t, err)
		assert.True(t, resp.Event.Borrado)
		assert.True(t, resp.Client.DeudaActual.Equal(dec("-500")))
	})

	t.Run("delete twice", func(t *testing.T) {
		_, err := svc.DeleteEvent(ctx, clientID, sale.Event.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := svc.DeleteEvent(ctx, clientID, "missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_ConcurrentPaymentsAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc, store, clientID := newMemoryService(t)

	_, err := svc.RecordSale(ctx, clientID, RecordSaleRequest{Producto: "Mercadería", Cantidad: dec("1"), CostoUnitario: dec("1000")})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordPayment(ctx, clientID, RecordPaymentRequest{MontoPago: dec("10")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	client, err := memoryClients{store}.FindByID(ctx, clientID)
	require.NoError(t, err)
	assert.True(t, client.DeudaActual.Equal(dec("800")), "got %s", client.DeudaActual)
	assert.Equal(t, 22, client.Version)
}

func TestService_LockContention(t *testing.T) {
	ctx := context.Background()
	locker := newMutexLocker()
	svc := NewService(ServiceConfig{
		Events:   new(MockEventRepository),
		Clients:  new(MockClientRepository),
		Locker:   locker,
		LockWait: 20 * time.Millisecond,
	})

	unlock, err := locker.Lock(ctx, "c1")
	require.NoError(t, err)
	defer func() { _ = unlock(ctx) }()

	_, err = svc.RecordPayment(ctx, "c1", RecordPaymentRequest{MontoPago: dec("10")})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestService_MutationErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("client not found", func(t *testing.T) {
		clients := new(MockClientRepository)
		clients.On("FindByID", mock.Anything, "missing").Return(nil, shared.ErrNotFound)
		svc := NewService(ServiceConfig{Events: new(MockEventRepository), Clients: clients, Locker: newMutexLocker()})

		_, err := svc.RecordPayment(ctx, "missing", RecordPaymentRequest{MontoPago: dec("10")})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("invalid payment is not stored", func(t *testing.T) {
		client, _ := ledger.NewClient("Rosa", "", "")
		clients := new(MockClientRepository)
		clients.On("FindByID", mock.Anything, client.ID).Return(client, nil)
		events := new(MockEventRepository)
		svc := NewService(ServiceConfig{Events: events, Clients: clients, Locker: newMutexLocker()})

		_, err := svc.RecordPayment(ctx, client.ID, RecordPaymentRequest{MontoPago: dec("-5")})
		require.Error(t, err)
		events.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		client, _ := ledger.NewClient("Rosa", "", "")
		clients := new(MockClientRepository)
		clients.On("FindByID", mock.Anything, client.ID).Return(client, nil)
		events := new(MockEventRepository)
		events.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		svc := NewService(ServiceConfig{Events: events, Clients: clients, Locker: newMutexLocker()})

		_, err := svc.RecordPayment(ctx, client.ID, RecordPaymentRequest{MontoPago: dec("5")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

func TestService_PublishesDomainEvents(t *testing.T) {
	ctx := context.Background()
	client, _ := ledger.NewClient("Rosa", "", "")
	client.ClearDomainEvents()

	clients := new(MockClientRepository)
	clients.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	clients.On("Save", mock.Anything, client).Return(nil)

	events := memoryEvents{newMemoryStore()}

	var published []shared.DomainEvent
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		published = append(published, args.Get(1).([]shared.DomainEvent)...)
	}).Return(nil)

	svc := NewService(ServiceConfig{Events: events, Clients: clients, Locker: newMutexLocker(), Publisher: publisher})
	_, err := svc.RecordPayment(ctx, client.ID, RecordPaymentRequest{MontoPago: dec("50")})
	require.NoError(t, err)

	require.Len(t, published, 2)
	assert.Equal(t, ledger.EventTypePaymentRecorded, published[0].EventType())
	assert.Equal(t, ledger.EventTypeClientDebtRecalculated, published[1].EventType())
	assert.Empty(t, client.GetDomainEvents())
	clients.AssertCalled(t, "Save", mock.Anything, client)
}

// =============================================================================
// Queries
// =============================================================================

func TestService_History(t *testing.T) {
	ctx := context.Background()
	svc, _, clientID := newMemoryService(t)

	_, err := svc.RecordSale(ctx, clientID, RecordSaleRequest{
		Fecha:         timePtr(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
		Producto:      "Pollera",
		Cantidad:      dec("1"),
		CostoUnitario: dec("100"),
	})
	require.NoError(t, err)
	_, err = svc.RecordPayment(ctx, clientID, RecordPaymentRequest{
		Fecha:     timePtr(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)),
		MontoPago: dec("300"),
	})
	require.NoError(t, err)

	t.Run("summary", func(t *testing.T) {
		resp, err := svc.GetHistory(ctx, clientID, "")
		require.NoError(t, err)
		assert.Equal(t, ViewSummary, resp.View)
		require.Len(t, resp.Groups, 4)
		assert.Equal(t, "payment-split", resp.Groups[0].Type)
		assert.True(t, resp.Groups[0].DebtPortion.Equal(dec("100")))
		assert.True(t, resp.NetMovement.Equal(dec("-200")))
	})

	t.Run("detailed", func(t *testing.T) {
		resp, err := svc.GetHistory(ctx, clientID, ViewDetailed)
		require.NoError(t, err)
		require.Len(t, resp.Groups, 4)
		assert.Equal(t, "favor-balance", resp.Groups[0].Type)
		assert.NotNil(t, resp.Groups[0].Event)
		assert.True(t, resp.NetMovement.Equal(dec("-200")))
	})

	t.Run("consistency flags the credit", func(t *testing.T) {
		resp, err := svc.CheckConsistency(ctx, clientID)
		require.NoError(t, err)
		assert.False(t, resp.IsValid)
		assert.Len(t, resp.Errors, 1)
	})

	t.Run("recalculate is idempotent", func(t *testing.T) {
		first, err := svc.Recalculate(ctx, clientID)
		require.NoError(t, err)
		second, err := svc.Recalculate(ctx, clientID)
		require.NoError(t, err)
		assert.True(t, first.Balance.Equal(second.Balance))
		assert.True(t, second.FavorBalance.Equal(dec("200")))
	})
}

func TestService_Preview(t *testing.T) {
	svc := NewService(ServiceConfig{Locker: newMutexLocker()})

	resp, err := svc.Preview(context.Background(), PreviewRequest{
		Events: []byte(`[
			{"id":"s1","tipo":"venta","fecha":1709287200000,"cantidad":1,"costoUnitario":100,"gananciaUnitaria":0,"totalVenta":100},
			{"id":"p1","tipo":"pago","fecha":{"seconds":1709373600,"nanoseconds":0},"montoPago":100}
		]`),
		View: "detailed",
	})
	require.NoError(t, err)
	assert.True(t, resp.Debt.TotalDebt.IsZero())
	assert.Len(t, resp.Debt.Events, 2)
	assert.Equal(t, ViewDetailed, resp.History.View)
	assert.True(t, resp.Consistency.IsValid)

	_, err = svc.Preview(context.Background(), PreviewRequest{Events: []byte(`[]`), View: "weekly"})
	assert.Error(t, err)
}

func TestService_Split(t *testing.T) {
	svc := NewService(ServiceConfig{})

	resp, err := svc.Split(SplitRequest{CurrentDebt: dec("300"), PaymentAmount: dec("500")})
	require.NoError(t, err)
	assert.True(t, resp.DebtPayment.Equal(dec("300")))
	assert.True(t, resp.FavorPayment.Equal(dec("200")))
	require.Len(t, resp.Steps, 3)
	assert.Equal(t, "zero-balance", resp.Steps[1].Type)

	_, err = svc.Split(SplitRequest{CurrentDebt: dec("300"), PaymentAmount: dec("0")})
	assert.Error(t, err)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
