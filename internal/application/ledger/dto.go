package ledger

import (
	"encoding/json"
	"time"

	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/fiado/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// HistoryView selects a history formatter
type HistoryView string

const (
	ViewSummary  HistoryView = "summary"
	ViewDetailed HistoryView = "detailed"
)

// ParseHistoryView parses a view name. An empty name yields fallback.
func ParseHistoryView(name string, fallback HistoryView) (HistoryView, error) {
	switch HistoryView(name) {
	case "":
		return fallback, nil
	case ViewSummary, ViewDetailed:
		return HistoryView(name), nil
	}
	return "", shared.NewDomainError("INVALID_VIEW", "History view must be summary or detailed")
}

// NewHistoryFormatter returns the formatter for view
func NewHistoryFormatter(view HistoryView, labels ledger.Labels) ledger.HistoryFormatter {
	if view == ViewDetailed {
		return ledger.NewDetailedFormatter(labels)
	}
	return ledger.NewSummaryFormatter(labels)
}

// =============================================================================
// Client DTOs
// =============================================================================

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Phone string `json:"phone" binding:"max=50"`
	Notes string `json:"notes" binding:"max=1000"`
}

// UpdateClientRequest represents a request to update a client's contact data
type UpdateClientRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Phone string `json:"phone" binding:"max=50"`
	Notes string `json:"notes" binding:"max=1000"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Phone             string          `json:"phone,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	DeudaActual       decimal.Decimal `json:"deudaActual"`
	TotalDebt         decimal.Decimal `json:"totalDebt"`
	FavorBalance      decimal.Decimal `json:"favorBalance"`
	UltimaTransaccion *time.Time      `json:"ultimaTransaccion,omitempty"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToClientResponse converts a domain Client to ClientResponse
func ToClientResponse(c *ledger.Client) ClientResponse {
	return ClientResponse{
		ID:                c.ID,
		Name:              c.Name,
		Phone:             c.Phone,
		Notes:             c.Notes,
		DeudaActual:       c.DeudaActual,
		TotalDebt:         c.TotalDebt(),
		FavorBalance:      c.FavorBalance(),
		UltimaTransaccion: c.UltimaTransaccion,
		Version:           c.Version,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// ListClientsRequest carries the query parameters of a client listing
type ListClientsRequest struct {
	Search   string `form:"search" binding:"max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (r ListClientsRequest) toFilter() ledger.ClientFilter {
	return ledger.ClientFilter{
		Search:   r.Search,
		OrderBy:  r.OrderBy,
		OrderDir: r.OrderDir,
		Page:     r.Page,
		PageSize: r.PageSize,
	}
}

// ClientListResponse is one page of clients
type ClientListResponse struct {
	Items    []ClientResponse `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// ToClientListResponse converts a page of domain clients
func ToClientListResponse(clients []ledger.Client, total int64, filter ledger.ClientFilter) ClientListResponse {
	items := make([]ClientResponse, len(clients))
	for i := range clients {
		items[i] = ToClientResponse(&clients[i])
	}
	page, pageSize := filter.Bounds()
	return ClientListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}
}

// =============================================================================
// Transaction DTOs
// =============================================================================

// RecordSaleRequest represents a sale on credit. TotalVenta is derived when omitted.
type RecordSaleRequest struct {
	Fecha            *time.Time       `json:"fecha"`
	Producto         string           `json:"producto" binding:"required,min=1,max=200"`
	ProductoColor    string           `json:"productoColor" binding:"max=50"`
	Cantidad         decimal.Decimal  `json:"cantidad"`
	CostoUnitario    decimal.Decimal  `json:"costoUnitario"`
	GananciaUnitaria decimal.Decimal  `json:"gananciaUnitaria"`
	TotalVenta       *decimal.Decimal `json:"totalVenta"`
	Notas            string           `json:"notas" binding:"max=1000"`
}

func (r RecordSaleRequest) toInput() ledger.SaleInput {
	input := ledger.SaleInput{
		Notas:            r.Notas,
		Producto:         r.Producto,
		ProductoColor:    r.ProductoColor,
		Cantidad:         r.Cantidad,
		CostoUnitario:    r.CostoUnitario,
		GananciaUnitaria: r.GananciaUnitaria,
	}
	if r.Fecha != nil {
		input.Fecha = *r.Fecha
	}
	if r.TotalVenta != nil {
		input.TotalVenta = *r.TotalVenta
	}
	return input
}

// RecordPaymentRequest represents money received from a client
type RecordPaymentRequest struct {
	Fecha     *time.Time      `json:"fecha"`
	MontoPago decimal.Decimal `json:"montoPago"`
	Notas     string          `json:"notas" binding:"max=1000"`
}

func (r RecordPaymentRequest) toInput() ledger.PaymentInput {
	input := ledger.PaymentInput{Notas: r.Notas, MontoPago: r.MontoPago}
	if r.Fecha != nil {
		input.Fecha = *r.Fecha
	}
	return input
}

// EventResponse represents a sale or payment. Amount fields not relevant to
// the event's tipo are omitted.
type EventResponse struct {
	ID               string           `json:"id"`
	ClienteID        string           `json:"clienteId"`
	Tipo             string           `json:"tipo"`
	Fecha            time.Time        `json:"fecha"`
	Notas            string           `json:"notas,omitempty"`
	Creado           time.Time        `json:"creado"`
	Editado          *time.Time       `json:"editado,omitempty"`
	Borrado          bool             `json:"borrado"`
	Producto         string           `json:"producto,omitempty"`
	ProductoColor    string           `json:"productoColor,omitempty"`
	Cantidad         *decimal.Decimal `json:"cantidad,omitempty"`
	CostoUnitario    *decimal.Decimal `json:"costoUnitario,omitempty"`
	GananciaUnitaria *decimal.Decimal `json:"gananciaUnitaria,omitempty"`
	TotalVenta       *decimal.Decimal `json:"totalVenta,omitempty"`
	MontoPago        *decimal.Decimal `json:"montoPago,omitempty"`
}

// ToEventResponse converts a domain event to EventResponse
func ToEventResponse(event ledger.TransactionEvent) EventResponse {
	base := event.Base()
	resp := EventResponse{
		ID:        base.ID,
		ClienteID: base.ClientID,
		Tipo:      event.Kind().String(),
		Fecha:     base.Fecha,
		Notas:     base.Notas,
		Creado:    base.Creado,
		Editado:   base.Editado,
		Borrado:   base.Borrado,
	}
	switch e := event.(type) {
	case *ledger.SaleEvent:
		resp.Producto = e.Producto
		resp.ProductoColor = e.ProductoColor
		resp.Cantidad = &e.Cantidad
		resp.CostoUnitario = &e.CostoUnitario
		resp.GananciaUnitaria = &e.GananciaUnitaria
		resp.TotalVenta = &e.TotalVenta
	case *ledger.PaymentEvent:
		resp.MontoPago = &e.MontoPago
	}
	return resp
}

// AnnotatedEventResponse is an event with the balance after it
type AnnotatedEventResponse struct {
	EventResponse
	RunningTotal  decimal.Decimal `json:"runningTotal"`
	IsZeroBalance bool            `json:"isZeroBalance"`
}

// ToAnnotatedEventResponse converts an annotated event
func ToAnnotatedEventResponse(a ledger.AnnotatedEvent) AnnotatedEventResponse {
	return AnnotatedEventResponse{
		EventResponse: ToEventResponse(a.Event),
		RunningTotal:  a.RunningTotal,
		IsZeroBalance: a.IsZeroBalance,
	}
}

// MutationResponse is returned by every write: the affected event and the
// client with its recalculated balance
type MutationResponse struct {
	Event  EventResponse  `json:"event"`
	Client ClientResponse `json:"client"`
}

// =============================================================================
// Ledger DTOs
// =============================================================================

// DebtResponse represents a full balance calculation
type DebtResponse struct {
	ClientID          string                   `json:"clientId,omitempty"`
	TotalDebt         decimal.Decimal          `json:"totalDebt"`
	FavorBalance      decimal.Decimal          `json:"favorBalance"`
	Balance           decimal.Decimal          `json:"balance"`
	LastEventAt       *time.Time               `json:"lastEventAt,omitempty"`
	Events            []AnnotatedEventResponse `json:"events"`
	ZeroBalancePoints []int                    `json:"zeroBalancePoints"`
}

// ToDebtResponse converts a calculation result
func ToDebtResponse(clientID string, result ledger.DebtCalculationResult) DebtResponse {
	events := make([]AnnotatedEventResponse, len(result.Events))
	for i, a := range result.Events {
		events[i] = ToAnnotatedEventResponse(a)
	}
	points := result.ZeroBalancePoints
	if points == nil {
		points = []int{}
	}
	return DebtResponse{
		ClientID:          clientID,
		TotalDebt:         result.TotalDebt,
		FavorBalance:      result.FavorBalance,
		Balance:           result.FinalBalance(),
		LastEventAt:       result.LastEventAt(),
		Events:            events,
		ZeroBalancePoints: points,
	}
}

// GroupResponse is one display row of a history
type GroupResponse struct {
	Type         string                  `json:"type"`
	Event        *AnnotatedEventResponse `json:"event,omitempty"`
	Amount       *decimal.Decimal        `json:"amount,omitempty"`
	DebtPortion  *decimal.Decimal        `json:"debtPortion,omitempty"`
	FavorPortion *decimal.Decimal        `json:"favorPortion,omitempty"`
	Message      string                  `json:"message,omitempty"`
}

// ToGroupResponse converts a formatted group
func ToGroupResponse(group ledger.FormattedGroup) GroupResponse {
	resp := GroupResponse{Type: string(group.Type())}
	switch g := group.(type) {
	case ledger.TransactionGroup:
		event := ToAnnotatedEventResponse(g.Event)
		amount := g.DisplayAmount()
		resp.Event = &event
		resp.Amount = &amount
	case ledger.ZeroBalanceGroup:
		resp.Message = g.Message
	case ledger.FavorBalanceGroup:
		amount := g.Amount
		resp.Amount = &amount
		resp.Message = g.Message
		if g.Event != nil {
			event := ToAnnotatedEventResponse(*g.Event)
			resp.Event = &event
		}
	case ledger.PaymentSplitGroup:
		event := ToAnnotatedEventResponse(g.Event)
		debt, favor := g.DebtPortion, g.FavorPortion
		resp.Event = &event
		resp.DebtPortion = &debt
		resp.FavorPortion = &favor
	}
	return resp
}

// HistoryResponse represents a rendered history, newest first
type HistoryResponse struct {
	ClientID     string          `json:"clientId,omitempty"`
	View         HistoryView     `json:"view"`
	TotalDebt    decimal.Decimal `json:"totalDebt"`
	FavorBalance decimal.Decimal `json:"favorBalance"`
	NetMovement  decimal.Decimal `json:"netMovement"`
	Groups       []GroupResponse `json:"groups"`
}

// ToHistoryResponse renders result with the formatter for view
func ToHistoryResponse(clientID string, view HistoryView, labels ledger.Labels, result ledger.DebtCalculationResult) HistoryResponse {
	groups := NewHistoryFormatter(view, labels).Format(result)
	rows := make([]GroupResponse, len(groups))
	for i, g := range groups {
		rows[i] = ToGroupResponse(g)
	}
	return HistoryResponse{
		ClientID:     clientID,
		View:         view,
		TotalDebt:    result.TotalDebt,
		FavorBalance: result.FavorBalance,
		NetMovement:  ledger.NetMovement(groups),
		Groups:       rows,
	}
}

// ConsistencyResponse represents the advisory consistency report
type ConsistencyResponse struct {
	ClientID string   `json:"clientId,omitempty"`
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
}

// ToConsistencyResponse converts a consistency report
func ToConsistencyResponse(clientID string, report ledger.ConsistencyReport) ConsistencyResponse {
	errs := report.Errors
	if errs == nil {
		errs = []string{}
	}
	return ConsistencyResponse{ClientID: clientID, IsValid: report.IsValid, Errors: errs}
}

// SplitRequest asks how a payment would be applied to a debt
type SplitRequest struct {
	CurrentDebt   decimal.Decimal `json:"currentDebt"`
	PaymentAmount decimal.Decimal `json:"paymentAmount"`
}

// StepResponse is one visualization step of a payment
type StepResponse struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
}

// SplitResponse represents a payment split and its display steps
type SplitResponse struct {
	DebtPayment        decimal.Decimal `json:"debtPayment"`
	FavorPayment       decimal.Decimal `json:"favorPayment"`
	IsOverpayment      bool            `json:"isOverpayment"`
	ZeroBalanceReached bool            `json:"zeroBalanceReached"`
	Steps              []StepResponse  `json:"steps"`
}

// ToSplitResponse computes the split and visualization of a hypothetical payment
func ToSplitResponse(req SplitRequest) SplitResponse {
	split := ledger.SplitPayment(req.CurrentDebt, req.PaymentAmount)
	probe := &ledger.PaymentEvent{MontoPago: req.PaymentAmount}
	steps := ledger.ApplyPaymentWithVisualization(req.CurrentDebt, probe)
	rows := make([]StepResponse, len(steps))
	for i, step := range steps {
		rows[i] = StepResponse{Type: string(step.Kind), Amount: step.Amount}
	}
	return SplitResponse{
		DebtPayment:        split.DebtPayment,
		FavorPayment:       split.FavorPayment,
		IsOverpayment:      split.IsOverpayment,
		ZeroBalanceReached: split.ZeroBalanceReached,
		Steps:              rows,
	}
}

// PreviewRequest carries caller-supplied raw records for a stateless calculation
type PreviewRequest struct {
	Events json.RawMessage `json:"events" binding:"required"`
	View   string          `json:"view" binding:"omitempty,oneof=summary detailed"`
}

// PreviewResponse bundles every derived view of the supplied records
type PreviewResponse struct {
	Debt        DebtResponse        `json:"debt"`
	History     HistoryResponse     `json:"history"`
	Consistency ConsistencyResponse `json:"consistency"`
}
