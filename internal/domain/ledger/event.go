package ledger

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/fiado/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EventKind discriminates the two kinds of ledger events
type EventKind string

const (
	KindSale    EventKind = "venta"
	KindPayment EventKind = "pago"
)

// IsValid checks if the kind is one of the known values
func (k EventKind) IsValid() bool {
	return k == KindSale || k == KindPayment
}

// String returns the string representation
func (k EventKind) String() string {
	return string(k)
}

// EventBase holds the fields shared by sales and payments
type EventBase struct {
	ID       string     `json:"id"`
	ClientID string     `json:"clienteId"`
	Fecha    time.Time  `json:"fecha"`
	Notas    string     `json:"notas,omitempty"`
	Creado   time.Time  `json:"creado"`
	Editado  *time.Time `json:"editado,omitempty"`
	Borrado  bool       `json:"borrado"`
}

// TransactionEvent is either a *SaleEvent or a *PaymentEvent.
type TransactionEvent interface {
	Base() *EventBase
	Kind() EventKind
	// SignedAmount is the effect on the client balance: +total for a sale, -amount for a payment.
	SignedAmount() decimal.Decimal
	isTransactionEvent()
}

// SaleEvent records goods taken on credit
type SaleEvent struct {
	EventBase
	Producto         string          `json:"producto"`
	ProductoColor    string          `json:"productoColor,omitempty"`
	Cantidad         decimal.Decimal `json:"cantidad"`
	CostoUnitario    decimal.Decimal `json:"costoUnitario"`
	GananciaUnitaria decimal.Decimal `json:"gananciaUnitaria"`
	TotalVenta       decimal.Decimal `json:"totalVenta"`
}

// PaymentEvent records money received from the client
type PaymentEvent struct {
	EventBase
	MontoPago decimal.Decimal `json:"montoPago"`
}

// SaleInput carries the editable fields of a sale
type SaleInput struct {
	Fecha            time.Time
	Notas            string
	Producto         string
	ProductoColor    string
	Cantidad         decimal.Decimal
	CostoUnitario    decimal.Decimal
	GananciaUnitaria decimal.Decimal
	// TotalVenta is derived from the other amounts when zero.
	TotalVenta decimal.Decimal
}

// PaymentInput carries the editable fields of a payment
type PaymentInput struct {
	Fecha     time.Time
	Notas     string
	MontoPago decimal.Decimal
}

// ExpectedSaleTotal returns cantidad × (costoUnitario + gananciaUnitaria)
func ExpectedSaleTotal(cantidad, costo, ganancia decimal.Decimal) decimal.Decimal {
	return cantidad.Mul(costo.Add(ganancia))
}

// NewSaleEvent creates a validated sale for the given client
func NewSaleEvent(clientID string, input SaleInput) (*SaleEvent, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	now := time.Now()
	sale := &SaleEvent{
		EventBase: EventBase{
			ID:       shared.NewID(),
			ClientID: clientID,
			Creado:   now,
		},
	}
	if err := sale.apply(input, now); err != nil {
		return nil, err
	}
	return sale, nil
}

// Edit replaces the editable fields and stamps editado
func (e *SaleEvent) Edit(input SaleInput) error {
	if e.Borrado {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a deleted sale")
	}
	now := time.Now()
	if err := e.apply(input, now); err != nil {
		return err
	}
	e.Editado = &now
	return nil
}

func (e *SaleEvent) apply(input SaleInput, now time.Time) error {
	if strings.TrimSpace(input.Producto) == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Product cannot be empty")
	}
	if !input.Cantidad.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if input.CostoUnitario.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Unit cost cannot be negative")
	}
	if input.GananciaUnitaria.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Unit profit cannot be negative")
	}
	total := input.TotalVenta
	if total.IsZero() {
		total = ExpectedSaleTotal(input.Cantidad, input.CostoUnitario, input.GananciaUnitaria)
	}
	if total.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Sale total cannot be negative")
	}
	if expected := ExpectedSaleTotal(input.Cantidad, input.CostoUnitario, input.GananciaUnitaria); total.Sub(expected).Abs().GreaterThan(Tolerance) {
		return shared.NewDomainError("TOTAL_MISMATCH", "Sale total does not match quantity × (unit cost + unit profit)")
	}

	e.Fecha = input.Fecha
	if e.Fecha.IsZero() {
		e.Fecha = now
	}
	e.Notas = input.Notas
	e.Producto = input.Producto
	e.ProductoColor = input.ProductoColor
	e.Cantidad = input.Cantidad
	e.CostoUnitario = input.CostoUnitario
	e.GananciaUnitaria = input.GananciaUnitaria
	e.TotalVenta = total
	return nil
}

// NewPaymentEvent creates a validated payment for the given client
func NewPaymentEvent(clientID string, input PaymentInput) (*PaymentEvent, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	now := time.Now()
	payment := &PaymentEvent{
		EventBase: EventBase{
			ID:       shared.NewID(),
			ClientID: clientID,
			Creado:   now,
		},
	}
	if err := payment.apply(input, now); err != nil {
		return nil, err
	}
	return payment, nil
}

// Edit replaces the editable fields and stamps editado
func (e *PaymentEvent) Edit(input PaymentInput) error {
	if e.Borrado {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit a deleted payment")
	}
	now := time.Now()
	if err := e.apply(input, now); err != nil {
		return err
	}
	e.Editado = &now
	return nil
}

func (e *PaymentEvent) apply(input PaymentInput, now time.Time) error {
	if !input.MontoPago.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	e.Fecha = input.Fecha
	if e.Fecha.IsZero() {
		e.Fecha = now
	}
	e.Notas = input.Notas
	e.MontoPago = input.MontoPago
	return nil
}

// SoftDelete marks the event as borrado; deleted events never count toward a balance.
func (b *EventBase) SoftDelete() error {
	if b.Borrado {
		return shared.NewDomainError("INVALID_STATE", "Event is already deleted")
	}
	now := time.Now()
	b.Borrado = true
	b.Editado = &now
	return nil
}

// Base returns the shared fields
func (e *SaleEvent) Base() *EventBase {
	if e == nil {
		return nil
	}
	return &e.EventBase
}

// Kind returns KindSale
func (e *SaleEvent) Kind() EventKind { return KindSale }

// SignedAmount returns +totalVenta
func (e *SaleEvent) SignedAmount() decimal.Decimal { return e.TotalVenta }

func (e *SaleEvent) isTransactionEvent() {}

// Base returns the shared fields
func (e *PaymentEvent) Base() *EventBase {
	if e == nil {
		return nil
	}
	return &e.EventBase
}

// Kind returns KindPayment
func (e *PaymentEvent) Kind() EventKind { return KindPayment }

// SignedAmount returns -montoPago
func (e *PaymentEvent) SignedAmount() decimal.Decimal { return e.MontoPago.Neg() }

func (e *PaymentEvent) isTransactionEvent() {}

// MarshalJSON adds the tipo discriminator
func (e *SaleEvent) MarshalJSON() ([]byte, error) {
	type alias SaleEvent
	return json.Marshal(struct {
		Tipo EventKind `json:"tipo"`
		*alias
	}{Tipo: KindSale, alias: (*alias)(e)})
}

// MarshalJSON adds the tipo discriminator
func (e *PaymentEvent) MarshalJSON() ([]byte, error) {
	type alias PaymentEvent
	return json.Marshal(struct {
		Tipo EventKind `json:"tipo"`
		*alias
	}{Tipo: KindPayment, alias: (*alias)(e)})
}
