package models

import (
	"fmt"
	"time"

	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// TransactionEventModel stores sales and payments in one table.
// Sale-only and payment-only columns are zero for the other kind.
type TransactionEventModel struct {
	ID               string           `gorm:"type:varchar(64);primaryKey"`
	ClienteID        string           `gorm:"type:varchar(64);not null;index:idx_transaction_events_client_fecha,priority:1"`
	Tipo             ledger.EventKind `gorm:"type:varchar(10);not null"`
	Fecha            time.Time        `gorm:"not null;index:idx_transaction_events_client_fecha,priority:2"`
	Notas            string           `gorm:"type:text"`
	Creado           time.Time        `gorm:"not null"`
	Editado          *time.Time
	Borrado          bool            `gorm:"not null;default:false"`
	Producto         string          `gorm:"type:varchar(200)"`
	ProductoColor    string          `gorm:"type:varchar(50)"`
	Cantidad         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostoUnitario    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GananciaUnitaria decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalVenta       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MontoPago        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (TransactionEventModel) TableName() string {
	return "transaction_events"
}

// ToDomain converts the row to a *ledger.SaleEvent or *ledger.PaymentEvent
func (m *TransactionEventModel) ToDomain() (ledger.TransactionEvent, error) {
	base := ledger.EventBase{
		ID:       m.ID,
		ClientID: m.ClienteID,
		Fecha:    m.Fecha.UTC(),
		Notas:    m.Notas,
		Creado:   m.Creado.UTC(),
		Editado:  utcPtr(m.Editado),
		Borrado:  m.Borrado,
	}

	switch m.Tipo {
	case ledger.KindSale:
		return &ledger.SaleEvent{
			EventBase:        base,
			Producto:         m.Producto,
			ProductoColor:    m.ProductoColor,
			Cantidad:         m.Cantidad,
			CostoUnitario:    m.CostoUnitario,
			GananciaUnitaria: m.GananciaUnitaria,
			TotalVenta:       m.TotalVenta,
		}, nil
	case ledger.KindPayment:
		return &ledger.PaymentEvent{
			EventBase: base,
			MontoPago: m.MontoPago,
		}, nil
	default:
		return nil, fmt.Errorf("transaction event %s has unknown tipo %q", m.ID, m.Tipo)
	}
}

// TransactionEventModelFromDomain flattens a domain event into a row
func TransactionEventModelFromDomain(e ledger.TransactionEvent) *TransactionEventModel {
	b := e.Base()
	m := &TransactionEventModel{
		ID:        b.ID,
		ClienteID: b.ClientID,
		Tipo:      e.Kind(),
		Fecha:     b.Fecha,
		Notas:     b.Notas,
		Creado:    b.Creado,
		Editado:   b.Editado,
		Borrado:   b.Borrado,
	}

	switch ev := e.(type) {
	case *ledger.SaleEvent:
		m.Producto = ev.Producto
		m.ProductoColor = ev.ProductoColor
		m.Cantidad = ev.Cantidad
		m.CostoUnitario = ev.CostoUnitario
		m.GananciaUnitaria = ev.GananciaUnitaria
		m.TotalVenta = ev.TotalVenta
	case *ledger.PaymentEvent:
		m.MontoPago = ev.MontoPago
	}
	return m
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
