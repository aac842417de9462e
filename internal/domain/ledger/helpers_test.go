package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

func sale(id string, fecha time.Time, total string) *SaleEvent {
	amount := dec(total)
	return &SaleEvent{
		EventBase:        EventBase{ID: id, ClientID: "c1", Fecha: fecha, Creado: fecha},
		Producto:         "Remera",
		Cantidad:         decimal.NewFromInt(1),
		CostoUnitario:    amount,
		GananciaUnitaria: decimal.Zero,
		TotalVenta:       amount,
	}
}

func payment(id string, fecha time.Time, monto string) *PaymentEvent {
	return &PaymentEvent{
		EventBase: EventBase{ID: id, ClientID: "c1", Fecha: fecha, Creado: fecha},
		MontoPago: dec(monto),
	}
}

func deleted[T TransactionEvent](event T) T {
	event.Base().Borrado = true
	return event
}
