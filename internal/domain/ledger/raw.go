package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RawEvent is an event as it arrives from storage or the wire, before its
// timestamps have been normalized. Timestamp fields accept any encoding
// understood by NormalizeTimestamp.
type RawEvent struct {
	ID               string          `json:"id"`
	ClientID         string          `json:"clienteId"`
	Tipo             EventKind       `json:"tipo"`
	Fecha            any             `json:"fecha"`
	Notas            string          `json:"notas,omitempty"`
	Creado           any             `json:"creado,omitempty"`
	Editado          any             `json:"editado,omitempty"`
	Borrado          bool            `json:"borrado"`
	Producto         string          `json:"producto,omitempty"`
	ProductoColor    string          `json:"productoColor,omitempty"`
	Cantidad         decimal.Decimal `json:"cantidad"`
	CostoUnitario    decimal.Decimal `json:"costoUnitario"`
	GananciaUnitaria decimal.Decimal `json:"gananciaUnitaria"`
	TotalVenta       decimal.Decimal `json:"totalVenta"`
	MontoPago        decimal.Decimal `json:"montoPago"`
}

// Normalize converts the raw record into a typed event. It returns false when
// tipo is neither venta nor pago.
func (r RawEvent) Normalize() (TransactionEvent, bool) {
	base := EventBase{
		ID:       r.ID,
		ClientID: r.ClientID,
		Fecha:    NormalizeTimestamp(r.Fecha),
		Notas:    r.Notas,
		Creado:   NormalizeTimestamp(r.Creado),
		Borrado:  r.Borrado,
	}
	if r.Editado != nil {
		editado := NormalizeTimestamp(r.Editado)
		base.Editado = &editado
	}

	switch EventKind(strings.ToLower(strings.TrimSpace(string(r.Tipo)))) {
	case KindSale:
		return &SaleEvent{
			EventBase:        base,
			Producto:         r.Producto,
			ProductoColor:    r.ProductoColor,
			Cantidad:         r.Cantidad,
			CostoUnitario:    r.CostoUnitario,
			GananciaUnitaria: r.GananciaUnitaria,
			TotalVenta:       r.TotalVenta,
		}, true
	case KindPayment:
		return &PaymentEvent{EventBase: base, MontoPago: r.MontoPago}, true
	}
	return nil, false
}

// NormalizeEvents converts raw records to typed events, dropping unknown kinds.
func NormalizeEvents(raws []RawEvent) []TransactionEvent {
	events := make([]TransactionEvent, 0, len(raws))
	for _, raw := range raws {
		if event, ok := raw.Normalize(); ok {
			events = append(events, event)
		}
	}
	return events
}

// ToRawEvent converts a typed event back to its raw form
func ToRawEvent(event TransactionEvent) RawEvent {
	base := event.Base()
	raw := RawEvent{
		ID:       base.ID,
		ClientID: base.ClientID,
		Tipo:     event.Kind(),
		Fecha:    base.Fecha,
		Notas:    base.Notas,
		Creado:   base.Creado,
		Borrado:  base.Borrado,
	}
	if base.Editado != nil {
		raw.Editado = *base.Editado
	}
	switch e := event.(type) {
	case *SaleEvent:
		raw.Producto = e.Producto
		raw.ProductoColor = e.ProductoColor
		raw.Cantidad = e.Cantidad
		raw.CostoUnitario = e.CostoUnitario
		raw.GananciaUnitaria = e.GananciaUnitaria
		raw.TotalVenta = e.TotalVenta
	case *PaymentEvent:
		raw.MontoPago = e.MontoPago
	}
	return raw
}

// eventsFromInput accepts every shape a caller may hand to the calculator.
// The boolean is false when the input is not a list at all.
func eventsFromInput(input any) ([]TransactionEvent, bool) {
	switch v := input.(type) {
	case nil:
		return nil, false
	case []TransactionEvent:
		return v, true
	case []RawEvent:
		return NormalizeEvents(v), true
	case []*RawEvent:
		events := make([]TransactionEvent, 0, len(v))
		for _, raw := range v {
			if raw == nil {
				continue
			}
			if event, ok := raw.Normalize(); ok {
				events = append(events, event)
			}
		}
		return events, true
	case []*SaleEvent:
		events := make([]TransactionEvent, 0, len(v))
		for _, sale := range v {
			events = append(events, sale)
		}
		return events, true
	case []*PaymentEvent:
		events := make([]TransactionEvent, 0, len(v))
		for _, payment := range v {
			events = append(events, payment)
		}
		return events, true
	case []map[string]any:
		events := make([]TransactionEvent, 0, len(v))
		for _, m := range v {
			if event, ok := eventFromElement(m); ok {
				events = append(events, event)
			}
		}
		return events, true
	case []any:
		events := make([]TransactionEvent, 0, len(v))
		for _, elem := range v {
			if event, ok := eventFromElement(elem); ok {
				events = append(events, event)
			}
		}
		return events, true
	case json.RawMessage:
		return eventsFromJSON(v)
	case []byte:
		return eventsFromJSON(v)
	}
	return nil, false
}

func eventsFromJSON(data []byte) ([]TransactionEvent, bool) {
	var elems []any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&elems); err != nil {
		return nil, false
	}
	if elems == nil {
		return nil, false
	}
	return eventsFromInput(elems)
}

func eventFromElement(elem any) (TransactionEvent, bool) {
	switch v := elem.(type) {
	case TransactionEvent:
		if v.Base() == nil {
			return nil, false
		}
		return v, true
	case RawEvent:
		return v.Normalize()
	case *RawEvent:
		if v == nil {
			return nil, false
		}
		return v.Normalize()
	case map[string]any:
		return rawEventFromMap(v).Normalize()
	}
	return nil, false
}

// rawEventFromMap reads a loosely typed record field by field so that
// store-native timestamp values survive untouched.
func rawEventFromMap(m map[string]any) RawEvent {
	raw := RawEvent{
		ID:               stringField(m, "id"),
		ClientID:         stringField(m, "clienteId"),
		Tipo:             EventKind(stringField(m, "tipo")),
		Fecha:            m["fecha"],
		Notas:            stringField(m, "notas"),
		Creado:           m["creado"],
		Editado:          m["editado"],
		Producto:         stringField(m, "producto"),
		ProductoColor:    stringField(m, "productoColor"),
		Cantidad:         decimalField(m, "cantidad"),
		CostoUnitario:    decimalField(m, "costoUnitario"),
		GananciaUnitaria: decimalField(m, "gananciaUnitaria"),
		TotalVenta:       decimalField(m, "totalVenta"),
		MontoPago:        decimalField(m, "montoPago"),
	}
	if b, ok := m["borrado"].(bool); ok {
		raw.Borrado = b
	}
	return raw
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func decimalField(m map[string]any, key string) decimal.Decimal {
	d, _ := toDecimal(m[key])
	return d
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	}
	if n, ok := toInt64(value); ok {
		return decimal.NewFromInt(n), true
	}
	return decimal.Zero, false
}
