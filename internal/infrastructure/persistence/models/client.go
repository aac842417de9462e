package models

import (
	"time"

	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for the Client aggregate.
type ClientModel struct {
	AggregateModel
	Name              string          `gorm:"type:varchar(200);not null;index"`
	Phone             string          `gorm:"type:varchar(50)"`
	Notes             string          `gorm:"type:text"`
	DeudaActual       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UltimaTransaccion *time.Time
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the model to a domain Client
func (m *ClientModel) ToDomain() *ledger.Client {
	return &ledger.Client{
		BaseAggregateRoot: m.AggregateModel.ToDomainAggregateRoot(),
		Name:              m.Name,
		Phone:             m.Phone,
		Notes:             m.Notes,
		DeudaActual:       m.DeudaActual,
		UltimaTransaccion: m.UltimaTransaccion,
	}
}

// ClientModelFromDomain builds a model from a domain Client
func ClientModelFromDomain(c *ledger.Client) *ClientModel {
	m := &ClientModel{
		Name:              c.Name,
		Phone:             c.Phone,
		Notes:             c.Notes,
		DeudaActual:       c.DeudaActual,
		UltimaTransaccion: c.UltimaTransaccion,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
