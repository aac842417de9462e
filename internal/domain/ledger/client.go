package ledger

import (
	"strings"
	"time"

	"github.com/fiado/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Client is the aggregate root for a customer buying on credit. DeudaActual
// and UltimaTransaccion are derived: they only change through ApplyLedger.
type Client struct {
	shared.BaseAggregateRoot
	Name              string
	Phone             string
	Notes             string
	DeudaActual       decimal.Decimal
	UltimaTransaccion *time.Time
}

// NewClient creates a client with no history
func NewClient(name, phone, notes string) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	client := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Phone:             strings.TrimSpace(phone),
		Notes:             notes,
		DeudaActual:       decimal.Zero,
	}
	client.AddDomainEvent(NewClientCreatedEvent(client))
	return client, nil
}

// Update changes the contact fields
func (c *Client) Update(name, phone, notes string) error {
	if err := validateClientName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Phone = strings.TrimSpace(phone)
	c.Notes = notes
	c.Touch()
	c.IncrementVersion()
	return nil
}

func validateClientName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

// ApplyLedger stores the outcome of a recalculation. It records a
// ClientDebtRecalculatedEvent whenever the stored values change.
func (c *Client) ApplyLedger(result DebtCalculationResult) bool {
	net := result.TotalDebt.Sub(result.FavorBalance)
	last := result.LastEventAt()

	if net.Equal(c.DeudaActual) && sameInstant(last, c.UltimaTransaccion) {
		return false
	}

	previous := c.DeudaActual
	c.DeudaActual = net
	c.UltimaTransaccion = last
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewClientDebtRecalculatedEvent(c, previous, result))
	return true
}

// TotalDebt returns the positive part of DeudaActual
func (c *Client) TotalDebt() decimal.Decimal {
	return decimal.Max(decimal.Zero, c.DeudaActual)
}

// FavorBalance returns the credit held by the client
func (c *Client) FavorBalance() decimal.Decimal {
	if c.DeudaActual.IsNegative() {
		return c.DeudaActual.Neg()
	}
	return decimal.Zero
}

// IsSettled reports whether the account is within tolerance of zero
func (c *Client) IsSettled() bool {
	return IsZeroAmount(c.DeudaActual)
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
