package ledger

import "context"

// EventRepository stores sales and payments. Soft-deleted events are kept
// and returned; the calculator skips them.
type EventRepository interface {
	// FindByClient returns every event of a client ordered by fecha, then creado
	FindByClient(ctx context.Context, clientID string) ([]TransactionEvent, error)

	// FindByID finds one event of a client
	FindByID(ctx context.Context, clientID, eventID string) (TransactionEvent, error)

	// Save inserts or replaces an event
	Save(ctx context.Context, event TransactionEvent) error
}

// ClientFilter narrows and orders a client listing
type ClientFilter struct {
	Search   string // matched against name and phone
	OrderBy  string
	OrderDir string
	Page     int // 1-based
	PageSize int
}

// Client listing page sizes
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Bounds returns the page and page size with defaults and the cap applied
func (f ClientFilter) Bounds() (page, pageSize int) {
	page, pageSize = f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, min(pageSize, MaxPageSize)
}

// ClientRepository stores client aggregates
type ClientRepository interface {
	FindByID(ctx context.Context, id string) (*Client, error)

	// List returns one page of clients and the total number of matches
	List(ctx context.Context, filter ClientFilter) ([]Client, int64, error)

	// Create inserts a new client
	Create(ctx context.Context, client *Client) error

	// Save updates an existing client, failing on a stale version
	Save(ctx context.Context, client *Client) error
}
