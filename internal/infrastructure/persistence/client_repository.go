package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/fiado/backend/internal/domain/shared"
	"github.com/fiado/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClientRepository implements ledger.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(ctx context.Context, id string) (*ledger.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns a page of clients matching the filter
func (r *GormClientRepository) List(ctx context.Context, filter ledger.ClientFilter) ([]ledger.Client, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Scopes(clientSearch(filter.Search)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Bounds()

	orderBy := ValidateSortField(filter.OrderBy, ClientSortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if filter.OrderDir == "" {
		orderDir = "ASC"
	}

	var rows []models.ClientModel
	if err := r.db.WithContext(ctx).
		Scopes(clientSearch(filter.Search)).
		Order(orderBy + " " + orderDir).
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	clients := make([]ledger.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, total, nil
}

func clientSearch(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		search = strings.TrimSpace(search)
		if search == "" {
			return db
		}
		like := "%" + strings.ToLower(search) + "%"
		return db.Where("LOWER(name) LIKE ? OR phone LIKE ?", like, like)
	}
}

// Create inserts a new client
func (r *GormClientRepository) Create(ctx context.Context, client *ledger.Client) error {
	model := models.ClientModelFromDomain(client)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates a client with optimistic locking. The aggregate has already
// incremented its version, so the stored row must still hold Version-1.
func (r *GormClientRepository) Save(ctx context.Context, client *ledger.Client) error {
	model := models.ClientModelFromDomain(client)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", client.ID, client.Version-1).
		Select("name", "phone", "notes", "deuda_actual", "ultima_transaccion", "version", "updated_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "The client record has been modified by another transaction")
	}
	return nil
}
