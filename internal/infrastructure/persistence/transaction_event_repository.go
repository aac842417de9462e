package persistence

import (
	"context"
	"errors"

	"github.com/fiado/backend/internal/domain/ledger"
	"github.com/fiado/backend/internal/domain/shared"
	"github.com/fiado/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEventRepository implements ledger.EventRepository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// FindByClient returns all events of a client, soft-deleted ones included
func (r *GormEventRepository) FindByClient(ctx context.Context, clientID string) ([]ledger.TransactionEvent, error) {
	var rows []models.TransactionEventModel
	if err := r.db.WithContext(ctx).
		Where("cliente_id = ?", clientID).
		Order("fecha ASC, creado ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]ledger.TransactionEvent, 0, len(rows))
	for i := range rows {
		event, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// FindByID finds one event belonging to a client
func (r *GormEventRepository) FindByID(ctx context.Context, clientID, eventID string) (ledger.TransactionEvent, error) {
	var row models.TransactionEventModel
	if err := r.db.WithContext(ctx).
		Where("cliente_id = ? AND id = ?", clientID, eventID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain()
}

// Save inserts the event or replaces every column of an existing row
func (r *GormEventRepository) Save(ctx context.Context, event ledger.TransactionEvent) error {
	row := models.TransactionEventModelFromDomain(event)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(row).Error
}
