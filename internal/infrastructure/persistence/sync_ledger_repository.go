package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/woodcraft/backend/internal/domain/integration"
	"github.com/woodcraft/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSyncLedger implements integration.SyncLedger on the status columns of
// catalog_entities
type GormSyncLedger struct {
	db *gorm.DB
}

// NewGormSyncLedger creates a new GormSyncLedger
func NewGormSyncLedger(db *gorm.DB) *GormSyncLedger {
	return &GormSyncLedger{db: db}
}

// Record writes the status of an entity. last_synced_at is only touched when
// syncedAt is set.
func (l *GormSyncLedger) Record(ctx context.Context, entityType integration.EntityType, id uuid.UUID, status integration.SyncStatus, message string, syncedAt *time.Time) error {
	if !status.IsValid() {
		return integration.ErrInvalidSyncStatus
	}
	updates := map[string]any{
		"sync_status": status,
		"sync_error":  message,
	}
	if syncedAt != nil {
		updates["last_synced_at"] = *syncedAt
	}
	result := l.db.WithContext(ctx).
		Model(&models.CatalogEntityModel{}).
		Where("id = ? AND entity_type = ?", id, entityType).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrEntityNotFound
	}
	return nil
}

// Get returns the ledger entry of an entity
func (l *GormSyncLedger) Get(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, id uuid.UUID) (*integration.LedgerEntry, error) {
	var model models.CatalogEntityModel
	err := l.db.WithContext(ctx).
		Scopes(entityScope(tenantID, entityType)).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrEntityNotFound
		}
		return nil, err
	}
	entry := model.ToLedgerEntry()
	return &entry, nil
}

// List returns entries with the given status, most recently touched first
func (l *GormSyncLedger) List(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, status integration.SyncStatus, limit int) ([]integration.LedgerEntry, error) {
	var rows []models.CatalogEntityModel
	query := l.db.WithContext(ctx).
		Scopes(entityScope(tenantID, entityType)).
		Where("sync_status = ?", status).
		Order("updated_at DESC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]integration.LedgerEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].ToLedgerEntry())
	}
	return entries, nil
}

// Ensure GormSyncLedger implements the interface
var _ integration.SyncLedger = (*GormSyncLedger)(nil)
