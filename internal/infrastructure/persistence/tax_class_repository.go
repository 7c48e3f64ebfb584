package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/woodcraft/backend/internal/domain/integration"
	"github.com/woodcraft/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaxClassMapper implements integration.TaxClassMapper on tax_class_mappings
type GormTaxClassMapper struct {
	db *gorm.DB
}

// NewGormTaxClassMapper creates a new GormTaxClassMapper
func NewGormTaxClassMapper(db *gorm.DB) *GormTaxClassMapper {
	return &GormTaxClassMapper{db: db}
}

// RemoteTaxClassID returns the remote tax class mapped to a local VAT class
func (m *GormTaxClassMapper) RemoteTaxClassID(ctx context.Context, connectionID uuid.UUID, vatID string) (string, error) {
	if vatID == "" {
		return "", integration.ErrTaxClassNotMapped
	}
	var model models.TaxClassMappingModel
	err := m.db.WithContext(ctx).
		Where("connection_id = ? AND vat_id = ?", connectionID, vatID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", integration.ErrTaxClassNotMapped
		}
		return "", err
	}
	return model.RemoteTaxClassID, nil
}

// Map stores or replaces the mapping of a VAT class
func (m *GormTaxClassMapper) Map(ctx context.Context, connectionID uuid.UUID, vatID, remoteTaxClassID string) error {
	model := &models.TaxClassMappingModel{
		ID:               uuid.New(),
		ConnectionID:     connectionID,
		VatID:            vatID,
		RemoteTaxClassID: remoteTaxClassID,
	}
	return m.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "connection_id"}, {Name: "vat_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"remote_tax_class_id", "updated_at"}),
		}).
		Create(model).Error
}

// Ensure GormTaxClassMapper implements the interface
var _ integration.TaxClassMapper = (*GormTaxClassMapper)(nil)
