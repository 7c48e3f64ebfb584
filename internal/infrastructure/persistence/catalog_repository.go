package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/woodcraft/backend/internal/domain/integration"
	"github.com/woodcraft/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCatalogRepository implements integration.EntityRepository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindByID loads a product or category with its descriptions and tags
func (r *GormCatalogRepository) FindByID(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, id uuid.UUID) (*integration.SyncableEntity, error) {
	var model models.CatalogEntityModel
	err := r.db.WithContext(ctx).
		Preload("Descriptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("language_code ASC")
		}).
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("language_code ASC")
		}).
		Scopes(entityScope(tenantID, entityType)).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrEntityNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRemoteID finds the local entity mirrored by a remote id
func (r *GormCatalogRepository) FindByRemoteID(ctx context.Context, connectionID uuid.UUID, entityType integration.EntityType, remoteID string) (*integration.SyncableEntity, error) {
	var model models.CatalogEntityModel
	err := r.db.WithContext(ctx).
		Preload("Descriptions").
		Where("connection_id = ? AND entity_type = ? AND remote_id = ?", connectionID, entityType, remoteID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrEntityNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateAlias stores slug, alias id and URL in one statement
func (r *GormCatalogRepository) UpdateAlias(ctx context.Context, entityType integration.EntityType, id uuid.UUID, slug, aliasID, entityURL string) error {
	result := r.db.WithContext(ctx).
		Model(&models.CatalogEntityModel{}).
		Where("id = ? AND entity_type = ?", id, entityType).
		Updates(map[string]any{
			"url_slug":     slug,
			"url_alias_id": aliasID,
			"entity_url":   entityURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrEntityNotFound
	}
	return nil
}

// SetDescriptionRemoteID stores the remote id of a description
func (r *GormCatalogRepository) SetDescriptionRemoteID(ctx context.Context, descriptionID uuid.UUID, remoteID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.EntityDescriptionModel{}).
		Where("id = ?", descriptionID).
		Update("remote_id", remoteID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrEntityNotFound
	}
	return nil
}

// SetTagRemoteID stores or clears the remote id of a tag row. A missing row
// is left missing; tag rows are owned by the catalog editor.
func (r *GormCatalogRepository) SetTagRemoteID(ctx context.Context, entityID uuid.UUID, languageCode, remoteID string) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductTagModel{}).
		Where("entity_id = ? AND language_code = ?", entityID, languageCode).
		Update("remote_id", remoteID).Error
}

// UpdateDescriptionTexts overwrites the text fields of a description with
// what the remote shop holds
func (r *GormCatalogRepository) UpdateDescriptionTexts(ctx context.Context, d integration.Description) error {
	return r.db.WithContext(ctx).
		Model(&models.EntityDescriptionModel{}).
		Where("id = ?", d.ID).
		Updates(map[string]any{
			"remote_id":         d.RemoteID,
			"name":              d.Name,
			"meta_title":        d.MetaTitle,
			"meta_keywords":     d.MetaKeywords,
			"meta_description":  d.MetaDescription,
			"short_description": d.ShortDescription,
			"body":              d.Body,
		}).Error
}

// Ensure GormCatalogRepository implements the interface
var _ integration.EntityRepository = (*GormCatalogRepository)(nil)
