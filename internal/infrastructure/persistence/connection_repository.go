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

// GormConnectionRepository implements integration.ConnectionRepository using GORM
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository
func NewGormConnectionRepository(db *gorm.DB) *GormConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// FindByID finds a connection within a tenant
func (r *GormConnectionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*integration.Connection, error) {
	var model models.CommerceConnectionModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrConnectionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a connection
func (r *GormConnectionRepository) Save(ctx context.Context, conn *integration.Connection) error {
	model := &models.CommerceConnectionModel{}
	model.FromDomain(conn)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"shop_name", "api_url", "username", "password", "auth_mode", "active", "updated_at",
			}),
		}).
		Create(model).Error
}

// Ensure GormConnectionRepository implements the interface
var _ integration.ConnectionRepository = (*GormConnectionRepository)(nil)
