package persistence

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// tenantScope restricts a query to one tenant. The nil tenant matches
// nothing instead of everything.
func tenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}

// entityScope restricts a catalog query to one tenant and entity type
func entityScope(tenantID uuid.UUID, entityType integration.EntityType) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(tenantScope(tenantID)).Where("entity_type = ?", entityType)
	}
}
