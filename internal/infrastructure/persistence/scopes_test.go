package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodcraft/backend/internal/domain/integration"
	"github.com/woodcraft/backend/internal/infrastructure/persistence/models"
)

func TestTenantScope(t *testing.T) {
	db := setupCommerceTestDB(t)
	seed := newCatalogSeed()
	other := newCatalogSeed()
	seed.product(t, db, "cHJvZHVjdC0x")
	seed.category(t, db, integration.SyncStatusError, time.Now())
	other.product(t, db, "cHJvZHVjdC0y")

	t.Run("filters by tenant", func(t *testing.T) {
		var rows []models.CatalogEntityModel
		require.NoError(t, db.Scopes(tenantScope(seed.tenantID)).Find(&rows).Error)
		assert.Len(t, rows, 2)
	})

	t.Run("nil tenant matches nothing", func(t *testing.T) {
		var rows []models.CatalogEntityModel
		require.NoError(t, db.Scopes(tenantScope(uuid.Nil)).Find(&rows).Error)
		assert.Empty(t, rows)
	})

	t.Run("entity scope adds the type", func(t *testing.T) {
		var rows []models.CatalogEntityModel
		require.NoError(t, db.Scopes(entityScope(seed.tenantID, integration.EntityTypeCategory)).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, integration.EntityTypeCategory, rows[0].EntityType)
	})
}
