package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woodcraft/backend/internal/domain/integration"
	"github.com/woodcraft/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func TestMirrorImporter_Refresh(t *testing.T) {
	db := setupCommerceTestDB(t)
	importer := NewMirrorImporter(db, "example", zap.NewNop())
	seed := newCatalogSeed()
	ctx := context.Background()
	conn := &integration.Connection{ID: seed.connectionID, TenantID: seed.tenantID, ShopName: "woodshop"}

	t.Run("refreshes linked descriptions and alias", func(t *testing.T) {
		m := seed.product(t, db, "1")

		snapshot := &integration.RemoteEntity{
			ID:   "1",
			Type: integration.EntityTypeProduct,
			Descriptions: []integration.RemoteDescription{
				{ID: "d-en", Name: "Oak panel, oiled", Body: "<p>Oiled</p>"},
				{ID: "d-other", Name: "Unlinked"},
			},
			Aliases: []integration.URLAlias{
				{ID: "9", Slug: "someone-else", EntityType: integration.EntityTypeProduct, OwnerID: "2"},
				{ID: "77", Slug: "oak-panel", EntityType: integration.EntityTypeProduct, OwnerID: "1"},
			},
		}
		require.NoError(t, importer.Refresh(ctx, conn, "woodshop", snapshot))

		var descs []models.EntityDescriptionModel
		require.NoError(t, db.Where("entity_id = ?", m.ID).Order("language_code").Find(&descs).Error)
		require.Len(t, descs, 2)
		assert.Equal(t, "Oak panel, oiled", descs[0].Name)
		assert.Equal(t, "<p>Oiled</p>", descs[0].Body)
		// unlinked local description untouched
		assert.Equal(t, "Tölgy panel", descs[1].Name)

		var got models.CatalogEntityModel
		require.NoError(t, db.First(&got, "id = ?", m.ID).Error)
		assert.Equal(t, "oak-panel", got.URLSlug)
		assert.Equal(t, "77", got.URLAliasID)
		assert.Equal(t, "https://woodshop.example/oak-panel", got.EntityURL)
	})

	t.Run("entity url uses the resolved shop", func(t *testing.T) {
		stale := &integration.Connection{ID: seed.connectionID, TenantID: seed.tenantID, ShopName: "old-shop"}
		m := seed.product(t, db, "3")
		snapshot := &integration.RemoteEntity{
			ID:      "3",
			Type:    integration.EntityTypeProduct,
			Aliases: []integration.URLAlias{{ID: "78", Slug: "walnut-board", EntityType: integration.EntityTypeProduct, OwnerID: "3"}},
		}
		require.NoError(t, importer.Refresh(ctx, stale, "woodshop", snapshot))

		var got models.CatalogEntityModel
		require.NoError(t, db.First(&got, "id = ?", m.ID).Error)
		assert.Equal(t, "https://woodshop.example/walnut-board", got.EntityURL)
	})

	t.Run("unknown remote entity is ignored", func(t *testing.T) {
		snapshot := &integration.RemoteEntity{ID: "999", Type: integration.EntityTypeProduct}
		assert.NoError(t, importer.Refresh(ctx, conn, "woodshop", snapshot))
	})

	t.Run("nil snapshot", func(t *testing.T) {
		assert.NoError(t, importer.Refresh(ctx, conn, "woodshop", nil))
	})
}
