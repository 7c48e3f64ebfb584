package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woodcraft/backend/internal/domain/integration"
	"github.com/woodcraft/backend/internal/infrastructure/persistence/models"
)

func TestGormCatalogRepository_FindByID(t *testing.T) {
	db := setupCommerceTestDB(t)
	repo := NewGormCatalogRepository(db)
	seed := newCatalogSeed()
	ctx := context.Background()

	t.Run("loads entity with descriptions and tags", func(t *testing.T) {
		m := seed.product(t, db, "1")

		entity, err := repo.FindByID(ctx, seed.tenantID, integration.EntityTypeProduct, m.ID)
		require.NoError(t, err)

		assert.Equal(t, "1", entity.RemoteID)
		assert.Equal(t, integration.EntityTypeProduct, entity.Type)
		assert.True(t, decimal.NewFromInt(150).Equal(entity.Pricing.Price))
		assert.True(t, decimal.NewFromFloat(1.5).Equal(entity.Pricing.Multiplier))
		require.Len(t, entity.Descriptions, 2)
		// ordered by language code
		assert.Equal(t, "en", entity.Descriptions[0].LanguageCode)
		assert.Equal(t, "d-en", entity.Descriptions[0].RemoteID)
		assert.Equal(t, "hu", entity.Descriptions[1].LanguageCode)
		require.Len(t, entity.Tags, 1)
		assert.Equal(t, "fa, panel", entity.Tags[0].Text)
	})

	t.Run("other tenant cannot see the entity", func(t *testing.T) {
		m := seed.product(t, db, "2")

		_, err := repo.FindByID(ctx, uuid.New(), integration.EntityTypeProduct, m.ID)
		assert.ErrorIs(t, err, integration.ErrEntityNotFound)
	})

	t.Run("entity type must match", func(t *testing.T) {
		m := seed.product(t, db, "3")

		_, err := repo.FindByID(ctx, seed.tenantID, integration.EntityTypeCategory, m.ID)
		assert.ErrorIs(t, err, integration.ErrEntityNotFound)
	})
}

func TestGormCatalogRepository_UpdateAlias(t *testing.T) {
	db := setupCommerceTestDB(t)
	repo := NewGormCatalogRepository(db)
	seed := newCatalogSeed()
	ctx := context.Background()

	t.Run("stores slug alias id and url together", func(t *testing.T) {
		m := seed.product(t, db, "1")

		err := repo.UpdateAlias(ctx, integration.EntityTypeProduct, m.ID, "oak-panel", "77", "https://woodshop.example/oak-panel")
		require.NoError(t, err)

		var got models.CatalogEntityModel
		require.NoError(t, db.First(&got, "id = ?", m.ID).Error)
		assert.Equal(t, "oak-panel", got.URLSlug)
		assert.Equal(t, "77", got.URLAliasID)
		assert.Equal(t, "https://woodshop.example/oak-panel", got.EntityURL)
	})

	t.Run("unknown entity", func(t *testing.T) {
		err := repo.UpdateAlias(ctx, integration.EntityTypeProduct, uuid.New(), "x", "1", "u")
		assert.ErrorIs(t, err, integration.ErrEntityNotFound)
	})
}

func TestGormCatalogRepository_RemoteIDs(t *testing.T) {
	db := setupCommerceTestDB(t)
	repo := NewGormCatalogRepository(db)
	seed := newCatalogSeed()
	ctx := context.Background()
	m := seed.product(t, db, "1")

	t.Run("sets description remote id", func(t *testing.T) {
		descID := m.Descriptions[0].ID
		require.NoError(t, repo.SetDescriptionRemoteID(ctx, descID, "d-hu"))

		var got models.EntityDescriptionModel
		require.NoError(t, db.First(&got, "id = ?", descID).Error)
		assert.Equal(t, "d-hu", got.RemoteID)
	})

	t.Run("unknown description", func(t *testing.T) {
		err := repo.SetDescriptionRemoteID(ctx, uuid.New(), "d")
		assert.ErrorIs(t, err, integration.ErrEntityNotFound)
	})

	t.Run("sets and clears tag remote id", func(t *testing.T) {
		require.NoError(t, repo.SetTagRemoteID(ctx, m.ID, "hu", "t-9"))

		var got models.ProductTagModel
		require.NoError(t, db.First(&got, "entity_id = ? AND language_code = ?", m.ID, "hu").Error)
		assert.Equal(t, "t-9", got.RemoteID)

		require.NoError(t, repo.SetTagRemoteID(ctx, m.ID, "hu", ""))
		require.NoError(t, db.First(&got, "entity_id = ? AND language_code = ?", m.ID, "hu").Error)
		assert.Empty(t, got.RemoteID)
	})

	t.Run("missing tag row is not created", func(t *testing.T) {
		require.NoError(t, repo.SetTagRemoteID(ctx, m.ID, "en", "t-10"))

		var count int64
		require.NoError(t, db.Model(&models.ProductTagModel{}).Where("entity_id = ?", m.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestGormCatalogRepository_FindByRemoteID(t *testing.T) {
	db := setupCommerceTestDB(t)
	repo := NewGormCatalogRepository(db)
	seed := newCatalogSeed()
	ctx := context.Background()
	m := seed.product(t, db, "42")

	entity, err := repo.FindByRemoteID(ctx, seed.connectionID, integration.EntityTypeProduct, "42")
	require.NoError(t, err)
	assert.Equal(t, m.ID, entity.ID)

	_, err = repo.FindByRemoteID(ctx, uuid.New(), integration.EntityTypeProduct, "42")
	assert.ErrorIs(t, err, integration.ErrEntityNotFound)
}
