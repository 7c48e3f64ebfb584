package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/woodcraft/backend/internal/domain/integration"
	"github.com/woodcraft/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupCommerceTestDB creates an in-memory SQLite database with the commerce tables
func setupCommerceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection would otherwise get its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, (&Database{DB: db}).AutoMigrate())
	return db
}

type catalogSeed struct {
	tenantID     uuid.UUID
	connectionID uuid.UUID
}

func newCatalogSeed() catalogSeed {
	return catalogSeed{tenantID: uuid.New(), connectionID: uuid.New()}
}

// product inserts a linked product with a Hungarian and an English description
func (s catalogSeed) product(t *testing.T, db *gorm.DB, remoteID string) *models.CatalogEntityModel {
	t.Helper()
	id := uuid.New()
	m := &models.CatalogEntityModel{
		ID:           id,
		TenantID:     s.tenantID,
		ConnectionID: s.connectionID,
		EntityType:   integration.EntityTypeProduct,
		RemoteID:     remoteID,
		SKU:          "OAK-01",
		Active:       true,
		VatID:        "27",
		Price:        decimal.NewFromInt(150),
		Cost:         decimal.NewFromInt(100),
		Multiplier:   decimal.NewFromFloat(1.5),
		URLSlug:      "Oak Panel",
		SyncStatus:   integration.SyncStatusPending,
		Descriptions: []models.EntityDescriptionModel{
			{ID: uuid.New(), EntityID: id, LanguageCode: "hu", Name: "Tölgy panel"},
			{ID: uuid.New(), EntityID: id, LanguageCode: "en", Name: "Oak panel", RemoteID: "d-en"},
		},
		Tags: []models.ProductTagModel{
			{ID: uuid.New(), EntityID: id, LanguageCode: "hu", Text: "fa, panel"},
		},
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// category inserts a category touched at the given time
func (s catalogSeed) category(t *testing.T, db *gorm.DB, status integration.SyncStatus, updatedAt time.Time) *models.CatalogEntityModel {
	t.Helper()
	m := &models.CatalogEntityModel{
		ID:           uuid.New(),
		TenantID:     s.tenantID,
		ConnectionID: s.connectionID,
		EntityType:   integration.EntityTypeCategory,
		RemoteID:     uuid.NewString()[:8],
		Active:       true,
		SyncStatus:   status,
		CreatedAt:    updatedAt,
		UpdatedAt:    updatedAt,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}
