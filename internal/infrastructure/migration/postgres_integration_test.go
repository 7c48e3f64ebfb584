//go:build integration

package migration_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/woodcraft/backend/internal/domain/integration"
	"github.com/woodcraft/backend/internal/infrastructure/migration"
	"github.com/woodcraft/backend/internal/infrastructure/persistence"
	"github.com/woodcraft/backend/internal/infrastructure/persistence/models"
)

// startPostgres runs a throwaway postgres container and returns its DSN
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("woodcraft_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func openMigrator(t *testing.T, dsn string) *migration.Migrator {
	t.Helper()
	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, zaptest.NewLogger(t))
	require.NoError(t, err)
	return m
}

func TestMigrator_PostgresUpDown(t *testing.T) {
	dsn := startPostgres(t)
	m := openMigrator(t, dsn)

	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// A second run is a no-op.
	require.NoError(t, m.Up())

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	require.NoError(t, m.Up())
}

func TestGormSyncLedger_OnMigratedPostgres(t *testing.T) {
	dsn := startPostgres(t)
	require.NoError(t, openMigrator(t, dsn).Up())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	ctx := context.Background()

	tenantID := uuid.New()
	conn := &models.CommerceConnectionModel{
		ID:       uuid.New(),
		TenantID: tenantID,
		ShopName: "woodshop",
		APIURL:   "https://woodshop.api.myshoprenter.hu",
		Username: "apiuser",
		Password: "s3cret",
		Active:   true,
	}
	require.NoError(t, db.Create(conn).Error)
	entity := &models.CatalogEntityModel{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ConnectionID: conn.ID,
		EntityType:   integration.EntityTypeProduct,
		RemoteID:     "1",
		URLSlug:      "oak-panel",
		SyncStatus:   integration.SyncStatusPending,
	}
	require.NoError(t, db.Create(entity).Error)

	ledger := persistence.NewGormSyncLedger(db)

	t.Run("success", func(t *testing.T) {
		at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		require.NoError(t, ledger.Record(ctx, integration.EntityTypeProduct, entity.ID, integration.SyncStatusSynced, "", &at))

		entry, err := ledger.Get(ctx, tenantID, integration.EntityTypeProduct, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, integration.SyncStatusSynced, entry.Status)
		require.NotNil(t, entry.LastSyncedAt)
		assert.True(t, at.Equal(*entry.LastSyncedAt))
	})

	t.Run("error with a truncated accented body", func(t *testing.T) {
		body := strings.Repeat("a", 511) + "á hibás kérés"
		remoteErr := &integration.RemoteError{
			Kind:       integration.ErrRemoteValidation,
			Method:     "PUT",
			Resource:   "productDescriptions/d-1",
			StatusCode: 400,
			Body:       integration.BodyExcerpt([]byte(body)),
		}
		message := integration.ErrorCode(remoteErr) + ": " + remoteErr.Error()
		at := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)

		require.NoError(t, ledger.Record(ctx, integration.EntityTypeProduct, entity.ID, integration.SyncStatusError, message, &at))

		entry, err := ledger.Get(ctx, tenantID, integration.EntityTypeProduct, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, integration.SyncStatusError, entry.Status)
		assert.Equal(t, message, entry.Error)
		require.NotNil(t, entry.LastSyncedAt)
		assert.True(t, at.Equal(*entry.LastSyncedAt))
	})

	t.Run("status check constraint", func(t *testing.T) {
		err := db.Exec("UPDATE catalog_entities SET sync_status = 'done' WHERE id = ?", entity.ID).Error
		assert.Error(t, err)
	})
}
