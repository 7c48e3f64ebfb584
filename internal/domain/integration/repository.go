package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntityRepository loads syncable entities and stores the remote identifiers
// the engine learns. It never creates or deletes entity rows.
type EntityRepository interface {
	// FindByID loads an entity with its descriptions and tags
	FindByID(ctx context.Context, tenantID uuid.UUID, entityType EntityType, id uuid.UUID) (*SyncableEntity, error)
	// UpdateAlias stores slug, alias id and URL together
	UpdateAlias(ctx context.Context, entityType EntityType, id uuid.UUID, slug, aliasID, entityURL string) error
	// SetDescriptionRemoteID stores the remote id of a description
	SetDescriptionRemoteID(ctx context.Context, descriptionID uuid.UUID, remoteID string) error
	// SetTagRemoteID stores (or clears, with "") the remote id of a tag row
	SetTagRemoteID(ctx context.Context, entityID uuid.UUID, languageCode, remoteID string) error
}

// LedgerEntry is the persisted sync state of one entity
type LedgerEntry struct {
	EntityType   EntityType
	EntityID     uuid.UUID
	RemoteID     string
	Status       SyncStatus
	Error        string
	EntityURL    string
	LastSyncedAt *time.Time
}

// SyncLedger persists the per-entity sync status
type SyncLedger interface {
	// Record writes a terminal or pending status. Terminal writes carry the
	// attempt time in syncedAt; nil leaves the stored time untouched.
	Record(ctx context.Context, entityType EntityType, id uuid.UUID, status SyncStatus, message string, syncedAt *time.Time) error
	// Get returns the ledger entry of an entity
	Get(ctx context.Context, tenantID uuid.UUID, entityType EntityType, id uuid.UUID) (*LedgerEntry, error)
	// List returns entries with the given status, newest first
	List(ctx context.Context, tenantID uuid.UUID, entityType EntityType, status SyncStatus, limit int) ([]LedgerEntry, error)
}

// ConnectionRepository loads remote shop connections
type ConnectionRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Connection, error)
	Save(ctx context.Context, conn *Connection) error
}

// InboundImporter refreshes the local mirror from a remote snapshot. shop is
// the shop identifier the remote client resolved for the run.
type InboundImporter interface {
	Refresh(ctx context.Context, conn *Connection, shop string, snapshot *RemoteEntity) error
}

// TaxClassMapper maps local VAT classes to remote tax classes
type TaxClassMapper interface {
	// RemoteTaxClassID fails with ErrTaxClassNotMapped when no mapping exists
	RemoteTaxClassID(ctx context.Context, connectionID uuid.UUID, vatID string) (string, error)
}
