package integration

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// DefaultPendingBatchSize is the page size used by BulkSyncPending
const DefaultPendingBatchSize = 100

// BulkSync synchronizes the given entities with bounded parallelism. Remote
// calls still go through each connection's limiter, so parallelism only
// overlaps local work and waiting. A failure of one entity never stops the
// others; failures are collected in the result.
func (s *SyncService) BulkSync(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, ids []uuid.UUID, parallelism int) (*integration.SyncResult, error) {
	if !entityType.IsValid() {
		return nil, integration.ErrInvalidEntityType
	}
	if parallelism <= 0 {
		parallelism = s.config.BulkParallelism
	}

	ids = dedupeIDs(ids)
	result := &integration.SyncResult{TotalCount: len(ids)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				mu.Lock()
				result.FailedItems = append(result.FailedItems, failureFor(id, err))
				mu.Unlock()
				return nil
			}
			if _, err := s.Sync(gctx, tenantID, entityType, id); err != nil {
				mu.Lock()
				result.FailedItems = append(result.FailedItems, failureFor(id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Finalize(s.now())
	s.logger.Info("Bulk sync finished",
		zap.String("entity_type", entityType.String()),
		zap.String("status", string(result.Status)),
		zap.Int("total", result.TotalCount),
		zap.Int("failed", result.FailedCount),
	)
	return result, ctx.Err()
}

// BulkSyncPending synchronizes up to limit entities whose ledger status is
// still pending.
func (s *SyncService) BulkSyncPending(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, limit int) (*integration.SyncResult, error) {
	if limit <= 0 {
		limit = DefaultPendingBatchSize
	}
	entries, err := s.deps.Ledger.List(ctx, tenantID, entityType, integration.SyncStatusPending, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.EntityID)
	}
	return s.BulkSync(ctx, tenantID, entityType, ids, 0)
}

// GetStatus returns the ledger entry of one entity
func (s *SyncService) GetStatus(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, id uuid.UUID) (*integration.LedgerEntry, error) {
	if !entityType.IsValid() {
		return nil, integration.ErrInvalidEntityType
	}
	return s.deps.Ledger.Get(ctx, tenantID, entityType, id)
}

// ListByStatus lists ledger entries in the given status
func (s *SyncService) ListByStatus(ctx context.Context, tenantID uuid.UUID, entityType integration.EntityType, status integration.SyncStatus, limit int) ([]integration.LedgerEntry, error) {
	if !entityType.IsValid() {
		return nil, integration.ErrInvalidEntityType
	}
	if !status.IsValid() {
		return nil, integration.ErrInvalidSyncStatus
	}
	if limit <= 0 || limit > 500 {
		limit = DefaultPendingBatchSize
	}
	return s.deps.Ledger.List(ctx, tenantID, entityType, status, limit)
}

func failureFor(id uuid.UUID, err error) integration.SyncFailure {
	return integration.SyncFailure{
		ItemID:       id.String(),
		ErrorCode:    integration.ErrorCode(err),
		ErrorMessage: err.Error(),
	}
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
