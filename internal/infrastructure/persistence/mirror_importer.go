package persistence

import (
	"context"
	"errors"

	"github.com/woodcraft/backend/internal/domain/integration"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MirrorImporter refreshes the local mirror of an entity from the remote
// snapshot read after a sync. Only descriptions already linked by remote id
// and the entity's own alias are touched.
type MirrorImporter struct {
	db         *gorm.DB
	shopDomain string
	logger     *zap.Logger
}

// NewMirrorImporter creates a new MirrorImporter
func NewMirrorImporter(db *gorm.DB, shopDomain string, logger *zap.Logger) *MirrorImporter {
	return &MirrorImporter{db: db, shopDomain: shopDomain, logger: logger}
}

// Refresh implements integration.InboundImporter
func (i *MirrorImporter) Refresh(ctx context.Context, conn *integration.Connection, shop string, snapshot *integration.RemoteEntity) error {
	if snapshot == nil || snapshot.ID == "" {
		return nil
	}

	return i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewGormCatalogRepository(tx)
		entity, err := repo.FindByRemoteID(ctx, conn.ID, snapshot.Type, snapshot.ID)
		if err != nil {
			if errors.Is(err, integration.ErrEntityNotFound) {
				i.logger.Debug("No local mirror for remote entity",
					zap.String("entity_type", snapshot.Type.String()),
					zap.String("remote_id", snapshot.ID))
				return nil
			}
			return err
		}

		remoteByID := make(map[string]integration.RemoteDescription, len(snapshot.Descriptions))
		for _, d := range snapshot.Descriptions {
			remoteByID[d.ID] = d
		}
		refreshed := 0
		for _, local := range entity.Descriptions {
			if local.RemoteID == "" {
				continue
			}
			remote, ok := remoteByID[local.RemoteID]
			if !ok {
				continue
			}
			local.Name = remote.Name
			local.MetaTitle = remote.MetaTitle
			local.MetaKeywords = remote.MetaKeywords
			local.MetaDescription = remote.MetaDescription
			local.ShortDescription = remote.ShortDescription
			local.Body = remote.Body
			if err := repo.UpdateDescriptionTexts(ctx, local); err != nil {
				return err
			}
			refreshed++
		}

		alias := snapshot.AliasFor()
		if alias != nil && alias.Slug != "" && (alias.ID != entity.URLAliasID || alias.Slug != entity.URLSlug) {
			if shop == "" {
				shop = conn.ShopName
			}
			entityURL := integration.BuildEntityURL(shop, i.shopDomain, alias.Slug)
			if err := repo.UpdateAlias(ctx, entity.Type, entity.ID, alias.Slug, alias.ID, entityURL); err != nil {
				return err
			}
		}

		i.logger.Debug("Local mirror refreshed",
			zap.String("entity_id", entity.ID.String()),
			zap.Int("descriptions", refreshed))
		return nil
	})
}

// Ensure MirrorImporter implements the interface
var _ integration.InboundImporter = (*MirrorImporter)(nil)
