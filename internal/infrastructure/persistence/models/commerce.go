package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// CatalogEntityModel is the persistence model for products and categories.
// The entity_type column discriminates the two.
type CatalogEntityModel struct {
	ID           uuid.UUID              `gorm:"type:uuid;primary_key"`
	TenantID     uuid.UUID              `gorm:"type:uuid;not null;index:idx_catalog_entity_tenant_status,priority:1"`
	ConnectionID uuid.UUID              `gorm:"type:uuid;not null;index:idx_catalog_entity_remote,priority:1"`
	EntityType   integration.EntityType `gorm:"type:varchar(20);not null;index:idx_catalog_entity_tenant_status,priority:2;index:idx_catalog_entity_remote,priority:2"`
	RemoteID     string                 `gorm:"type:varchar(64);index:idx_catalog_entity_remote,priority:3"`
	SKU          string                 `gorm:"column:sku;type:varchar(100)"`
	Active       bool                   `gorm:"not null"`
	SortOrder    int                    `gorm:"not null;default:0"`
	VatID        string                 `gorm:"type:varchar(32)"`
	Price        decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Cost         decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Multiplier   decimal.Decimal        `gorm:"type:decimal(10,4);not null;default:0"`
	URLSlug      string                 `gorm:"column:url_slug;type:varchar(255)"`
	URLAliasID   string                 `gorm:"column:url_alias_id;type:varchar(64)"`
	EntityURL    string                 `gorm:"column:entity_url;type:varchar(512)"`
	SyncStatus   integration.SyncStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_catalog_entity_tenant_status,priority:3"`
	SyncError    string                 `gorm:"type:text"`
	LastSyncedAt *time.Time
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`

	Descriptions []EntityDescriptionModel `gorm:"foreignKey:EntityID"`
	Tags         []ProductTagModel        `gorm:"foreignKey:EntityID"`
}

// TableName returns the table name for GORM
func (CatalogEntityModel) TableName() string {
	return "catalog_entities"
}

// ToDomain converts the persistence model to a domain SyncableEntity
func (m *CatalogEntityModel) ToDomain() *integration.SyncableEntity {
	e := &integration.SyncableEntity{
		ID:           m.ID,
		TenantID:     m.TenantID,
		ConnectionID: m.ConnectionID,
		Type:         m.EntityType,
		RemoteID:     m.RemoteID,
		SKU:          m.SKU,
		Active:       m.Active,
		SortOrder:    m.SortOrder,
		VatID:        m.VatID,
		Pricing: integration.Pricing{
			Price:      m.Price,
			Cost:       m.Cost,
			Multiplier: m.Multiplier,
		},
		URLSlug:      m.URLSlug,
		URLAliasID:   m.URLAliasID,
		EntityURL:    m.EntityURL,
		SyncStatus:   m.SyncStatus,
		SyncError:    m.SyncError,
		LastSyncedAt: m.LastSyncedAt,
		UpdatedAt:    m.UpdatedAt,
		Descriptions: make([]integration.Description, 0, len(m.Descriptions)),
		Tags:         make([]integration.Tag, 0, len(m.Tags)),
	}
	for _, d := range m.Descriptions {
		e.Descriptions = append(e.Descriptions, d.ToDomain())
	}
	for _, t := range m.Tags {
		e.Tags = append(e.Tags, t.ToDomain())
	}
	return e
}

// FromDomain populates the persistence model from a domain SyncableEntity.
// Descriptions and tags are not copied.
func (m *CatalogEntityModel) FromDomain(e *integration.SyncableEntity) {
	m.ID = e.ID
	m.TenantID = e.TenantID
	m.ConnectionID = e.ConnectionID
	m.EntityType = e.Type
	m.RemoteID = e.RemoteID
	m.SKU = e.SKU
	m.Active = e.Active
	m.SortOrder = e.SortOrder
	m.VatID = e.VatID
	m.Price = e.Pricing.Price
	m.Cost = e.Pricing.Cost
	m.Multiplier = e.Pricing.Multiplier
	m.URLSlug = e.URLSlug
	m.URLAliasID = e.URLAliasID
	m.EntityURL = e.EntityURL
	m.SyncStatus = e.SyncStatus
	m.SyncError = e.SyncError
	m.LastSyncedAt = e.LastSyncedAt
	m.UpdatedAt = e.UpdatedAt
}

// ToLedgerEntry converts the status columns to a ledger entry
func (m *CatalogEntityModel) ToLedgerEntry() integration.LedgerEntry {
	return integration.LedgerEntry{
		EntityType:   m.EntityType,
		EntityID:     m.ID,
		RemoteID:     m.RemoteID,
		Status:       m.SyncStatus,
		Error:        m.SyncError,
		EntityURL:    m.EntityURL,
		LastSyncedAt: m.LastSyncedAt,
	}
}

// EntityDescriptionModel is one localized description of a catalog entity
type EntityDescriptionModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	EntityID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_entity_description_lang,priority:1"`
	LanguageCode     string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_entity_description_lang,priority:2"`
	RemoteID         string    `gorm:"type:varchar(64)"`
	Name             string    `gorm:"type:varchar(255);not null"`
	MetaTitle        string    `gorm:"type:varchar(255)"`
	MetaKeywords     string    `gorm:"type:text"`
	MetaDescription  string    `gorm:"type:text"`
	ShortDescription string    `gorm:"type:text"`
	Body             string    `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EntityDescriptionModel) TableName() string {
	return "entity_descriptions"
}

// ToDomain converts the persistence model to a domain Description
func (m *EntityDescriptionModel) ToDomain() integration.Description {
	return integration.Description{
		ID:               m.ID,
		LanguageCode:     m.LanguageCode,
		RemoteID:         m.RemoteID,
		Name:             m.Name,
		MetaTitle:        m.MetaTitle,
		MetaKeywords:     m.MetaKeywords,
		MetaDescription:  m.MetaDescription,
		ShortDescription: m.ShortDescription,
		Body:             m.Body,
	}
}

// FromDomain populates the persistence model from a domain Description
func (m *EntityDescriptionModel) FromDomain(entityID uuid.UUID, d integration.Description) {
	m.ID = d.ID
	m.EntityID = entityID
	m.LanguageCode = d.LanguageCode
	m.RemoteID = d.RemoteID
	m.Name = d.Name
	m.MetaTitle = d.MetaTitle
	m.MetaKeywords = d.MetaKeywords
	m.MetaDescription = d.MetaDescription
	m.ShortDescription = d.ShortDescription
	m.Body = d.Body
}

// ProductTagModel is the tag text of a product in one language
type ProductTagModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	EntityID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_tag_lang,priority:1"`
	LanguageCode string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_product_tag_lang,priority:2"`
	Text         string    `gorm:"type:text"`
	RemoteID     string    `gorm:"type:varchar(64)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductTagModel) TableName() string {
	return "product_tags"
}

// ToDomain converts the persistence model to a domain Tag
func (m *ProductTagModel) ToDomain() integration.Tag {
	return integration.Tag{
		LanguageCode: m.LanguageCode,
		Text:         m.Text,
		RemoteID:     m.RemoteID,
	}
}

// CommerceConnectionModel is the persistence model for a remote shop connection
type CommerceConnectionModel struct {
	ID        uuid.UUID            `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	ShopName  string               `gorm:"type:varchar(100);not null"`
	APIURL    string               `gorm:"column:api_url;type:varchar(255);not null"`
	Username  string               `gorm:"type:varchar(255);not null"`
	Password  string               `gorm:"type:varchar(255);not null"`
	AuthMode  integration.AuthMode `gorm:"type:varchar(10);not null;default:''"`
	Active    bool                 `gorm:"not null"`
	CreatedAt time.Time            `gorm:"not null"`
	UpdatedAt time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CommerceConnectionModel) TableName() string {
	return "commerce_connections"
}

// ToDomain converts the persistence model to a domain Connection
func (m *CommerceConnectionModel) ToDomain() *integration.Connection {
	return &integration.Connection{
		ID:        m.ID,
		TenantID:  m.TenantID,
		ShopName:  m.ShopName,
		APIURL:    m.APIURL,
		Username:  m.Username,
		Password:  m.Password,
		AuthMode:  m.AuthMode,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Connection
func (m *CommerceConnectionModel) FromDomain(c *integration.Connection) {
	m.ID = c.ID
	m.TenantID = c.TenantID
	m.ShopName = c.ShopName
	m.APIURL = c.APIURL
	m.Username = c.Username
	m.Password = c.Password
	m.AuthMode = c.AuthMode
	m.Active = c.Active
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// TaxClassMappingModel maps a local VAT class to a remote tax class
type TaxClassMappingModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	ConnectionID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tax_class_mapping,priority:1"`
	VatID            string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_tax_class_mapping,priority:2"`
	RemoteTaxClassID string    `gorm:"type:varchar(64);not null"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TaxClassMappingModel) TableName() string {
	return "tax_class_mappings"
}
