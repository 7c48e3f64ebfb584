package integration

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// EntityType
// ---------------------------------------------------------------------------

// EntityType identifies which kind of catalog entity is synchronized
type EntityType string

const (
	// EntityTypeProduct is a sellable product
	EntityTypeProduct EntityType = "product"
	// EntityTypeCategory is a catalog category
	EntityTypeCategory EntityType = "category"
)

// IsValid returns true if the entity type is known
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeProduct, EntityTypeCategory:
		return true
	default:
		return false
	}
}

// String returns the string representation of EntityType
func (t EntityType) String() string {
	return string(t)
}

// ParseEntityType accepts singular or plural forms ("products", "category")
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	if t == "categorie" {
		t = EntityTypeCategory
	}
	if !t.IsValid() {
		return "", ErrInvalidEntityType
	}
	return t, nil
}

// SupportsTags returns true if the remote platform keeps tags for this type
func (t EntityType) SupportsTags() bool {
	return t == EntityTypeProduct
}

// SupportsPricing returns true if the entity type carries prices
func (t EntityType) SupportsPricing() bool {
	return t == EntityTypeProduct
}

// ---------------------------------------------------------------------------
// SyncStatus
// ---------------------------------------------------------------------------

// SyncStatus is the ledger state of an entity
type SyncStatus string

const (
	// SyncStatusPending means local edits have not been pushed yet
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusSynced means the last run completed
	SyncStatusSynced SyncStatus = "synced"
	// SyncStatusError means the last run failed
	SyncStatusError SyncStatus = "error"
)

// IsValid returns true if the status is valid
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusPending, SyncStatusSynced, SyncStatusError:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states a finished run leaves behind
func (s SyncStatus) IsTerminal() bool {
	return s == SyncStatusSynced || s == SyncStatusError
}

// ---------------------------------------------------------------------------
// Description and Tag
// ---------------------------------------------------------------------------

// Description is the localized text of an entity. At most one exists per
// entity and language.
type Description struct {
	// ID is the local identifier
	ID uuid.UUID
	// LanguageCode is the ISO language code, e.g. "hu"
	LanguageCode string
	// RemoteID is the remote description identifier, empty until pushed
	RemoteID string
	// Name is the display name
	Name string
	// MetaTitle is the SEO title
	MetaTitle string
	// MetaKeywords is the SEO keyword list
	MetaKeywords string
	// MetaDescription is the SEO description
	MetaDescription string
	// ShortDescription is the teaser text
	ShortDescription string
	// Body is the long description (HTML allowed)
	Body string
}

// Tag is the comma separated tag text of a product in one language.
// An empty Text means the remote tag must be removed.
type Tag struct {
	// LanguageCode is the ISO language code
	LanguageCode string
	// Text is the tag list as entered by the user
	Text string
	// RemoteID is the remote tag identifier, empty when none exists
	RemoteID string
}

// IsEmpty returns true if the tag carries no text
func (t Tag) IsEmpty() bool {
	return strings.TrimSpace(t.Text) == ""
}

// ---------------------------------------------------------------------------
// SyncableEntity
// ---------------------------------------------------------------------------

// SyncableEntity is a product or category mirrored on the remote shop.
// The engine never creates or deletes these rows; it only updates the remote
// identifiers, alias fields and the sync status.
type SyncableEntity struct {
	// ID is the local identifier
	ID uuid.UUID
	// TenantID is the owning tenant
	TenantID uuid.UUID
	// ConnectionID is the remote shop the entity is linked to
	ConnectionID uuid.UUID
	// Type is product or category
	Type EntityType
	// RemoteID is the remote entity identifier, immutable once set
	RemoteID string
	// SKU is the product code (products only)
	SKU string
	// Active maps to the remote status flag
	Active bool
	// SortOrder is the remote display order
	SortOrder int
	// VatID is the local VAT class, mapped to a remote tax class (products only)
	VatID string
	// Pricing holds price inputs (products only)
	Pricing Pricing
	// URLSlug is the desired human readable slug
	URLSlug string
	// URLAliasID is the remote alias identifier last reconciled
	URLAliasID string
	// EntityURL is the public URL derived from the slug
	EntityURL string
	// SyncStatus is the ledger state
	SyncStatus SyncStatus
	// SyncError is the message of the last failed run
	SyncError string
	// LastSyncedAt is when the last run finished, successful or not
	LastSyncedAt *time.Time
	// Descriptions holds one row per language
	Descriptions []Description
	// Tags holds one row per language (products only)
	Tags []Tag
	// UpdatedAt is when the row was last modified
	UpdatedAt time.Time
}

// IsLinked returns true if the entity has a remote counterpart
func (e *SyncableEntity) IsLinked() bool {
	return e.RemoteID != ""
}

// SetRemoteID links the entity to its remote counterpart. Once set the
// identifier cannot change.
func (e *SyncableEntity) SetRemoteID(remoteID string) error {
	if e.RemoteID != "" && e.RemoteID != remoteID {
		return ErrRemoteIDImmutable
	}
	e.RemoteID = remoteID
	return nil
}

// ChooseDescription returns the description in the default language, else the
// first available one.
func (e *SyncableEntity) ChooseDescription(defaultLanguage string) (*Description, error) {
	if len(e.Descriptions) == 0 {
		return nil, ErrMissingDescription
	}
	for i := range e.Descriptions {
		if strings.EqualFold(e.Descriptions[i].LanguageCode, defaultLanguage) {
			return &e.Descriptions[i], nil
		}
	}
	return &e.Descriptions[0], nil
}

// TagFor returns the tag row for a language. A missing row is reported as an
// empty tag so that callers treat it as "no tag wanted".
func (e *SyncableEntity) TagFor(languageCode string) Tag {
	for _, t := range e.Tags {
		if strings.EqualFold(t.LanguageCode, languageCode) {
			return t
		}
	}
	return Tag{LanguageCode: languageCode}
}

// SlugChanged reports whether the alias must be reconciled for the given URL.
func (e *SyncableEntity) SlugChanged(entityURL string) bool {
	if e.URLSlug == "" {
		return false
	}
	return e.URLAliasID == "" || e.EntityURL != entityURL
}

// RecordAlias stores the outcome of a successful alias reconciliation
func (e *SyncableEntity) RecordAlias(slug, aliasID, entityURL string) {
	e.URLSlug = slug
	e.URLAliasID = aliasID
	e.EntityURL = entityURL
}

// MarkSynced records a successful run
func (e *SyncableEntity) MarkSynced(at time.Time) {
	e.SyncStatus = SyncStatusSynced
	e.SyncError = ""
	e.LastSyncedAt = &at
}

// MarkError records a failed run. LastSyncedAt is stamped with the attempt
// time whichever step failed.
func (e *SyncableEntity) MarkError(message string, at time.Time) {
	e.SyncStatus = SyncStatusError
	e.SyncError = message
	e.LastSyncedAt = &at
}
