package integration

import (
	"context"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Remote value objects
// ---------------------------------------------------------------------------

// RemoteLanguage is a language configured on the remote shop
type RemoteLanguage struct {
	ID   string
	Code string
	Name string
}

// RemoteDescription is a localized description on the remote shop
type RemoteDescription struct {
	ID               string
	LanguageID       string
	Name             string
	MetaTitle        string
	MetaKeywords     string
	MetaDescription  string
	ShortDescription string
	Body             string
}

// RemoteTag is a product tag row on the remote shop
type RemoteTag struct {
	ID         string
	LanguageID string
	Text       string
}

// RemoteEntity is the extended read of a product or category, including its
// nested descriptions, aliases and tags.
type RemoteEntity struct {
	ID           string
	Type         EntityType
	SKU          string
	Active       bool
	SortOrder    int
	Price        decimal.Decimal
	Descriptions []RemoteDescription
	Aliases      []URLAlias
	Tags         []RemoteTag
}

// AliasFor returns the first alias owned by the entity itself
func (e *RemoteEntity) AliasFor() *URLAlias {
	for i := range e.Aliases {
		if e.Aliases[i].OwnedBy(e.Type, e.ID) {
			return &e.Aliases[i]
		}
	}
	return nil
}

// EntityFields are the scalar fields pushed with an entity update
type EntityFields struct {
	// Active maps to the remote status flag
	Active bool
	// SortOrder is the remote display order
	SortOrder int
	// SKU is sent for products only
	SKU string
	// Price is sent for products only
	Price *PushPrice
	// TaxClassID is the mapped remote tax class, empty when unmapped
	TaxClassID string
}

// WriteResult is the outcome of a remote write
type WriteResult struct {
	// ID is the identifier of the created or updated resource, when returned
	ID string
	// EmptyBody is true when the platform answered 2xx without a body.
	// Some credential failures look like this, so callers surface it.
	EmptyBody bool
}

// ---------------------------------------------------------------------------
// RemoteCatalog Port Interface
// ---------------------------------------------------------------------------

// RemoteCatalog is the port for the remote platform's REST resources. Every
// call goes through the connection's rate limiter and carries its own timeout.
// Lookups return (nil, nil) when nothing matches.
type RemoteCatalog interface {
	// ShopName returns the shop identifier derived from the API URL
	ShopName() string
	// UsedTokenAuth reports whether the token exchange was used
	UsedTokenAuth() bool

	// Probe performs a cheap authenticated read. Rejected credentials,
	// including a silent empty body, fail with ErrAuth.
	Probe(ctx context.Context) error
	// FindLanguage returns the remote language with the given code
	FindLanguage(ctx context.Context, code string) (*RemoteLanguage, error)

	// GetEntity performs the extended read of an entity
	GetEntity(ctx context.Context, entityType EntityType, remoteID string) (*RemoteEntity, error)
	// UpdateEntity pushes scalar fields
	UpdateEntity(ctx context.Context, entityType EntityType, remoteID string, fields EntityFields) (WriteResult, error)

	// FindDescription returns the description of an entity in a language
	FindDescription(ctx context.Context, entityType EntityType, remoteID, languageID string) (*RemoteDescription, error)
	// CreateDescription creates a description, sending every text field
	CreateDescription(ctx context.Context, entityType EntityType, remoteID, languageID string, d Description) (WriteResult, error)
	// UpdateDescription replaces every text field of a description
	UpdateDescription(ctx context.Context, entityType EntityType, descriptionID string, d Description) (WriteResult, error)

	// FindTag returns the tag row of a product in a language
	FindTag(ctx context.Context, productID, languageID string) (*RemoteTag, error)
	// CreateTag creates a tag row
	CreateTag(ctx context.Context, productID, languageID, text string) (WriteResult, error)
	// UpdateTag replaces the tag text
	UpdateTag(ctx context.Context, tagID, text string) (WriteResult, error)
	// DeleteTag removes a tag row
	DeleteTag(ctx context.Context, tagID string) error

	// GetAlias reads an alias by id
	GetAlias(ctx context.Context, aliasID string) (*URLAlias, error)
	// FindAliasBySlug searches the alias namespace of an entity type
	FindAliasBySlug(ctx context.Context, entityType EntityType, slug string) (*URLAlias, error)
	// CreateAlias creates an alias. A taken slug fails with ErrRemoteConflict.
	CreateAlias(ctx context.Context, entityType EntityType, ownerID, slug string) (*URLAlias, error)
	// UpdateAliasSlug changes only the slug of an alias
	UpdateAliasSlug(ctx context.Context, aliasID, slug string) (WriteResult, error)
	// DeleteAlias removes an alias
	DeleteAlias(ctx context.Context, aliasID string) error
}

// RemoteCatalogProvider opens an authenticated catalog for a connection
type RemoteCatalogProvider interface {
	// Open resolves authentication and returns a catalog bound to the
	// connection's rate limiter. It fails with ErrConfiguration when the
	// connection cannot be used.
	Open(ctx context.Context, conn *Connection) (RemoteCatalog, error)
}
