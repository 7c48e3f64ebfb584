package integration

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthMode selects how requests against the remote platform are authenticated
type AuthMode string

const (
	// AuthModeAuto exchanges client credentials when they look like an API
	// client, and falls back to basic credentials otherwise
	AuthModeAuto AuthMode = ""
	// AuthModeToken always uses the client credentials token exchange
	AuthModeToken AuthMode = "token"
	// AuthModeBasic always sends static basic credentials
	AuthModeBasic AuthMode = "basic"
)

// IsValid returns true if the mode is known
func (m AuthMode) IsValid() bool {
	switch m {
	case AuthModeAuto, AuthModeToken, AuthModeBasic:
		return true
	default:
		return false
	}
}

// Connection is a tenant's link to a remote shop
type Connection struct {
	// ID is the connection identifier
	ID uuid.UUID
	// TenantID is the owning tenant
	TenantID uuid.UUID
	// ShopName is the shop identifier as entered by the user
	ShopName string
	// APIURL is the stored remote API endpoint
	APIURL string
	// Username is the API user or OAuth client id
	Username string
	// Password is the API password or OAuth client secret
	Password string
	// AuthMode forces an authentication mode
	AuthMode AuthMode
	// Active indicates the connection may be used
	Active bool
	// CreatedAt is when the connection was created
	CreatedAt time.Time
	// UpdatedAt is when the connection was last updated
	UpdatedAt time.Time
}

// Validate checks the fields required before any remote call
func (c *Connection) Validate() error {
	if c.ID == uuid.Nil {
		return ErrConnectionNotFound
	}
	if !c.Active {
		return ErrConnectionInactive
	}
	if strings.TrimSpace(c.APIURL) == "" || c.Username == "" || c.Password == "" {
		return ErrConfiguration
	}
	if !c.AuthMode.IsValid() {
		return ErrConfiguration
	}
	return nil
}
