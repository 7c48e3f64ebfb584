package ecommerce

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// ShoprenterConfig holds the platform-wide settings of the ShopRenter adapter.
// Per-shop credentials live on integration.Connection.
type ShoprenterConfig struct {
	// APIHostSuffix is the host suffix of basic-auth API URLs ({shop}.suffix)
	APIHostSuffix string
	// TokenAPIHostSuffix is the host suffix used with exchanged tokens
	TokenAPIHostSuffix string
	// TokenURLTemplate is the token endpoint, %s is replaced by the shop
	TokenURLTemplate string
	// LookupTimeout bounds reads and the auth probe
	LookupTimeout time.Duration
	// WriteTimeout bounds creates, updates and deletes
	WriteTimeout time.Duration
	// TokenTTL is used when the token endpoint omits expires_in
	TokenTTL time.Duration
	// UserAgent is sent with every request
	UserAgent string
}

const (
	// ShoprenterAPIHostSuffix is the production host suffix for basic auth
	ShoprenterAPIHostSuffix = "api.myshoprenter.hu"
	// ShoprenterTokenAPIHostSuffix is the production host suffix for token auth
	ShoprenterTokenAPIHostSuffix = "api2.myshoprenter.hu"
	// ShoprenterTokenURLTemplate is the production token endpoint
	ShoprenterTokenURLTemplate = "https://oauth.app.shoprenter.net/%s/app/token"
)

// Errors for ShopRenter configuration
var (
	ErrShoprenterConfigMissingHost     = errors.New("shoprenter: api host suffix is required")
	ErrShoprenterConfigMissingTokenURL = errors.New("shoprenter: token url template is required")
)

var shopNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// NewShoprenterConfig creates a configuration with production defaults
func NewShoprenterConfig() *ShoprenterConfig {
	return &ShoprenterConfig{
		APIHostSuffix:      ShoprenterAPIHostSuffix,
		TokenAPIHostSuffix: ShoprenterTokenAPIHostSuffix,
		TokenURLTemplate:   ShoprenterTokenURLTemplate,
		LookupTimeout:      10 * time.Second,
		WriteTimeout:       30 * time.Second,
		TokenTTL:           time.Hour,
		UserAgent:          "woodcraft-commerce-sync/1.0",
	}
}

// Validate validates the configuration and fills in defaults
func (c *ShoprenterConfig) Validate() error {
	if c.APIHostSuffix == "" {
		return ErrShoprenterConfigMissingHost
	}
	if c.TokenURLTemplate == "" || !strings.Contains(c.TokenURLTemplate, "%s") {
		return ErrShoprenterConfigMissingTokenURL
	}
	if c.TokenAPIHostSuffix == "" {
		c.TokenAPIHostSuffix = c.APIHostSuffix
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = time.Hour
	}
	return nil
}

// ShopFromAPIURL derives the shop identifier from a stored API URL such as
// https://woodshop.api.myshoprenter.hu. Anything else is a configuration error.
func (c *ShoprenterConfig) ShopFromAPIURL(apiURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(apiURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: api url %q is not a valid url", integration.ErrConfiguration, apiURL)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("%w: api url %q must use https", integration.ErrConfiguration, apiURL)
	}

	host := strings.ToLower(u.Hostname())
	for _, suffix := range []string{c.APIHostSuffix, c.TokenAPIHostSuffix} {
		if suffix == "" {
			continue
		}
		shop, ok := strings.CutSuffix(host, "."+strings.ToLower(suffix))
		if ok && shopNamePattern.MatchString(shop) {
			return shop, nil
		}
	}
	return "", fmt.Errorf("%w: api url %q does not match *.%s", integration.ErrConfiguration, apiURL, c.APIHostSuffix)
}

// TokenURL returns the token endpoint of a shop
func (c *ShoprenterConfig) TokenURL(shop string) string {
	return fmt.Sprintf(c.TokenURLTemplate, shop)
}

// TokenAPIBaseURL returns the API base URL used with exchanged tokens
func (c *ShoprenterConfig) TokenAPIBaseURL(shop string) string {
	return "https://" + shop + "." + c.TokenAPIHostSuffix + "/api"
}
