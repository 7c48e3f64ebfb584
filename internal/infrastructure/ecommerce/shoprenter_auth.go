package ecommerce

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// tokenExpiryLeeway is subtracted from token lifetimes before caching
const tokenExpiryLeeway = time.Minute

// TokenStore caches exchanged access tokens between runs
type TokenStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Credentials is the input of the auth resolver
type Credentials struct {
	// ShopName is the shop identifier as stored; the API URL is authoritative
	ShopName string
	// Username is the API user or OAuth client id
	Username string
	// Password is the API password or OAuth client secret
	Password string
	// APIURL is the stored API endpoint
	APIURL string
	// Mode forces an authentication mode, empty means auto
	Mode integration.AuthMode
	// CacheKey scopes the token cache, usually the connection id
	CacheKey string
	// Limiter is the connection's call budget; the token exchange counts
	// against it. Nil leaves the exchange unthrottled.
	Limiter *RateLimiter
}

// CredentialsFromConnection builds resolver input from a connection
func CredentialsFromConnection(conn *integration.Connection) Credentials {
	return Credentials{
		ShopName: conn.ShopName,
		Username: conn.Username,
		Password: conn.Password,
		APIURL:   conn.APIURL,
		Mode:     conn.AuthMode,
		CacheKey: conn.ID.String(),
	}
}

// ResolvedAuth is the outcome of authentication resolution
type ResolvedAuth struct {
	// ShopName is the shop identifier derived from the API URL
	ShopName string
	// AuthHeader is the value of the Authorization header
	AuthHeader string
	// APIBaseURL is the effective API base URL for the chosen mode
	APIBaseURL string
	// UsedTokenAuth reports whether the token exchange was used
	UsedTokenAuth bool
}

var clientCredentialPattern = regexp.MustCompile(`^[A-Za-z0-9]{32,}$`)

// LooksLikeClientCredentials reports whether username/password have the shape
// of an OAuth API client rather than a human API user
func LooksLikeClientCredentials(username, password string) bool {
	return clientCredentialPattern.MatchString(username) && clientCredentialPattern.MatchString(password)
}

// AuthResolver turns stored credentials into an Authorization header
type AuthResolver struct {
	config     *ShoprenterConfig
	tokens     TokenStore
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAuthResolver creates a resolver. tokens may be nil to disable caching.
func NewAuthResolver(config *ShoprenterConfig, tokens TokenStore, httpClient *http.Client, logger *zap.Logger) *AuthResolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.LookupTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthResolver{
		config:     config,
		tokens:     tokens,
		httpClient: httpClient,
		logger:     logger.Named("shoprenter.auth"),
	}
}

// Resolve derives the shop from the API URL and builds the auth header.
// Client credentials are exchanged for a bearer token first; basic
// credentials are used otherwise, or when the exchange fails in auto mode.
func (r *AuthResolver) Resolve(ctx context.Context, creds Credentials) (*ResolvedAuth, error) {
	shop, err := r.config.ShopFromAPIURL(creds.APIURL)
	if err != nil {
		return nil, err
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", integration.ErrConfiguration)
	}
	if creds.ShopName != "" && !strings.EqualFold(creds.ShopName, shop) {
		r.logger.Warn("Stored shop name differs from API URL, using API URL",
			zap.String("shop_name", creds.ShopName),
			zap.String("derived_shop", shop),
		)
	}

	tryToken := creds.Mode == integration.AuthModeToken ||
		(creds.Mode == integration.AuthModeAuto && LooksLikeClientCredentials(creds.Username, creds.Password))

	if tryToken {
		token, err := r.accessToken(ctx, shop, creds)
		if err == nil {
			return &ResolvedAuth{
				ShopName:      shop,
				AuthHeader:    "Bearer " + token,
				APIBaseURL:    r.config.TokenAPIBaseURL(shop),
				UsedTokenAuth: true,
			}, nil
		}
		if creds.Mode == integration.AuthModeToken {
			return nil, err
		}
		r.logger.Warn("Token exchange failed, falling back to basic credentials",
			zap.String("shop", shop),
			zap.Error(err),
		)
	}

	return &ResolvedAuth{
		ShopName:      shop,
		AuthHeader:    basicAuthHeader(creds.Username, creds.Password),
		APIBaseURL:    strings.TrimRight(strings.TrimSpace(creds.APIURL), "/"),
		UsedTokenAuth: false,
	}, nil
}

// Invalidate drops a cached token, e.g. after the platform rejected it
func (r *AuthResolver) Invalidate(ctx context.Context, creds Credentials) {
	if r.tokens == nil {
		return
	}
	if err := r.tokens.Delete(ctx, tokenCacheKey(creds)); err != nil {
		r.logger.Warn("Failed to drop cached token", zap.Error(err))
	}
}

func (r *AuthResolver) accessToken(ctx context.Context, shop string, creds Credentials) (string, error) {
	key := tokenCacheKey(creds)
	if r.tokens != nil {
		if token, ok, err := r.tokens.Get(ctx, key); err == nil && ok {
			return token, nil
		} else if err != nil {
			r.logger.Warn("Token cache read failed", zap.Error(err))
		}
	}

	cc := clientcredentials.Config{
		ClientID:     creds.Username,
		ClientSecret: creds.Password,
		TokenURL:     r.config.TokenURL(shop),
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	exchangeCtx, cancel := context.WithTimeout(context.WithValue(ctx, oauth2.HTTPClient, r.httpClient), r.config.LookupTimeout)
	defer cancel()

	var tok *oauth2.Token
	exchange := func(ctx context.Context) error {
		var err error
		tok, err = cc.Token(ctx)
		return err
	}
	var err error
	if creds.Limiter != nil {
		err = creds.Limiter.Execute(exchangeCtx, exchange)
	} else {
		err = exchange(exchangeCtx)
	}
	if err != nil {
		return "", classifyTokenError(shop, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint for %s returned no access token", integration.ErrAuth, shop)
	}

	if r.tokens != nil {
		ttl := r.config.TokenTTL
		if !tok.Expiry.IsZero() {
			ttl = time.Until(tok.Expiry) - tokenExpiryLeeway
		}
		if ttl > 0 {
			if err := r.tokens.Set(ctx, key, tok.AccessToken, ttl); err != nil {
				r.logger.Warn("Token cache write failed", zap.Error(err))
			}
		}
	}
	return tok.AccessToken, nil
}

func classifyTokenError(shop string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		kind := integration.ErrAuth
		if re.Response.StatusCode >= http.StatusInternalServerError {
			kind = integration.ErrNetwork
		}
		return &integration.RemoteError{
			Kind:       kind,
			Method:     http.MethodPost,
			Resource:   shop + "/app/token",
			StatusCode: re.Response.StatusCode,
			Body:       integration.BodyExcerpt(re.Body),
		}
	}
	return &integration.RemoteError{
		Kind:     integration.ErrNetwork,
		Method:   http.MethodPost,
		Resource: shop + "/app/token",
		Cause:    err,
	}
}

func tokenCacheKey(creds Credentials) string {
	if creds.CacheKey != "" {
		return "shoprenter:token:" + creds.CacheKey
	}
	return "shoprenter:token:" + creds.Username
}

func basicAuthHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
