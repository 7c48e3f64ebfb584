package ecommerce

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// ShoprenterProvider opens authenticated catalogs for connections. Each
// connection gets its own long-lived limiter from the registry.
type ShoprenterProvider struct {
	config     *ShoprenterConfig
	resolver   *AuthResolver
	limiters   *LimiterRegistry
	httpClient *http.Client
	logger     *zap.Logger
}

var _ integration.RemoteCatalogProvider = (*ShoprenterProvider)(nil)

// NewShoprenterProvider creates a provider
func NewShoprenterProvider(config *ShoprenterConfig, resolver *AuthResolver, limiters *LimiterRegistry, httpClient *http.Client, logger *zap.Logger) (*ShoprenterProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShoprenterProvider{
		config:     config,
		resolver:   resolver,
		limiters:   limiters,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Open resolves authentication and binds a client to the connection's limiter
func (p *ShoprenterProvider) Open(ctx context.Context, conn *integration.Connection) (integration.RemoteCatalog, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	limiter := p.limiters.ForConnection(conn.ID)
	creds := CredentialsFromConnection(conn)
	creds.Limiter = limiter
	auth, err := p.resolver.Resolve(ctx, creds)
	if err != nil {
		return nil, err
	}
	return NewShoprenterClient(p.config, auth, limiter, p.httpClient,
		p.logger.With(zap.String("connection_id", conn.ID.String()))), nil
}
