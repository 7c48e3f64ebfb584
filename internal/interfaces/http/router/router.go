package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/woodcraft/backend/internal/infrastructure/logger"
	"github.com/woodcraft/backend/internal/interfaces/http/middleware"
)

const readyTimeout = 2 * time.Second

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds what the engine middleware chain needs
type Config struct {
	Logger         *zap.Logger
	JWT            middleware.JWTConfig
	Tracing        middleware.TracingConfig
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	// Swagger serves the registered API document under /swagger
	Swagger bool
	// Ready reports whether dependencies (database) are reachable
	Ready func(ctx context.Context) error
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	config     Config
	apiVersion string
	groups     map[string]RouteRegistrar
	order      []string
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a gin engine with the global middleware chain and the
// health endpoints. API groups are added with Register.
func NewRouter(cfg Config, opts ...RouterOption) (*Router, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	// Order matters: the request ID and span exist before the request
	// logger copies them into its context.
	engine.Use(
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.Tracing(cfg.Tracing),
		logger.GinMiddleware(cfg.Logger),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	r := &Router{
		engine:     engine,
		config:     cfg,
		apiVersion: "v1",
		groups:     make(map[string]RouteRegistrar),
	}
	for _, opt := range opts {
		opt(r)
	}

	engine.GET("/health", r.health)
	engine.GET("/ready", r.ready)
	if cfg.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r, nil
}

// Register mounts registrar under /api/{version}/{prefix}
func (r *Router) Register(prefix string, registrar RouteRegistrar) *Router {
	if _, exists := r.groups[prefix]; !exists {
		r.order = append(r.order, prefix)
	}
	r.groups[prefix] = registrar
	return r
}

// Setup registers all groups behind authentication and returns the engine
func (r *Router) Setup() *gin.Engine {
	api := r.engine.Group("/api/"+r.apiVersion,
		middleware.JWTAuth(r.config.JWT),
		middleware.SpanAttributes(),
	)
	for _, prefix := range r.order {
		r.groups[prefix].RegisterRoutes(api.Group("/" + prefix))
	}
	return r.engine
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) ready(c *gin.Context) {
	if r.config.Ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := r.config.Ready(ctx); err != nil {
			logger.L(c.Request.Context()).Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
