package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/woodcraft/backend/docs"
	appintegration "github.com/woodcraft/backend/internal/application/integration"
	"github.com/woodcraft/backend/internal/infrastructure/cache"
	"github.com/woodcraft/backend/internal/infrastructure/config"
	"github.com/woodcraft/backend/internal/infrastructure/ecommerce"
	"github.com/woodcraft/backend/internal/infrastructure/logger"
	"github.com/woodcraft/backend/internal/infrastructure/persistence"
	"github.com/woodcraft/backend/internal/infrastructure/telemetry"
	"github.com/woodcraft/backend/internal/interfaces/http/handler"
	"github.com/woodcraft/backend/internal/interfaces/http/middleware"
	"github.com/woodcraft/backend/internal/interfaces/http/router"
)

const (
	shutdownTimeout = 30 * time.Second
	version         = "1.0.0"
)

//	@title			Woodcraft Commerce Sync API
//	@version		1.0
//	@description	Pushes catalog products and categories to the connected webshop and reports their sync status.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting commerce sync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, telemetry.DefaultExportInterval, log)
	if err != nil {
		return err
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
	if err != nil {
		return err
	}
	log = logProvider.Bridge(log)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBSystem:   dbSystem,
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		return err
	}

	tokens, err := cache.NewTokenStoreFactory(cfg.Redis, cache.WithLogger(log)).
		CreateStore(cfg.Sync.TokenCacheBackend)
	if err != nil {
		return err
	}

	shopCfg := ecommerce.NewShoprenterConfig()
	shopCfg.APIHostSuffix = cfg.Shoprenter.APIHostSuffix
	shopCfg.TokenAPIHostSuffix = cfg.Shoprenter.TokenAPIHostSuffix
	shopCfg.TokenURLTemplate = cfg.Shoprenter.TokenURLTemplate
	shopCfg.TokenTTL = cfg.Shoprenter.TokenTTL
	shopCfg.UserAgent = cfg.Shoprenter.UserAgent
	shopCfg.LookupTimeout = cfg.Sync.LookupTimeout
	shopCfg.WriteTimeout = cfg.Sync.WriteTimeout
	if err := shopCfg.Validate(); err != nil {
		return err
	}

	// Per-request deadlines come from the client; the transport only
	// bounds the idle pool.
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: int(cfg.Sync.MaxConcurrent),
			IdleConnTimeout:     90 * time.Second,
		},
	}
	resolver := ecommerce.NewAuthResolver(shopCfg, tokens, httpClient, log)
	limiters := ecommerce.NewLimiterRegistry(ecommerce.RateLimitConfig{
		CallsPerSecond: cfg.Sync.CallsPerSecond,
		Burst:          cfg.Sync.Burst,
		MaxConcurrent:  cfg.Sync.MaxConcurrent,
	})
	provider, err := ecommerce.NewShoprenterProvider(shopCfg, resolver, limiters, httpClient, log)
	if err != nil {
		return err
	}

	catalogRepo := persistence.NewGormCatalogRepository(db.DB)
	syncService := appintegration.NewSyncService(appintegration.SyncServiceDeps{
		Entities:    catalogRepo,
		Ledger:      persistence.NewGormSyncLedger(db.DB),
		Connections: persistence.NewGormConnectionRepository(db.DB),
		Remotes:     provider,
		Aliases:     appintegration.NewAliasReconciler(catalogRepo, cfg.Sync.MaxAliasCycles, log),
		Importer:    persistence.NewMirrorImporter(db.DB, cfg.Sync.ShopDomain, log),
		TaxClasses:  persistence.NewGormTaxClassMapper(db.DB),
	}, appintegration.SyncConfig{
		DefaultLanguage: cfg.Sync.DefaultLanguage,
		ShopDomain:      cfg.Sync.ShopDomain,
		Retry: appintegration.RetryPolicy{
			MaxRetries:      cfg.Sync.RetryMaxRetries,
			InitialInterval: cfg.Sync.RetryInitialInterval,
			MaxInterval:     cfg.Sync.RetryMaxInterval,
		},
		BulkParallelism: cfg.Sync.BulkParallelism,
	}, log)

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	r, err := router.NewRouter(router.Config{
		Logger: log,
		JWT: middleware.JWTConfig{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
			Logger: log,
		},
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Swagger:        cfg.HTTP.SwaggerEnabled,
		Ready: func(context.Context) error {
			return db.Ping()
		},
	})
	if err != nil {
		return err
	}
	engine := r.Register("sync", handler.NewSyncHandler(syncService)).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := []error{srv.Shutdown(shutdownCtx)}
	if closer, ok := tokens.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs,
		meterProvider.Shutdown(shutdownCtx),
		tracerProvider.Shutdown(shutdownCtx),
		logProvider.Shutdown(shutdownCtx),
		db.Close(),
	)
	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Info("Server exited gracefully")
	return nil
}

