package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Sync       SyncConfig
	Shoprenter ShoprenterConfig
	Telemetry  TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	SQLitePath      string // file path or ":memory:" when Driver is sqlite
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the settings used to verify bearer tokens
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
	SwaggerEnabled   bool // Serve the API documentation under /swagger
}

// SyncConfig holds the commerce synchronization settings
type SyncConfig struct {
	// CallsPerSecond is the per-connection remote call rate
	CallsPerSecond float64 `validate:"gt=0,lte=50"`
	// Burst is the number of calls that may start back to back
	Burst int `validate:"gte=1,lte=50"`
	// MaxConcurrent is the number of remote calls in flight per connection
	MaxConcurrent int64 `validate:"gte=1,lte=32"`
	// LookupTimeout bounds remote reads
	LookupTimeout time.Duration `validate:"gt=0"`
	// WriteTimeout bounds remote writes
	WriteTimeout time.Duration `validate:"gtefield=LookupTimeout"`
	// RetryMaxRetries is how often a 429 answer is retried
	RetryMaxRetries int `validate:"gte=0,lte=10"`
	// RetryInitialInterval is the first cool-down after a 429
	RetryInitialInterval time.Duration `validate:"gt=0"`
	// RetryMaxInterval caps a single cool-down
	RetryMaxInterval time.Duration `validate:"gtefield=RetryInitialInterval"`
	// MaxAliasCycles bounds alias create/update attempts per run
	MaxAliasCycles int `validate:"gte=1,lte=5"`
	// DefaultLanguage is the description language pushed first
	DefaultLanguage string `validate:"required,alpha,len=2"`
	// ShopDomain is the public domain suffix used in entity URLs
	ShopDomain string `validate:"required"`
	// BulkParallelism bounds concurrent runs in bulk operations
	BulkParallelism int `validate:"gte=1,lte=16"`
	// TokenCacheBackend stores exchanged access tokens
	TokenCacheBackend string `validate:"oneof=memory redis"`
}

// ShoprenterConfig holds platform endpoints of the ShopRenter adapter
type ShoprenterConfig struct {
	APIHostSuffix      string
	TokenAPIHostSuffix string
	TokenURLTemplate   string
	TokenTTL           time.Duration
	UserAgent          string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	LogsEnabled       bool    // Export zap logs through the OTLP log pipeline
	// Database tracing options
	DBTraceEnabled bool // Enable database query tracing (otelgorm)
	DBLogFullSQL   bool // Log full SQL statements (dev only)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with WOODCRAFT_ prefix (e.g., WOODCRAFT_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFrom(".", "./backend", "/app")
}

// LoadFrom is Load with explicit config search paths
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("WOODCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			SQLitePath:      v.GetString("database.sqlite_path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			SwaggerEnabled:   v.GetBool("http.swagger_enabled"),
		},
		Sync: SyncConfig{
			CallsPerSecond:       v.GetFloat64("sync.calls_per_second"),
			Burst:                v.GetInt("sync.burst"),
			MaxConcurrent:        v.GetInt64("sync.max_concurrent"),
			LookupTimeout:        v.GetDuration("sync.lookup_timeout"),
			WriteTimeout:         v.GetDuration("sync.write_timeout"),
			RetryMaxRetries:      v.GetInt("sync.retry_max_retries"),
			RetryInitialInterval: v.GetDuration("sync.retry_initial_interval"),
			RetryMaxInterval:     v.GetDuration("sync.retry_max_interval"),
			MaxAliasCycles:       v.GetInt("sync.max_alias_cycles"),
			DefaultLanguage:      v.GetString("sync.default_language"),
			ShopDomain:           v.GetString("sync.shop_domain"),
			BulkParallelism:      v.GetInt("sync.bulk_parallelism"),
			TokenCacheBackend:    v.GetString("sync.token_cache_backend"),
		},
		Shoprenter: ShoprenterConfig{
			APIHostSuffix:      v.GetString("shoprenter.api_host_suffix"),
			TokenAPIHostSuffix: v.GetString("shoprenter.token_api_host_suffix"),
			TokenURLTemplate:   v.GetString("shoprenter.token_url_template"),
			TokenTTL:           v.GetDuration("shoprenter.token_ttl"),
			UserAgent:          v.GetString("shoprenter.user_agent"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "woodcraft-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "woodcraft"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "woodcraft.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "woodcraft-backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	// A bulk sync holds the request open while it works through the limiter.
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	applySyncDefaults(&cfg.Sync)
	if cfg.Shoprenter.APIHostSuffix == "" {
		cfg.Shoprenter.APIHostSuffix = "api.myshoprenter.hu"
	}
	if cfg.Shoprenter.TokenAPIHostSuffix == "" {
		cfg.Shoprenter.TokenAPIHostSuffix = "api2.myshoprenter.hu"
	}
	if cfg.Shoprenter.TokenURLTemplate == "" {
		cfg.Shoprenter.TokenURLTemplate = "https://oauth.app.shoprenter.net/%s/app/token"
	}
	if cfg.Shoprenter.TokenTTL == 0 {
		cfg.Shoprenter.TokenTTL = time.Hour
	}
	if cfg.Shoprenter.UserAgent == "" {
		cfg.Shoprenter.UserAgent = "woodcraft-commerce-sync/1.0"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "woodcraft-backend"
	}
}

func applySyncDefaults(s *SyncConfig) {
	if s.CallsPerSecond == 0 {
		s.CallsPerSecond = 3
	}
	if s.Burst == 0 {
		s.Burst = 1
	}
	if s.MaxConcurrent == 0 {
		s.MaxConcurrent = 2
	}
	if s.LookupTimeout == 0 {
		s.LookupTimeout = 10 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
	if s.RetryMaxRetries == 0 {
		s.RetryMaxRetries = 2
	}
	if s.RetryInitialInterval == 0 {
		s.RetryInitialInterval = 2 * time.Second
	}
	if s.RetryMaxInterval == 0 {
		s.RetryMaxInterval = 30 * time.Second
	}
	if s.MaxAliasCycles == 0 {
		s.MaxAliasCycles = 2
	}
	if s.DefaultLanguage == "" {
		s.DefaultLanguage = "hu"
	}
	if s.ShopDomain == "" {
		s.ShopDomain = "shoprenter.hu"
	}
	if s.BulkParallelism == 0 {
		s.BulkParallelism = 2
	}
	if s.TokenCacheBackend == "" {
		s.TokenCacheBackend = "memory"
	}
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if err := structValidator.Struct(c.Sync); err != nil {
		return fmt.Errorf("invalid sync configuration: %w", err)
	}
	if !strings.Contains(c.Shoprenter.TokenURLTemplate, "%s") {
		return fmt.Errorf("shoprenter.token_url_template must contain %%s for the shop name")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver != "postgres" {
			return fmt.Errorf("database.driver must be postgres in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
