package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/secrets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Pricing   PricingConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Backup    BackupConfig
	Sessions  SessionsConfig
	Secrets   SecretsConfig
	Metrics   MetricsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// DatabaseConfig selects postgres for deployments or a sqlite file for a single workstation.
type DatabaseConfig struct {
	Driver          string
	SQLitePath      string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout   int
	WriteTimeout  int
	EnableSwagger bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins lists the frontend origins; "*" is rejected in production
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the preflight cache duration in seconds
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute applies per IP to unauthenticated requests
	RequestsPerMinute int
	// RequestsPerMinuteAuth applies per owner to authenticated requests
	RequestsPerMinuteAuth int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// AuthConfig configures HS256 bearer tokens. The token subject is the owner id.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	// TokenTTL is the lifetime of issued tokens in minutes
	TokenTTL int
}

// PricingConfig holds the rates applied by the pricing engine.
type PricingConfig struct {
	// VATRate is a fraction, 0.19 for 19 %
	VATRate float64
	// MaxMarkupPercent caps the markup a user may enter
	MaxMarkupPercent float64
}

// RedisConfig configures the optional catalog cache.
type RedisConfig struct {
	Enabled  bool
	URL      string
	Address  string
	Password string
	DB       int
	// CatalogTTL is the catalog snapshot lifetime in seconds
	CatalogTTL int
}

// StorageConfig selects where backups are written.
type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	MaxImportSizeMB       int64
}

type BackupConfig struct {
	Enabled bool
	// Cron is a six-field expression (with seconds)
	Cron string
}

// SessionsConfig controls how long idle wizard sessions are kept.
type SessionsConfig struct {
	// IdleTimeout in minutes
	IdleTimeout int
	SweepCron   string
}

type SecretsConfig struct {
	// Source is "environment", "vault" or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

func (a *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(a.TokenTTL) * time.Minute
}

func (r *RedisConfig) CatalogTTLDuration() time.Duration {
	return time.Duration(r.CatalogTTL) * time.Second
}

func (s *SessionsConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(s.IdleTimeout) * time.Minute
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Pricing.VATRate < 0 || c.Pricing.VATRate >= 1 {
		errs = append(errs, fmt.Errorf("pricing.vatRate must be in [0, 1), got %v", c.Pricing.VATRate))
	}
	if c.Pricing.MaxMarkupPercent <= 0 {
		errs = append(errs, fmt.Errorf("pricing.maxMarkupPercent must be positive, got %v", c.Pricing.MaxMarkupPercent))
	}
	switch c.Database.Driver {
	case "postgres":
	case "sqlite":
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("database.sqlitePath is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}
	switch c.Storage.Mode {
	case "local", "azure":
	default:
		errs = append(errs, fmt.Errorf("unknown storage.mode %q", c.Storage.Mode))
	}
	if c.App.Environment == "production" {
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("auth.jwtSecret is required in production"))
		}
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				errs = append(errs, errors.New("cors.allowedOrigins must not contain * in production"))
			}
		}
	}
	if c.Redis.Enabled && c.Redis.URL == "" && c.Redis.Address == "" {
		errs = append(errs, errors.New("redis.url or redis.address is required when redis is enabled"))
	}

	return errors.Join(errs...)
}

// Load loads configuration from .env, config.json and environment variables.
// Secrets are not resolved; use LoadWithSecrets for that.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = v.GetString("REDIS_URL")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves the database password, the
// JWT signing secret, the redis password and the blob connection string from
// the configured secret source. An explicitly set environment variable always
// wins over the vault.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	source := secrets.ResolveSource(secrets.SecretSource(cfg.Secrets.Source), cfg.App.Environment)
	if source != secrets.SourceVault {
		logger.Info("Using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required for the vault secret source")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       source,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	ApplySecrets(ctx, cfg, provider, logger)
	return cfg, nil
}

// SecretSource is implemented by secrets.Provider.
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// ApplySecrets overwrites credential fields with values from src. Missing
// secrets keep the configured value.
func ApplySecrets(ctx context.Context, cfg *Config, src SecretSource, logger *zap.Logger) {
	resolve := func(secretName, envName string, target *string) {
		value, err := src.GetSecretOrEnv(ctx, secretName, envName)
		if err != nil || value == "" {
			logger.Debug("Secret not resolved, keeping configured value",
				zap.String("secret_name", secretName),
			)
			return
		}
		*target = value
	}

	resolve("KUNDEN-DB-HOST", "DATABASE_HOST", &cfg.Database.Host)
	resolve("KUNDEN-DB-USER", "DATABASE_USER", &cfg.Database.User)
	resolve("KUNDEN-DB-PASSWORD", "DATABASE_PASSWORD", &cfg.Database.Password)
	resolve("KUNDEN-JWT-SECRET", "AUTH_JWTSECRET", &cfg.Auth.JWTSecret)
	resolve("KUNDEN-REDIS-PASSWORD", "REDIS_PASSWORD", &cfg.Redis.Password)
	resolve("storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING", &cfg.Storage.CloudConnectionString)

	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Woelfleder Kunden")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sqlitePath", "./woelfleder.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "woelfleder")
	v.SetDefault("database.user", "woelfleder")
	v.SetDefault("database.password", "woelfleder")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "Content-Disposition"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "SAMEORIGIN")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 600)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/metrics"})

	v.SetDefault("auth.issuer", "woelfleder-kunden")
	v.SetDefault("auth.tokenTTL", 720)

	v.SetDefault("pricing.vatRate", 0.19)
	v.SetDefault("pricing.maxMarkupPercent", 1000)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.catalogTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./backups")
	v.SetDefault("storage.cloudContainer", "backups")
	v.SetDefault("storage.maxImportSizeMB", 20)

	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.cron", "0 30 2 * * *")

	v.SetDefault("sessions.idleTimeout", 120)
	v.SetDefault("sessions.sweepCron", "0 */5 * * * *")

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
