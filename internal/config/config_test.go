package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Woelfleder Kunden", cfg.App.Name)
	assert.Equal(t, 0.19, cfg.Pricing.VATRate)
	assert.Equal(t, 1000.0, cfg.Pricing.MaxMarkupPercent)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Equal(t, "0 30 2 * * *", cfg.Backup.Cron)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PRICING_VATRATE", "0.2")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 0.2, cfg.Pricing.VATRate)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
}

func validConfig() config.Config {
	return config.Config{
		App:      config.AppConfig{Environment: "development"},
		Database: config.DatabaseConfig{Driver: "postgres"},
		Storage:  config.StorageConfig{Mode: "local"},
		Pricing:  config.PricingConfig{VATRate: 0.19, MaxMarkupPercent: 1000},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"negative vat", func(c *config.Config) { c.Pricing.VATRate = -0.1 }, "vatRate"},
		{"vat of one", func(c *config.Config) { c.Pricing.VATRate = 1 }, "vatRate"},
		{"zero markup cap", func(c *config.Config) { c.Pricing.MaxMarkupPercent = 0 }, "maxMarkupPercent"},
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"sqlite without path", func(c *config.Config) { c.Database.Driver = "sqlite" }, "sqlitePath"},
		{"unknown storage", func(c *config.Config) { c.Storage.Mode = "s3" }, "storage.mode"},
		{"production without secret", func(c *config.Config) { c.App.Environment = "production" }, "jwtSecret"},
		{"production wildcard cors", func(c *config.Config) {
			c.App.Environment = "production"
			c.Auth.JWTSecret = "x"
			c.CORS.AllowedOrigins = []string{"*"}
		}, "cors"},
		{"redis without address", func(c *config.Config) { c.Redis.Enabled = true }, "redis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

type mapSecrets map[string]string

func (m mapSecrets) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := m[secretName]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestApplySecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Database.User = "configured"

	config.ApplySecrets(context.Background(), &cfg, mapSecrets{
		"KUNDEN-DB-PASSWORD": "pw",
		"KUNDEN-JWT-SECRET":  "signing-key",
	}, zap.NewNop())

	assert.Equal(t, "pw", cfg.Database.Password)
	assert.Equal(t, "signing-key", cfg.Auth.JWTSecret)
	assert.Equal(t, "configured", cfg.Database.User)
}
