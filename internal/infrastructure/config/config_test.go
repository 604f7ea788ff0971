package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "http://localhost:8080", cfg.App.BaseURL)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "en", cfg.Locale.Default)
		assert.Equal(t, []string{"en", "lt"}, cfg.Locale.Supported)
		assert.Equal(t, 500, cfg.Sitemap.BatchSize)
		assert.Equal(t, 10*time.Second, cfg.Sitemap.Timeout)
		assert.Equal(t, 50000, cfg.Sitemap.MaxURLs)
		assert.Equal(t, 7*24*time.Hour, cfg.Cart.TTL)
		assert.Equal(t, "EUR", cfg.Checkout.Currency)
	})

	t.Run("loads values from environment variables with SHOP prefix", func(t *testing.T) {
		t.Setenv("SHOP_APP_NAME", "test-shop")
		t.Setenv("SHOP_APP_PORT", "9000")
		t.Setenv("SHOP_APP_BASE_URL", "https://shop.example.com/")
		t.Setenv("SHOP_DATABASE_HOST", "testdb.local")
		t.Setenv("SHOP_DATABASE_PORT", "5433")
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("SHOP_SITEMAP_BATCH_SIZE", "100")
		t.Setenv("SHOP_CART_TTL", "48h")
		t.Setenv("SHOP_TELEMETRY_METRICS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-shop", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "https://shop.example.com", cfg.App.BaseURL)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, 100, cfg.Sitemap.BatchSize)
		assert.Equal(t, 48*time.Hour, cfg.Cart.TTL)
		assert.Equal(t, "test-shop", cfg.Telemetry.ServiceName)
		assert.True(t, cfg.Telemetry.MetricsEnabled)
		assert.Equal(t, 60*time.Second, cfg.Telemetry.MetricsInterval)
	})

	t.Run("reads an explicit toml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shop.toml")
		content := `
[app]
name = "file-shop"

[locale]
default = "lt"
supported = ["lt", "en", "pl"]

[checkout]
flat_shipping = "3.50"
free_shipping_threshold = "50.00"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "file-shop", cfg.App.Name)
		assert.Equal(t, "lt", cfg.Locale.Default)
		assert.Equal(t, []string{"lt", "en", "pl"}, cfg.Locale.Supported)
		assert.Equal(t, "3.50", cfg.Checkout.FlatShipping)
		assert.Equal(t, "50.00", cfg.Checkout.FreeShippingThreshold)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "5")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("rejects default locale outside supported list", func(t *testing.T) {
		t.Setenv("SHOP_LOCALE_DEFAULT", "de")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locale.default")
	})
}

func TestValidateProduction(t *testing.T) {
	base := func() *Config {
		cfg := &Config{App: AppConfig{Env: "production"}}
		applyDefaults(cfg)
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		return cfg
	}

	t.Run("valid production config", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("short jwt secret", func(t *testing.T) {
		cfg := base()
		cfg.JWT.Secret = "short"
		assert.ErrorContains(t, cfg.validate(), "jwt.secret")
	})

	t.Run("missing database password", func(t *testing.T) {
		cfg := base()
		cfg.Database.Password = ""
		assert.ErrorContains(t, cfg.validate(), "database.password")
	})

	t.Run("ssl disabled", func(t *testing.T) {
		cfg := base()
		cfg.Database.SSLMode = "disable"
		assert.ErrorContains(t, cfg.validate(), "sslmode")
	})

	t.Run("wildcard cors", func(t *testing.T) {
		cfg := base()
		cfg.HTTP.CORSAllowOrigins = []string{"https://shop.example.com", "*"}
		assert.ErrorContains(t, cfg.validate(), "cors_allow_origins")
	})

	t.Run("storage enabled without bucket", func(t *testing.T) {
		cfg := base()
		cfg.Storage.Enabled = true
		assert.ErrorContains(t, cfg.validate(), "storage.bucket")
	})

	t.Run("open swagger endpoint", func(t *testing.T) {
		cfg := base()
		cfg.Swagger.Enabled = true
		assert.ErrorContains(t, cfg.validate(), "swagger endpoint")
	})

	t.Run("swagger behind auth or ip allowlist", func(t *testing.T) {
		cfg := base()
		cfg.Swagger = SwaggerConfig{Enabled: true, RequireAuth: true}
		assert.NoError(t, cfg.validate())

		cfg.Swagger = SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8", "192.168.1.7"}}
		assert.NoError(t, cfg.validate())
	})

	t.Run("malformed swagger allowlist entry", func(t *testing.T) {
		cfg := base()
		cfg.Swagger = SwaggerConfig{Enabled: true, AllowedIPs: []string{"office"}}
		assert.ErrorContains(t, cfg.validate(), "swagger.allowed_ips")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 5432, User: "shop", Password: "p@ss/word",
		DBName: "storefront", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://shop:p%40ss%2Fword@db:5432/storefront?sslmode=disable", d.DSN())
}
