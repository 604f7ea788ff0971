// Package app wires the storefront's repositories, stores and services from
// configuration. The server and the admin CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	cartapp "github.com/statyba/storefront/internal/application/cart"
	catalogapp "github.com/statyba/storefront/internal/application/catalog"
	identityapp "github.com/statyba/storefront/internal/application/identity"
	inventoryapp "github.com/statyba/storefront/internal/application/inventory"
	l10napp "github.com/statyba/storefront/internal/application/localization"
	orderapp "github.com/statyba/storefront/internal/application/order"
	referralapp "github.com/statyba/storefront/internal/application/referral"
	reviewapp "github.com/statyba/storefront/internal/application/review"
	sitemapapp "github.com/statyba/storefront/internal/application/sitemap"
	"github.com/statyba/storefront/internal/domain/localization"
	"github.com/statyba/storefront/internal/domain/shared"
	"github.com/statyba/storefront/internal/domain/shared/valueobject"
	"github.com/statyba/storefront/internal/infrastructure/auth"
	"github.com/statyba/storefront/internal/infrastructure/cache"
	"github.com/statyba/storefront/internal/infrastructure/config"
	"github.com/statyba/storefront/internal/infrastructure/event"
	"github.com/statyba/storefront/internal/infrastructure/logger"
	"github.com/statyba/storefront/internal/infrastructure/migration"
	"github.com/statyba/storefront/internal/infrastructure/persistence"
	"github.com/statyba/storefront/internal/infrastructure/printing"
	"github.com/statyba/storefront/internal/infrastructure/storage"
	"github.com/statyba/storefront/internal/infrastructure/telemetry"
	"github.com/statyba/storefront/migrations"
	"go.uber.org/zap"
)

// ObjectStore is what the catalog media and invoice archive need from storage
type ObjectStore interface {
	catalogapp.ObjectStorage
	printing.ObjectStore
}

// Repositories holds the GORM repositories
type Repositories struct {
	Products     *persistence.GormProductRepository
	Brands       *persistence.GormBrandRepository
	Categories   *persistence.GormCategoryRepository
	Collections  *persistence.GormCollectionRepository
	Translations *persistence.GormTranslationRepository
	Stock        *persistence.GormStockItemRepository
	Movements    *persistence.GormStockMovementRepository
	Customers    *persistence.GormCustomerRepository
	Orders       *persistence.GormOrderRepository
	Reviews      *persistence.GormReviewRepository
	Referrals    *persistence.GormReferralRepository
}

// Services holds the application services
type Services struct {
	Localization *l10napp.Service
	Products     *catalogapp.ProductService
	Brands       *catalogapp.BrandService
	Categories   *catalogapp.CategoryService
	Collections  *catalogapp.CollectionService
	Media        *catalogapp.MediaService
	Stock        *inventoryapp.StockService
	Auth         *identityapp.AuthService
	Carts        *cartapp.Service
	Checkout     *orderapp.CheckoutService
	Orders       *orderapp.Service
	Reviews      *reviewapp.Service
	Referrals    *referralapp.Service
	Sitemaps     *sitemapapp.Service
}

// App is the wired storefront
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Locales  *localization.Locales
	DB       *persistence.Database
	Stores   *cache.Stores
	Storage  ObjectStore
	Bus      *event.InMemoryEventBus
	JWT      *auth.JWTService
	Revoked  auth.RevocationList
	Repos    Repositories
	Services Services
	Meters   *telemetry.MeterProvider

	metrics  *telemetry.StoreMetrics
	renderer printing.PDFRenderer
}

// Option configures New
type Option func(*App)

// WithMeterProvider records HTTP and business metrics on mp
func WithMeterProvider(mp *telemetry.MeterProvider) Option {
	return func(a *App) { a.Meters = mp }
}

// New connects to the database and cache and wires every service.
// Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	a := &App{Config: cfg, Logger: log}
	for _, opt := range opts {
		opt(a)
	}
	if a.Meters.IsEnabled() {
		metrics, err := telemetry.NewStoreMetrics(a.Meters)
		if err != nil {
			return nil, fmt.Errorf("business metrics: %w", err)
		}
		a.metrics = metrics
	}

	locales, err := localization.NewLocales(cfg.Locale.Supported, cfg.Locale.Default)
	if err != nil {
		return nil, fmt.Errorf("locales: %w", err)
	}
	a.Locales = locales

	if cfg.Database.AutoMigrate {
		if err := migration.UpEmbedded(cfg.Database.DSN(), migrations.FS, log); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		return nil, err
	}
	a.DB = db

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: !cfg.App.IsProduction(),
		DBName:     cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		a.closeQuietly()
		return nil, fmt.Errorf("database tracing: %w", err)
	}

	stores, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStores()
	if err != nil {
		a.closeQuietly()
		return nil, err
	}
	a.Stores = stores
	if stores.Redis != nil {
		a.Revoked = auth.NewRedisRevocationList(stores.Redis)
	} else {
		a.Revoked = auth.NewInMemoryRevocationList()
	}

	if a.Storage, err = newObjectStore(ctx, cfg, log); err != nil {
		a.closeQuietly()
		return nil, err
	}

	if a.JWT, err = auth.NewJWTService(cfg.JWT); err != nil {
		a.closeQuietly()
		return nil, fmt.Errorf("jwt: %w", err)
	}

	a.Bus = event.NewInMemoryEventBus(log, event.WithAsync(4, 256))
	a.Repos = newRepositories(db)

	if err := a.wireServices(); err != nil {
		a.closeQuietly()
		return nil, err
	}
	a.subscribe()
	return a, nil
}

func newRepositories(db *persistence.Database) Repositories {
	return Repositories{
		Products:     persistence.NewGormProductRepository(db.DB),
		Brands:       persistence.NewGormBrandRepository(db.DB),
		Categories:   persistence.NewGormCategoryRepository(db.DB),
		Collections:  persistence.NewGormCollectionRepository(db.DB),
		Translations: persistence.NewGormTranslationRepository(db.DB),
		Stock:        persistence.NewGormStockItemRepository(db.DB),
		Movements:    persistence.NewGormStockMovementRepository(db.DB),
		Customers:    persistence.NewGormCustomerRepository(db.DB),
		Orders:       persistence.NewGormOrderRepository(db.DB),
		Reviews:      persistence.NewGormReviewRepository(db.DB),
		Referrals:    persistence.NewGormReferralRepository(db.DB),
	}
}

func newObjectStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (ObjectStore, error) {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, keeping media in memory")
		return storage.NewMemoryObjectStorage(cfg.Storage.PublicBaseURL), nil
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	if !cfg.App.IsProduction() {
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("object storage bucket: %w", err)
		}
	}
	return s3, nil
}

func (a *App) wireServices() error {
	cfg, r, log := a.Config, &a.Repos, a.Logger

	currency, err := valueobject.ParseCurrency(cfg.Checkout.Currency)
	if err != nil {
		return fmt.Errorf("checkout currency: %w", err)
	}
	checkoutCfg, err := checkoutConfig(cfg.Checkout, currency)
	if err != nil {
		return err
	}
	reward, err := decimal.NewFromString(cfg.Referral.RewardAmount)
	if err != nil && cfg.Referral.Enabled {
		return fmt.Errorf("referral reward amount: %w", err)
	}

	txScope := persistence.NewGormTransactionScope(a.DB.DB)
	l10n := l10napp.NewService(r.Translations, a.Locales)

	products := catalogapp.NewProductService(catalogapp.ProductServiceDeps{
		Products:    r.Products,
		Brands:      r.Brands,
		Categories:  r.Categories,
		Collections: r.Collections,
		Stock:       r.Stock,
		Translator:  l10n,
		Storage:     a.Storage,
		Currency:    string(currency),
		Clock:       time.Now,
		Logger:      log,
	})
	brands := catalogapp.NewBrandService(r.Brands, r.Products, l10n, a.Storage)
	categories := catalogapp.NewCategoryService(r.Categories, r.Products, l10n)
	collections := catalogapp.NewCollectionService(r.Collections, r.Products, r.Stock, l10n, string(currency), time.Now)
	media := catalogapp.NewMediaService(r.Products, r.Brands, a.Storage, log)
	if cfg.Storage.MaxUploadSize > 0 {
		mediaCfg := catalogapp.DefaultMediaServiceConfig()
		mediaCfg.MaxImageBytes = cfg.Storage.MaxUploadSize
		media.SetConfig(mediaCfg)
	}

	stock := inventoryapp.NewStockService(r.Stock, r.Movements, txScope, log)
	authSvc := identityapp.NewAuthService(r.Customers, txScope, a.JWT, a.Revoked, identityapp.AuthServiceConfig{
		ReferralsEnabled: cfg.Referral.Enabled,
		Currency:         currency,
		DefaultLocale:    a.Locales.Default(),
	}, log)
	carts := cartapp.NewService(a.Stores.Carts, r.Products, r.Stock, l10n, cartapp.ServiceConfig{
		TTL:      cfg.Cart.TTL,
		Currency: string(currency),
	}, log)
	checkout := orderapp.NewCheckoutService(carts, r.Products, l10n, r.Orders, txScope, a.Stores.Idempotency, checkoutCfg, log)
	checkout.SetBusinessMetrics(a.metrics)

	var invoicer orderapp.InvoiceGenerator
	if cfg.Printing.Enabled {
		inv, err := a.newInvoicer()
		if err != nil {
			return err
		}
		invoicer = inv
	}
	orders := orderapp.NewService(r.Orders, txScope, invoicer, log)
	reviews := reviewapp.NewService(r.Reviews, r.Products, r.Products, r.Customers, r.Orders, log)
	referrals := referralapp.NewService(r.Referrals, referralapp.Config{
		Enabled:      cfg.Referral.Enabled,
		RewardAmount: reward,
		Currency:     currency,
	}, log)
	sitemaps := sitemapapp.NewService(sitemapapp.Sources{
		Products:    r.Products,
		Brands:      r.Brands,
		Categories:  r.Categories,
		Collections: r.Collections,
	}, l10n, a.Locales, a.Stores.Blobs, sitemapapp.Config{
		BaseURL:     cfg.App.BaseURL,
		BatchSize:   cfg.Sitemap.BatchSize,
		Timeout:     cfg.Sitemap.Timeout,
		MaxURLs:     cfg.Sitemap.MaxURLs,
		CacheTTL:    cfg.Sitemap.CacheTTL,
		StaticPaths: cfg.Sitemap.StaticURLs,
	}, log)

	for _, svc := range []interface{ SetEventPublisher(p shared.EventPublisher) }{
		products, brands, categories, collections, stock, authSvc, checkout, orders, reviews, referrals,
	} {
		svc.SetEventPublisher(a.Bus)
	}

	a.Services = Services{
		Localization: l10n,
		Products:     products,
		Brands:       brands,
		Categories:   categories,
		Collections:  collections,
		Media:        media,
		Stock:        stock,
		Auth:         authSvc,
		Carts:        carts,
		Checkout:     checkout,
		Orders:       orders,
		Reviews:      reviews,
		Referrals:    referrals,
		Sitemaps:     sitemaps,
	}
	return nil
}

func checkoutConfig(cfg config.CheckoutConfig, currency valueobject.Currency) (orderapp.CheckoutConfig, error) {
	out := orderapp.CheckoutConfig{Currency: currency, IdempotencyTTL: cfg.IdempotencyTTL}
	if cfg.FlatShipping != "" {
		flat, err := decimal.NewFromString(cfg.FlatShipping)
		if err != nil {
			return out, fmt.Errorf("checkout flat shipping: %w", err)
		}
		out.FlatShipping = flat
	}
	if cfg.FreeShippingThreshold != "" {
		threshold, err := decimal.NewFromString(cfg.FreeShippingThreshold)
		if err != nil {
			return out, fmt.Errorf("checkout free shipping threshold: %w", err)
		}
		out.FreeShippingThreshold = &threshold
	}
	return out, nil
}

func (a *App) newInvoicer() (*printing.Invoicer, error) {
	tmpl, err := printing.NewInvoiceTemplate()
	if err != nil {
		return nil, fmt.Errorf("invoice template: %w", err)
	}
	a.renderer = printing.NewChromedpRenderer(a.Config.Printing, a.Logger)

	var archive printing.ObjectStore
	if a.Config.Printing.StoreInvoice {
		archive = a.Storage
	}
	seller := printing.Seller{Name: a.Config.Printing.CompanyName, VAT: a.Config.Printing.CompanyVAT}
	return printing.NewInvoicer(a.renderer, tmpl, archive, seller, a.Logger), nil
}

// subscribe registers the cross-module event handlers. Handlers with side
// effects are wrapped so a redelivered event is processed once.
func (a *App) subscribe() {
	idem := a.Stores.Idempotency

	catalogChanged := catalogapp.NewCatalogChangedHandler(a.Stores.Blobs, a.Logger, sitemapapp.CacheKeyPrefix)
	stockLow := inventoryapp.NewStockLowHandler(a.Logger).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(a.Logger)).
		WithMetrics(a.metrics)
	delivered := referralapp.NewOrderDeliveredHandler(a.Services.Referrals, a.Logger)

	a.Bus.Subscribe(catalogChanged)
	a.Bus.Subscribe(event.NewIdempotentHandler(stockLow, idem, a.Logger))
	a.Bus.Subscribe(event.NewIdempotentHandler(delivered, idem, a.Logger))

	a.Logger.Info("Event handlers registered",
		zap.Strings("catalog_changed_events", catalogChanged.EventTypes()),
		zap.Strings("stock_low_events", stockLow.EventTypes()),
		zap.Strings("order_delivered_events", delivered.EventTypes()),
	)
}

// Start launches the event bus workers
func (a *App) Start(ctx context.Context) error {
	return a.Bus.Start(ctx)
}

// Close stops the bus and releases connections
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Bus != nil {
		if err := a.Bus.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if a.renderer != nil {
		if err := a.renderer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("pdf renderer: %w", err))
		}
	}
	if a.Stores != nil {
		if err := a.Stores.Close(); err != nil {
			errs = append(errs, fmt.Errorf("stores: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) closeQuietly() {
	if err := a.Close(context.Background()); err != nil {
		a.Logger.Warn("cleanup after failed start", zap.Error(err))
	}
}
