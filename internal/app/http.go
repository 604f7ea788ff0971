package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/statyba/storefront/internal/infrastructure/logger"
	"github.com/statyba/storefront/internal/interfaces/http/handler"
	"github.com/statyba/storefront/internal/interfaces/http/middleware"
	"github.com/statyba/storefront/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// Version is stamped at build time with -ldflags
var Version = "dev"

// Engine builds the gin engine with the global middleware stack and every route
func (a *App) Engine() *gin.Engine {
	cfg, log := a.Config, a.Logger
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request ID feeds the logger, the logger feeds
	// recovery, and tracing attributes read what later handlers set.
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     append(cfg.HTTP.CORSAllowHeaders, middleware.CartTokenHeader, middleware.IdempotencyKeyHeader),
		ExposeHeaders:    []string{middleware.RequestIDHeader, middleware.CartTokenHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributes())
	engine.Use(middleware.HTTPMetrics(a.Meters, log))
	engine.Use(middleware.Profiling(middleware.ProfilingConfig{
		Enabled:   cfg.Telemetry.ProfilingEnabled,
		SkipPaths: []string{"/health", "/live"},
	}))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	mw := a.routeMiddleware()
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.Mount(r, a.handlers(), mw)
	r.Setup()

	if cfg.Swagger.Enabled {
		router.MountSwagger(engine, a.swaggerGuards(mw)...)
		log.Info("Swagger UI enabled",
			zap.String("path", "/swagger/index.html"),
			zap.Bool("require_auth", cfg.Swagger.RequireAuth),
			zap.Strings("allowed_ips", cfg.Swagger.AllowedIPs),
		)
	}
	return engine
}

// swaggerGuards checks the IP allowlist first, then the admin token
func (a *App) swaggerGuards(mw router.Middleware) []gin.HandlerFunc {
	var guards []gin.HandlerFunc
	if len(a.Config.Swagger.AllowedIPs) > 0 {
		guards = append(guards, middleware.IPAllowlist(a.Config.Swagger.AllowedIPs))
	}
	if a.Config.Swagger.RequireAuth {
		guards = append(guards, mw.Auth, mw.Admin)
	}
	return guards
}

func (a *App) handlers() router.Handlers {
	s := a.Services
	cookie := handler.CartCookie{Name: a.Config.Cart.CookieName, TTL: a.Config.Cart.TTL}

	checks := []handler.HealthCheck{{Name: "database", Check: a.DB.Ping}}
	if a.Stores.Redis != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return a.Stores.Redis.Ping(ctx).Err() },
		})
	}

	return router.Handlers{
		System:       handler.NewSystemHandler(a.Config.App.Name, Version, checks...),
		Products:     handler.NewProductHandler(s.Products),
		Brands:       handler.NewBrandHandler(s.Brands),
		Categories:   handler.NewCategoryHandler(s.Categories),
		Collections:  handler.NewCollectionHandler(s.Collections),
		Media:        handler.NewMediaHandler(s.Media, a.Config.Storage.MaxUploadSize),
		Translations: handler.NewTranslationHandler(s.Localization),
		Inventory:    handler.NewInventoryHandler(s.Stock),
		Cart:         handler.NewCartHandler(s.Carts, cookie),
		Checkout:     handler.NewCheckoutHandler(s.Checkout, cookie.Name),
		Auth:         handler.NewAuthHandler(s.Auth, s.Carts, cookie),
		Orders:       handler.NewOrderHandler(s.Orders),
		Reviews:      handler.NewReviewHandler(s.Reviews, s.Products),
		Referrals:    handler.NewReferralHandler(s.Referrals, s.Auth),
		Sitemaps:     handler.NewSitemapHandler(s.Sitemaps),
	}
}

func (a *App) routeMiddleware() router.Middleware {
	jwtCfg := middleware.JWTMiddlewareConfig{
		JWTService:  a.JWT,
		Revocations: a.Revoked,
		Logger:      a.Logger,
	}
	mw := router.Middleware{
		Auth:         middleware.JWTAuth(jwtCfg),
		OptionalAuth: middleware.OptionalJWTAuth(jwtCfg),
		Admin:        middleware.RequireRole(middleware.RoleAdmin),
		Locale: middleware.Locale(middleware.LocaleConfig{
			Locales:    a.Locales,
			Preference: a.preferredLocale,
		}),
	}
	if a.Config.HTTP.AuthRateLimitRequests > 0 {
		limiter := middleware.NewRateLimiter(a.Config.HTTP.AuthRateLimitRequests, a.Config.HTTP.AuthRateLimitWindow)
		mw.AuthLimit = middleware.RateLimit(limiter)
	}
	return mw
}

// preferredLocale reads the signed-in customer's saved locale
func (a *App) preferredLocale(c *gin.Context) string {
	id, ok := middleware.GetCustomerID(c)
	if !ok {
		return ""
	}
	customer, err := a.Repos.Customers.FindByID(c.Request.Context(), id)
	if err != nil {
		logger.L(c.Request.Context()).Debug("preferred locale lookup failed", zap.Error(err))
		return ""
	}
	return customer.PreferredLocale
}
