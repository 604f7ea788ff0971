package router

import (
	"github.com/gin-gonic/gin"
	"github.com/statyba/storefront/internal/interfaces/http/handler"
)

// Handlers holds every endpoint handler of the storefront API
type Handlers struct {
	System       *handler.SystemHandler
	Products     *handler.ProductHandler
	Brands       *handler.BrandHandler
	Categories   *handler.CategoryHandler
	Collections  *handler.CollectionHandler
	Media        *handler.MediaHandler
	Translations *handler.TranslationHandler
	Inventory    *handler.InventoryHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	Auth         *handler.AuthHandler
	Orders       *handler.OrderHandler
	Reviews      *handler.ReviewHandler
	Referrals    *handler.ReferralHandler
	Sitemaps     *handler.SitemapHandler
}

// Middleware holds the route-level middleware. Nil entries are skipped.
type Middleware struct {
	// Auth requires a valid access token
	Auth gin.HandlerFunc
	// OptionalAuth attaches the customer when a token is present
	OptionalAuth gin.HandlerFunc
	// Admin must run after Auth
	Admin gin.HandlerFunc
	// Locale negotiates the response locale; it runs after authentication
	Locale gin.HandlerFunc
	// AuthLimit throttles sign-in and registration attempts
	AuthLimit gin.HandlerFunc
}

// Mount registers the storefront, account and back-office route groups
// plus the root-level sitemap and probe routes.
func Mount(r *Router, h Handlers, mw Middleware) {
	root := NewDomainGroup("root", "")
	root.GET("/health", h.System.Health)
	root.GET("/live", h.System.Live)
	root.GET("/sitemap.xml", h.Sitemaps.Index)
	root.GET("/sitemaps/:file", h.Sitemaps.Section)
	r.RegisterRoot(root)

	r.Register(storefrontRoutes(h, mw)).
		Register(authRoutes(h, mw)).
		Register(accountRoutes(h, mw)).
		Register(adminRoutes(h, mw))
}

func storefrontRoutes(h Handlers, mw Middleware) *DomainGroup {
	g := NewDomainGroup("storefront", "").Use(mw.OptionalAuth, mw.Locale)

	g.GET("/system/info", h.System.GetSystemInfo)
	g.GET("/locales", h.Translations.Locales)

	g.GET("/products", h.Products.List)
	g.GET("/products/:slug", h.Products.GetBySlug)
	g.GET("/products/:slug/reviews", h.Reviews.ListPublic)
	g.GET("/products/:slug/reviews/summary", h.Reviews.Summary)
	g.POST("/products/:slug/reviews", mw.Auth, h.Reviews.Submit)

	g.GET("/brands", h.Brands.List)
	g.GET("/brands/:slug", h.Brands.GetBySlug)
	g.GET("/categories", h.Categories.Tree)
	g.GET("/categories/:slug", h.Categories.GetBySlug)
	g.GET("/collections", h.Collections.List)
	g.GET("/collections/:slug", h.Collections.Gallery)

	g.GET("/cart", h.Cart.Get)
	g.DELETE("/cart", h.Cart.Clear)
	g.POST("/cart/items", h.Cart.AddItem)
	g.PATCH("/cart/items/:productId", h.Cart.UpdateItem)
	g.DELETE("/cart/items/:productId", h.Cart.RemoveItem)
	g.POST("/checkout", h.Checkout.Checkout)
	return g
}

func authRoutes(h Handlers, mw Middleware) *DomainGroup {
	g := NewDomainGroup("auth", "/auth").Use(mw.Locale)
	g.POST("/register", mw.AuthLimit, h.Auth.Register)
	g.POST("/login", mw.AuthLimit, h.Auth.Login)
	g.POST("/refresh", mw.AuthLimit, h.Auth.Refresh)
	g.POST("/logout", mw.Auth, h.Auth.Logout)
	return g
}

func accountRoutes(h Handlers, mw Middleware) *DomainGroup {
	g := NewDomainGroup("account", "/account").Use(mw.Auth, mw.Locale)
	g.GET("", h.Auth.Me)
	g.PATCH("", h.Auth.UpdateProfile)
	g.POST("/password", h.Auth.ChangePassword)

	g.GET("/orders", h.Orders.MyOrders)
	g.GET("/orders/:number", h.Orders.MyOrder)
	g.GET("/orders/:number/invoice", h.Orders.MyInvoice)

	g.GET("/reviews", h.Reviews.MyReviews)
	g.PUT("/reviews/:id", h.Reviews.Edit)
	g.GET("/referrals", h.Referrals.Stats)
	return g
}

func adminRoutes(h Handlers, mw Middleware) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(mw.Auth, mw.Admin, mw.Locale)

	products := admin.Group("products", "/products")
	products.GET("", h.Products.AdminList)
	products.POST("", h.Products.Create)
	products.GET("/:id", h.Products.AdminGet)
	products.PATCH("/:id", h.Products.Update)
	products.DELETE("/:id", h.Products.Delete)
	products.POST("/:id/publish", h.Products.Publish)
	products.POST("/:id/unpublish", h.Products.Unpublish)
	products.POST("/:id/archive", h.Products.Archive)
	products.POST("/:id/images", h.Media.UploadProductImage)
	products.PUT("/:id/images/order", h.Media.ReorderProductImages)
	products.PATCH("/:id/images/:imageId", h.Media.UpdateProductImage)
	products.DELETE("/:id/images/:imageId", h.Media.DeleteProductImage)
	products.GET("/:id/stock", h.Inventory.Get)
	products.PATCH("/:id/stock", h.Inventory.UpdateSettings)
	products.POST("/:id/stock/adjust", h.Inventory.Adjust)
	products.GET("/:id/stock/movements", h.Inventory.Movements)

	admin.GET("/stock/low", h.Inventory.LowStock)

	brands := admin.Group("brands", "/brands")
	brands.GET("", h.Brands.AdminList)
	brands.POST("", h.Brands.Create)
	brands.GET("/:id", h.Brands.AdminGet)
	brands.PUT("/:id", h.Brands.Update)
	brands.DELETE("/:id", h.Brands.Delete)
	brands.PUT("/:id/logo", h.Media.UploadBrandLogo)

	categories := admin.Group("categories", "/categories")
	categories.GET("", h.Categories.AdminTree)
	categories.POST("", h.Categories.Create)
	categories.GET("/:id", h.Categories.AdminGet)
	categories.PUT("/:id", h.Categories.Update)
	categories.POST("/:id/move", h.Categories.Move)
	categories.DELETE("/:id", h.Categories.Delete)

	collections := admin.Group("collections", "/collections")
	collections.GET("", h.Collections.AdminList)
	collections.POST("", h.Collections.Create)
	collections.GET("/:id", h.Collections.AdminGet)
	collections.PUT("/:id", h.Collections.Update)
	collections.DELETE("/:id", h.Collections.Delete)
	collections.PUT("/:id/products/:productId", h.Collections.AddProduct)
	collections.DELETE("/:id/products/:productId", h.Collections.RemoveProduct)

	translations := admin.Group("translations", "/translations")
	translations.GET("/:entity/:id", h.Translations.List)
	translations.PUT("/:entity/:id/:locale", h.Translations.Upsert)
	translations.DELETE("/:entity/:id/:locale", h.Translations.Delete)

	orders := admin.Group("orders", "/orders")
	orders.GET("", h.Orders.List)
	orders.GET("/:id", h.Orders.Get)
	orders.POST("/:id/transition", h.Orders.Transition)
	orders.GET("/:id/invoice", h.Orders.Invoice)

	reviews := admin.Group("reviews", "/reviews")
	reviews.GET("", h.Reviews.List)
	reviews.POST("/:id/approve", h.Reviews.Approve)
	reviews.POST("/:id/reject", h.Reviews.Reject)
	reviews.DELETE("/:id", h.Reviews.Delete)

	return admin
}
