package router

import (
	"github.com/gin-gonic/gin"
	_ "github.com/statyba/storefront/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	// SwaggerPath is the route serving the API docs UI and doc.json
	SwaggerPath = "/swagger/*any"

	// swaggerCSP lets the bundled UI run its inline bootstrap script
	swaggerCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data:; frame-ancestors 'none'"
)

// MountSwagger serves the API docs behind guards. Nil guards are skipped.
func MountSwagger(engine *gin.Engine, guards ...gin.HandlerFunc) {
	handlers := append(withoutNil(guards), swaggerHeaders, ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET(SwaggerPath, handlers...)
}

func swaggerHeaders(c *gin.Context) {
	c.Header("Content-Security-Policy", swaggerCSP)
	c.Next()
}
