// Package router assembles the storefront HTTP route table.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its routes onto a gin group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts API registrars under /api/<version> and root registrars at /.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	api        []RouteRegistrar
	root       []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIVersion replaces the default "v1" path segment.
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar for the versioned API prefix.
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.api = append(r.api, registrar)
	return r
}

// RegisterRoot queues a registrar for the site root.
func (r *Router) RegisterRoot(registrar RouteRegistrar) *Router {
	r.root = append(r.root, registrar)
	return r
}

// Setup mounts everything queued so far. Call it once.
func (r *Router) Setup() {
	for _, reg := range r.root {
		reg.RegisterRoutes(&r.engine.RouterGroup)
	}
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, reg := range r.api {
		reg.RegisterRoutes(api)
	}
}

// DomainGroup is a declarative route group: a prefix, its middleware, its
// routes and nested groups. Nothing touches gin until RegisterRoutes.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*DomainGroup
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) Name() string   { return dg.name }
func (dg *DomainGroup) Prefix() string { return dg.prefix }

// Use appends group middleware. Nil handlers are dropped, so disabled
// middleware can be passed as nil.
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, withoutNil(middleware)...)
	return dg
}

// Handle adds a route; nil handlers are dropped like in Use.
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, handlers: withoutNil(handlers)})
	return dg
}

func (dg *DomainGroup) GET(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, h...)
}

func (dg *DomainGroup) POST(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, h...)
}

func (dg *DomainGroup) PUT(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, path, h...)
}

func (dg *DomainGroup) PATCH(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, path, h...)
}

func (dg *DomainGroup) DELETE(path string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, h...)
}

// Group returns a nested group that inherits this group's middleware.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	dg.children = append(dg.children, child)
	return child
}

func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group(dg.prefix, dg.middleware...)
	for _, rt := range dg.routes {
		g.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, child := range dg.children {
		child.RegisterRoutes(g)
	}
}

func withoutNil(handlers []gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
