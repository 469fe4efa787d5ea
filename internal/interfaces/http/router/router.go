package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine      *gin.Engine
	apiVersion  string
	healthCheck gin.HandlerFunc
	registrars  []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithHealthCheck replaces the default /health handler, e.g. with one
// that pings the database
func WithHealthCheck(handler gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.healthCheck = handler
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers the health endpoint and all routes under the versioned
// API group
func (r *Router) Setup() {
	health := r.healthCheck
	if health == nil {
		health = func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		}
	}
	r.engine.GET("/health", health)

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}
