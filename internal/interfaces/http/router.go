package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/orris-inc/licensegate/internal/infrastructure/config"
	"github.com/orris-inc/licensegate/internal/interfaces/http/middleware"
	"github.com/orris-inc/licensegate/internal/interfaces/http/routes"
	"github.com/orris-inc/licensegate/internal/shared/logger"

	_ "github.com/orris-inc/licensegate/docs"
)

// Router represents the HTTP router configuration
type Router struct {
	container *Container
}

// NewRouter creates the router and its dependency container.
func NewRouter(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log logger.Interface) (*Router, error) {
	container, err := NewContainer(cfg, db, redisClient, log)
	if err != nil {
		return nil, err
	}
	return &Router{container: container}, nil
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	c := r.container
	engine := c.engine

	engine.Use(middleware.RequestLogger(c.log.Named("http")))
	engine.Use(middleware.Recovery(c.log.Named("recovery")))
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))

	if c.cfg.Server.Mode != gin.ReleaseMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes.SetupEntitlementRoutes(engine, &routes.EntitlementRouteConfig{
		EntitlementHandler:      c.hdlrs.entitlementHandler,
		HealthHandler:           c.hdlrs.healthHandler,
		SignedRequestMiddleware: c.middlewares.signedRequest,
		StoreTokenMiddleware:    c.middlewares.storeToken,
	})

	routes.SetupAdminRoutes(engine, &routes.AdminRouteConfig{
		AdminHandler:        c.hdlrs.adminHandler,
		AdminAuthMiddleware: c.middlewares.adminAuth,
	})
}

// GetEngine returns the gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.container.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.container.engine.Run(addr)
}

// Shutdown gracefully shuts down the router
func (r *Router) Shutdown() {
	r.container.Shutdown()
}
