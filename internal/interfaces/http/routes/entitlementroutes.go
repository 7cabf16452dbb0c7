package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/interfaces/http/handlers"
	"github.com/orris-inc/licensegate/internal/interfaces/http/middleware"
)

// EntitlementRouteConfig holds dependencies for the store-facing routes.
type EntitlementRouteConfig struct {
	EntitlementHandler      *handlers.EntitlementHandler
	HealthHandler           *handlers.HealthHandler
	SignedRequestMiddleware *middleware.SignedRequestMiddleware
	StoreTokenMiddleware    *middleware.StoreTokenMiddleware
}

// SetupEntitlementRoutes configures the routes called by store plugins.
func SetupEntitlementRoutes(engine *gin.Engine, cfg *EntitlementRouteConfig) {
	v1 := engine.Group("/api/v1")

	v1.GET("/health", cfg.HealthHandler.HealthCheck)

	// Quota-changing calls carry a body signature
	licenses := v1.Group("/licenses")
	licenses.Use(cfg.SignedRequestMiddleware.RequireSignature())
	{
		licenses.POST("/reserve", cfg.EntitlementHandler.ReserveLicense)
		licenses.POST("/release", cfg.EntitlementHandler.ReleaseLicense)
		licenses.POST("/sync", cfg.EntitlementHandler.SyncLicenses)
	}

	stores := v1.Group("/stores")
	{
		stores.GET("/:token/status", cfg.StoreTokenMiddleware.RequireStoreToken(), cfg.EntitlementHandler.GetStoreStatus)
	}
}
