package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	"github.com/orris-inc/licensegate/internal/interfaces/http/handlers"
	"github.com/orris-inc/licensegate/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for the routes used by the
// subscription system and operators.
type AdminRouteConfig struct {
	AdminHandler        *handlers.AdminHandler
	AdminAuthMiddleware *middleware.AdminAuthMiddleware
}

// SetupAdminRoutes configures admin-only routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/api/v1/admin")

	notifications := admin.Group("/notifications")
	notifications.Use(cfg.AdminAuthMiddleware.RequireScope(auth.ScopeNotifications))
	{
		notifications.POST("", cfg.AdminHandler.ReceiveNotification)
	}

	stores := admin.Group("/stores")
	stores.Use(cfg.AdminAuthMiddleware.RequireScope(auth.ScopeStoresRead))
	{
		stores.GET("/:token", cfg.AdminHandler.GetStore)
		stores.GET("/:token/usage", cfg.AdminHandler.GetStoreUsage)
	}
}
