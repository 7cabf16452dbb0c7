package http

import (
	"github.com/orris-inc/licensegate/internal/interfaces/http/handlers"
	"github.com/orris-inc/licensegate/internal/interfaces/http/middleware"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// allHandlers holds all HTTP handler instances.
type allHandlers struct {
	entitlementHandler *handlers.EntitlementHandler
	healthHandler      *handlers.HealthHandler
	adminHandler       *handlers.AdminHandler
}

// allMiddlewares holds the authentication middlewares shared by route groups.
type allMiddlewares struct {
	signedRequest *middleware.SignedRequestMiddleware
	storeToken    *middleware.StoreTokenMiddleware
	adminAuth     *middleware.AdminAuthMiddleware
}

func newHandlers(svcs *services, log logger.Interface) *allHandlers {
	return &allHandlers{
		entitlementHandler: handlers.NewEntitlementHandler(svcs.entitlement, log.Named("entitlement_handler")),
		healthHandler:      handlers.NewHealthHandler(svcs.entitlement),
		adminHandler:       handlers.NewAdminHandler(svcs.licensing, svcs.entitlement, log.Named("admin_handler")),
	}
}

func newMiddlewares(svcs *services, log logger.Interface) *allMiddlewares {
	return &allMiddlewares{
		signedRequest: middleware.NewSignedRequestMiddleware(svcs.entitlement, log.Named("signed_request")),
		storeToken:    middleware.NewStoreTokenMiddleware(svcs.entitlement, "token", log.Named("store_token")),
		adminAuth:     middleware.NewAdminAuthMiddleware(svcs.adminTokens, log.Named("admin_auth")),
	}
}
