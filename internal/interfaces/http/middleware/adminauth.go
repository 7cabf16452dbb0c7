package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	"github.com/orris-inc/licensegate/internal/shared/constants"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// AdminAuthMiddleware guards the routes used by the subscription system and
// operators with HS256 bearer tokens.
type AdminAuthMiddleware struct {
	tokens *auth.AdminTokenService
	logger logger.Interface
}

func NewAdminAuthMiddleware(tokens *auth.AdminTokenService, logger logger.Interface) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		tokens: tokens,
		logger: logger,
	}
}

// RequireScope admits a valid admin token carrying scope. ScopeAll grants
// every scope.
func (m *AdminAuthMiddleware) RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.AbortWithError(c, apperrors.NewUnauthorizedError("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.AbortWithError(c, apperrors.NewUnauthorizedError("invalid authorization header format"))
			return
		}

		claims, err := m.tokens.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify admin token", "error", err, "ip", c.ClientIP())
			utils.AbortWithError(c, apperrors.NewTokenInvalidError("admin token"))
			return
		}

		if claims.Scope != scope && claims.Scope != auth.ScopeAll {
			m.logger.Warnw("admin token lacks scope",
				"subject", claims.Subject,
				"scope", claims.Scope,
				"required_scope", scope,
			)
			utils.AbortWithError(c, apperrors.NewForbiddenError("insufficient scope"))
			return
		}

		c.Set(constants.ContextKeyAdminSub, claims.Subject)
		c.Next()
	}
}
