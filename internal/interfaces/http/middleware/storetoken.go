package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/shared/constants"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// StoreTokenMiddleware admits unsigned status reads addressed by the store
// token in the path. The store must exist and be within its rate limit.
type StoreTokenMiddleware struct {
	authenticator StoreAuthenticator
	param         string
	logger        logger.Interface
}

func NewStoreTokenMiddleware(authenticator StoreAuthenticator, param string, logger logger.Interface) *StoreTokenMiddleware {
	return &StoreTokenMiddleware{
		authenticator: authenticator,
		param:         param,
		logger:        logger,
	}
}

func (m *StoreTokenMiddleware) RequireStoreToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param(m.param)

		s, err := m.authenticator.AuthorizeStatus(c.Request.Context(), token)
		if err != nil {
			m.logger.Debugw("status request rejected",
				"error", err,
				"token", utils.MaskToken(token),
				"ip", c.ClientIP(),
			)
			utils.AbortWithError(c, err)
			return
		}

		c.Set(constants.ContextKeyStore, s)
		c.Set(constants.ContextKeyStoreToken, s.Token())
		c.Next()
	}
}
