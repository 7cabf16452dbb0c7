package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/shared/constants"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// RequestLogger logs one line per request. Store tokens are masked and the
// route template replaces the raw path, which can embed a token.
func RequestLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}

		if token := c.GetString(constants.ContextKeyStoreToken); token != "" {
			args = append(args, "store", utils.MaskToken(token))
		}
		if version := c.GetHeader(constants.HeaderPluginVersion); version != "" {
			args = append(args, "plugin_version", version)
		}
		if subject := c.GetString(constants.ContextKeyAdminSub); subject != "" {
			args = append(args, "admin", subject)
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			log.Errorw("request failed", args...)
		case status >= 400:
			log.Warnw("request rejected", args...)
		default:
			log.Debugw("request completed", args...)
		}
	}
}
