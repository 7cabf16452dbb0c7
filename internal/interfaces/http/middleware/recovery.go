package middleware

import (
	"errors"
	"net"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/shared/constants"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// Recovery turns a handler panic into a generic 500. Headers and bodies are
// never logged since they carry signatures and admin tokens.
func Recovery(log logger.Interface) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		args := []any{
			"path", c.FullPath(),
			"method", c.Request.Method,
			"error", recovered,
		}
		if token := c.GetString(constants.ContextKeyStoreToken); token != "" {
			args = append(args, "store", utils.MaskToken(token))
		}

		if isBrokenConnection(recovered) {
			log.Warnw("client connection broken during request", args...)
			c.Abort()
			return
		}

		log.Errorw("panic recovered", append(args, "stack", string(debug.Stack()))...)
		utils.AbortWithError(c, apperrors.NewInternalError(constants.ErrMsgInternalServerError))
	})
}

func isBrokenConnection(recovered any) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if !errors.As(opErr.Err, &sysErr) {
		return false
	}

	msg := strings.ToLower(sysErr.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
