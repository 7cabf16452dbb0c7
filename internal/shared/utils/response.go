package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/shared/constants"
	"github.com/orris-inc/licensegate/internal/shared/errors"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorInfo represents error information in API response
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse sends a successful response with custom status code
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// ErrorResponseWithError sends an error response based on error type
func ErrorResponseWithError(c *gin.Context, err error) {
	DeniedResponse(c, err, nil)
}

// DeniedResponse sends an error envelope that also carries a data payload.
// Used for expected denials where the caller needs a snapshot, such as a
// reservation refused at the plan limit.
func DeniedResponse(c *gin.Context, err error, data interface{}) {
	statusCode, info := errorInfo(err)

	if authErr := errors.GetAuthError(err); authErr != nil && authErr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(authErr.RetryAfter.Seconds())))
	}

	c.JSON(statusCode, APIResponse{
		Success: false,
		Data:    data,
		Error:   &info,
	})
}

// AbortWithError writes the error envelope and stops the middleware chain.
func AbortWithError(c *gin.Context, err error) {
	ErrorResponseWithError(c, err)
	c.Abort()
}

func errorInfo(err error) (int, ErrorInfo) {
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr.Code, ErrorInfo{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Details: appErr.Details,
		}
	}
	// Non-AppError details are never exposed to the caller.
	return http.StatusInternalServerError, ErrorInfo{
		Type:    string(errors.ErrorTypeInternal),
		Message: constants.ErrMsgInternalServerError,
	}
}
