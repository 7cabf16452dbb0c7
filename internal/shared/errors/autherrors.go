package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// Request authentication error types
const (
	ErrorTypeMissingCredentials   ErrorType = "missing_credentials"
	ErrorTypeTimestampOutOfWindow ErrorType = "timestamp_out_of_window"
	ErrorTypeInvalidSignature     ErrorType = "invalid_signature"
	ErrorTypeRateLimited          ErrorType = "rate_limited"
	ErrorTypeTokenInvalid         ErrorType = "token_invalid"
)

// AuthError represents request-authentication failures. These are rejected
// before any business logic runs.
type AuthError struct {
	*AppError
	// ShouldLog determines if this error should be logged at warn level
	ShouldLog bool
	// SecurityEvent indicates a possible tampering or replay attempt
	SecurityEvent bool
	// RetryAfter is set for rate limiting and tells the caller when to retry
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return e.AppError.Error()
}

// Unwrap allows errors.Is and errors.As to work correctly
func (e *AuthError) Unwrap() error {
	return e.AppError
}

// NewMissingCredentialsError is returned when a signed call lacks its timestamp,
// signature or store token.
func NewMissingCredentialsError(details ...string) *AuthError {
	return &AuthError{
		AppError:      newAppError(ErrorTypeMissingCredentials, http.StatusUnauthorized, "Missing authentication headers", details),
		ShouldLog:     false,
		SecurityEvent: false,
	}
}

// NewTimestampOutOfWindowError is returned for stale or future-skewed requests.
func NewTimestampOutOfWindowError(window time.Duration) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeTimestampOutOfWindow,
			Message: "Request timestamp is outside the accepted window",
			Code:    http.StatusUnauthorized,
			Details: fmt.Sprintf("timestamp must be within %d seconds of server time", int(window.Seconds())),
		},
		ShouldLog:     true,
		SecurityEvent: true,
	}
}

// NewInvalidSignatureError is returned when the request MAC does not verify.
func NewInvalidSignatureError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeInvalidSignature,
			Message: "Invalid request signature",
			Code:    http.StatusUnauthorized,
		},
		ShouldLog:     true,
		SecurityEvent: true,
	}
}

// NewRateLimitedError is returned when a store exceeds its request budget.
func NewRateLimitedError(retryAfter time.Duration) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeRateLimited,
			Message: "Rate limit exceeded, please try again later",
			Code:    http.StatusTooManyRequests,
			Details: fmt.Sprintf("retry after %d seconds", int(retryAfter.Seconds())),
		},
		ShouldLog:     false,
		SecurityEvent: false,
		RetryAfter:    retryAfter,
	}
}

// NewTokenInvalidError creates an error for invalid admin tokens
func NewTokenInvalidError(tokenType string) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeTokenInvalid,
			Message: fmt.Sprintf("Invalid %s", tokenType),
			Code:    http.StatusUnauthorized,
			Details: "Token is invalid or has expired",
		},
		ShouldLog:     true,
		SecurityEvent: true,
	}
}

// IsAuthError checks if the error is an AuthError (supports wrapped errors via errors.As)
func IsAuthError(err error) bool {
	var authErr *AuthError
	return stderrors.As(err, &authErr)
}

// GetAuthError extracts AuthError from error chain (supports wrapped errors via errors.As)
func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// ShouldLogAuthError returns true if the authentication error should be logged
func ShouldLogAuthError(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.ShouldLog
	}
	return true
}

// IsSecurityEvent returns true if the error should be tracked as a security event
func IsSecurityEvent(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.SecurityEvent
	}
	return false
}
