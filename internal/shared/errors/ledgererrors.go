package errors

import "net/http"

// Quota ledger error types
const (
	ErrorTypeStoreNotFound      ErrorType = "store_not_found"
	ErrorTypeStoreDisconnected  ErrorType = "store_disconnected"
	ErrorTypeLimitReached       ErrorType = "limit_reached"
	ErrorTypePersistenceFailure ErrorType = "persistence_failure"
	ErrorTypeAuditWriteFailure  ErrorType = "audit_write_failure"
)

// NewStoreNotFoundError is returned when no store matches a token.
func NewStoreNotFoundError() *AppError {
	return &AppError{
		Type:    ErrorTypeStoreNotFound,
		Message: "Store not found",
		Code:    http.StatusNotFound,
	}
}

// NewStoreDisconnectedError is returned when a disconnected store attempts a reservation.
func NewStoreDisconnectedError() *AppError {
	return &AppError{
		Type:    ErrorTypeStoreDisconnected,
		Message: "Store is disconnected",
		Code:    http.StatusForbidden,
		Details: "reconnect the store to resume license creation",
	}
}

// NewLimitReachedError is returned when a plan's license cap has been reached.
func NewLimitReachedError(details ...string) *AppError {
	return newAppError(ErrorTypeLimitReached, http.StatusForbidden, "License limit reached", details)
}

// NewPersistenceFailureError wraps storage failures. The underlying cause is
// never exposed to the caller.
func NewPersistenceFailureError() *AppError {
	return &AppError{
		Type:    ErrorTypePersistenceFailure,
		Message: "Storage is temporarily unavailable",
		Code:    http.StatusInternalServerError,
	}
}

// NewAuditWriteFailureError describes a failed audit append. It is reported
// through health, never returned to a store.
func NewAuditWriteFailureError(details ...string) *AppError {
	return newAppError(ErrorTypeAuditWriteFailure, http.StatusInternalServerError, "Audit log write failed", details)
}
