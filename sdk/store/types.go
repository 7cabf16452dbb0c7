// Package store provides a Go SDK for store plugins talking to the License
// Gate entitlement API.
package store

import (
	"fmt"
	"time"
)

// Snapshot is a store's allowance at response time. Remaining is nil for
// unlimited stores.
type Snapshot struct {
	Plan        string `json:"plan"`
	Count       int    `json:"count"`
	Limit       *int   `json:"limit"`
	Remaining   *int   `json:"remaining"`
	IsUnlimited bool   `json:"is_unlimited"`
}

// ReserveResult is returned for allowed and denied reservations.
type ReserveResult struct {
	Allowed bool `json:"allowed"`
	Snapshot
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message,omitempty"`
	UpgradeURL string `json:"upgrade_url,omitempty"`
	NextPlan   string `json:"next_plan,omitempty"`
}

// ReleaseResult reports whether a slot was freed.
type ReleaseResult struct {
	Released bool `json:"released"`
	Snapshot
}

// SyncResult compares the plugin's local count with the server count. The
// server count is authoritative.
type SyncResult struct {
	ServerCount   int    `json:"server_count"`
	ReportedCount int    `json:"reported_count"`
	Difference    int    `json:"difference"`
	Action        string `json:"action"`
	Limit         *int   `json:"limit"`
}

// StatusResult is the store's entitlement status.
type StatusResult struct {
	Connected bool `json:"connected"`
	Snapshot
	UsagePercent          float64 `json:"usage_percent"`
	OverLimit             bool    `json:"over_limit"`
	OverLimitAmount       int     `json:"over_limit_amount"`
	UpgradeAvailable      bool    `json:"upgrade_available"`
	NextPlan              string  `json:"next_plan,omitempty"`
	UpgradeURL            string  `json:"upgrade_url,omitempty"`
	PluginUpdateAvailable bool    `json:"plugin_update_available"`
	LatestPluginVersion   string  `json:"latest_plugin_version,omitempty"`
}

// Error types returned by the API.
const (
	ErrorTypeLimitReached         = "limit_reached"
	ErrorTypeStoreDisconnected    = "store_disconnected"
	ErrorTypeStoreNotFound        = "store_not_found"
	ErrorTypeRateLimited          = "rate_limited"
	ErrorTypeInvalidSignature     = "invalid_signature"
	ErrorTypeTimestampOutOfWindow = "timestamp_out_of_window"
	ErrorTypeMissingCredentials   = "missing_credentials"
)

// APIError is a non-2xx API response.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	// RetryAfter is set from the Retry-After header on rate limited calls.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d type=%s message=%s", e.StatusCode, e.Type, e.Message)
}

type apiResponse struct {
	Success bool     `json:"success"`
	Data    any      `json:"data"`
	Message string   `json:"message"`
	Error   *apiInfo `json:"error"`
}

type apiInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
