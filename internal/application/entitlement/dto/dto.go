package dto

import (
	"time"

	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/domain/store"
)

// SignedRequest carries the authentication material of a mutating call.
type SignedRequest struct {
	StoreToken string
	Timestamp  string
	Signature  string
	Body       []byte
}

// Snapshot is the store's allowance at response time. Remaining is null for
// unlimited stores.
type Snapshot struct {
	Plan        string `json:"plan"`
	Count       int    `json:"count"`
	Limit       *int   `json:"limit"`
	Remaining   *int   `json:"remaining"`
	IsUnlimited bool   `json:"is_unlimited"`
}

// NewSnapshot builds a Snapshot from a store aggregate.
func NewSnapshot(s *store.Store) Snapshot {
	e := s.Entitlement()
	return Snapshot{
		Plan:        e.Plan.String(),
		Count:       e.Count,
		Limit:       e.Limit,
		Remaining:   e.Remaining,
		IsUnlimited: e.IsUnlimited,
	}
}

type ReserveRequest struct {
	StoreToken     string
	LicenseKeyHash string
	ProductID      string
	SourceAddress  string
}

// ReserveResult is returned for both outcomes. A denial carries the reason,
// the unchanged snapshot and the upgrade target.
type ReserveResult struct {
	Allowed bool `json:"allowed"`
	Snapshot
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message,omitempty"`
	UpgradeURL string `json:"upgrade_url,omitempty"`
	NextPlan   string `json:"next_plan,omitempty"`
}

type ReleaseRequest struct {
	StoreToken     string
	LicenseKeyHash string
	SourceAddress  string
}

type ReleaseResult struct {
	Released bool `json:"released"`
	Snapshot
}

type StatusRequest struct {
	StoreToken    string
	PluginVersion string
}

type StatusResult struct {
	Connected bool `json:"connected"`
	Snapshot
	UsagePercent     float64 `json:"usage_percent"`
	OverLimit        bool    `json:"over_limit"`
	OverLimitAmount  int     `json:"over_limit_amount"`
	UpgradeAvailable bool    `json:"upgrade_available"`
	NextPlan         string  `json:"next_plan,omitempty"`
	UpgradeURL       string  `json:"upgrade_url,omitempty"`
	// PluginUpdateAvailable is set when the caller sent its plugin version
	// and a newer release is configured.
	PluginUpdateAvailable bool   `json:"plugin_update_available"`
	LatestPluginVersion   string `json:"latest_plugin_version,omitempty"`
}

type SyncRequest struct {
	StoreToken    string
	ReportedCount int
	SourceAddress string
}

// SyncAction is always server authoritative: the ledger never adopts a
// client-reported count.
const SyncAction = "server_authoritative"

type SyncResult struct {
	ServerCount   int    `json:"server_count"`
	ReportedCount int    `json:"reported_count"`
	Difference    int    `json:"difference"`
	Action        string `json:"action"`
	Limit         *int   `json:"limit"`
}

// Health statuses
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusDegraded  = "degraded"
	HealthStatusUnhealthy = "unhealthy"

	ComponentOK          = "ok"
	ComponentDegraded    = "degraded"
	ComponentDown        = "down"
	ComponentDisabled    = "disabled"
	DatabaseConnected    = "connected"
	DatabaseDisconnected = "disconnected"
)

type AuditHealth struct {
	Status        string     `json:"status"`
	Failures      int64      `json:"failures"`
	LastFailureAt *time.Time `json:"last_failure_at,omitempty"`
}

type HealthResult struct {
	Status          string      `json:"status"`
	Version         string      `json:"version"`
	Database        string      `json:"database"`
	ConnectedStores int64       `json:"connected_stores"`
	TotalStores     int64       `json:"total_stores"`
	EventsToday     int64       `json:"events_today"`
	StoresAtLimit   int64       `json:"stores_at_limit"`
	DenialsToday    int64       `json:"denials_today"`
	Timestamp       time.Time   `json:"timestamp"`
	Audit           AuditHealth `json:"audit"`
	Redis           string      `json:"redis"`
}

// StoreDetail is the admin view of a store. Signing material is never included.
type StoreDetail struct {
	Token      string `json:"token"`
	LicenseRef string `json:"license_ref,omitempty"`
	Connected  bool   `json:"connected"`
	Snapshot
	UsagePercent    float64    `json:"usage_percent"`
	OverLimit       bool       `json:"over_limit"`
	OverLimitAmount int        `json:"over_limit_amount"`
	SiteURL         string     `json:"site_url,omitempty"`
	SiteName        string     `json:"site_name,omitempty"`
	ConnectedAt     *time.Time `json:"connected_at,omitempty"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewStoreDetail maps a store aggregate to its admin view.
func NewStoreDetail(s *store.Store) *StoreDetail {
	return &StoreDetail{
		Token:           s.Token(),
		LicenseRef:      s.LicenseRef(),
		Connected:       s.IsConnected(),
		Snapshot:        NewSnapshot(s),
		UsagePercent:    s.Entitlement().UsagePercent,
		OverLimit:       s.IsOverLimit(),
		OverLimitAmount: s.OverLimitAmount(),
		SiteURL:         s.SiteURL(),
		SiteName:        s.SiteName(),
		ConnectedAt:     s.ConnectedAt(),
		LastSeenAt:      s.LastSeenAt(),
		CreatedAt:       s.CreatedAt(),
		UpdatedAt:       s.UpdatedAt(),
	}
}

type StoreUsageResult struct {
	Token string             `json:"token"`
	Days  int                `json:"days"`
	From  time.Time          `json:"from"`
	To    time.Time          `json:"to"`
	Usage []audit.DailyUsage `json:"usage"`
}
