package dto

import (
	"github.com/orris-inc/licensegate/internal/domain/store"
)

// ConnectRequest links a licensed store to the ledger. LicenseSecret is
// consumed to derive credentials and is never stored.
type ConnectRequest struct {
	LicenseSecret string `json:"license_secret" validate:"required,min=8"`
	LicenseRef    string `json:"license_ref" validate:"omitempty,max=191"`
	Plan          string `json:"plan" validate:"required,max=32"`
	SiteURL       string `json:"site_url" validate:"omitempty,url,max=512"`
	SiteName      string `json:"site_name" validate:"omitempty,max=255"`
}

// ConnectResult is the only response that ever carries SecretMaterial.
type ConnectResult struct {
	StoreToken     string `json:"store_token"`
	SecretMaterial string `json:"secret_material"`
	Plan           string `json:"plan"`
	Limit          *int   `json:"limit"`
	Count          int    `json:"count"`
	Reactivated    bool   `json:"reactivated"`
}

type DisconnectResult struct {
	StoreToken string `json:"store_token"`
	// Changed is false when the store was already disconnected.
	Changed bool `json:"changed"`
	Count   int  `json:"count"`
}

type SetPlanResult struct {
	StoreToken      string `json:"store_token"`
	Plan            string `json:"plan"`
	Limit           *int   `json:"limit"`
	Count           int    `json:"count"`
	OverLimit       bool   `json:"over_limit"`
	OverLimitAmount int    `json:"over_limit_amount"`
	// KnownPlan is false when the plan is missing from the plan table and
	// the default cap was applied.
	KnownPlan bool `json:"known_plan"`
}

func NewSetPlanResult(s *store.Store, known bool) *SetPlanResult {
	return &SetPlanResult{
		StoreToken:      s.Token(),
		Plan:            s.Plan().String(),
		Limit:           s.Limit(),
		Count:           s.Count(),
		OverLimit:       s.IsOverLimit(),
		OverLimitAmount: s.OverLimitAmount(),
		KnownPlan:       known,
	}
}

// NotificationResult reports what an inbound notification did.
type NotificationResult struct {
	Type    string `json:"type"`
	Action  string `json:"action"`
	Ignored bool   `json:"ignored"`
	Reason  string `json:"reason,omitempty"`

	Connect    *ConnectResult    `json:"connect,omitempty"`
	Disconnect *DisconnectResult `json:"disconnect,omitempty"`
	Plan       *SetPlanResult    `json:"plan,omitempty"`
}
