package handlers

// ReserveLicenseRequest is the body of POST /licenses/reserve.
type ReserveLicenseRequest struct {
	StoreToken     string `json:"store_token,omitempty"`
	LicenseKeyHash string `json:"license_key_hash" validate:"required,max=128" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	ProductID      string `json:"product_id,omitempty" validate:"omitempty,max=64" example:"wp-plugin"`
}

// ReleaseLicenseRequest is the body of POST /licenses/release.
type ReleaseLicenseRequest struct {
	StoreToken     string `json:"store_token,omitempty"`
	LicenseKeyHash string `json:"license_key_hash,omitempty" validate:"omitempty,max=128"`
}

// SyncLicensesRequest is the body of POST /licenses/sync.
type SyncLicensesRequest struct {
	StoreToken    string `json:"store_token,omitempty"`
	ReportedCount *int   `json:"reported_count" validate:"required,gte=0" example:"42"`
}
