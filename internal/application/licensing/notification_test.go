package licensing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
)

var testPolicy = Policy{
	ProductID:  "wp-plugin",
	PriceTiers: map[string]string{"price_solo": "solo", "price_studio": "Studio"},
}

func TestParseNotification(t *testing.T) {
	n, err := ParseNotification([]byte(`{"type":" License.Activated ","license_secret":"s3cret-key","plan":"solo"}`))
	require.NoError(t, err)
	assert.Equal(t, LicenseActivated, n.Type)

	_, err = ParseNotification([]byte(`{"type":`))
	assert.True(t, apperrors.IsValidationError(err))
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		n          Notification
		wantAction Action
		wantPlan   string
		wantToken  string
		wantErr    bool
	}{
		{
			name:       "activation with price tier",
			n:          Notification{Type: LicenseActivated, LicenseSecret: "secret-1", ProductID: "wp-plugin", PriceID: "price_studio"},
			wantAction: ActionConnect,
			wantPlan:   "studio",
			wantToken:  auth.DeriveToken("secret-1"),
		},
		{
			name:       "explicit plan wins over price",
			n:          Notification{Type: LicenseActivated, LicenseSecret: "secret-1", ProductID: "wp-plugin", Plan: "Agency", PriceID: "price_solo"},
			wantAction: ActionConnect,
			wantPlan:   "agency",
			wantToken:  auth.DeriveToken("secret-1"),
		},
		{
			name:       "price id matched case-insensitively",
			n:          Notification{Type: PlanChanged, StoreToken: "tok", ProductID: "wp-plugin", PriceID: "PRICE_Solo"},
			wantAction: ActionSetPlan,
			wantPlan:   "solo",
			wantToken:  "tok",
		},
		{
			name:    "activation without secret",
			n:       Notification{Type: LicenseActivated, ProductID: "wp-plugin", Plan: "solo"},
			wantErr: true,
		},
		{
			name:    "unknown price tier",
			n:       Notification{Type: PlanChanged, StoreToken: "tok", ProductID: "wp-plugin", PriceID: "price_gold"},
			wantErr: true,
		},
		{
			name:       "other product is ignored",
			n:          Notification{Type: LicenseDeactivated, StoreToken: "tok", ProductID: "theme"},
			wantAction: ActionIgnore,
		},
		{
			name:       "missing product is ignored when filtering",
			n:          Notification{Type: LicenseDeactivated, StoreToken: "tok"},
			wantAction: ActionIgnore,
		},
		{
			name:       "deactivation by license reference",
			n:          Notification{Type: LicenseDeactivated, LicenseRef: "lic-9", ProductID: "wp-plugin"},
			wantAction: ActionDisconnect,
		},
		{
			name:       "plan change by secret",
			n:          Notification{Type: PlanChanged, LicenseSecret: "secret-2", ProductID: "wp-plugin", Plan: "solo"},
			wantAction: ActionSetPlan,
			wantPlan:   "solo",
			wantToken:  auth.DeriveToken("secret-2"),
		},
		{
			name:    "plan change without address",
			n:       Notification{Type: PlanChanged, ProductID: "wp-plugin", Plan: "solo"},
			wantErr: true,
		},
		{
			name:    "unsupported type",
			n:       Notification{Type: "license.renewed", ProductID: "wp-plugin"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decide(&tt.n, testPolicy)
			if tt.wantErr {
				assert.True(t, apperrors.IsValidationError(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, cmd.Action)
			assert.Equal(t, tt.wantPlan, cmd.Plan)
			assert.Equal(t, tt.wantToken, cmd.StoreToken)
		})
	}
}

func TestDecide_NoProductFilter(t *testing.T) {
	cmd, err := Decide(&Notification{Type: LicenseDeactivated, StoreToken: "tok"}, Policy{})
	require.NoError(t, err)
	assert.Equal(t, ActionDisconnect, cmd.Action)
	assert.Equal(t, "tok", cmd.StoreToken)
}
