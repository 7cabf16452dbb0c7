package licensing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/orris-inc/licensegate/internal/application/licensing/dto"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
)

// NotificationType is one of the inbound messages the subscription system sends.
type NotificationType string

const (
	LicenseActivated   NotificationType = "license.activated"
	LicenseDeactivated NotificationType = "license.deactivated"
	PlanChanged        NotificationType = "plan.changed"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case LicenseActivated, LicenseDeactivated, PlanChanged:
		return true
	default:
		return false
	}
}

// Notification is the wire form shared by the webhook and the Redis inbox.
// A store is addressed by store_token, by license_secret or by license_ref,
// in that order of preference.
type Notification struct {
	Type          NotificationType `json:"type" validate:"required"`
	StoreToken    string           `json:"store_token,omitempty"`
	LicenseSecret string           `json:"license_secret,omitempty"`
	LicenseRef    string           `json:"license_ref,omitempty"`
	ProductID     string           `json:"product_id,omitempty"`
	PriceID       string           `json:"price_id,omitempty"`
	Plan          string           `json:"plan,omitempty"`
	SiteURL       string           `json:"site_url,omitempty"`
	SiteName      string           `json:"site_name,omitempty"`
}

// ParseNotification decodes one notification payload.
func ParseNotification(payload []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, apperrors.NewValidationError("malformed notification", err.Error())
	}
	n.Type = NotificationType(strings.ToLower(strings.TrimSpace(string(n.Type))))
	return &n, nil
}

// Policy is the deployment's view of which licenses it enforces.
type Policy struct {
	// ProductID, when set, drops notifications for any other product.
	ProductID string
	// PriceTiers maps an external price identifier to a plan name.
	PriceTiers map[string]string
}

// Action is what the ledger must do for a notification.
type Action string

const (
	ActionConnect    Action = "connect"
	ActionDisconnect Action = "disconnect"
	ActionSetPlan    Action = "set_plan"
	ActionIgnore     Action = "ignore"
)

// Command is the outcome of deciding on a notification. StoreToken is empty
// when only LicenseRef identifies the store and a lookup is needed.
type Command struct {
	Action     Action
	StoreToken string
	LicenseRef string
	Plan       string
	Connect    *dto.ConnectRequest
	Reason     string
}

// Decide maps a notification to a ledger command. It performs no I/O.
func Decide(n *Notification, policy Policy) (Command, error) {
	if !n.Type.IsValid() {
		return Command{}, apperrors.NewValidationError("unsupported notification type", string(n.Type))
	}

	if policy.ProductID != "" && n.ProductID != policy.ProductID {
		return Command{
			Action: ActionIgnore,
			Reason: fmt.Sprintf("product %q is not enforced here", n.ProductID),
		}, nil
	}

	switch n.Type {
	case LicenseActivated:
		if n.LicenseSecret == "" {
			return Command{}, apperrors.NewValidationError("license_secret is required for license.activated")
		}
		plan, err := resolvePlan(n, policy)
		if err != nil {
			return Command{}, err
		}
		return Command{
			Action:     ActionConnect,
			StoreToken: auth.DeriveToken(n.LicenseSecret),
			LicenseRef: n.LicenseRef,
			Plan:       plan,
			Connect: &dto.ConnectRequest{
				LicenseSecret: n.LicenseSecret,
				LicenseRef:    n.LicenseRef,
				Plan:          plan,
				SiteURL:       n.SiteURL,
				SiteName:      n.SiteName,
			},
		}, nil

	case LicenseDeactivated:
		token, err := addressedToken(n)
		if err != nil {
			return Command{}, err
		}
		return Command{Action: ActionDisconnect, StoreToken: token, LicenseRef: n.LicenseRef}, nil

	default:
		token, err := addressedToken(n)
		if err != nil {
			return Command{}, err
		}
		plan, err := resolvePlan(n, policy)
		if err != nil {
			return Command{}, err
		}
		return Command{Action: ActionSetPlan, StoreToken: token, LicenseRef: n.LicenseRef, Plan: plan}, nil
	}
}

// resolvePlan prefers an explicit plan over the price-tier mapping.
func resolvePlan(n *Notification, policy Policy) (string, error) {
	if plan := store.ParsePlan(n.Plan); !plan.IsEmpty() {
		return plan.String(), nil
	}
	if n.PriceID != "" {
		if name, ok := policy.PriceTiers[n.PriceID]; ok {
			return store.ParsePlan(name).String(), nil
		}
		// viper lowercases map keys loaded from config
		if name, ok := policy.PriceTiers[strings.ToLower(n.PriceID)]; ok {
			return store.ParsePlan(name).String(), nil
		}
		return "", apperrors.NewValidationError("unknown price tier", n.PriceID)
	}
	return "", apperrors.NewValidationError("plan or price_id is required")
}

func addressedToken(n *Notification) (string, error) {
	switch {
	case n.StoreToken != "":
		return n.StoreToken, nil
	case n.LicenseSecret != "":
		return auth.DeriveToken(n.LicenseSecret), nil
	case n.LicenseRef != "":
		return "", nil
	default:
		return "", apperrors.NewValidationError("store_token, license_secret or license_ref is required")
	}
}
