// Package store provides the quota ledger aggregate: one Store per connected
// customer instance, its plan, limit and authoritative license count.
package store

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Plan is a named entitlement tier determining the license limit.
type Plan string

const (
	PlanSolo   Plan = "solo"
	PlanStudio Plan = "studio"
	PlanAgency Plan = "agency"
)

// planOrder lists the upgrade path from the entry plan to the top tier.
var planOrder = []Plan{PlanSolo, PlanStudio, PlanAgency}

var planDisplayNames = func() map[Plan]string {
	names := make(map[Plan]string, len(planOrder))
	for _, p := range planOrder {
		names[p] = titleCase(string(p))
	}
	return names
}()

// titleCase builds a Caser per call since a Caser is stateful and not safe
// for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// ParsePlan normalizes a plan name. The result may still be a plan unknown
// to the plan table; such plans resolve to the default cap.
func ParsePlan(s string) Plan {
	return Plan(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the string representation of the plan
func (p Plan) String() string {
	return string(p)
}

// DisplayName returns the plan name as shown to people, e.g. "Studio".
func (p Plan) DisplayName() string {
	if name, ok := planDisplayNames[p]; ok {
		return name
	}
	return titleCase(string(p))
}

// IsEmpty reports whether no plan name was given.
func (p Plan) IsEmpty() bool {
	return p == ""
}

// Next returns the plan one tier above p. The top tier and plans outside the
// upgrade path have no next plan.
func (p Plan) Next() (Plan, bool) {
	for i, candidate := range planOrder {
		if candidate == p && i+1 < len(planOrder) {
			return planOrder[i+1], true
		}
	}
	return "", false
}

// DenialReason explains why a reservation was refused.
type DenialReason string

const (
	DenialStoreNotFound     DenialReason = "store_not_found"
	DenialStoreDisconnected DenialReason = "store_disconnected"
	DenialLimitReached      DenialReason = "limit_reached"
)

// IsValid checks if the denial reason is valid
func (r DenialReason) IsValid() bool {
	switch r {
	case DenialStoreNotFound, DenialStoreDisconnected, DenialLimitReached:
		return true
	default:
		return false
	}
}

// String returns the string representation of the denial reason
func (r DenialReason) String() string {
	return string(r)
}
