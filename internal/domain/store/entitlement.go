package store

import "math"

// Entitlement is the computed allowance of a store at one point in time.
type Entitlement struct {
	Plan          Plan
	Limit         *int
	Count         int
	Remaining     *int
	UsagePercent  float64
	IsUnlimited   bool
	NextPlan      Plan
	UpgradeExists bool
}

// ComputeEntitlement derives remaining capacity, usage and the upgrade target.
// Remaining and usage are zero-floored; an unlimited store has nil Remaining
// and zero usage.
func ComputeEntitlement(plan Plan, limit *int, count int) Entitlement {
	e := Entitlement{
		Plan:        plan,
		Limit:       limit,
		Count:       count,
		IsUnlimited: limit == nil,
	}
	e.NextPlan, e.UpgradeExists = plan.Next()

	if limit == nil {
		return e
	}

	remaining := *limit - count
	if remaining < 0 {
		remaining = 0
	}
	e.Remaining = &remaining
	e.UsagePercent = math.Round(float64(count)/float64(*limit)*1000) / 10
	return e
}

// AtLimit reports whether no further reservation fits.
func (e Entitlement) AtLimit() bool {
	return e.Limit != nil && e.Count >= *e.Limit
}
