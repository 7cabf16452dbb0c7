package store

import (
	"fmt"
	"sort"
)

// PlanTable resolves plan names to license limits. A nil limit means
// unlimited. Plans missing from the table resolve to the default cap so that
// a misconfigured plan fails closed.
type PlanTable struct {
	limits       map[Plan]*int
	defaultLimit int
}

// NewPlanTable builds a table from a plan -> limit map where 0 marks an
// explicitly unlimited plan. defaultLimit must be positive.
func NewPlanTable(limits map[string]int, defaultLimit int) (*PlanTable, error) {
	if defaultLimit <= 0 {
		return nil, fmt.Errorf("%w: default limit must be positive, got %d", ErrInvalidPlanTable, defaultLimit)
	}

	table := &PlanTable{
		limits:       make(map[Plan]*int, len(limits)),
		defaultLimit: defaultLimit,
	}
	for name, limit := range limits {
		plan := ParsePlan(name)
		if plan.IsEmpty() {
			return nil, fmt.Errorf("%w: empty plan name", ErrInvalidPlanTable)
		}
		switch {
		case limit < 0:
			return nil, fmt.Errorf("%w: plan %q has negative limit %d", ErrInvalidPlanTable, plan, limit)
		case limit == 0:
			table.limits[plan] = nil
		default:
			l := limit
			table.limits[plan] = &l
		}
	}
	return table, nil
}

// LimitFor returns the limit for plan and whether the plan was configured.
func (t *PlanTable) LimitFor(plan Plan) (*int, bool) {
	limit, ok := t.limits[plan]
	if !ok {
		l := t.defaultLimit
		return &l, false
	}
	if limit == nil {
		return nil, true
	}
	l := *limit
	return &l, true
}

// DefaultLimit returns the cap applied to unknown plans.
func (t *PlanTable) DefaultLimit() int {
	return t.defaultLimit
}

// Plans returns the configured plan names in sorted order.
func (t *PlanTable) Plans() []Plan {
	plans := make([]Plan, 0, len(t.limits))
	for p := range t.limits {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i] < plans[j] })
	return plans
}
