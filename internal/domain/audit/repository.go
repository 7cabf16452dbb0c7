package audit

import (
	"context"
	"time"
)

// Counts aggregates events inside a time range.
type Counts struct {
	Total   int64
	Denials int64
}

// DailyUsage is one business day of a store's recorded activity.
type DailyUsage struct {
	Day      string `json:"day"`
	Reserved int64  `json:"reserved"`
	Released int64  `json:"released"`
	Denied   int64  `json:"denied"`
	Synced   int64  `json:"synced"`
}

// Repository is the append-only event sink. It exposes no update or delete.
type Repository interface {
	Append(ctx context.Context, e *Event) error

	// CountBetween aggregates all stores' events in [from, to].
	CountBetween(ctx context.Context, from, to time.Time) (*Counts, error)

	// ListByStore returns a store's events in [from, to], oldest first.
	ListByStore(ctx context.Context, storeToken string, from, to time.Time) ([]*Event, error)
}

// GroupByDay folds events into per-day usage using dayKey to bucket
// timestamps. Days without events are omitted.
func GroupByDay(events []*Event, dayKey func(time.Time) string) []DailyUsage {
	var out []DailyUsage
	index := make(map[string]int)
	for _, e := range events {
		key := dayKey(e.CreatedAt())
		i, ok := index[key]
		if !ok {
			out = append(out, DailyUsage{Day: key})
			i = len(out) - 1
			index[key] = i
		}
		switch e.Type() {
		case EventReserved:
			out[i].Reserved++
		case EventReleased:
			out[i].Released++
		case EventReserveDenied:
			out[i].Denied++
		case EventSync:
			out[i].Synced++
		}
	}
	return out
}
