package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensegate/internal/domain/store"
)

func TestNewEvent_DenialReasonMatchesAllowed(t *testing.T) {
	_, err := NewEvent("tok", EventReserved, Details{Allowed: true, CountBefore: 1, CountAfter: 2})
	require.NoError(t, err)

	_, err = NewEvent("tok", EventReserveDenied, Details{Allowed: false, DenialReason: store.DenialLimitReached})
	require.NoError(t, err)

	_, err = NewEvent("tok", EventReserveDenied, Details{Allowed: false})
	assert.ErrorIs(t, err, ErrInvalidDenialReason)

	_, err = NewEvent("tok", EventReserved, Details{Allowed: true, DenialReason: store.DenialLimitReached})
	assert.ErrorIs(t, err, ErrInvalidDenialReason)
}

func TestNewEvent_Validation(t *testing.T) {
	_, err := NewEvent("", EventSync, Details{Allowed: true})
	assert.ErrorIs(t, err, ErrStoreTokenRequired)

	_, err = NewEvent("tok", EventType("deleted"), Details{Allowed: true})
	assert.ErrorIs(t, err, ErrInvalidEventType)
}

func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	mk := func(typ EventType, at time.Time) *Event {
		d := Details{Allowed: typ != EventReserveDenied}
		if !d.Allowed {
			d.DenialReason = store.DenialLimitReached
		}
		return ReconstructEvent(1, "tok", typ, d, at)
	}

	usage := GroupByDay([]*Event{
		mk(EventReserved, day1),
		mk(EventReserved, day1),
		mk(EventReserveDenied, day1),
		mk(EventReleased, day2),
		mk(EventSync, day2),
	}, func(t time.Time) string { return t.Format("2006-01-02") })

	require.Len(t, usage, 2)
	assert.Equal(t, DailyUsage{Day: "2026-05-01", Reserved: 2, Denied: 1}, usage[0])
	assert.Equal(t, DailyUsage{Day: "2026-05-02", Released: 1, Synced: 1}, usage[1])
}
