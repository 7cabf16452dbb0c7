// Package biztime resolves business-day boundaries for reporting.
// Storage and transport use UTC; the business timezone only decides where a
// "day" starts when counting events for health and usage reports.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTimezone is used when server.timezone is not configured.
const DefaultTimezone = "UTC"

// DayLayout is the key format for daily aggregates.
const DayLayout = "2006-01-02"

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// Location returns the business timezone, initializing the default on first use.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDayUTC returns midnight of t's business day, expressed in UTC.
func StartOfDayUTC(t time.Time) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, Location()).UTC()
}

// EndOfDayUTC returns the last instant of t's business day, expressed in UTC.
func EndOfDayUTC(t time.Time) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month(), b.Day(), 23, 59, 59, 999999999, Location()).UTC()
}

// DaysBackUTC returns the start of the business day that is days-1 days
// before t, so that [DaysBackUTC(t, n), EndOfDayUTC(t)] spans n business days.
func DaysBackUTC(t time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	b := t.In(Location())
	return time.Date(b.Year(), b.Month(), b.Day()-(days-1), 0, 0, 0, 0, Location()).UTC()
}

// DayKey formats t as its business-day key (YYYY-MM-DD).
func DayKey(t time.Time) string {
	return t.In(Location()).Format(DayLayout)
}
