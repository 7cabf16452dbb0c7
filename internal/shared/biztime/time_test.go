package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayBoundaries(t *testing.T) {
	ts := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), StartOfDayUTC(ts))
	assert.Equal(t, time.Date(2026, 3, 14, 23, 59, 59, 999999999, time.UTC), EndOfDayUTC(ts))
	assert.Equal(t, "2026-03-14", DayKey(ts))
}

func TestDaysBackUTC(t *testing.T) {
	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), DaysBackUTC(ts, 1))
	assert.Equal(t, time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC), DaysBackUTC(ts, 7))
	assert.Equal(t, DaysBackUTC(ts, 1), DaysBackUTC(ts, 0))
}
