package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayKey(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:30 UTC is still the previous evening in New York
	utcMorning := time.Date(2025, 6, 15, 3, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-06-15", DayKey(utcMorning, time.UTC))
	assert.Equal(t, "2025-06-14", DayKey(utcMorning, loc))
}

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	at := time.Date(2025, 6, 15, 17, 42, 13, 0, loc)
	start := StartOfDay(at, loc)

	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())
	assert.Equal(t, 15, start.Day())
	assert.True(t, SameDay(at, start, loc))
}

func TestSameDay(t *testing.T) {
	loc := time.UTC

	a := time.Date(2025, 6, 15, 0, 0, 1, 0, loc)
	b := time.Date(2025, 6, 15, 23, 59, 59, 0, loc)
	c := time.Date(2025, 6, 16, 0, 0, 0, 0, loc)

	assert.True(t, SameDay(a, b, loc))
	assert.False(t, SameDay(b, c, loc))
}

func TestDayEnded(t *testing.T) {
	loc := time.UTC
	due := time.Date(2025, 6, 15, 22, 0, 0, 0, loc)

	tests := []struct {
		name  string
		now   time.Time
		ended bool
	}{
		{
			name:  "same day before due",
			now:   time.Date(2025, 6, 15, 10, 0, 0, 0, loc),
			ended: false,
		},
		{
			name:  "same day after due",
			now:   time.Date(2025, 6, 15, 23, 30, 0, 0, loc),
			ended: false,
		},
		{
			name:  "first instant of next day",
			now:   time.Date(2025, 6, 16, 0, 0, 0, 0, loc),
			ended: true,
		},
		{
			name:  "days later",
			now:   time.Date(2025, 6, 20, 12, 0, 0, 0, loc),
			ended: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ended, DayEnded(due, tt.now, loc))
		})
	}
}

func TestSameMinute(t *testing.T) {
	base := time.Date(2025, 6, 15, 14, 25, 0, 0, time.UTC)

	assert.True(t, SameMinute(base, base.Add(30*time.Second)))
	assert.True(t, SameMinute(base.Add(59*time.Second), base))
	assert.False(t, SameMinute(base, base.Add(time.Minute)))
	assert.False(t, SameMinute(base, base.Add(-time.Second)))
}
