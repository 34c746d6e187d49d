package common

import "time"

// Day-boundary semantics are fixed to a single canonical timezone for the
// whole system; the helpers below must always be called with that location.

// DayKeyFormat is the calendar-date key used for per-day aggregate buckets.
const DayKeyFormat = "2006-01-02"

// DayKey returns the calendar-date key for t in the given location
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyFormat)
}

// StartOfDay returns midnight of t's calendar day in the given location
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DayEnded reports whether the calendar day containing t has ended by now,
// i.e. now is on a strictly later calendar day than t.
func DayEnded(t, now time.Time, loc *time.Location) bool {
	return StartOfDay(now, loc).After(StartOfDay(t, loc))
}

// SameMinute reports whether a and b fall in the same minute bucket.
// Minute-bucket equality, not range containment: a sweep that misses its
// minute window will not re-fire for a passed instant.
func SameMinute(a, b time.Time) bool {
	return a.Truncate(time.Minute).Equal(b.Truncate(time.Minute))
}
