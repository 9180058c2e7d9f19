package domain

import "time"

// NextDaily returns the first instant strictly after t at which the wall
// clock in loc reads hour:minute.
//
// Daylight-saving rules: when hour:minute falls into a spring-forward gap the
// occurrence is the end of the gap (the first valid local instant), so the
// day is not skipped. When it falls into a fall-back overlap only the earlier
// of the two instants counts, so the day is not fired twice.
func NextDaily(t time.Time, loc *time.Location, hour, minute int) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	// Occurrences grow monotonically by date; starting one day back covers
	// gaps that push yesterday's occurrence past local midnight.
	for i := -1; i <= 2; i++ {
		at := occurrence(y, m, d+i, hour, minute, loc)
		if at.After(t) {
			return at
		}
	}
	// Unreachable for valid zones: three calendar days always contain an
	// occurrence after t.
	return occurrence(y, m, d+3, hour, minute, loc)
}

// LastDaily returns the latest occurrence of hour:minute in loc at or before
// t, under the same daylight-saving rules as NextDaily.
func LastDaily(t time.Time, loc *time.Location, hour, minute int) time.Time {
	at := NextDaily(t.Add(-72*time.Hour), loc, hour, minute)
	for {
		next := NextDaily(at, loc, hour, minute)
		if next.After(t) {
			return at
		}
		at = next
	}
}

// occurrence returns the instant the given local date reaches hour:minute.
func occurrence(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	at := time.Date(year, month, day, hour, minute, 0, 0, loc)
	want := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	got := wallClock(at)

	switch {
	case got.Equal(want):
		if twin, ok := earlierTwin(at); ok {
			return twin
		}
		return at
	case got.After(want):
		// Gap; time.Date resolved with the post-transition offset.
		if start, _ := at.ZoneBounds(); !start.IsZero() {
			return start
		}
		return at
	default:
		// Gap; time.Date resolved with the pre-transition offset.
		if _, end := at.ZoneBounds(); !end.IsZero() {
			return end
		}
		return at
	}
}

// earlierTwin reports the first instant of a fall-back overlap that shows
// the same wall clock as at, if at is the second one.
func earlierTwin(at time.Time) (time.Time, bool) {
	start, _ := at.ZoneBounds()
	if start.IsZero() {
		return at, false
	}
	_, before := start.Add(-time.Second).Zone()
	_, current := at.Zone()
	shift := time.Duration(before-current) * time.Second
	if shift <= 0 {
		return at, false
	}
	twin := at.Add(-shift)
	if twin.Before(start) && wallClock(twin).Equal(wallClock(at)) {
		return twin, true
	}
	return at, false
}

// wallClock returns the local reading of t as a UTC time, for comparing wall
// clocks across offsets.
func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
