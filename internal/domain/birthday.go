package domain

import "time"

// dateOf drops the clock part of t, keeping the calendar date t has in its
// own location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Age returns full years between birth and today.
func Age(birth, today time.Time) int {
	b, t := dateOf(birth), dateOf(today)
	years := t.Year() - b.Year()
	if t.Month() < b.Month() || (t.Month() == b.Month() && t.Day() < b.Day()) {
		years--
	}
	return years
}

// DaysUntilBirthday returns 0 on the birthday itself. A Feb 29 birthday is
// celebrated on Mar 1 in common years.
func DaysUntilBirthday(birth, today time.Time) int {
	b, t := dateOf(birth), dateOf(today)
	next := time.Date(t.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(t) {
		next = time.Date(t.Year()+1, b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	}
	return int(next.Sub(t).Hours() / 24)
}
