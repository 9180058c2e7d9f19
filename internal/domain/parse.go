package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidTime reports an hour/minute pair outside 00:00..23:59
	// or a clock string that is not HH:MM.
	ErrInvalidTime = errors.New("invalid time")
	// ErrInvalidDate reports a birth date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ValidateTime checks that hour and minute form a valid time of day.
func ValidateTime(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%w: hour %d", ErrInvalidTime, hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("%w: minute %d", ErrInvalidTime, minute)
	}
	return nil
}

// ParseClock parses a 24-hour "HH:MM" string ("9:05" is accepted too).
func ParseClock(s string) (hour, minute int, err error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q, expected HH:MM", ErrInvalidTime, s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if err := ValidateTime(hour, minute); err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}

// FormatClock returns HH:MM.
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ParseBirthDate parses YYYY-MM-DD into a date at UTC midnight.
// Dates in the future relative to now are rejected.
func ParseBirthDate(s string, now time.Time) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrInvalidDate, s)
	}
	if d.After(dateOf(now)) {
		return time.Time{}, fmt.Errorf("%w: %s is in the future", ErrInvalidDate, s)
	}
	return d, nil
}

// FormatDate returns YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(time.DateOnly)
}
