package domain

import "time"

// Reminder is a persisted daily broadcast rule for one chat.
type Reminder struct {
	ID        int64
	ChatID    int64
	Hour      int // 0..23, local to the process time zone
	Minute    int // 0..59
	Text      string
	Enabled   bool
	CreatedAt time.Time // UTC
}

// Clock returns the reminder time as HH:MM.
func (r Reminder) Clock() string {
	return FormatClock(r.Hour, r.Minute)
}
