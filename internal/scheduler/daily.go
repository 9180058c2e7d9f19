package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
)

// Daily is a cron.Schedule that fires once per calendar day at Hour:Minute
// local time, with the DST handling of domain.NextDaily. Standard cron specs
// skip a day whose time falls in a spring-forward gap; Daily does not.
type Daily struct {
	Hour     int
	Minute   int
	Location *time.Location
}

var _ cron.Schedule = Daily{}

// Next returns the next activation strictly after t.
func (d Daily) Next(t time.Time) time.Time {
	return domain.NextDaily(t, d.Location, d.Hour, d.Minute)
}

// resumed is a Daily whose first activation is the first occurrence after
// since, which may already be in the past. cron runs a past activation
// immediately, so an occurrence owed from before a rearm is not lost.
// cron calls Next from its run goroutine only.
type resumed struct {
	Daily
	since   time.Time
	started bool
}

var _ cron.Schedule = (*resumed)(nil)

func newResumed(d Daily, since time.Time) *resumed {
	return &resumed{Daily: d, since: since}
}

// Next returns the owed occurrence on the first call and then behaves like Daily.
func (r *resumed) Next(t time.Time) time.Time {
	if !r.started {
		r.started = true
		if owed := r.Daily.Next(r.since); owed.Before(t) || owed.Equal(t) {
			return owed
		}
	}
	return r.Daily.Next(t)
}
