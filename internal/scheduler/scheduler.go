package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
)

// Source is the store view the scheduler reconciles against.
type Source interface {
	AllEnabled(ctx context.Context) ([]domain.Reminder, error)
}

// Broadcaster delivers a reminder when its trigger fires.
// notify.Dispatcher implements it.
type Broadcaster interface {
	Broadcast(ctx context.Context, chatID int64, text string) error
}

// Trigger is the in-memory firing rule derived from one enabled reminder.
type Trigger struct {
	ReminderID int64
	ChatID     int64
	Hour       int
	Minute     int
	Text       string
}

// Report summarizes one reconciliation.
type Report struct {
	Armed   int     // triggers live after the swap
	Added   int     // ids that had no trigger before
	Removed int     // ids whose trigger was dropped
	Rearmed int     // ids disarmed and armed again with current data
	Skipped []int64 // enabled reminders that could not be armed
}

type armedTrigger struct {
	trigger Trigger
	entry   cron.EntryID
}

// sameClock reports whether both triggers fire at the same local time.
func (t Trigger) sameClock(o Trigger) bool {
	return t.Hour == o.Hour && t.Minute == o.Minute
}

// Scheduler owns the live trigger set. Reconcile is the only way to change
// it: the set is rebuilt from the store as a whole, never patched.
type Scheduler struct {
	source   Source
	out      Broadcaster
	loc      *time.Location
	log      *zap.Logger
	cron     *cron.Cron
	interval time.Duration

	reconcileMu sync.Mutex // one reconcile at a time, fetch through install

	mu    sync.RWMutex
	armed map[int64]*armedTrigger // guarded by mu
	// settled holds, per armed id, the instant up to which every occurrence
	// is either delivered or predates arming. Guarded by mu.
	settled map[int64]time.Time
	now     func() time.Time // read under mu
}

// New creates a Scheduler firing in loc. interval is the period of the
// background resync in Run.
func New(source Source, out Broadcaster, loc *time.Location, interval time.Duration, log *zap.Logger) *Scheduler {
	log = log.Named("scheduler")
	cronLog := newCronLogger(log)
	return &Scheduler{
		source:   source,
		out:      out,
		loc:      loc,
		log:      log,
		interval: interval,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog)),
		),
		armed:   make(map[int64]*armedTrigger),
		settled: make(map[int64]time.Time),
		now:     time.Now,
	}
}

// Start begins firing armed triggers in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts future firings. The returned context is done once running
// broadcasts have returned.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Run reconciles every interval until ctx is canceled. It is the retry path
// when the store was unavailable during an earlier reconcile.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			if _, err := s.Reconcile(ctx); err != nil {
				s.log.Error("periodic reconcile failed", zap.Error(err))
			}
		}
	}
}

// Reconcile replaces the whole live trigger set with one trigger per enabled
// reminder in the store. Every surviving id is disarmed and armed again, so a
// changed time or text can never fire stale. If the store cannot be read the
// current set stays untouched and the error is returned.
func (s *Scheduler) Reconcile(ctx context.Context) (Report, error) {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	reminders, err := s.source.AllEnabled(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("reconcile: %w", err)
	}

	var rep Report
	next := make(map[int64]Trigger, len(reminders))
	for _, r := range reminders {
		if err := domain.ValidateTime(r.Hour, r.Minute); err != nil {
			s.log.Warn("reminder not armed", zap.Int64("reminderID", r.ID), zap.Error(err))
			rep.Skipped = append(rep.Skipped, r.ID)
			continue
		}
		next[r.ID] = Trigger{
			ReminderID: r.ID,
			ChatID:     r.ChatID,
			Hour:       r.Hour,
			Minute:     r.Minute,
			Text:       r.Text,
		}
	}

	s.install(next, &rep)

	s.log.Info("reconciled",
		zap.Int("armed", rep.Armed),
		zap.Int("added", rep.Added),
		zap.Int("removed", rep.Removed),
		zap.Int("rearmed", rep.Rearmed),
		zap.Int("skipped", len(rep.Skipped)),
	)
	return rep, nil
}

// install swaps the live set for next under the write lock.
//
// New entries are scheduled before old ones are removed. An id that keeps its
// clock time carries its settled instant over, so its first activation is the
// oldest occurrence not yet delivered: an occurrence that passes while the
// swap is in flight still fires once, on the new entry. The old entry, if it
// runs late, finds itself replaced and does nothing.
func (s *Scheduler) install(next map[int64]Trigger, rep *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	armed := make(map[int64]*armedTrigger, len(next))
	settled := make(map[int64]time.Time, len(next))
	for id, t := range next {
		since := now
		if prev, ok := s.armed[id]; ok {
			rep.Rearmed++
			if prev.trigger.sameClock(t) {
				since = s.settled[id]
			}
		} else {
			rep.Added++
		}
		a := &armedTrigger{trigger: t}
		a.entry = s.cron.Schedule(
			newResumed(Daily{Hour: t.Hour, Minute: t.Minute, Location: s.loc}, since),
			&fireJob{s: s, id: id, armed: a},
		)
		armed[id] = a
		settled[id] = since
	}
	for id, a := range s.armed {
		s.cron.Remove(a.entry)
		if _, ok := next[id]; !ok {
			rep.Removed++
		}
	}
	s.armed = armed
	s.settled = settled
	rep.Armed = len(armed)
}

// claim admits one firing of a. It refuses when a was replaced by a later
// reconcile or when the current occurrence was already delivered.
func (s *Scheduler) claim(id int64, a *armedTrigger) (Trigger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.armed[id] != a {
		return Trigger{}, false
	}
	due := domain.LastDaily(s.now(), s.loc, a.trigger.Hour, a.trigger.Minute)
	if !due.After(s.settled[id]) {
		return Trigger{}, false
	}
	s.settled[id] = due
	return a.trigger, true
}

// Armed returns the live triggers ordered by reminder id.
func (s *Scheduler) Armed() []Trigger {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]Trigger, 0, len(s.armed))
	for _, a := range s.armed {
		res = append(res, a.trigger)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ReminderID < res[j].ReminderID })
	return res
}

// NextRun reports when the trigger for reminderID fires next after t.
func (s *Scheduler) NextRun(reminderID int64, t time.Time) (time.Time, bool) {
	s.mu.RLock()
	a, ok := s.armed[reminderID]
	s.mu.RUnlock()
	if !ok {
		return time.Time{}, false
	}
	return Daily{Hour: a.trigger.Hour, Minute: a.trigger.Minute, Location: s.loc}.Next(t), true
}

// fireJob broadcasts one reminder. It runs on its own goroutine per firing;
// a failure is logged and ends here.
type fireJob struct {
	s     *Scheduler
	id    int64
	armed *armedTrigger
}

func (j *fireJob) Run() {
	t, ok := j.s.claim(j.id, j.armed)
	if !ok {
		j.s.log.Debug("firing skipped", zap.Int64("reminderID", j.id))
		return
	}
	fields := []zap.Field{
		zap.Int64("reminderID", t.ReminderID),
		zap.Int64("chatID", t.ChatID),
	}
	if err := j.s.out.Broadcast(context.Background(), t.ChatID, t.Text); err != nil {
		j.s.log.Error("scheduled broadcast failed", append(fields, zap.Error(err))...)
		return
	}
	j.s.log.Info("reminder fired", fields...)
}
