package reminders

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
	"github.com/ykvlv/group-reminder-bot/internal/scheduler"
	"github.com/ykvlv/group-reminder-bot/internal/store"
)

const (
	chat  = int64(100)
	admin = int64(1)
	guest = int64(2)
)

type adminsOnly map[int64]bool

func (a adminsOnly) IsAdmin(_ context.Context, _ int64, userID int64) bool { return a[userID] }

type broadcasts struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (b *broadcasts) Broadcast(_ context.Context, _ int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.texts = append(b.texts, text)
	return b.err
}

type fixture struct {
	svc   *Service
	repo  *store.SQLiteRepo
	sched *scheduler.Scheduler
	out   *broadcasts
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	out := &broadcasts{}
	sched := scheduler.New(repo, out, time.UTC, time.Minute, zap.NewNop())
	svc := New(adminsOnly{admin: true}, repo, sched, out, zap.NewNop())
	return fixture{svc: svc, repo: repo, sched: sched, out: out}
}

// assertBijection checks armed trigger ids equal enabled reminder ids.
func assertBijection(t *testing.T, f fixture) {
	t.Helper()
	enabled, err := f.repo.AllEnabled(context.Background())
	if err != nil {
		t.Fatalf("all enabled: %v", err)
	}
	armed := f.sched.Armed()
	if len(armed) != len(enabled) {
		t.Fatalf("armed %d triggers for %d enabled reminders", len(armed), len(enabled))
	}
	for i := range armed {
		r, tr := enabled[i], armed[i]
		if tr.ReminderID != r.ID || tr.Hour != r.Hour || tr.Minute != r.Minute || tr.Text != r.Text || tr.ChatID != r.ChatID {
			t.Fatalf("trigger %+v does not match reminder %+v", tr, r)
		}
	}
}

func TestCreate_ArmsTrigger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rem, err := f.svc.Create(ctx, chat, admin, "19:00", "Game night")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rem.ID == 0 || rem.Hour != 19 || !rem.Enabled {
		t.Fatalf("unexpected reminder: %+v", rem)
	}
	assertBijection(t, f)

	list, err := f.svc.List(ctx, chat, admin)
	if err != nil || len(list) != 1 || list[0].Text != "Game night" {
		t.Fatalf("list: %+v %v", list, err)
	}
}

func TestCreate_InvalidClockRejectedBeforeStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, clock := range []string{"24:00", "7pm", "12:60", ""} {
		if _, err := f.svc.Create(ctx, chat, admin, clock, "x"); !errors.Is(err, domain.ErrInvalidTime) {
			t.Fatalf("%q: want ErrInvalidTime, got %v", clock, err)
		}
	}
	if _, err := f.svc.Create(ctx, chat, admin, "23:59", "x"); err != nil {
		t.Fatalf("23:59: %v", err)
	}
	list, _ := f.repo.ListReminders(ctx, chat)
	if len(list) != 1 {
		t.Fatalf("want 1 stored reminder, got %d", len(list))
	}
}

func TestUnauthorizedNeverTouchesStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rem, _ := f.svc.Create(ctx, chat, admin, "08:00", "x")

	checks := map[string]error{}
	_, checks["create"] = f.svc.Create(ctx, chat, guest, "09:00", "y")
	_, checks["list"] = f.svc.List(ctx, chat, guest)
	checks["delete"] = f.svc.Delete(ctx, chat, guest, rem.ID)
	checks["disable"] = f.svc.Disable(ctx, chat, guest, rem.ID)
	checks["retime"] = f.svc.Retime(ctx, chat, guest, rem.ID, "10:00")
	checks["broadcast"] = f.svc.BroadcastNow(ctx, chat, guest)
	checks["preview"] = f.svc.Preview(ctx, chat, guest, "z")
	for name, err := range checks {
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: want ErrUnauthorized, got %v", name, err)
		}
	}

	got, err := f.repo.GetReminder(ctx, rem.ID)
	if err != nil || got.Hour != 8 || !got.Enabled {
		t.Fatalf("reminder changed by non-admin: %+v %v", got, err)
	}
	if n := len(f.out.texts); n != 0 {
		t.Fatalf("non-admin broadcast went out: %d", n)
	}
}

func TestMutationSequenceKeepsBijection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, _ := f.svc.Create(ctx, chat, admin, "08:00", "a")
	b, _ := f.svc.Create(ctx, chat, admin, "09:00", "b")
	c, _ := f.svc.Create(ctx, chat+1, admin, "10:00", "c")
	assertBijection(t, f)

	steps := []func() error{
		func() error { return f.svc.Disable(ctx, chat, admin, a.ID) },
		func() error { return f.svc.Retime(ctx, chat, admin, b.ID, "21:30") },
		func() error { return f.svc.Delete(ctx, chat+1, admin, c.ID) },
		func() error { return f.svc.Enable(ctx, chat, admin, a.ID) },
		func() error { return f.svc.Delete(ctx, chat, admin, b.ID) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		assertBijection(t, f)
	}

	armed := f.sched.Armed()
	if len(armed) != 1 || armed[0].ReminderID != a.ID || armed[0].Hour != 8 {
		t.Fatalf("re-enabled reminder must keep its time: %+v", armed)
	}
}

func TestNotFoundPolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other, _ := f.svc.Create(ctx, chat+1, admin, "08:00", "other chat")

	if err := f.svc.Delete(ctx, chat, admin, 999); err != nil {
		t.Fatalf("delete unknown must be silent: %v", err)
	}
	if err := f.svc.Enable(ctx, chat, admin, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("enable: want ErrNotFound, got %v", err)
	}
	if err := f.svc.Disable(ctx, chat, admin, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("disable: want ErrNotFound, got %v", err)
	}
	if err := f.svc.Retime(ctx, chat, admin, 999, "10:00"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("retime: want ErrNotFound, got %v", err)
	}

	// ids of another chat behave as unknown
	if err := f.svc.Disable(ctx, chat, admin, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign disable: want ErrNotFound, got %v", err)
	}
	if err := f.svc.Delete(ctx, chat, admin, other.ID); err != nil {
		t.Fatalf("foreign delete must be silent: %v", err)
	}
	if _, err := f.repo.GetReminder(ctx, other.ID); err != nil {
		t.Fatalf("foreign reminder must survive: %v", err)
	}
}

func TestRetime_InvalidClockKeepsOldTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rem, _ := f.svc.Create(ctx, chat, admin, "08:00", "x")

	if err := f.svc.Retime(ctx, chat, admin, rem.ID, "25:00"); !errors.Is(err, domain.ErrInvalidTime) {
		t.Fatalf("want ErrInvalidTime, got %v", err)
	}
	armed := f.sched.Armed()
	if len(armed) != 1 || armed[0].Hour != 8 {
		t.Fatalf("trigger must be unchanged: %+v", armed)
	}
}

func TestConcurrentDisableAndRetime(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		f := newFixture(t)
		rem, _ := f.svc.Create(ctx, chat, admin, "08:00", "x")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := f.svc.Disable(ctx, chat, admin, rem.ID); err != nil {
				t.Errorf("disable: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := f.svc.Retime(ctx, chat, admin, rem.ID, "20:15"); err != nil {
				t.Errorf("retime: %v", err)
			}
		}()
		wg.Wait()

		got, _ := f.repo.GetReminder(ctx, rem.ID)
		if got.Enabled || got.Hour != 20 || got.Minute != 15 {
			t.Fatalf("both writes must apply: %+v", got)
		}
		if n := len(f.sched.Armed()); n != 0 {
			t.Fatalf("disabled reminder left armed: %d", n)
		}
	}
}

func TestBroadcastNow_ReportsDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boom := errors.New("chat unreachable")
	f.out.err = boom

	if err := f.svc.BroadcastNow(ctx, chat, admin); !errors.Is(err, boom) {
		t.Fatalf("want delivery error, got %v", err)
	}
	if len(f.out.texts) != 1 || f.out.texts[0] != "" {
		t.Fatalf("want one empty-text broadcast, got %q", f.out.texts)
	}
}

type failingReconciler struct{ err error }

func (f failingReconciler) Reconcile(context.Context) (scheduler.Report, error) {
	return scheduler.Report{}, f.err
}

func TestCreate_ReconcileFailureStillCommits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := New(adminsOnly{admin: true}, f.repo, failingReconciler{err: store.ErrUnavailable}, f.out, zap.NewNop())

	rem, err := svc.Create(ctx, chat, admin, "08:00", "x")
	if !errors.Is(err, ErrReconcile) || !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("want ErrReconcile, got %v", err)
	}
	if _, err := f.repo.GetReminder(ctx, rem.ID); err != nil {
		t.Fatalf("write must be committed: %v", err)
	}
}
