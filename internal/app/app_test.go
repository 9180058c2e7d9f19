package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
	"github.com/ykvlv/group-reminder-bot/internal/scheduler"
)

type staticSource []domain.Reminder

func (s staticSource) AllEnabled(context.Context) ([]domain.Reminder, error) { return s, nil }

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(context.Context, int64, string) error { return nil }

func TestHealthz(t *testing.T) {
	src := staticSource{
		{ID: 1, ChatID: -1, Hour: 9, Minute: 0, Enabled: true},
		{ID: 2, ChatID: -1, Hour: 19, Minute: 0, Enabled: true},
	}
	a := &App{
		log:   zap.NewNop(),
		db:    fakePinger{},
		sched: scheduler.New(src, nopBroadcaster{}, time.UTC, time.Minute, zap.NewNop()),
	}
	if _, err := a.sched.Reconcile(context.Background()); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	a.healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"armed":2`) || !strings.Contains(body, `"db":"ok"`) {
		t.Fatalf("unexpected body %q", body)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthz_BeforeStart(t *testing.T) {
	rec := httptest.NewRecorder()
	(&App{log: zap.NewNop()}).healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"armed":0`) {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestHealthz_DatabaseDown(t *testing.T) {
	a := &App{log: zap.NewNop(), db: fakePinger{err: errors.New("closed")}}
	rec := httptest.NewRecorder()
	a.healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"db":"unavailable"`) {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}
