package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/group-reminder-bot/internal/config"
	"github.com/ykvlv/group-reminder-bot/internal/notify"
	"github.com/ykvlv/group-reminder-bot/internal/reminders"
	"github.com/ykvlv/group-reminder-bot/internal/scheduler"
	"github.com/ykvlv/group-reminder-bot/internal/store"
	"github.com/ykvlv/group-reminder-bot/internal/telegram"
)

const shutdownTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	cfg     config.Config
	log     *zap.Logger
	loc     *time.Location
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	db      pinger
	sched   *scheduler.Scheduler
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	a := &App{cfg: cfg, log: log, loc: loc, bot: bot}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.healthz)
	a.httpSrv = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	return a, nil
}

// healthz reports liveness, how many daily triggers are armed and whether
// the database answers. It stays 200 while the process runs; a store outage
// is retried by the resync loop.
func (a *App) healthz(w http.ResponseWriter, req *http.Request) {
	armed := 0
	if a.sched != nil {
		armed = len(a.sched.Armed())
	}
	db := "ok"
	if a.db == nil {
		db = "unknown"
	} else if err := a.db.Ping(req.Context()); err != nil {
		a.log.Warn("healthz: database ping failed", zap.Error(err))
		db = "unavailable"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"status":"ok","armed":%d,"db":%q}`, armed, db)
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting group-reminder-bot",
		zap.String("tz", a.loc.String()),
		zap.String("http", a.cfg.HTTPAddr),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.db = repo
	a.log.Info("sqlite ready")

	sender := telegram.NewSender(a.bot)
	dispatcher := notify.New(repo, sender, a.log)
	a.sched = scheduler.New(repo, dispatcher, a.loc, a.cfg.ResyncInterval, a.log)
	gate := telegram.NewAdminGate(a.bot, a.log)
	svc := reminders.New(gate, repo, a.sched, dispatcher, a.log)
	a.router = telegram.NewRouter(a.bot, a.log, repo, svc, a.loc)

	if err := telegram.RegisterCommands(a.bot); err != nil {
		a.log.Warn("set commands failed", zap.Error(err))
	}

	// A failed startup reconcile is retried by the resync loop.
	if rep, err := a.sched.Reconcile(ctx); err != nil {
		a.log.Error("startup reconcile failed", zap.Error(err))
	} else {
		a.log.Info("triggers armed", zap.Int("count", rep.Armed), zap.Int64s("skipped", rep.Skipped))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.sched.Start()
	go a.sched.Run(ctx)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.shutdown()
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

// shutdown stops polling and firing, waits for in-flight broadcasts up to
// shutdownTimeout, then closes the HTTP server and the database.
func (a *App) shutdown() {
	a.bot.StopReceivingUpdates()

	jobs := a.sched.Stop()
	select {
	case <-jobs.Done():
	case <-time.After(shutdownTimeout):
		a.log.Warn("running broadcasts did not finish in time")
	}

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}

	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Warn("close sqlite failed", zap.Error(err))
		}
	}
}
