// Package reminders implements the admin commands that manage reminders.
// Every mutation is followed by a full scheduler reconcile.
package reminders

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
	"github.com/ykvlv/group-reminder-bot/internal/scheduler"
	"github.com/ykvlv/group-reminder-bot/internal/store"
)

var (
	// ErrUnauthorized rejects a command from a non-admin.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned for ids that do not exist in the chat.
	ErrNotFound = store.ErrNotFound
	// ErrReconcile means the write committed but the trigger set could not
	// be refreshed yet; the periodic resync will retry.
	ErrReconcile = errors.New("schedule refresh pending")
)

// Gate answers whether a user administers a chat. Implementations fail
// closed: lookup errors mean false.
type Gate interface {
	IsAdmin(ctx context.Context, chatID, userID int64) bool
}

// Reconciler rebuilds the live trigger set from the store.
type Reconciler interface {
	Reconcile(ctx context.Context) (scheduler.Report, error)
}

// Broadcaster sends an on-demand "mention everyone" message.
type Broadcaster interface {
	Broadcast(ctx context.Context, chatID int64, text string) error
}

// Service is the command surface the chat transport calls.
type Service struct {
	gate  Gate
	repo  store.ReminderRepo
	sched Reconciler
	out   Broadcaster
	log   *zap.Logger
}

// New creates a Service.
func New(gate Gate, repo store.ReminderRepo, sched Reconciler, out Broadcaster, log *zap.Logger) *Service {
	return &Service{gate: gate, repo: repo, sched: sched, out: out, log: log.Named("reminders")}
}

// Authorize returns ErrUnauthorized unless actorID administers chatID.
func (s *Service) Authorize(ctx context.Context, chatID, actorID int64) error {
	if !s.gate.IsAdmin(ctx, chatID, actorID) {
		s.log.Info("command rejected", zap.Int64("chatID", chatID), zap.Int64("userID", actorID))
		return ErrUnauthorized
	}
	return nil
}

// reconcile runs after a committed write.
func (s *Service) reconcile(ctx context.Context) error {
	if _, err := s.sched.Reconcile(ctx); err != nil {
		s.log.Error("reconcile after mutation failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrReconcile, err)
	}
	return nil
}

// owned loads a reminder and checks it belongs to chatID.
func (s *Service) owned(ctx context.Context, chatID, id int64) (*domain.Reminder, error) {
	r, err := s.repo.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.ChatID != chatID {
		return nil, ErrNotFound
	}
	return r, nil
}

// Create stores an enabled reminder for chatID at clock ("HH:MM").
func (s *Service) Create(ctx context.Context, chatID, actorID int64, clock, text string) (domain.Reminder, error) {
	if err := s.Authorize(ctx, chatID, actorID); err != nil {
		return domain.Reminder{}, err
	}
	hour, minute, err := domain.ParseClock(clock)
	if err != nil {
		return domain.Reminder{}, err
	}
	id, err := s.repo.AddReminder(ctx, chatID, hour, minute, text)
	if err != nil {
		return domain.Reminder{}, err
	}
	s.log.Info("reminder created",
		zap.Int64("reminderID", id), zap.Int64("chatID", chatID), zap.String("at", domain.FormatClock(hour, minute)))

	rem := domain.Reminder{ID: id, ChatID: chatID, Hour: hour, Minute: minute, Text: text, Enabled: true}
	return rem, s.reconcile(ctx)
}

// List returns the chat's reminders in creation order.
func (s *Service) List(ctx context.Context, chatID, actorID int64) ([]domain.Reminder, error) {
	if err := s.Authorize(ctx, chatID, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListReminders(ctx, chatID)
}

// Delete removes a reminder. Unknown ids, and ids of other chats, are a
// silent no-op.
func (s *Service) Delete(ctx context.Context, chatID, actorID, id int64) error {
	if err := s.Authorize(ctx, chatID, actorID); err != nil {
		return err
	}
	if _, err := s.owned(ctx, chatID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.repo.DeleteReminder(ctx, id); err != nil {
		return err
	}
	s.log.Info("reminder deleted", zap.Int64("reminderID", id), zap.Int64("chatID", chatID))
	return s.reconcile(ctx)
}

// Enable turns a reminder on; ErrNotFound for unknown ids.
func (s *Service) Enable(ctx context.Context, chatID, actorID, id int64) error {
	return s.setEnabled(ctx, chatID, actorID, id, true)
}

// Disable turns a reminder off; ErrNotFound for unknown ids.
func (s *Service) Disable(ctx context.Context, chatID, actorID, id int64) error {
	return s.setEnabled(ctx, chatID, actorID, id, false)
}

func (s *Service) setEnabled(ctx context.Context, chatID, actorID, id int64, enabled bool) error {
	if err := s.Authorize(ctx, chatID, actorID); err != nil {
		return err
	}
	if _, err := s.owned(ctx, chatID, id); err != nil {
		return err
	}
	if err := s.repo.SetReminderEnabled(ctx, id, enabled); err != nil {
		return err
	}
	s.log.Info("reminder toggled",
		zap.Int64("reminderID", id), zap.Int64("chatID", chatID), zap.Bool("enabled", enabled))
	return s.reconcile(ctx)
}

// Retime moves a reminder to clock ("HH:MM"); ErrNotFound for unknown ids.
func (s *Service) Retime(ctx context.Context, chatID, actorID, id int64, clock string) error {
	if err := s.Authorize(ctx, chatID, actorID); err != nil {
		return err
	}
	hour, minute, err := domain.ParseClock(clock)
	if err != nil {
		return err
	}
	if _, err := s.owned(ctx, chatID, id); err != nil {
		return err
	}
	if err := s.repo.SetReminderTime(ctx, id, hour, minute); err != nil {
		return err
	}
	s.log.Info("reminder retimed",
		zap.Int64("reminderID", id), zap.Int64("chatID", chatID), zap.String("at", domain.FormatClock(hour, minute)))
	return s.reconcile(ctx)
}

// BroadcastNow mentions everyone in chatID right away. Delivery failures are
// returned to the caller.
func (s *Service) BroadcastNow(ctx context.Context, chatID, actorID int64) error {
	if err := s.Authorize(ctx, chatID, actorID); err != nil {
		return err
	}
	return s.out.Broadcast(ctx, chatID, "")
}

// Preview sends text as a broadcast without creating anything. Used right
// after Create so admins see what the reminder will look like.
func (s *Service) Preview(ctx context.Context, chatID, actorID int64, text string) error {
	if err := s.Authorize(ctx, chatID, actorID); err != nil {
		return err
	}
	return s.out.Broadcast(ctx, chatID, text)
}
