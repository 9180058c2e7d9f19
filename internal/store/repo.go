package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
)

var (
	// ErrNotFound reports an id that has no row.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable wraps every failure of the database itself.
	ErrUnavailable = errors.New("store unavailable")
)

// unavailable tags a driver error with ErrUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// ReminderRepo is the durable reminder store. Every call is a single
// statement, so it either commits fully or has no effect.
type ReminderRepo interface {
	AddReminder(ctx context.Context, chatID int64, hour, minute int, text string) (int64, error)
	ListReminders(ctx context.Context, chatID int64) ([]domain.Reminder, error)
	GetReminder(ctx context.Context, id int64) (*domain.Reminder, error)
	DeleteReminder(ctx context.Context, id int64) error
	SetReminderEnabled(ctx context.Context, id int64, enabled bool) error
	SetReminderTime(ctx context.Context, id int64, hour, minute int) error
	AllEnabled(ctx context.Context) ([]domain.Reminder, error)
}

// UserRepo stores profiles of users seen in chats.
type UserRepo interface {
	TouchUser(ctx context.Context, chatID, userID int64, username string) error
	SetNickname(ctx context.Context, userID int64, nickname string) error
	SetAbout(ctx context.Context, userID int64, about string) error
	SetBirth(ctx context.Context, userID int64, birth time.Time) error
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	ListUsers(ctx context.Context, chatID int64) ([]domain.User, error)
}

// Repo is everything the bot persists.
type Repo interface {
	ReminderRepo
	UserRepo
	Close() error
}
