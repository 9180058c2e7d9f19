package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
)

const reminderColumns = `id, chat_id, hour, minute, text, enabled, created_at`

// AddReminder validates the time and inserts an enabled reminder.
func (r *SQLiteRepo) AddReminder(ctx context.Context, chatID int64, hour, minute int, text string) (int64, error) {
	if err := domain.ValidateTime(hour, minute); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (chat_id, hour, minute, text, enabled, created_at)
		VALUES (?, ?, ?, ?, 1, ?)`,
		chatID, hour, minute, text, time.Now().UTC().Unix(),
	)
	if err != nil {
		return 0, unavailable("add reminder", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, unavailable("add reminder", err)
	}
	return id, nil
}

// ListReminders returns a chat's reminders in creation order.
func (r *SQLiteRepo) ListReminders(ctx context.Context, chatID int64) ([]domain.Reminder, error) {
	return r.queryReminders(ctx, "list reminders", `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE chat_id = ?
		ORDER BY id ASC`,
		chatID,
	)
}

// GetReminder returns one reminder or ErrNotFound.
func (r *SQLiteRepo) GetReminder(ctx context.Context, id int64) (*domain.Reminder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE id = ?`,
		id,
	)
	rem, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get reminder", err)
	}
	return &rem, nil
}

// DeleteReminder removes a reminder. Deleting a missing id is not an error.
func (r *SQLiteRepo) DeleteReminder(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id); err != nil {
		return unavailable("delete reminder", err)
	}
	return nil
}

// SetReminderEnabled sets the enabled flag; ErrNotFound if the id is missing.
func (r *SQLiteRepo) SetReminderEnabled(ctx context.Context, id int64, enabled bool) error {
	return r.updateOne(ctx, "set reminder enabled", `
		UPDATE reminders
		SET enabled = ?
		WHERE id = ?`,
		boolToInt(enabled), id,
	)
}

// SetReminderTime validates and stores a new time; ErrNotFound if the id is missing.
func (r *SQLiteRepo) SetReminderTime(ctx context.Context, id int64, hour, minute int) error {
	if err := domain.ValidateTime(hour, minute); err != nil {
		return err
	}
	return r.updateOne(ctx, "set reminder time", `
		UPDATE reminders
		SET hour = ?, minute = ?
		WHERE id = ?`,
		hour, minute, id,
	)
}

// AllEnabled returns every enabled reminder across chats, ordered by id.
// A single SELECT reads one consistent snapshot.
func (r *SQLiteRepo) AllEnabled(ctx context.Context) ([]domain.Reminder, error) {
	return r.queryReminders(ctx, "all enabled", `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE enabled = 1
		ORDER BY id ASC`,
	)
}

func (r *SQLiteRepo) updateOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return unavailable(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable(op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) queryReminders(ctx context.Context, op, query string, args ...any) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	var res []domain.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, unavailable(op, err)
		}
		res = append(res, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return res, nil
}
