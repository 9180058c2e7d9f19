package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
)

// TouchUser records that userID wrote in chatID and refreshes the handle.
// Both rows commit together.
func (r *SQLiteRepo) TouchUser(ctx context.Context, chatID, userID int64, username string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("touch user", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, username) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET username = excluded.username`,
		userID, username,
	); err != nil {
		_ = tx.Rollback()
		return unavailable("touch user", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chat_members (chat_id, user_id, first_seen) VALUES (?, ?, ?)
		ON CONFLICT(chat_id, user_id) DO NOTHING`,
		chatID, userID, time.Now().UTC().Unix(),
	); err != nil {
		_ = tx.Rollback()
		return unavailable("touch user", err)
	}
	if err := tx.Commit(); err != nil {
		return unavailable("touch user", err)
	}
	return nil
}

// SetNickname creates the profile if needed and stores the nickname.
func (r *SQLiteRepo) SetNickname(ctx context.Context, userID int64, nickname string) error {
	return r.upsertField(ctx, "set nickname", `
		INSERT INTO users (id, nickname) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET nickname = excluded.nickname`,
		userID, nickname,
	)
}

// SetAbout creates the profile if needed and stores the bio.
func (r *SQLiteRepo) SetAbout(ctx context.Context, userID int64, about string) error {
	return r.upsertField(ctx, "set about", `
		INSERT INTO users (id, about) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET about = excluded.about`,
		userID, about,
	)
}

// SetBirth creates the profile if needed and stores the birth date.
func (r *SQLiteRepo) SetBirth(ctx context.Context, userID int64, birth time.Time) error {
	return r.upsertField(ctx, "set birth", `
		INSERT INTO users (id, birth) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET birth = excluded.birth`,
		userID, toNullDate(&birth),
	)
}

// GetUser returns a profile or ErrNotFound.
func (r *SQLiteRepo) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, nickname, birth, about
		FROM users
		WHERE id = ?`,
		userID,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get user", err)
	}
	return &u, nil
}

// ListUsers returns the roster of a chat ordered by user id.
func (r *SQLiteRepo) ListUsers(ctx context.Context, chatID int64) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.nickname, u.birth, u.about
		FROM users u
		JOIN chat_members m ON m.user_id = u.id
		WHERE m.chat_id = ?
		ORDER BY u.id ASC`,
		chatID,
	)
	if err != nil {
		return nil, unavailable("list users", err)
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, unavailable("list users", err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list users", err)
	}
	return res, nil
}

func (r *SQLiteRepo) upsertField(ctx context.Context, op, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return unavailable(op, err)
	}
	return nil
}
