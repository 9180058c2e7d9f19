package store

import (
	"database/sql"
	"time"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
)

func toNullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: domain.FormatDate(*t), Valid: true}
}

// fromNullDate ignores unparsable values; the column is only written by toNullDate.
func fromNullDate(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.DateOnly, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(s rowScanner) (domain.Reminder, error) {
	var (
		r          domain.Reminder
		enabledInt int
		createdAt  int64
	)
	if err := s.Scan(&r.ID, &r.ChatID, &r.Hour, &r.Minute, &r.Text, &enabledInt, &createdAt); err != nil {
		return domain.Reminder{}, err
	}
	r.Enabled = enabledInt != 0
	r.CreatedAt = time.Unix(createdAt, 0).UTC()
	return r, nil
}

func scanUser(s rowScanner) (domain.User, error) {
	var (
		u     domain.User
		birth sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Username, &u.Nickname, &birth, &u.About); err != nil {
		return domain.User{}, err
	}
	u.Birth = fromNullDate(birth)
	return u, nil
}
