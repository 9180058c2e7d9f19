package domain

import "time"

// fallbackLabel is shown for users that have neither a nickname nor a handle.
const fallbackLabel = "user"

// User is a chat member the bot has seen, with optional profile fields.
type User struct {
	ID       int64
	Username string
	Nickname string
	Birth    *time.Time // calendar date at UTC midnight, nullable
	About    string
}

// DisplayLabel returns the nickname, else the handle, else a placeholder.
func (u User) DisplayLabel() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	if u.Username != "" {
		return u.Username
	}
	return fallbackLabel
}
