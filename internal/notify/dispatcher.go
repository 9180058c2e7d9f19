// Package notify builds and sends "mention everyone" broadcasts.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
)

// ErrDelivery reports a broadcast that did not reach the chat.
var ErrDelivery = errors.New("delivery failed")

const (
	header = "───────────\n" +
		"  🔔 Notification\n" +
		"───────────\n"
	footer = "───────────"

	// MaxMessageLen is Telegram's limit for the text of one message.
	MaxMessageLen = 4096
)

// Roster lists the users of a chat that a broadcast mentions.
type Roster interface {
	ListUsers(ctx context.Context, chatID int64) ([]domain.User, error)
}

// Sender delivers one Markdown-formatted message.
type Sender interface {
	SendMarkdown(chatID int64, text string) error
}

// Dispatcher turns (chat, text) into exactly one broadcast message.
type Dispatcher struct {
	roster Roster
	sender Sender
	log    *zap.Logger
}

// New creates a Dispatcher.
func New(roster Roster, sender Sender, log *zap.Logger) *Dispatcher {
	return &Dispatcher{roster: roster, sender: sender, log: log.Named("notify")}
}

// Broadcast mentions every known member of chatID followed by text.
// Failures are returned wrapped in ErrDelivery and never retried here.
func (d *Dispatcher) Broadcast(ctx context.Context, chatID int64, text string) error {
	users, err := d.roster.ListUsers(ctx, chatID)
	if err != nil {
		return fmt.Errorf("%w: roster for chat %d: %w", ErrDelivery, chatID, err)
	}

	body := FormatBroadcast(users, text)
	if n := utf8.RuneCountInString(body); n > MaxMessageLen {
		// Markup is not counted by Telegram, so the message may still pass.
		d.log.Warn("broadcast may exceed the message size limit",
			zap.Int64("chatID", chatID),
			zap.Int("length", n),
			zap.Int("limit", MaxMessageLen),
			zap.Int("mentions", len(users)),
		)
	}
	if err := d.sender.SendMarkdown(chatID, body); err != nil {
		return fmt.Errorf("%w: chat %d: %w", ErrDelivery, chatID, err)
	}
	d.log.Debug("broadcast sent", zap.Int64("chatID", chatID), zap.Int("mentions", len(users)))
	return nil
}

// FormatBroadcast renders the message body: header, mentions, text, footer.
func FormatBroadcast(users []domain.User, text string) string {
	mentions := make([]string, 0, len(users))
	for _, u := range users {
		mentions = append(mentions, Mention(u))
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(strings.Join(mentions, " "))
	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(footer)
	return b.String()
}

// Mention returns a Markdown link that notifies the user by id.
func Mention(u domain.User) string {
	return fmt.Sprintf("[%s](tg://user?id=%d)", EscapeLabel(u.DisplayLabel()), u.ID)
}

// EscapeLabel escapes the characters legacy Markdown treats as markup inside
// a link label: _ * ` [ and the closing ].
func EscapeLabel(s string) string {
	return strings.ReplaceAll(tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s), "]", `\]`)
}
