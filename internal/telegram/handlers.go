package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
	"github.com/ykvlv/group-reminder-bot/internal/notify"
	"github.com/ykvlv/group-reminder-bot/internal/reminders"
	"github.com/ykvlv/group-reminder-bot/internal/store"
)

// replyErr maps a command error to a user-visible answer. It returns false
// when err is nil or only a pending reconcile, i.e. the command took effect.
func (r *Router) replyErr(msg *tgbotapi.Message, err error, id int64) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, reminders.ErrReconcile):
		return false
	case errors.Is(err, reminders.ErrUnauthorized):
		r.reply(msg, noRightsText)
	case errors.Is(err, domain.ErrInvalidTime):
		r.reply(msg, badClockText)
	case errors.Is(err, store.ErrNotFound):
		r.reply(msg, fmt.Sprintf(notFoundFmt, id))
	case errors.Is(err, notify.ErrDelivery):
		r.log.Warn("broadcast failed", zap.Error(err), zap.Int64("chatID", msg.Chat.ID))
		r.reply(msg, deliveryErrText)
	default:
		r.log.Error("command failed", zap.Error(err), zap.String("command", msg.Command()))
		r.reply(msg, internalErrText)
	}
	return true
}

// done confirms a mutation, noting when the schedule refresh is still pending.
func (r *Router) done(msg *tgbotapi.Message, err error, text string) {
	if errors.Is(err, reminders.ErrReconcile) {
		text += "\n" + pendingSyncText
	}
	r.reply(msg, text)
}

// usage answers malformed admin-only input. Non-admins get the same refusal
// a well-formed command would get.
func (r *Router) usage(ctx context.Context, msg *tgbotapi.Message, hint string) {
	if err := r.cmds.Authorize(ctx, msg.Chat.ID, msg.From.ID); err != nil {
		r.replyErr(msg, err, 0)
		return
	}
	r.reply(msg, hint)
}

// --- Reminder commands ---

func (r *Router) handleAll(ctx context.Context, msg *tgbotapi.Message) {
	err := r.cmds.BroadcastNow(ctx, msg.Chat.ID, msg.From.ID)
	r.replyErr(msg, err, 0)
}

func (r *Router) handleRemind(ctx context.Context, msg *tgbotapi.Message, args string) {
	clock, text, err := parseRemindArgs(args)
	if err != nil {
		r.usage(ctx, msg, remindUsageText)
		return
	}
	rem, err := r.cmds.Create(ctx, msg.Chat.ID, msg.From.ID, clock, text)
	if r.replyErr(msg, err, 0) {
		return
	}
	r.done(msg, err, fmt.Sprintf(createdFmt, rem.ID, rem.Clock()))

	// Show the chat what the reminder will look like.
	if err := r.cmds.Preview(ctx, msg.Chat.ID, msg.From.ID, text); err != nil {
		r.log.Warn("preview broadcast failed", zap.Error(err), zap.Int64("chatID", msg.Chat.ID))
	}
}

func (r *Router) handleList(ctx context.Context, msg *tgbotapi.Message) {
	rs, err := r.cmds.List(ctx, msg.Chat.ID, msg.From.ID)
	if r.replyErr(msg, err, 0) {
		return
	}
	r.reply(msg, formatReminderList(rs))
}

func (r *Router) handleDelete(ctx context.Context, msg *tgbotapi.Message, args string) {
	id, err := parseID(args)
	if err != nil {
		r.usage(ctx, msg, fmt.Sprintf(idUsageFmt, "delete"))
		return
	}
	err = r.cmds.Delete(ctx, msg.Chat.ID, msg.From.ID, id)
	if r.replyErr(msg, err, id) {
		return
	}
	r.done(msg, err, deletedText)
}

func (r *Router) handleToggle(ctx context.Context, msg *tgbotapi.Message, args string, enable bool) {
	id, err := parseID(args)
	if err != nil {
		r.usage(ctx, msg, fmt.Sprintf(idUsageFmt, msg.Command()))
		return
	}
	ok := enabledText
	if enable {
		err = r.cmds.Enable(ctx, msg.Chat.ID, msg.From.ID, id)
	} else {
		err = r.cmds.Disable(ctx, msg.Chat.ID, msg.From.ID, id)
		ok = disableText
	}
	if r.replyErr(msg, err, id) {
		return
	}
	r.done(msg, err, ok)
}

func (r *Router) handleRetime(ctx context.Context, msg *tgbotapi.Message, args string) {
	id, clock, err := parseRetimeArgs(args)
	if err != nil {
		r.usage(ctx, msg, retimeUsageText)
		return
	}
	err = r.cmds.Retime(ctx, msg.Chat.ID, msg.From.ID, id, clock)
	if r.replyErr(msg, err, id) {
		return
	}
	h, m, _ := domain.ParseClock(clock)
	r.done(msg, err, fmt.Sprintf(retimedFmt, domain.FormatClock(h, m)))
}

// --- Profile commands ---

func (r *Router) handleNick(ctx context.Context, msg *tgbotapi.Message, args string) {
	nick := strings.TrimSpace(args)
	if nick == "" {
		r.reply(msg, nickUsageText)
		return
	}
	if err := r.users.SetNickname(ctx, msg.From.ID, nick); err != nil {
		r.replyErr(msg, err, 0)
		return
	}
	r.reply(msg, nickSetText)
}

func (r *Router) handleAbout(ctx context.Context, msg *tgbotapi.Message, args string) {
	about := strings.TrimSpace(args)
	if about == "" {
		r.reply(msg, aboutUsageText)
		return
	}
	if err := r.users.SetAbout(ctx, msg.From.ID, about); err != nil {
		r.replyErr(msg, err, 0)
		return
	}
	r.reply(msg, aboutSetTxt)
}

func (r *Router) handleBirthday(ctx context.Context, msg *tgbotapi.Message, args string) {
	if strings.TrimSpace(args) == "" {
		r.reply(msg, birthUsageText)
		return
	}
	birth, err := domain.ParseBirthDate(args, r.now().In(r.loc))
	if err != nil {
		r.reply(msg, badBirthText)
		return
	}
	if err := r.users.SetBirth(ctx, msg.From.ID, birth); err != nil {
		r.replyErr(msg, err, 0)
		return
	}
	r.reply(msg, birthSetTxt)
}

func (r *Router) handleProfile(ctx context.Context, msg *tgbotapi.Message) {
	uid := msg.From.ID
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		uid = msg.ReplyToMessage.From.ID
	}
	u, err := r.users.GetUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		r.reply(msg, profileEmptyText)
		return
	}
	if r.replyErr(msg, err, 0) {
		return
	}
	r.reply(msg, formatProfile(u, r.now().In(r.loc)))
}
