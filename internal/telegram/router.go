package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/group-reminder-bot/internal/domain"
	"github.com/ykvlv/group-reminder-bot/internal/store"
)

// Bot is the part of *tgbotapi.BotAPI the router uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Commands is the reminder command surface; reminders.Service implements it.
type Commands interface {
	Authorize(ctx context.Context, chatID, actorID int64) error
	Create(ctx context.Context, chatID, actorID int64, clock, text string) (domain.Reminder, error)
	List(ctx context.Context, chatID, actorID int64) ([]domain.Reminder, error)
	Delete(ctx context.Context, chatID, actorID, id int64) error
	Enable(ctx context.Context, chatID, actorID, id int64) error
	Disable(ctx context.Context, chatID, actorID, id int64) error
	Retime(ctx context.Context, chatID, actorID, id int64, clock string) error
	BroadcastNow(ctx context.Context, chatID, actorID int64) error
	Preview(ctx context.Context, chatID, actorID int64, text string) error
}

// Router wires Telegram updates to handlers.
type Router struct {
	bot   Bot
	log   *zap.Logger
	users store.UserRepo
	cmds  Commands
	loc   *time.Location
	now   func() time.Time
}

// NewRouter creates a new Telegram router. loc is the bot's fixed time zone,
// used for birthday countdowns.
func NewRouter(bot Bot, log *zap.Logger, users store.UserRepo, cmds Commands, loc *time.Location) *Router {
	return &Router{
		bot:   bot,
		log:   log.Named("telegram"),
		users: users,
		cmds:  cmds,
		loc:   loc,
		now:   time.Now,
	}
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	// Every message grows the chat roster.
	if err := r.users.TouchUser(ctx, msg.Chat.ID, msg.From.ID, handleOf(msg.From)); err != nil {
		r.log.Error("touch user failed", zap.Error(err), zap.Int64("userID", msg.From.ID))
	}

	if !msg.IsCommand() {
		return
	}
	args := msg.CommandArguments()

	switch msg.Command() {
	case "start", "help":
		r.reply(msg, helpText)
	case "all":
		r.handleAll(ctx, msg)
	case "remind":
		r.handleRemind(ctx, msg, args)
	case "reminders":
		r.handleList(ctx, msg)
	case "delete":
		r.handleDelete(ctx, msg, args)
	case "enable":
		r.handleToggle(ctx, msg, args, true)
	case "disable":
		r.handleToggle(ctx, msg, args, false)
	case "retime":
		r.handleRetime(ctx, msg, args)
	case "nick":
		r.handleNick(ctx, msg, args)
	case "about":
		r.handleAbout(ctx, msg, args)
	case "birthday":
		r.handleBirthday(ctx, msg, args)
	case "profile":
		r.handleProfile(ctx, msg)
	default:
		// Unknown command — ignore silently
	}
}

// reply answers msg with plain text.
func (r *Router) reply(msg *tgbotapi.Message, text string) {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ReplyToMessageID = msg.MessageID
	if _, err := r.bot.Send(m); err != nil {
		r.log.Warn("reply failed", zap.Error(err), zap.Int64("chatID", msg.Chat.ID))
	}
}

// handleOf picks the name a user is shown by when no nickname is set.
func handleOf(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}
