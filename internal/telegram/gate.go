package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// AdminGate checks chat admin rights through the Bot API.
type AdminGate struct {
	bot Bot
	log *zap.Logger
}

// NewAdminGate creates an AdminGate.
func NewAdminGate(bot Bot, log *zap.Logger) *AdminGate {
	return &AdminGate{bot: bot, log: log.Named("gate")}
}

// IsAdmin reports whether userID is the creator or an administrator of
// chatID. In a private chat the user owns the chat. Any lookup error is
// treated as "not an admin".
func (g *AdminGate) IsAdmin(_ context.Context, chatID, userID int64) bool {
	if chatID == userID {
		return true
	}
	member, err := g.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		g.log.Warn("admin lookup failed", zap.Error(err), zap.Int64("chatID", chatID), zap.Int64("userID", userID))
		return false
	}
	return member.IsCreator() || member.IsAdministrator()
}
