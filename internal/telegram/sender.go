package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Sender delivers broadcasts; it satisfies notify.Sender.
type Sender struct {
	bot Bot
}

// NewSender creates a Sender.
func NewSender(bot Bot) *Sender {
	return &Sender{bot: bot}
}

// SendMarkdown sends a Markdown message to the given chat.
func (s *Sender) SendMarkdown(chatID int64, text string) error {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	m.DisableWebPagePreview = true
	_, err := s.bot.Send(m)
	return err
}
