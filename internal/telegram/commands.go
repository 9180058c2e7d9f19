package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Requester is the part of *tgbotapi.BotAPI that issues non-message calls.
type Requester interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// menu is the command list shown in the Telegram client.
var menu = []tgbotapi.BotCommand{
	{Command: "help", Description: "What this bot can do"},
	{Command: "all", Description: "Mention everyone now"},
	{Command: "remind", Description: "Daily reminder: /remind 19:00 text"},
	{Command: "reminders", Description: "List reminders"},
	{Command: "retime", Description: "Change time: /retime 3 19:00"},
	{Command: "enable", Description: "Enable a reminder"},
	{Command: "disable", Description: "Disable a reminder"},
	{Command: "delete", Description: "Delete a reminder"},
	{Command: "nick", Description: "Set your nickname"},
	{Command: "about", Description: "Tell about yourself"},
	{Command: "birthday", Description: "Set your birthday: YYYY-MM-DD"},
	{Command: "profile", Description: "Show a profile"},
}

// RegisterCommands publishes the command menu.
func RegisterCommands(bot Requester) error {
	_, err := bot.Request(tgbotapi.NewSetMyCommands(menu...))
	return err
}
