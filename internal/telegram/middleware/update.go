package middleware

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Handler processes one update.
type Handler func(tgbotapi.Update)

// origin returns the sender and chat of an update, or zeros for update
// types the bot ignores.
func origin(update tgbotapi.Update) (userID, chatID int64, kind string) {
	switch {
	case update.Message != nil:
		kind = "text"
		if update.Message.IsCommand() {
			kind = "command"
		}
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}
		return userID, update.Message.Chat.ID, kind
	case update.CallbackQuery != nil:
		if update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
		return update.CallbackQuery.From.ID, chatID, "callback"
	default:
		return 0, 0, "other"
	}
}
