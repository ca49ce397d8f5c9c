package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler registers the sender in the audience and shows the menu keyboard.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /start command", "chat_id", chatID, "user_id", userID, "username", update.Message.From.Username)

	// A storage failure must not hide the menu from the user.
	if _, err := h.deps.Audience.Register(ctx, userID); err != nil {
		log.ErrorContext(ctx, "Failed to register user", "error", err, "user_id", userID)
	}

	promo := h.deps.Config.Promo
	sendReply(ctx, b, log, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   h.deps.Config.Messages.MenuTitle,
		ReplyMarkup: &models.ReplyKeyboardMarkup{
			Keyboard: [][]models.KeyboardButton{
				{{Text: promo.FreeSpinButton}, {Text: promo.HotTipsButton}},
			},
			ResizeKeyboard: true,
		},
	})
}
