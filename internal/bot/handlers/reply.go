package handlers

import (
	"context"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// reply sends text to chatID and logs a failure instead of returning it;
// handlers have nobody to return errors to.
func reply(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string, mode models.ParseMode) {
	sendReply(ctx, b, log, &tgbot.SendMessageParams{ChatID: chatID, Text: text, ParseMode: mode})
}

func sendReply(ctx context.Context, b *tgbot.Bot, log *slog.Logger, params *tgbot.SendMessageParams) {
	if _, err := b.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", params.ChatID)
	}
}
