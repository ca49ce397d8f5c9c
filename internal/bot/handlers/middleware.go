// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/promobot/internal/metrics"
)

// AdminOnly creates a middleware that lets only administrators through.
// Others get the "not authorized" reply and processing stops.
func AdminOnly(deps HandlerDeps, command string) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			// Non-message updates never match a command, so they pass through untouched.
			if update.Message == nil || update.Message.From == nil {
				next(ctx, bot, update)
				return
			}

			userID := update.Message.From.ID
			chatID := update.Message.Chat.ID
			log := deps.Logger.With("middleware", "AdminOnly", "command", command)

			isAdmin, err := deps.Gate.IsAdmin(ctx, userID)
			if err != nil {
				log.ErrorContext(ctx, "Failed to check admin status", "error", err, "user_id", userID)
				reply(ctx, bot, log, chatID, deps.Config.Messages.GeneralError, "")
				return
			}

			if !isAdmin {
				metrics.IncAdminCommand(command, "unauthorized")
				log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)
				reply(ctx, bot, log, chatID, deps.Config.Messages.NotAuthorized, "")
				return // Stop processing
			}

			metrics.IncAdminCommand(command, "authorized")
			next(ctx, bot, update)
		}
	}
}
