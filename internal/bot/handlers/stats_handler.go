package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatsHandler returns a handler for the /stats command.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil {
		log.WarnContext(ctx, "Stats handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	total, err := h.deps.Audience.Count(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to count users", "error", err)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError, "")
		return
	}

	reply(ctx, b, log, chatID, fmt.Sprintf(h.deps.Config.Messages.StatsFmt, total), models.ParseModeHTML)
}
