package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/promobot/internal/access"
)

// NewRemoveAdminHandler returns a handler for the /removeadmin command.
// It expects AdminOnly to run first.
func NewRemoveAdminHandler(deps HandlerDeps) bot.HandlerFunc {
	return removeAdminHandler{deps}.Handle
}

type removeAdminHandler struct {
	deps HandlerDeps
}

func (h removeAdminHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "removeadmin")
	msgs := h.deps.Config.Messages

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "RemoveAdmin handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	_, args := ParseCommand(update.Message.Text)
	if len(args) == 0 {
		reply(ctx, b, log, chatID, msgs.RemoveAdminUsage, "")
		return
	}

	targetID, err := parseUserID(args[0])
	if err != nil {
		reply(ctx, b, log, chatID, msgs.InvalidUserID, "")
		return
	}

	err = h.deps.Gate.Remove(ctx, userID, targetID)
	switch {
	case err == nil:
		log.InfoContext(ctx, "Admin removed an admin", "user_id", userID, "target_id", targetID)
		reply(ctx, b, log, chatID, fmt.Sprintf(msgs.AdminRemovedFmt, targetID), "")
	case errors.Is(err, access.ErrLastAdmin):
		reply(ctx, b, log, chatID, msgs.LastAdmin, "")
	case errors.Is(err, access.ErrNotAnAdmin):
		reply(ctx, b, log, chatID, fmt.Sprintf(msgs.NotAnAdminFmt, targetID), "")
	case errors.Is(err, access.ErrUnauthorized):
		reply(ctx, b, log, chatID, msgs.NotAuthorized, "")
	default:
		log.ErrorContext(ctx, "Failed to remove admin", "error", err, "user_id", userID, "target_id", targetID)
		reply(ctx, b, log, chatID, msgs.GeneralError, "")
	}
}
