package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/promobot/internal/access"
	"github.com/edgard/promobot/internal/metrics"
)

// NewSetAdminHandler returns a handler for the /setadmin command.
func NewSetAdminHandler(deps HandlerDeps) bot.HandlerFunc {
	return setAdminHandler{deps}.Handle
}

// setAdminHandler bootstraps the first admin when none exist; afterwards it
// lets admins add others by user ID.
type setAdminHandler struct {
	deps HandlerDeps
}

func (h setAdminHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "setadmin")
	msgs := h.deps.Config.Messages

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "SetAdmin handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	outcome, err := h.deps.Gate.BootstrapOrRequire(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check admin status", "error", err, "user_id", userID)
		reply(ctx, b, log, chatID, msgs.GeneralError, "")
		return
	}

	switch outcome {
	case access.Bootstrapped:
		metrics.IncAdminCommand("setadmin", "bootstrapped")
		log.InfoContext(ctx, "User became the first admin", "user_id", userID)
		reply(ctx, b, log, chatID, fmt.Sprintf(msgs.BootstrapFmt, userID), "")
		return
	case access.Denied:
		metrics.IncAdminCommand("setadmin", "unauthorized")
		log.WarnContext(ctx, "Non-admin tried to add an admin", "user_id", userID)
		reply(ctx, b, log, chatID, msgs.SetAdminDenied, "")
		return
	}
	metrics.IncAdminCommand("setadmin", "authorized")

	_, args := ParseCommand(update.Message.Text)
	if len(args) == 0 {
		reply(ctx, b, log, chatID, msgs.SetAdminUsage, "")
		return
	}

	targetID, err := parseUserID(args[0])
	if err != nil {
		reply(ctx, b, log, chatID, msgs.InvalidUserID, "")
		return
	}

	if err := h.deps.Gate.Add(ctx, userID, targetID); err != nil {
		log.ErrorContext(ctx, "Failed to add admin", "error", err, "user_id", userID, "target_id", targetID)
		if errors.Is(err, access.ErrUnauthorized) {
			reply(ctx, b, log, chatID, msgs.SetAdminDenied, "")
			return
		}
		reply(ctx, b, log, chatID, msgs.GeneralError, "")
		return
	}

	log.InfoContext(ctx, "Admin added a new admin", "user_id", userID, "target_id", targetID)
	reply(ctx, b, log, chatID, fmt.Sprintf(msgs.AdminAddedFmt, targetID), "")
}
