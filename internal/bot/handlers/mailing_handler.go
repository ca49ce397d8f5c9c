package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/promobot/internal/broadcast"
)

// NewMailingHandler returns a handler for the /mailing command, which
// broadcasts the message it replies to. It expects AdminOnly to run first.
func NewMailingHandler(deps HandlerDeps) bot.HandlerFunc {
	return mailingHandler{deps}.Handle
}

type mailingHandler struct {
	deps HandlerDeps
}

func (h mailingHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "mailing")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.WarnContext(ctx, "Mailing handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	if msg.ReplyToMessage == nil {
		reply(ctx, b, log, msg.Chat.ID, h.deps.Config.Messages.MailingUsage, models.ParseModeHTML)
		return
	}

	runBroadcast(ctx, b, h.deps, log, msg.Chat.ID, msg.From.ID, SourceFromMessage(msg.ReplyToMessage))
}

// NewForwardHandler returns a handler that broadcasts messages forwarded to
// the bot by an admin.
func NewForwardHandler(deps HandlerDeps) bot.HandlerFunc {
	return forwardHandler{deps}.Handle
}

type forwardHandler struct {
	deps HandlerDeps
}

func (h forwardHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "forward")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.WarnContext(ctx, "Forward handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	isAdmin, err := h.deps.Gate.IsAdmin(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check admin status", "error", err, "user_id", userID)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError, "")
		return
	}
	if !isAdmin {
		log.WarnContext(ctx, "Non-admin forwarded a message", "user_id", userID)
		reply(ctx, b, log, chatID, h.deps.Config.Messages.ForwardDenied, "")
		return
	}

	runBroadcast(ctx, b, h.deps, log, chatID, userID, SourceFromMessage(msg))
}

// runBroadcast sends src to every known user except the requester and keeps
// the requester informed about progress and outcome.
func runBroadcast(ctx context.Context, b *bot.Bot, deps HandlerDeps, log *slog.Logger, chatID, requester int64, src broadcast.Source) {
	msgs := deps.Config.Messages

	users, err := deps.Audience.All(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load users for mailing", "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError, "")
		return
	}

	if len(broadcast.Recipients(users, requester)) == 0 {
		log.InfoContext(ctx, "No users to mail", "requester_id", requester)
		reply(ctx, b, log, chatID, msgs.NoRecipients, "")
		return
	}

	res, err := deps.NewEngine(b).Broadcast(ctx, broadcast.Request{
		Requester: requester,
		Source:    src,
		Audience:  users,
		OnStart: func(ctx context.Context, total int) {
			reply(ctx, b, log, chatID, fmt.Sprintf(msgs.MailingStartFmt, total), "")
		},
	})

	summary := fmt.Sprintf(msgs.MailingResultFmt, res.Succeeded, res.Failed, res.Total)
	switch {
	case errors.Is(err, broadcast.ErrEmptyContent):
		reply(ctx, b, log, chatID, msgs.EmptyContent, "")
	case err != nil:
		log.WarnContext(ctx, "Mailing interrupted", "error", err, "succeeded", res.Succeeded, "failed", res.Failed)
		// ctx is already done here; the report still has to reach the admin.
		reply(context.WithoutCancel(ctx), b, log, chatID, msgs.MailingCancelled+"\n\n"+summary, "")
	default:
		reply(ctx, b, log, chatID, summary, "")
	}
}
