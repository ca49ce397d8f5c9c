package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTestMailingHandler returns a handler for /test_mailing, which explains
// whether the sender could start a mailing right now.
func NewTestMailingHandler(deps HandlerDeps) bot.HandlerFunc {
	return testMailingHandler{deps}.Handle
}

type testMailingHandler struct {
	deps HandlerDeps
}

func (h testMailingHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "test_mailing")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.WarnContext(ctx, "TestMailing handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	isAdmin, err := h.deps.Gate.IsAdmin(ctx, msg.From.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check admin status", "error", err, "user_id", msg.From.ID)
		reply(ctx, b, log, msg.Chat.ID, h.deps.Config.Messages.GeneralError, "")
		return
	}

	reply(ctx, b, log, msg.Chat.ID, h.diagnostics(msg, isAdmin), models.ParseModeHTML)
}

func (h testMailingHandler) diagnostics(msg *models.Message, isAdmin bool) string {
	msgs := h.deps.Config.Messages
	forwarded := IsForwarded(msg)

	var sb strings.Builder
	sb.WriteString(msgs.DiagnosticsHeader)
	fmt.Fprintf(&sb, "Your User ID: <code>%d</code>\n", msg.From.ID)
	fmt.Fprintf(&sb, "Is Admin: %s\n", yesNo(isAdmin))
	fmt.Fprintf(&sb, "Is Forwarded: %s\n", yesNo(forwarded))
	fmt.Fprintf(&sb, "Has Photo: %s\n", yesNo(len(msg.Photo) > 0))
	fmt.Fprintf(&sb, "Has Text: %s\n", yesNo(msg.Text != ""))
	fmt.Fprintf(&sb, "Has Caption: %s\n\n", yesNo(msg.Caption != ""))

	switch {
	case !isAdmin:
		sb.WriteString(msgs.DiagNotAdmin)
	case !forwarded:
		sb.WriteString(msgs.DiagNotForwarded)
	default:
		sb.WriteString(msgs.DiagReady)
	}
	return sb.String()
}

func yesNo(v bool) string {
	if v {
		return "✅ Yes"
	}
	return "❌ No"
}
