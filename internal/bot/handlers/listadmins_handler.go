package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewListAdminsHandler returns a handler for the /listadmins command.
func NewListAdminsHandler(deps HandlerDeps) bot.HandlerFunc {
	return listAdminsHandler{deps}.Handle
}

type listAdminsHandler struct {
	deps HandlerDeps
}

func (h listAdminsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "listadmins")
	msgs := h.deps.Config.Messages

	if update.Message == nil {
		log.WarnContext(ctx, "ListAdmins handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	admins, err := h.deps.Gate.List(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list admins", "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError, "")
		return
	}

	if len(admins) == 0 {
		reply(ctx, b, log, chatID, msgs.NoAdmins, "")
		return
	}

	var sb strings.Builder
	sb.WriteString(msgs.AdminsHeader)
	writeIDList(&sb, admins)
	reply(ctx, b, log, chatID, sb.String(), models.ParseModeHTML)
}

// writeIDList writes one "• <code>id</code>" line per ID.
func writeIDList(sb *strings.Builder, ids []int64) {
	for _, id := range ids {
		fmt.Fprintf(sb, "• <code>%d</code>\n", id)
	}
}
