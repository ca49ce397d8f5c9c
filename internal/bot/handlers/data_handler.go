package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/promobot/internal/config"
)

const (
	dataPreviewUsers = 20
	dataSplitUsers   = 50
	// Telegram rejects messages over 4096 characters.
	maxDataMessageLen = 4000
)

// NewDataHandler returns a handler for the /data command.
func NewDataHandler(deps HandlerDeps) bot.HandlerFunc {
	return dataHandler{deps}.Handle
}

// dataHandler dumps the stored admin and user IDs.
type dataHandler struct {
	deps HandlerDeps
}

func (h dataHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "data")
	msgs := h.deps.Config.Messages

	if update.Message == nil {
		log.WarnContext(ctx, "Data handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	admins, err := h.deps.Gate.List(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list admins", "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError, "")
		return
	}
	users, err := h.deps.Audience.All(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list users", "error", err)
		reply(ctx, b, log, chatID, msgs.GeneralError, "")
		return
	}

	parts := formatData(msgs, admins, users)
	log.InfoContext(ctx, "Sending stored data", "admins", len(admins), "users", len(users), "parts", len(parts))
	for _, part := range parts {
		reply(ctx, b, log, chatID, part, models.ParseModeHTML)
	}
}

// formatData renders admins and the first users. When the result is too long
// for one message it is split: the headers first, then up to dataSplitUsers IDs.
func formatData(msgs config.MessagesConfig, admins, users []int64) []string {
	var adminsText strings.Builder
	adminsText.WriteString(msgs.DataAdminsHeader)
	if len(admins) == 0 {
		adminsText.WriteString(msgs.DataNoAdmins)
	} else {
		writeIDList(&adminsText, admins)
	}

	usersHeader := fmt.Sprintf(msgs.DataUsersFmt, len(users))

	var usersText strings.Builder
	usersText.WriteString(usersHeader)
	if len(users) == 0 {
		usersText.WriteString(msgs.DataNoUsers)
	} else {
		writeIDList(&usersText, users[:min(len(users), dataPreviewUsers)])
		if len(users) > dataPreviewUsers {
			fmt.Fprintf(&usersText, msgs.DataMoreFmt, len(users)-dataPreviewUsers)
		}
	}

	full := adminsText.String() + usersText.String()
	if len(full) <= maxDataMessageLen {
		return []string{full}
	}

	parts := chunkLines(adminsText.String()+usersHeader, maxDataMessageLen)
	if len(users) > 0 {
		var list strings.Builder
		writeIDList(&list, users[:min(len(users), dataSplitUsers)])
		if len(users) > dataSplitUsers {
			fmt.Fprintf(&list, msgs.DataMoreFmt, len(users)-dataSplitUsers)
		}
		parts = append(parts, list.String())
	}
	return parts
}

// chunkLines splits text on line boundaries into pieces of at most limit
// bytes. A single longer line is kept whole.
func chunkLines(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		if cur.Len() > 0 && cur.Len()+len(line) > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
