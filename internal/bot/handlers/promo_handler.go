package handlers

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/promobot/internal/config"
)

type promoKind int

const (
	promoNone promoKind = iota
	promoFreeSpin
	promoHotTips
)

// matchPromo finds the promo a plain text asks for. Triggers are matched
// case-insensitively as substrings; free spin wins over hot tips.
func matchPromo(promo config.PromoConfig, text string) promoKind {
	upper := strings.ToUpper(text)
	switch {
	case promo.FreeSpinTrigger != "" && strings.Contains(upper, strings.ToUpper(promo.FreeSpinTrigger)):
		return promoFreeSpin
	case promo.HotTipsTrigger != "" && strings.Contains(upper, strings.ToUpper(promo.HotTipsTrigger)):
		return promoHotTips
	default:
		return promoNone
	}
}

// NewPromoHandler returns the default handler: it answers the menu buttons
// with their promo and everything else in plain text with the fallback reply.
func NewPromoHandler(deps HandlerDeps) bot.HandlerFunc {
	return promoHandler{deps}.Handle
}

type promoHandler struct {
	deps HandlerDeps
}

func (h promoHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "promo")

	msg := update.Message
	if event := Classify(msg); event != EventText {
		log.DebugContext(ctx, "Ignoring unhandled update", "update_id", update.ID, "event", event)
		return
	}
	chatID := msg.Chat.ID
	promo := h.deps.Config.Promo

	switch matchPromo(promo, msg.Text) {
	case promoFreeSpin:
		h.sendPromo(ctx, b, log, chatID, promo.FreeSpinImage, promo.FreeSpinText, [][]models.InlineKeyboardButton{
			{{Text: promo.FreeSpinWebLabel, URL: promo.FreeSpinURL}},
			{{Text: promo.ChannelLabel, URL: promo.ChannelURL}},
		})
	case promoHotTips:
		h.sendPromo(ctx, b, log, chatID, promo.HotTipsImage, promo.HotTipsText, [][]models.InlineKeyboardButton{
			{{Text: promo.FreeCreditLabel, URL: promo.FreeCreditURL}},
			{{Text: promo.HotChannelLabel, URL: promo.ChannelURL}},
		})
	default:
		reply(ctx, b, log, chatID, h.deps.Config.Messages.FallbackReply, "")
	}
}

// sendPromo sends text with one URL button per row, as the caption of the
// image when it exists and as a plain message otherwise.
func (h promoHandler) sendPromo(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, imagePath, text string, rows [][]models.InlineKeyboardButton) {
	markup := &models.InlineKeyboardMarkup{InlineKeyboard: rows}

	if imagePath != "" {
		f, err := os.Open(imagePath)
		switch {
		case err == nil:
			defer f.Close()
			_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
				ChatID:      chatID,
				Photo:       &models.InputFileUpload{Filename: filepath.Base(imagePath), Data: f},
				Caption:     text,
				ReplyMarkup: markup,
			})
			if err != nil {
				log.ErrorContext(ctx, "Failed to send promo photo", "error", err, "chat_id", chatID, "image", imagePath)
			}
			return
		case !errors.Is(err, fs.ErrNotExist):
			log.WarnContext(ctx, "Failed to open promo image, sending text only", "error", err, "image", imagePath)
		}
	}

	sendReply(ctx, b, log, &bot.SendMessageParams{ChatID: chatID, Text: text, ReplyMarkup: markup})
}
