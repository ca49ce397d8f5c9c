package handlers

import (
	"log/slog"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/promobot/internal/access"
	"github.com/edgard/promobot/internal/audience"
	"github.com/edgard/promobot/internal/broadcast"
	"github.com/edgard/promobot/internal/config"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Gate     *access.Gate
	Audience *audience.Registry
	// NewEngine returns a broadcast engine that delivers through b.
	NewEngine func(b *tgbot.Bot) *broadcast.Engine
}
