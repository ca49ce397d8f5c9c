// Package telegram handles the setup of the Telegram bot: instance creation,
// handler registration, the published command menu, and the client adapter
// used by broadcasts.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/promobot/internal/bot/handlers"
	"github.com/edgard/promobot/internal/config"
)

// ErrNilBot is returned when a nil bot instance is passed in.
var ErrNilBot = errors.New("bot instance cannot be nil")

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", tokenPrefix(token))
	return b, nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}

// applyMiddleware wraps a handler function with a slice of middleware.
// Middleware are applied in reverse order so the first one in the slice is the outermost.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers command and message handlers with the Telegram
// bot instance, applying each handler's own middleware.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return ErrNilBot
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	log.Info("Registering Telegram handlers...", "count", len(registeredHandlers))

	registered := 0
	for name, regHandler := range registeredHandlers {
		if regHandler.Handler == nil || regHandler.Match == nil {
			log.Warn("Skipping registration for incomplete handler", "name", name)
			continue
		}

		finalHandler := applyMiddleware(regHandler.Handler, regHandler.Middleware)
		b.RegisterHandlerMatchFunc(regHandler.Match, finalHandler)
		registered++
		log.Debug("Registered handler", "name", name, "middleware_count", len(regHandler.Middleware))
	}

	log.Info("Registered Telegram handlers successfully", "count", registered)
	return nil
}

// SetCommands publishes the command menu shown by Telegram clients.
func SetCommands(ctx context.Context, b *bot.Bot, logger *slog.Logger, commands []config.CommandConfig) error {
	if b == nil {
		return ErrNilBot
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	if len(commands) == 0 {
		log.Debug("No commands to publish")
		return nil
	}

	botCommands := make([]models.BotCommand, 0, len(commands))
	for _, c := range commands {
		botCommands = append(botCommands, models.BotCommand{Command: c.Command, Description: c.Description})
	}

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: botCommands}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}

	log.Info("Published bot commands", "count", len(botCommands))
	return nil
}
