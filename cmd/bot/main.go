// Package main contains the entrypoint for the promo Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/promobot/internal/access"
	"github.com/edgard/promobot/internal/audience"
	"github.com/edgard/promobot/internal/bot"
	"github.com/edgard/promobot/internal/bot/handlers"
	"github.com/edgard/promobot/internal/bot/tasks"
	"github.com/edgard/promobot/internal/broadcast"
	"github.com/edgard/promobot/internal/config"
	"github.com/edgard/promobot/internal/logger"
	"github.com/edgard/promobot/internal/metrics"
	"github.com/edgard/promobot/internal/server"
	"github.com/edgard/promobot/internal/store"
	"github.com/edgard/promobot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// store, bot, scheduler, HTTP server), handles graceful shutdown, and returns
// an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	st, err := store.New(cfg.Storage, log)
	if err != nil {
		log.Error("Failed to open store", "backend", cfg.Storage.Backend, "error", err)
		return 1
	}
	// The orchestrator closes the store on shutdown; close it here only on early exit.
	started := false
	defer func() {
		if !started {
			_ = st.Close()
		}
	}()

	metrics.MustRegister()

	gate := access.NewGate(st, log)
	registry := audience.NewRegistry(st, log)

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Gate:     gate,
		Audience: registry,
		NewEngine: func(b *tgbot.Bot) *broadcast.Engine {
			return broadcast.NewEngine(telegram.NewClient(b), log, broadcast.WithReasonClassifier(telegram.FailureReason))
		},
	}
	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    st,
		Gate:     gate,
		Audience: registry,
		Config:   cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Recover(log), logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewPromoHandler(hDeps)),
		tgbot.WithErrorsHandler(func(err error) {
			log.Error("Telegram polling error", "error", err)
		}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	// Retrieve bot info and store it in the config for runtime use
	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommands(ctx, tg, log, cfg.Commands); err != nil {
		// The menu is cosmetic; commands work without it.
		log.Warn("Failed to publish bot commands", "error", err)
	}

	taskMap := tasks.RegisterAllTasks(tDeps)
	if gauge, ok := taskMap["audience_gauge"]; ok {
		if err := gauge(ctx); err != nil {
			log.Warn("Failed to initialize audience gauges", "error", err)
		}
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var httpServer *server.Server
	if cfg.HTTP.Addr != "" {
		httpServer = server.New(cfg.HTTP.Addr, st, log)
	}

	app := bot.NewBot(log, cfg, st, tg, sched, httpServer)

	log.Info("Starting bot...")
	started = true
	runErr := app.Run(ctx) // Run blocks until context is cancelled or an error occurs
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
