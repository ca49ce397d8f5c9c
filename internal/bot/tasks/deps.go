// Package tasks implements the bot's scheduled tasks and the registry the
// scheduler picks them from.
package tasks

import (
	"log/slog"

	"github.com/edgard/promobot/internal/access"
	"github.com/edgard/promobot/internal/audience"
	"github.com/edgard/promobot/internal/config"
	"github.com/edgard/promobot/internal/store"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    store.Store
	Gate     *access.Gate
	Audience *audience.Registry
	Config   *config.Config
}
