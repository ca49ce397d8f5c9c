// Package audience tracks the users who started the bot. Users are only ever
// added; nobody is removed, not even after blocking the bot.
package audience

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/edgard/promobot/internal/store"
)

// Registry is the known-user set. Register holds mu across its
// read-modify-write so concurrent /start commands cannot drop each other.
type Registry struct {
	mu     sync.Mutex
	store  store.Store
	logger *slog.Logger
}

// NewRegistry creates a Registry over the users record set of s.
func NewRegistry(s store.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		store:  s,
		logger: logger.With("component", "audience"),
	}
}

// Register records userID and reports whether it is new.
func (r *Registry) Register(ctx context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.store.Load(ctx, store.Users)
	if err != nil {
		return false, fmt.Errorf("failed to load users: %w", err)
	}
	if !users.Add(userID) {
		return false, nil
	}
	if err := r.store.Save(ctx, store.Users, users); err != nil {
		return false, fmt.Errorf("failed to save users: %w", err)
	}

	r.logger.InfoContext(ctx, "New user registered", "user_id", userID, "total", users.Len())
	return true, nil
}

// Count returns the number of distinct known users.
func (r *Registry) Count(ctx context.Context) (int, error) {
	users, err := r.store.Load(ctx, store.Users)
	if err != nil {
		return 0, fmt.Errorf("failed to load users: %w", err)
	}
	return users.Len(), nil
}

// All returns every known user ID in ascending order.
func (r *Registry) All(ctx context.Context) ([]int64, error) {
	users, err := r.store.Load(ctx, store.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users.Sorted(), nil
}

// Normalize compacts the persisted user set under the registry's lock, so a
// concurrent Register is never overwritten.
func (r *Registry) Normalize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Normalize(ctx, store.Users); err != nil {
		return fmt.Errorf("failed to normalize users: %w", err)
	}
	return nil
}
