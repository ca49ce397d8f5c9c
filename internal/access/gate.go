// Package access implements the admin authorization gate: membership checks,
// first-admin bootstrap, and guarded add/remove of administrators.
package access

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/edgard/promobot/internal/store"
)

var (
	// ErrUnauthorized is returned when a non-admin attempts an admin action.
	ErrUnauthorized = errors.New("requester is not an administrator")
	// ErrLastAdmin is returned when a removal would leave no administrator.
	ErrLastAdmin = errors.New("cannot remove the last administrator")
	// ErrNotAnAdmin is returned when the removal target is not an administrator.
	ErrNotAnAdmin = errors.New("target is not an administrator")
)

// Outcome is the result of BootstrapOrRequire.
type Outcome int

const (
	// Denied means admins exist and the caller is not one of them.
	Denied Outcome = iota
	// Bootstrapped means the admin set was empty and the caller became its first member.
	Bootstrapped
	// AlreadyAdmin means the caller already holds admin rights.
	AlreadyAdmin
)

func (o Outcome) String() string {
	switch o {
	case Bootstrapped:
		return "bootstrapped"
	case AlreadyAdmin:
		return "already_admin"
	default:
		return "denied"
	}
}

// Gate guards the admin record set. Every operation holds mu for its whole
// read-modify-write so concurrent handlers cannot lose updates.
type Gate struct {
	mu     sync.Mutex
	store  store.Store
	logger *slog.Logger
}

// NewGate creates a Gate over the admins record set of s.
func NewGate(s store.Store, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gate{
		store:  s,
		logger: logger.With("component", "access_gate"),
	}
}

// IsAdmin reports whether userID is an administrator.
func (g *Gate) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	admins, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	return admins.Has(userID), nil
}

// BootstrapOrRequire makes userID the first admin when none exist, and
// otherwise reports whether userID is already an admin.
func (g *Gate) BootstrapOrRequire(ctx context.Context, userID int64) (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	admins, err := g.load(ctx)
	if err != nil {
		return Denied, err
	}

	switch {
	case admins.Len() == 0:
		admins.Add(userID)
		if err := g.save(ctx, admins); err != nil {
			return Denied, err
		}
		g.logger.InfoContext(ctx, "First administrator bootstrapped", "user_id", userID)
		return Bootstrapped, nil
	case admins.Has(userID):
		return AlreadyAdmin, nil
	default:
		return Denied, nil
	}
}

// Add grants admin rights to targetID. Adding an existing admin is a no-op.
func (g *Gate) Add(ctx context.Context, requesterID, targetID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	admins, err := g.load(ctx)
	if err != nil {
		return err
	}
	if !admins.Has(requesterID) {
		return ErrUnauthorized
	}
	if !admins.Add(targetID) {
		return nil
	}
	if err := g.save(ctx, admins); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "Administrator added", "requester_id", requesterID, "target_id", targetID)
	return nil
}

// Remove revokes admin rights from targetID. The sole remaining admin can
// never be removed, whoever the target is.
func (g *Gate) Remove(ctx context.Context, requesterID, targetID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	admins, err := g.load(ctx)
	if err != nil {
		return err
	}
	if !admins.Has(requesterID) {
		return ErrUnauthorized
	}
	if admins.Len() <= 1 {
		return ErrLastAdmin
	}
	if !admins.Remove(targetID) {
		return ErrNotAnAdmin
	}
	if err := g.save(ctx, admins); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "Administrator removed", "requester_id", requesterID, "target_id", targetID)
	return nil
}

// List returns all administrators in ascending order.
func (g *Gate) List(ctx context.Context) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	admins, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	return admins.Sorted(), nil
}

// Normalize compacts the persisted admin set under the gate's lock, so it
// cannot interleave with Add, Remove or a bootstrap.
func (g *Gate) Normalize(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Normalize(ctx, store.Admins); err != nil {
		return fmt.Errorf("failed to normalize admins: %w", err)
	}
	return nil
}

func (g *Gate) load(ctx context.Context) (store.IDSet, error) {
	admins, err := g.store.Load(ctx, store.Admins)
	if err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}
	return admins, nil
}

func (g *Gate) save(ctx context.Context, admins store.IDSet) error {
	if err := g.store.Save(ctx, store.Admins, admins); err != nil {
		return fmt.Errorf("failed to save admins: %w", err)
	}
	return nil
}
