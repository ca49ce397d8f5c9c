// Package store persists the two record sets the bot keeps: known users and
// administrators. Every backend loads and saves a full set at a time; there
// is no partial or indexed access.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/edgard/promobot/internal/config"
)

// Kind names one record set.
type Kind string

const (
	// Users is the set of user IDs that sent /start.
	Users Kind = "users"
	// Admins is the set of user IDs with administrative capability.
	Admins Kind = "admins"
)

// Kinds lists every record set, in a stable order.
var Kinds = []Kind{Users, Admins}

// Store defines the record persistence contract.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Load returns the full record set of the given kind.
	Load(ctx context.Context, kind Kind) (IDSet, error)

	// Save replaces the full record set of the given kind.
	Save(ctx context.Context, kind Kind, ids IDSet) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Normalize rewrites the persisted form of kind deduplicated and sorted.
	// It is a read-modify-write: callers must hold the writer lock that owns
	// kind (see access.Gate and audience.Registry).
	Normalize(ctx context.Context, kind Kind) error

	// Maintain performs backend housekeeping (compaction, statistics). It
	// never rewrites records, so it needs no writer lock.
	Maintain(ctx context.Context) error

	Close() error
}

// IDSet is a set of opaque numeric user identifiers.
type IDSet map[int64]struct{}

// NewIDSet builds a set from ids, dropping duplicates.
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id and reports whether it was absent.
func (s IDSet) Add(id int64) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether it was present.
func (s IDSet) Remove(id int64) bool {
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

// Has reports membership.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s IDSet) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// New creates the Store selected by cfg.Backend.
func New(cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	switch cfg.Backend {
	case "json", "":
		return NewJSONStore(JSONPaths{
			Users:  filepath.Join(cfg.DataDir, cfg.UsersFile),
			Admins: filepath.Join(cfg.DataDir, cfg.AdminsFile),
		}, logger)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, logger)
	case "bolt":
		return NewBoltStore(cfg.BoltPath, logger)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
