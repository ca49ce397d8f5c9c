package store

import (
	"context"
	"fmt"
	"sync"
)

// memoryStore keeps record sets in process memory. Loads return copies so
// callers can mutate them freely before saving.
type memoryStore struct {
	mu   sync.RWMutex
	sets map[Kind]IDSet
}

// NewMemoryStore creates an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{sets: make(map[Kind]IDSet, len(Kinds))}
}

func (s *memoryStore) Load(ctx context.Context, kind Kind) (IDSet, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySet(s.sets[kind]), ctx.Err()
}

func (s *memoryStore) Save(ctx context.Context, kind Kind, ids IDSet) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[kind] = copySet(ids)
	return nil
}

func (s *memoryStore) Ping(ctx context.Context) error { return ctx.Err() }

// Normalize is a no-op: sets are kept deduplicated in memory.
func (s *memoryStore) Normalize(ctx context.Context, kind Kind) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *memoryStore) Maintain(ctx context.Context) error { return ctx.Err() }

func (s *memoryStore) Close() error { return nil }

func copySet(src IDSet) IDSet {
	out := make(IDSet, len(src))
	for id := range src {
		out[id] = struct{}{}
	}
	return out
}

func checkKind(kind Kind) error {
	for _, k := range Kinds {
		if k == kind {
			return nil
		}
	}
	return fmt.Errorf("unknown record kind %q", kind)
}
