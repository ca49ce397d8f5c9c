package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// boltStore keeps one bucket per record kind; keys are big-endian int64 IDs
// and values are empty.
type boltStore struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// NewBoltStore opens (creating if needed) the bbolt file at path.
func NewBoltStore(path string, logger *slog.Logger) (Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bolt directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, kind := range Kinds {
			if _, err := tx.CreateBucketIfNotExists([]byte(kind)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bolt buckets: %w", err)
	}

	return &boltStore{
		db:     db,
		logger: logger.With("component", "store", "backend", "bolt"),
	}, nil
}

func (s *boltStore) Load(ctx context.Context, kind Kind) (IDSet, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := IDSet{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(kind))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("malformed key of length %d", len(k))
			}
			ids.Add(int64(binary.BigEndian.Uint64(k)))
			return nil
		})
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load records", "kind", kind, "error", err)
		return nil, fmt.Errorf("failed to load %s records: %w", kind, err)
	}
	return ids, nil
}

// Save drops and recreates the kind's bucket in one update transaction.
func (s *boltStore) Save(ctx context.Context, kind Kind, ids IDSet) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		name := []byte(kind)
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(name)
		if err != nil {
			return err
		}
		for _, id := range ids.Sorted() {
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, uint64(id))
			if err := b.Put(key, []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save records", "kind", kind, "error", err)
		return fmt.Errorf("failed to save %s records: %w", kind, err)
	}

	s.logger.DebugContext(ctx, "Records saved", "kind", kind, "count", ids.Len())
	return nil
}

func (s *boltStore) Ping(ctx context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error { return ctx.Err() })
}

// Normalize is a no-op: bucket keys are unique and iterate in byte order.
func (s *boltStore) Normalize(ctx context.Context, kind Kind) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return ctx.Err()
}

// Maintain is a no-op: bbolt reuses freed pages and cannot be compacted
// while open.
func (s *boltStore) Maintain(ctx context.Context) error { return ctx.Err() }

func (s *boltStore) Close() error {
	return s.db.Close()
}
