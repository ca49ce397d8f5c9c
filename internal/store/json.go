package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
)

// JSONPaths locates the flat file of each record set. Each file holds one
// object with a single list under the kind's name, e.g. {"users":[1,2,3]}.
type JSONPaths struct {
	Users  string
	Admins string
}

// jsonStore keeps each record set in its own flat JSON file. Files are read
// in full on every Load and rewritten in full on every Save.
type jsonStore struct {
	paths  map[Kind]string
	logger *slog.Logger
}

// NewJSONStore creates a file-backed Store, creating parent directories.
func NewJSONStore(paths JSONPaths, logger *slog.Logger) (Store, error) {
	s := &jsonStore{
		paths: map[Kind]string{
			Users:  paths.Users,
			Admins: paths.Admins,
		},
		logger: logger.With("component", "store", "backend", "json"),
	}

	for kind, path := range s.paths {
		if path == "" {
			return nil, fmt.Errorf("no file configured for %s records", kind)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory for %s records: %w", kind, err)
		}
	}

	return s, nil
}

// Load never fails on bad data: a missing, unreadable or corrupt file, or
// one whose key is absent or not a list of integers, yields an empty set.
func (s *jsonStore) Load(ctx context.Context, kind Kind) (IDSet, error) {
	path, err := s.path(kind)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, err := readRecordFile(path, kind)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.WarnContext(ctx, "Record file unusable, treating as empty", "kind", kind, "path", path, "error", err)
		}
		return IDSet{}, nil
	}
	return NewIDSet(ids...), nil
}

// Save writes the set to a temporary file next to the target and renames it
// into place, so readers see either the old or the new full set.
func (s *jsonStore) Save(ctx context.Context, kind Kind, ids IDSet) error {
	path, err := s.path(kind)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeRecordFile(path, kind, ids); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save records", "kind", kind, "path", path, "error", err)
		return fmt.Errorf("failed to save %s records: %w", kind, err)
	}

	s.logger.DebugContext(ctx, "Records saved", "kind", kind, "count", ids.Len())
	return nil
}

func (s *jsonStore) Ping(ctx context.Context) error {
	for kind, path := range s.paths {
		if _, err := os.Stat(filepath.Dir(path)); err != nil {
			return fmt.Errorf("data directory for %s records unavailable: %w", kind, err)
		}
	}
	return ctx.Err()
}

// Normalize rewrites a parseable file deduplicated and sorted unless it
// already is. Missing files are skipped; corrupt files are left untouched so
// an operator can inspect them.
func (s *jsonStore) Normalize(ctx context.Context, kind Kind) error {
	path, err := s.path(kind)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ids, err := readRecordFile(path, kind)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.WarnContext(ctx, "Skipping normalization of unusable record file", "kind", kind, "path", path, "error", err)
		}
		return nil
	}

	set := NewIDSet(ids...)
	if slices.Equal(ids, set.Sorted()) {
		return nil
	}
	if err := writeRecordFile(path, kind, set); err != nil {
		return fmt.Errorf("failed to normalize %s records: %w", kind, err)
	}
	s.logger.InfoContext(ctx, "Normalized record file", "kind", kind, "before", len(ids), "after", set.Len())
	return nil
}

// Maintain has nothing to compact: every Save rewrites the whole file.
func (s *jsonStore) Maintain(ctx context.Context) error { return ctx.Err() }

func (s *jsonStore) Close() error { return nil }

func (s *jsonStore) path(kind Kind) (string, error) {
	path, ok := s.paths[kind]
	if !ok {
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
	return path, nil
}

// readRecordFile returns the raw ID list, duplicates included.
func readRecordFile(path string, kind Kind) ([]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupt record file: %w", err)
	}

	raw, ok := doc[string(kind)]
	if !ok {
		return nil, fmt.Errorf("corrupt record file: key %q missing", kind)
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("corrupt record file: key %q is not a list of IDs: %w", kind, err)
	}
	return ids, nil
}

func writeRecordFile(path string, kind Kind, ids IDSet) error {
	data, err := json.Marshal(map[string][]int64{string(kind): ids.Sorted()})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
