package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/promobot/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// sqliteStore keeps both record sets in one SQLite table keyed by (kind, id).
type sqliteStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLiteStore opens the database at dbPath, applies migrations and
// returns a Store backed by it.
func NewSQLiteStore(dbPath string, logger *slog.Logger) (Store, error) {
	db, err := NewDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{
		db:     db,
		logger: logger.With("component", "store", "backend", "sqlite"),
	}, nil
}

// NewDB initializes, applies migrations, and returns a new database connection pool.
// dbPath should be a path to the SQLite database file.
func NewDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite doesn't support concurrent writes, so max open conns = 1
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := ApplyMigrations(db.DB, ExtractDBNameFromPath(dbPath)); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Error closing database after migration failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	slog.Info("Database connected and migrations applied successfully", "path", dbPath)
	return db, nil
}

// ApplyMigrations runs database migrations using embedded files.
func ApplyMigrations(db *sql.DB, dbName string) error {
	if db == nil {
		return errors.New("database connection is nil, cannot apply migrations")
	}
	if dbName == "" {
		return errors.New("database name/path for migration driver is empty")
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create embed source driver instance: %w", err)
	}

	dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite3 database driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Debug("No database migrations to apply.")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	slog.Info("Database migrations applied successfully.")
	return nil
}

// ExtractDBNameFromPath extracts the database file path from a possibly URL-formatted path.
func ExtractDBNameFromPath(path string) string {
	path = strings.TrimPrefix(path, "file:")

	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}

	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}
	return path
}

func (s *sqliteStore) Load(ctx context.Context, kind Kind) (IDSet, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM records WHERE kind = ?`, string(kind)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load records", "kind", kind, "error", err)
		return nil, fmt.Errorf("failed to load %s records: %w", kind, err)
	}
	return NewIDSet(ids...), nil
}

// Save makes the rows of kind equal to ids inside one transaction. Only the
// difference is written, so created_at keeps the time a record first appeared.
func (s *sqliteStore) Save(ctx context.Context, kind Kind, ids IDSet) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	var existing []int64
	if err := tx.SelectContext(ctx, &existing, `SELECT id FROM records WHERE kind = ?`, string(kind)); err != nil {
		return fmt.Errorf("failed to read current %s records: %w", kind, err)
	}
	current := NewIDSet(existing...)

	for _, id := range existing {
		if ids.Has(id) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND id = ?`, string(kind), id); err != nil {
			return fmt.Errorf("failed to delete %s record %d: %w", kind, id, err)
		}
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT OR IGNORE INTO records (kind, id) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids.Sorted() {
		if current.Has(id) {
			continue
		}
		if _, err := stmt.ExecContext(ctx, string(kind), id); err != nil {
			return fmt.Errorf("failed to insert %s record %d: %w", kind, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "kind", kind, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Records saved", "kind", kind, "count", ids.Len())
	return nil
}

// Normalize is a no-op: the (kind, id) primary key keeps rows unique.
func (s *sqliteStore) Normalize(ctx context.Context, kind Kind) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Maintain runs VACUUM and PRAGMA optimize. VACUUM must run outside a
// transaction.
func (s *sqliteStore) Maintain(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed successfully")
	return nil
}

func (s *sqliteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
