// Package sqlite implements the storage interface using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofrs/flock"

	"github.com/uschtwill/trackd/internal/storage"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Verify SQLiteStorage implements storage.Storage at compile time
var _ storage.Storage = (*SQLiteStorage)(nil)

// SQLiteStorage implements the Storage interface on a single SQLite file.
type SQLiteStorage struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// DefaultLockTimeout bounds how long New waits for the database lock.
const DefaultLockTimeout = 30 * time.Second

// New opens (creating if needed) the SQLite database at path.
func New(ctx context.Context, path string) (*SQLiteStorage, error) {
	return NewWithTimeout(ctx, path, DefaultLockTimeout)
}

// NewWithTimeout opens the database, waiting up to lockTimeout for the
// sibling lock file. The lock guards against a second trackd process
// initializing the same database concurrently.
func NewWithTimeout(ctx context.Context, path string, lockTimeout time.Duration) (*SQLiteStorage, error) {
	lock := flock.New(path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := lock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquiring database lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("database %s is locked by another process", path)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(10000)&_pragma=journal_mode(wal)&_pragma=foreign_keys(on)"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStorage{db: db, path: path, lock: lock}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return s, nil
}

// Close closes the database and releases the lock file.
func (s *SQLiteStorage) Close() error {
	err := s.db.Close()
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return err
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

func (s *SQLiteStorage) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// withTx executes fn inside a transaction, rolling back on error or panic.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// wrapDBError adds operation context to a database error.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// parseTimeString parses a time string from database TEXT columns.
// The ncruces/go-sqlite3 driver only auto-converts TEXT to time.Time for
// columns declared DATETIME; trackd declares TEXT and parses manually.
// Supports RFC3339Nano, RFC3339, and SQLite's native format.
func parseTimeString(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// formatTime formats a timestamp for TEXT column storage. The fraction is
// fixed-width so the stored strings sort lexicographically in time order;
// RFC3339Nano trims trailing zeros, which breaks SQL ORDER BY on the
// column ("...00.5Z" would sort after "...00.51Z").
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
