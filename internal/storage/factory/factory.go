// Package factory provides functions for creating storage backends based
// on configuration.
package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/uschtwill/trackd/internal/configfile"
	"github.com/uschtwill/trackd/internal/storage"
	"github.com/uschtwill/trackd/internal/storage/memory"
	"github.com/uschtwill/trackd/internal/storage/sqlite"
)

// Options configures how the storage backend is opened
type Options struct {
	LockTimeout time.Duration
}

// New creates a storage backend based on the backend type.
// For SQLite, path is the full path to the .db file; the memory backend
// ignores path.
func New(ctx context.Context, backend, path string) (storage.Storage, error) {
	return NewWithOptions(ctx, backend, path, Options{})
}

// NewWithOptions creates a storage backend with the specified options.
func NewWithOptions(ctx context.Context, backend, path string, opts Options) (storage.Storage, error) {
	switch backend {
	case configfile.BackendSQLite, "":
		if opts.LockTimeout > 0 {
			return sqlite.NewWithTimeout(ctx, path, opts.LockTimeout)
		}
		return sqlite.New(ctx, path)
	case configfile.BackendMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: sqlite, memory)", backend)
	}
}

// NewFromConfig creates a storage backend from the metadata.json in
// trackdDir (the .trackd directory).
func NewFromConfig(ctx context.Context, trackdDir string) (storage.Storage, error) {
	return NewFromConfigWithOptions(ctx, trackdDir, Options{})
}

// NewFromConfigWithOptions is NewFromConfig with explicit open options.
func NewFromConfigWithOptions(ctx context.Context, trackdDir string, opts Options) (storage.Storage, error) {
	cfg, err := configfile.Load(trackdDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no metadata.json in %s (run 'trackd init' first)", trackdDir)
	}
	return NewWithOptions(ctx, cfg.GetBackend(), cfg.DatabasePath(trackdDir), opts)
}
