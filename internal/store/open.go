package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
	BackendMemory   = "memory"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Path    string // Directory for file, database file for sqlite
	DSN     string // Postgres connection string
	Redis   RedisConfig
	S3      S3Config
	Timeout time.Duration // Bound on connecting, when positive
}

// OpenBackend creates the backend named by cfg.Backend.
func OpenBackend(ctx context.Context, cfg Config) (Backend, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	switch cfg.Backend {
	case "", BackendFile:
		return NewFileBackend(cfg.Path)
	case BackendSQLite:
		path := cfg.Path
		if path != ":memory:" && filepath.Ext(path) == "" {
			path = filepath.Join(path, "encore.db")
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		return OpenSQLite(path)
	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("store: postgres backend requires a dsn")
		}
		return OpenPostgres(ctx, cfg.DSN)
	case BackendRedis:
		return OpenRedis(ctx, cfg.Redis)
	case BackendS3:
		return OpenS3(cfg.S3)
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}
