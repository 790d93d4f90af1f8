// Package storage persists the note buffer.
//
// The explorer keeps exactly one piece of durable state: the text the user
// typed. A [Store] maps a key to that text. The CLI reads and writes the
// fixed key [NotesKey]; the HTTP server scopes each session's buffer under
// [SessionKey].
//
// Backends:
//   - [MemoryStore]: process-local, for tests and throwaway servers
//   - [FileStore]: one .note file per key (the default)
//   - [SQLiteStore]: a single SQLite database file
//   - [RedisStore]: shared storage for multi-instance servers
//   - [MongoStore]: a MongoDB collection, one document per key
//
// Use [Open] to build the backend named in configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/sboosali/notegraph/pkg/errors"
)

// NotesKey is the key under which the CLI keeps its note buffer.
const NotesKey = "notes"

// Store is a key/value store for note text.
//
// Get returns ("", false, nil) when nothing is stored under key. Keys are
// validated with [errors.ValidateStorageKey] by every backend.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SessionKey returns the key for a server session's note buffer.
func SessionKey(sessionID string) string {
	return "session-" + sessionID
}

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string

	// Path is the directory for "file" and the database file for "sqlite".
	// Empty selects the default location.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string
}

// Open returns the backend named by cfg.Backend. An empty name selects the
// file backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		path := cfg.Path
		if path == "" {
			var err error
			if path, err = DefaultSQLitePath(); err != nil {
				return nil, err
			}
		}
		return NewSQLiteStore(path)
	case BackendRedis:
		return NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case BackendMongo:
		return NewMongoStore(ctx, MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown storage backend %q", cfg.Backend)
	}
}

// DefaultSQLitePath is the database used when the sqlite backend has no
// path: notes.db next to [DefaultDir].
func DefaultSQLitePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return dir + ".db", nil
}

func checkKey(key string) error {
	if err := errors.ValidateStorageKey(key); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}
