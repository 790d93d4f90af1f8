// Package cli implements the notegraph command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sboosali/notegraph/pkg/backend"
	"github.com/sboosali/notegraph/pkg/buildinfo"
	"github.com/sboosali/notegraph/pkg/cache"
	"github.com/sboosali/notegraph/pkg/config"
	"github.com/sboosali/notegraph/pkg/errors"
	"github.com/sboosali/notegraph/pkg/explorer"
	"github.com/sboosali/notegraph/pkg/interact"
	"github.com/sboosali/notegraph/pkg/render"
	"github.com/sboosali/notegraph/pkg/session"
	"github.com/sboosali/notegraph/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "notegraph"

	// cacheNamespace scopes draw responses inside a shared cache: a
	// subdirectory of the cache dir, or a key segment in Redis.
	cacheNamespace = "draw"

	// redisCachePrefix namespaces draw responses in Redis.
	redisCachePrefix = "notegraph:cache:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by --config. Empty means the default location.
	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration once per run.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Factories
// =============================================================================

// newClient builds a backend client from the [backend] and [cache] sections.
// The returned cache must be closed by the caller.
func (c *CLI) newClient(ctx context.Context, cfg *config.Config, noCache bool) (*backend.Client, cache.Cache, error) {
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, nil, err
	}
	client, err := backend.NewClient(backend.Config{
		BaseURL:   cfg.Backend.URL,
		DrawPath:  cfg.Backend.DrawPath,
		QueryPath: cfg.Backend.QueryPath,
		Timeout:   cfg.Backend.Timeout.Std(),
		Attempts:  cfg.Backend.Attempts,
		Headers:   map[string]string{"User-Agent": buildinfo.UserAgent()},
		Cache:     cache.Observed(ch, cacheNamespace),
		CacheTTL:  cfg.Cache.TTL.Std(),
		Logger:    c.Logger,
	})
	if err != nil {
		ch.Close()
		return nil, nil, err
	}
	return client, ch, nil
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	var off *cache.NullCache
	switch {
	case noCache:
		off = cache.NewNullCache("--no-cache")
	case cfg.Cache.Backend == "none":
		off = cache.NewNullCache("cache.backend is none")
	case cfg.Cache.Backend == "redis":
		return cache.NewRedisCache(ctx, redisCacheConfig(cfg))
	default:
		dir, err := resolveCacheDir(cfg.Cache.Dir)
		if err == nil {
			return cache.NewFileCache(drawCacheDir(dir))
		}
		off = cache.NewNullCache(err.Error())
	}
	loggerFromContext(ctx).Debug("Draw cache off", "reason", off.Reason)
	return off, nil
}

// drawCacheDir is where draw responses are filed under the cache root.
func drawCacheDir(root string) string {
	return filepath.Join(root, cacheNamespace)
}

func redisCacheConfig(cfg *config.Config) cache.RedisConfig {
	return cache.RedisConfig{
		Addr:   cfg.Cache.RedisAddr,
		Prefix: redisCachePrefix + cacheNamespace + ":",
	}
}

// openStore opens the note store named by the [storage] section.
func (c *CLI) openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", orDefault(cfg.Storage.Backend, storage.BackendFile), err)
	}
	return store, nil
}

// newExplorer builds an explorer over the CLI's persisted identity index.
func (c *CLI) newExplorer(ctx context.Context, cfg *config.Config, client *backend.Client, idx *session.CLIStore, output interact.Display) (*explorer.Explorer, error) {
	ix, err := idx.Load(ctx)
	if err != nil {
		c.Logger.Warn("ignoring unreadable index snapshot", "path", idx.Path(), "error", err)
		if err := idx.Reset(ctx); err != nil {
			return nil, err
		}
		if ix, err = idx.Load(ctx); err != nil {
			return nil, err
		}
	}
	c.Logger.Debug("loaded index", "names", ix.Len(), "generation", ix.Generation())

	return explorer.New(ctx, client, explorer.Options{
		Index:      ix,
		PruneAfter: cfg.Index.PruneAfter,
		Lens:       cfg.Lens(),
		Simulation: render.NewStaticSimulation(cfg.Canvas.Width, cfg.Canvas.Height),
		Output:     output,
		Logger:     c.Logger,
	}), nil
}

// =============================================================================
// Notes Input
// =============================================================================

// readNotes returns the notes named by path: a file, "-" for stdin, or the
// persisted notes when path is empty.
func readNotes(ctx context.Context, store storage.Store, path string) (string, error) {
	var text string
	switch path {
	case "":
		stored, ok, err := store.Get(ctx, storage.NotesKey)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errors.New(errors.ErrCodeNotFound, "no notes stored; pass a note file or run `%s notes set`", appName)
		}
		text = stored
	case "-":
		data, err := io.ReadAll(io.LimitReader(os.Stdin, errors.MaxNotesSize+1))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read notes: %w", err)
		}
		text = string(data)
	}
	if err := errors.ValidateNotes(text); err != nil {
		return "", err
	}
	return text, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/notegraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
