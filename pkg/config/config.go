// Package config loads the notegraph configuration file.
//
// The file lives at $XDG_CONFIG_HOME/notegraph/config.toml. Every field has a
// default, so a missing file is not an error and a partial file only
// overrides what it names. Command-line flags override the file.
//
//	[backend]
//	url = "http://127.0.0.1:5000"
//	timeout = "10s"
//
//	[fisheye]
//	distortion = 50.0
//	radius = 100.0
//
//	[storage]
//	backend = "sqlite"
//	path = "/home/me/notes.db"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sboosali/notegraph/pkg/errors"
	"github.com/sboosali/notegraph/pkg/fisheye"
	"github.com/sboosali/notegraph/pkg/storage"
)

// Config holds notegraph configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Fisheye FisheyeConfig `toml:"fisheye"`
	Canvas  CanvasConfig  `toml:"canvas"`
	Index   IndexConfig   `toml:"index"`
	Storage StorageConfig `toml:"storage"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

// BackendConfig points at the parser/query service.
type BackendConfig struct {
	URL          string   `toml:"url"`
	DrawPath     string   `toml:"draw_path"`
	QueryPath    string   `toml:"query_path"`
	Timeout      Duration `toml:"timeout"`
	Attempts     int      `toml:"attempts"`
	QueryOnClick bool     `toml:"query_on_click"`
}

// FisheyeConfig sets the lens.
type FisheyeConfig struct {
	Distortion float64 `toml:"distortion"`
	Radius     float64 `toml:"radius"`
}

// CanvasConfig is the drawing area used to seed new nodes.
type CanvasConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// IndexConfig controls the identity index.
type IndexConfig struct {
	// PruneAfter forgets names absent from this many consecutive draws.
	// 0 remembers every name for the life of the index.
	PruneAfter int `toml:"prune_after"`
}

// StorageConfig selects where the note buffer is kept.
type StorageConfig struct {
	Backend       string `toml:"backend"` // "file", "memory", "sqlite", "redis", "mongo"
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig controls the draw-response cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"` // "file", "redis", "none"
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// ServerConfig controls `notegraph serve`.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:      "http://127.0.0.1:5000",
			Timeout:  Duration(10 * time.Second),
			Attempts: 3,
		},
		Fisheye: FisheyeConfig{Distortion: fisheye.DefaultDistortion, Radius: fisheye.DefaultRadius},
		Canvas:  CanvasConfig{Width: 960, Height: 600},
		Index:   IndexConfig{PruneAfter: 0},
		Storage: StorageConfig{Backend: storage.BackendFile},
		Cache:   CacheConfig{Backend: "file", TTL: Duration(24 * time.Hour)},
		Server:  ServerConfig{Addr: "127.0.0.1:8080", SessionTTL: Duration(2 * time.Hour)},
	}
}

// Dir returns the notegraph config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "notegraph")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config at path over the defaults. An empty path selects
// [Path]. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories. An empty path
// selects [Path].
func Save(path string, cfg *Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Encode renders cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := errors.ValidateURL(c.Backend.URL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "backend.url")
	}
	if c.Backend.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "backend.timeout must not be negative")
	}
	if c.Backend.Attempts < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "backend.attempts must not be negative")
	}
	if err := c.Lens().Validate(); err != nil {
		return err
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "canvas width and height must be positive")
	}
	if c.Index.PruneAfter < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "index.prune_after must not be negative")
	}
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendMemory, storage.BackendSQLite, storage.BackendRedis, storage.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown storage.backend %q", c.Storage.Backend)
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.session_ttl must be positive")
	}
	return nil
}

// Lens returns a fisheye lens with the configured parameters.
func (c *Config) Lens() *fisheye.Lens {
	return &fisheye.Lens{Distortion: c.Fisheye.Distortion, Radius: c.Fisheye.Radius}
}

// StorageOptions converts the [storage] section for [storage.Open].
func (c *Config) StorageOptions() storage.Config {
	return storage.Config{
		Backend:       c.Storage.Backend,
		Path:          c.Storage.Path,
		RedisAddr:     c.Storage.RedisAddr,
		MongoURI:      c.Storage.MongoURI,
		MongoDatabase: c.Storage.MongoDatabase,
	}
}
