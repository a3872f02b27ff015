// Package config loads the mindmap configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/mindmap/config.toml
// (~/.config/mindmap/config.toml when XDG_CONFIG_HOME is unset). Every
// setting has a default, so a missing file is not an error:
//
//	[layout]
//	horizontal_spacing = 200
//	vertical_spacing = 80
//
//	[editor]
//	root_label = "Central idea"
//	default_label = "New idea"
//	ids = "uuid"            # or "sequence"
//
//	[store]
//	backend = "file"        # memory, file, mongo, http
//	dir = ""                # file backend, default ~/.config/mindmap/maps
//	url = ""                # http backend
//	[store.mongo]
//	uri = "mongodb://localhost:27017"
//
//	[cache]
//	backend = "file"        # null, memory, file, redis
//	ttl = "10m"
//	namespace = ""          # key prefix when several setups share a cache
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	cors_origins = []
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mindmap/pkg/cache"
	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap"
	"github.com/matzehuels/mindmap/pkg/mindmap/layout"
	"github.com/matzehuels/mindmap/pkg/store/mongostore"
)

const appName = "mindmap"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
	StoreHTTP   = "http"
)

// Cache backends.
const (
	CacheNull   = "null"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// ID generators.
const (
	IDsUUID     = "uuid"
	IDsSequence = "sequence"
)

// Config is the complete configuration.
type Config struct {
	Layout layout.Config `toml:"layout"`
	Editor EditorConfig  `toml:"editor"`
	Store  StoreConfig   `toml:"store"`
	Cache  CacheConfig   `toml:"cache"`
	Server ServerConfig  `toml:"server"`
}

// EditorConfig controls new nodes and ids.
type EditorConfig struct {
	RootLabel    string `toml:"root_label"`
	DefaultLabel string `toml:"default_label"`
	IDs          string `toml:"ids"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`
	URL     string            `toml:"url"`
	Mongo   mongostore.Config `toml:"mongo"`
}

// CacheConfig selects and configures the cache.
type CacheConfig struct {
	Backend   string            `toml:"backend"`
	Dir       string            `toml:"dir"`
	TTL       Duration          `toml:"ttl"`
	Namespace string            `toml:"namespace"`
	Redis     cache.RedisConfig `toml:"redis"`
}

// ServerConfig configures `mindmap serve`.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Duration is a time.Duration written as a string such as "10m".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: layout.DefaultConfig(),
		Editor: EditorConfig{
			RootLabel:    mindmap.DefaultRootLabel,
			DefaultLabel: mindmap.DefaultChildLabel,
			IDs:          IDsUUID,
		},
		Store: StoreConfig{
			Backend: StoreFile,
			Mongo: mongostore.Config{
				Database:   mongostore.DefaultDatabase,
				Collection: mongostore.DefaultCollection,
			},
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{cache.DefaultTTL},
			Redis:   cache.RedisConfig{Addr: "localhost:6379"},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Dir returns the configuration directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the file at path (DefaultPath when empty) over the defaults.
// A missing file yields the defaults. Unknown keys and invalid values are
// INVALID_INPUT; a file that is not TOML is INVALID_FORMAT.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path (DefaultPath when empty), creating directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Validate checks backend names and settings that cannot be defaulted.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if !slices.Contains([]string{IDsUUID, IDsSequence}, c.Editor.IDs) {
		return errors.New(errors.ErrCodeInvalidInput, "editor.ids must be uuid or sequence, got %q", c.Editor.IDs)
	}

	switch c.Store.Backend {
	case StoreMemory, StoreFile:
	case StoreMongo:
		if c.Store.Mongo.URI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.mongo.uri is required for the mongo backend")
		}
	case StoreHTTP:
		if err := errors.ValidateURL(c.Store.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "store.url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheNull, CacheMemory, CacheFile:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis.addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if strings.ContainsAny(c.Cache.Namespace, ":*?[] ") {
		return errors.New(errors.ErrCodeInvalidInput, "cache.namespace %q must not contain ':', spaces or glob characters", c.Cache.Namespace)
	}
	return nil
}

// CacheKeyer returns the keyer for cache entries, scoped to
// Cache.Namespace when one is set.
func (c *Config) CacheKeyer() cache.Keyer {
	if c.Cache.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Namespace+":")
}

// CacheKeyPrefix returns the prefix shared by every key of [Config.CacheKeyer].
func (c *Config) CacheKeyPrefix() string {
	if c.Cache.Namespace == "" {
		return "mindmap:"
	}
	return c.Cache.Namespace + ":mindmap:"
}

// CacheDir returns the cache directory: Cache.Dir if set, otherwise
// $XDG_CACHE_HOME/mindmap or ~/.cache/mindmap.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Engine builds the mutation engine described by the configuration.
func (c *Config) Engine() *mindmap.Engine {
	opts := []mindmap.Option{
		mindmap.WithLayout(c.Layout),
		mindmap.WithRootLabel(c.Editor.RootLabel),
		mindmap.WithDefaultLabel(c.Editor.DefaultLabel),
	}
	if c.Editor.IDs == IDsSequence {
		opts = append(opts, mindmap.WithIDGenerator(mindmap.NewSequenceGenerator()))
	}
	return mindmap.NewEngine(opts...)
}
