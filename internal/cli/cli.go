// Package cli implements the mindmap command-line interface.
//
// Commands manage documents in the configured store (new, list, show,
// import, export, remove), edit their graphs one operation at a time (add,
// connect, disconnect, rename, delete, move), render them with Graphviz,
// open the interactive editor (edit) and run the HTTP API (serve).
//
// Every edit goes through an editor session, so the command line enforces
// the same graph rules as the API and the interactive editor.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs store, cache and HTTP activity through the observability hooks.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindmap/internal/config"
	"github.com/matzehuels/mindmap/pkg/buildinfo"
	"github.com/matzehuels/mindmap/pkg/cache"
	"github.com/matzehuels/mindmap/pkg/editor"
	"github.com/matzehuels/mindmap/pkg/observability"
	"github.com/matzehuels/mindmap/pkg/store"
	"github.com/matzehuels/mindmap/pkg/store/httpstore"
	"github.com/matzehuels/mindmap/pkg/store/mongostore"
)

// appName is the application name used for display.
const appName = "mindmap"

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
	Logger     *log.Logger
	configPath string
	cfg        *config.Config
}

// New creates a CLI that logs to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Mindmap edits mind-map documents",
		Long:         `Mindmap creates, edits, renders and serves mind maps: graphs of ideas grown from a central root, stored as plain documents.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())

	root.AddCommand(c.addCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.disconnectCommand())
	root.AddCommand(c.renameCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.moveCommand())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration once and installs the logging hooks.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	observability.NewLogHooks(c.Logger).Install()
	c.Logger.Debug("config loaded", "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
	return nil
}

// config returns the loaded configuration, or the defaults when no command
// hook has loaded one.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Store & Cache Factories
// =============================================================================

// openStore builds the configured store, wrapped with observability and,
// unless caching is disabled, a read-through cache.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.config()

	var st store.Store
	switch cfg.Store.Backend {
	case config.StoreMemory:
		st = store.NewMemoryStore()
	case config.StoreMongo:
		ms, err := mongostore.New(ctx, cfg.Store.Mongo)
		if err != nil {
			return nil, err
		}
		st = ms
	case config.StoreHTTP:
		hs, err := httpstore.New(cfg.Store.URL)
		if err != nil {
			return nil, err
		}
		st = hs
	default:
		fs, err := store.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		st = fs
	}
	st = store.Observed(st, cfg.Store.Backend)

	ch := c.openCache(ctx, "docs")
	if _, disabled := ch.(cache.NullCache); disabled {
		return st, nil
	}
	return store.Cached(st, ch, cfg.CacheKeyer(), cfg.Cache.TTL.Duration), nil
}

// openCache builds the configured cache. File caches live in the named
// subdirectory of the cache directory. Failures fall back to no caching.
func (c *CLI) openCache(ctx context.Context, name string) cache.Cache {
	cfg := c.config()
	switch cfg.Cache.Backend {
	case config.CacheNull:
		return cache.NewNullCache()
	case config.CacheMemory:
		return cache.NewMemoryCache()
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.Redis)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.Cache.Redis.Addr, "error", err)
			return cache.NewNullCache()
		}
		return rc
	}

	dir, err := cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(filepath.Join(dir, name))
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "error", err)
		return cache.NewNullCache()
	}
	return fc
}

// sessionOptions configures editor sessions opened by commands.
func (c *CLI) sessionOptions() []editor.Option {
	return []editor.Option{
		editor.WithEngine(c.config().Engine()),
		editor.WithLogger(c.Logger),
	}
}

// withStore runs fn with an open store and closes it afterwards.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// mutate opens the document, applies fn and saves. Nothing is saved when
// fn fails.
func (c *CLI) mutate(ctx context.Context, id string, fn func(*editor.Session) error) error {
	return c.withStore(ctx, func(st store.Store) error {
		sess, err := editor.Open(ctx, st, id, c.sessionOptions()...)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}
		return sess.Save(ctx, st)
	})
}

// stdout is where command output goes. Tests replace it.
var stdout io.Writer = os.Stdout
