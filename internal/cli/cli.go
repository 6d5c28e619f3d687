// Package cli implements the pagegraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pagegraph/internal/config"
	"github.com/matzehuels/pagegraph/pkg/buildinfo"
	"github.com/matzehuels/pagegraph/pkg/cache"
	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	pkgio "github.com/matzehuels/pagegraph/pkg/io"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	status io.Writer

	configPath string
	verbose    bool
	noCache    bool
	noFrames   bool
	cfg        config.Config
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		status: w,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pagegraph",
		Short: "Inspect PageGraph recordings of web page execution",
		Long: `pagegraph loads the provenance graphs recorded by Brave's PageGraph and
answers questions about them: which scripts touched an element, which
requests an action led to, what a request returned.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default: user config dir/pagegraph/config.toml)")
	flags.BoolVar(&c.noCache, "no-cache", false, "do not read or write cached results")
	flags.BoolVar(&c.noFrames, "no-frames", false, "do not merge remote frame recordings")

	root.AddCommand(c.identifyCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.queriesCommand())
	root.AddCommand(c.downstreamCommand())
	root.AddCommand(c.requestInfoCommand())
	root.AddCommand(c.adblockCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))

	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			c.Logger.Debug("no config dir", "err", err)
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend)
	return nil
}

func (c *CLI) mergeFrames() bool {
	return !c.noFrames && c.cfg.Read.MergeFrames
}

// hashFile returns the SHA-256 of the file at path.
func hashFile(path string) (string, error) {
	sum, err := cache.HashFile(path)
	if os.IsNotExist(err) {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	return sum, err
}

// keyer scopes keys in a shared redis so entries from other tools stay
// apart.
func (c *CLI) keyer() cache.Keyer {
	if c.cfg.Cache.Backend == config.BackendRedis {
		return cache.NewScopedKeyer(nil, "pagegraph:")
	}
	return cache.NewDefaultKeyer()
}

// loadGraph reads the recording at path, merging its remote frames unless
// disabled.
func (c *CLI) loadGraph(ctx context.Context, path string) (*graph.Graph, error) {
	done := timed(c.Logger)
	opts := []pkgio.Option{pkgio.WithLogger(c.Logger)}
	var spin *Spinner
	if !c.verbose {
		spin = newSpinner(ctx, c.status, "Reading "+path)
		spin.Start()
	}

	var g *graph.Graph
	var err error
	if c.mergeFrames() {
		g, err = pkgio.ReadWithFrames(ctx, path, opts...)
	} else {
		g, err = pkgio.ReadFromFile(path, opts...)
	}
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return nil, err
	}
	done("Loaded "+path, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// openCache returns the configured cache. Backends that cannot be opened
// degrade to no caching.
func (c *CLI) openCache(ctx context.Context) cache.Cache {
	if c.noCache {
		return cache.NewNullCache()
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache()
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.cfg.Cache.RedisAddr, DB: c.cfg.Cache.RedisDB})
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache()
		}
		return cache.Observed(rc)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return cache.Observed(fc)
}

func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// cached returns the entry at key, or computes, stores and returns it.
// Cache errors are logged and otherwise ignored.
func (c *CLI) cached(ctx context.Context, key string, compute func() ([]byte, error)) ([]byte, bool, error) {
	store := c.openCache(ctx)
	defer store.Close()

	if data, ok, err := store.Get(ctx, key); err != nil {
		c.Logger.Debug("cache read failed", "err", err)
	} else if ok {
		return data, true, nil
	}
	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := store.Set(ctx, key, data, c.cfg.Cache.TTL.Duration); err != nil {
		c.Logger.Debug("cache write failed", "err", err)
	}
	return data, false, nil
}
