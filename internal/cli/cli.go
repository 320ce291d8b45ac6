// Package cli implements the hdag command-line interface.
//
// Commands build history DAGs from annotated trees, merge and compare them,
// and answer counting and parsimony queries:
//
//	hdag build --newick trees.nwk --fasta leaves.fasta -o dag.json
//	hdag merge a.json b.json -o merged.json
//	hdag summary merged.json
//	hdag trim merged.json -o best.json
//	hdag serve merged.json
//
// Settings are read from a TOML file (see [config]); flags override it.
//
// [config]: github.com/matzehuels/historydag/internal/config
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/historydag/internal/config"
	"github.com/matzehuels/historydag/pkg/buildinfo"
	"github.com/matzehuels/historydag/pkg/cache"
	"github.com/matzehuels/historydag/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and completion scripts.
const appName = "hdag"

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
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "hdag builds and queries history DAGs of phylogenetic trees",
		Long: `hdag merges phylogenetic trees with sequence-labeled nodes into a history DAG,
a compact structure that represents every tree in the input and every tree
obtainable by recombining their compatible subtrees. It counts histories,
computes parsimony score distributions and extracts optimal histories.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/hdag/config.toml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.countCommand())
	root.AddCommand(c.summaryCommand())
	root.AddCommand(c.equalCommand())
	root.AddCommand(c.canonCommand())
	root.AddCommand(c.historiesCommand())
	root.AddCommand(c.trimCommand())
	root.AddCommand(c.supportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file and applies its log level.
// --verbose wins over the configured level.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadDefault(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewDefaultKeyer()
	if ns := c.Config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(keyer, ns+":")
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

// openCache opens the configured backend. A Redis backend that cannot be
// reached degrades to no caching with a warning.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc, err := cache.Open(ctx, c.cacheOptions())
	if err != nil {
		if c.Config.Cache.Backend == "redis" {
			c.Logger.Warn("cache unavailable, continuing without", "err", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return cc, nil
}

func (c *CLI) cacheOptions() cache.Options {
	cfg := c.Config.Cache
	return cache.Options{
		Backend: cfg.Backend,
		Dir:     cfg.Dir,
		Redis: cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   appName + ":",
		},
	}
}
