package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/familygraph/internal/config"
	"github.com/matzehuels/familygraph/pkg/buildinfo"
	"github.com/matzehuels/familygraph/pkg/cache"
	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/pipeline"
	"github.com/matzehuels/familygraph/pkg/source"
	"github.com/matzehuels/familygraph/pkg/source/file"
	"github.com/matzehuels/familygraph/pkg/source/memory"
	"github.com/matzehuels/familygraph/pkg/source/mongo"
	"github.com/matzehuels/familygraph/pkg/source/supabase"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "familygraph"

	// defaultRetryDelay is the first backoff between data source retries.
	defaultRetryDelay = 500 * time.Millisecond
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

	configPath string
	backend    string
	dataPath   string
}

// New creates a new CLI instance with a default logger.
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
		Short:        "Familygraph lays out and renders family trees",
		Long:         `Familygraph turns a list of family members and their relationships into a force-directed family tree, live in the browser or exported as SVG, PNG, PDF or Graphviz.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/familygraph/config.toml)")
	root.PersistentFlags().StringVar(&c.backend, "source", "", "data source: file, memory, supabase, mongo (overrides config)")
	root.PersistentFlags().StringVar(&c.dataPath, "data", "", "family document for the file source (overrides config)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.membersCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuneCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Factories
// =============================================================================

// loadConfig reads the config file and applies the persistent flags.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.backend != "" {
		cfg.Source.Backend = c.backend
	}
	if c.dataPath != "" {
		cfg.Source.Path = c.dataPath
	}
	return cfg, cfg.Validate()
}

// newSource opens the configured data source. Callers must Close it.
func (c *CLI) newSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	switch cfg.Source.Backend {
	case config.BackendFile:
		return file.New(cfg.Source.Path, file.WithLogger(c.Logger))
	case config.BackendMemory:
		return memory.New(source.Snapshot{}), nil
	case config.BackendSupabase:
		return supabase.New(supabase.Config{
			URL:    cfg.Source.Supabase.URL,
			Key:    cfg.Source.Supabase.Key,
			Logger: c.Logger,
		})
	case config.BackendMongo:
		return mongo.New(ctx, mongo.Config{
			URI:      cfg.Source.Mongo.URI,
			Database: cfg.Source.Mongo.Database,
			Logger:   c.Logger,
		})
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown source backend %q", cfg.Source.Backend)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache.Instrument(ch), nil, c.Logger), nil
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	case config.CacheNone:
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// pipelineOptions returns the pipeline options implied by the config. Command
// flags are applied on top by the caller.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Settings: cfg.View,
		Width:    cfg.Viewport.Width,
		Height:   cfg.Viewport.Height,
		Seed:     cfg.Viewport.Seed,
		Params:   cfg.Viewport.Params,
	}
}
