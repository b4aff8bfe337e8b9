package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deplist/pkg/archive"
	"github.com/matzehuels/deplist/pkg/buildinfo"
	"github.com/matzehuels/deplist/pkg/cache"
	"github.com/matzehuels/deplist/pkg/config"
	"github.com/matzehuels/deplist/pkg/errors"
	"github.com/matzehuels/deplist/pkg/observability"
	"github.com/matzehuels/deplist/pkg/pipeline"
	"github.com/matzehuels/deplist/pkg/repository"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for commands and display.
const appName = "deplist"

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

	// Set by persistent flags.
	configPath string
	repoPath   string
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
		Use:   appName,
		Short: "deplist resolves package targets into an ordered merge list",
		Long: `deplist resolves package targets against a repository into an ordered
merge list: what gets installed, in which order, and why.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultFile+")")
	root.PersistentFlags().StringVarP(&c.repoPath, "repo", "r", "", "repository file (overrides config)")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.optionsCommand())
	root.AddCommand(c.plansCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads the configuration and applies command-line overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.repoPath != "" {
		cfg.Repository = c.repoPath
	}
	return cfg, nil
}

// newRunner loads the repository and opens the cache and plan archive.
// With noCache set, plans are neither cached nor archived.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	if cfg.Repository == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no repository configured (use --repo or set repository in %s)", config.DefaultFile)
	}
	db, hash, err := loadRepository(cfg.Repository)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded repository", "path", cfg.Repository, "packages", len(db.Names()), "hash", hash[:12])

	var store cache.Cache = cache.NewNullCache()
	if !noCache {
		if store, err = cache.Open(ctx, cfg.Cache.URL, cfg.Cache.Dir); err != nil {
			return nil, err
		}
	}
	runner, err := pipeline.NewRunner(db, hash, store, cache.NewScopedKeyer(nil, cfg.Cache.Prefix), c.Logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	runner.Plans.TTL = cfg.Cache.TTL.Duration
	if c.Logger.GetLevel() <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		runner.Hooks = hooks
		observability.SetCacheHooks(hooks)
	}

	if !noCache {
		a, err := archive.Open(ctx, cfg.Archive.MongoURI, cfg.Archive.Database, cfg.Archive.Dir)
		if err != nil {
			runner.Close(ctx)
			return nil, err
		}
		runner.Archive = a
	}
	return runner, nil
}

// loadRepository parses the repository file and hashes its contents.
func loadRepository(path string) (*repository.Database, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "repository %s", path)
		}
		return nil, "", errors.Wrap(errors.ErrCodeInvalidRepository, err, "read %s", path)
	}
	db, err := repository.ParseTOML(data)
	if err != nil {
		return nil, "", err
	}
	return db, cache.Hash(data), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// mergeOptions layers flag options over the configured ones.
func mergeOptions(configured, flags map[string]string) map[string]string {
	merged := make(map[string]string, len(configured)+len(flags))
	for k, v := range configured {
		merged[k] = v
	}
	for k, v := range flags {
		merged[k] = v
	}
	return merged
}
