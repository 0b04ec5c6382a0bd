// Package cli implements the antour command-line interface.
//
// # Commands
//
//   - solve: search for a short tour of a TSPLIB instance and write it
//   - render: draw an existing tour file as SVG, PNG or PDF
//   - cache: inspect and clear the solution cache
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Flags override ANTOUR_* environment variables (a .env file in the
// working directory is read too), which override the TOML config file,
// which overrides the built-in defaults. See package config.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context and into the pipeline so that every record
// of a run carries its run ID.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/antour/pkg/buildinfo"
	"github.com/matzehuels/antour/pkg/cache"
	"github.com/matzehuels/antour/pkg/config"
	"github.com/matzehuels/antour/pkg/errors"
	"github.com/matzehuels/antour/pkg/observability"
	"github.com/matzehuels/antour/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "antour"

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
	settings   *config.File
	getenv     func(string) string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		getenv: os.Getenv,
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
		Short: "antour finds short traveling salesman tours with an ant colony",
		Long: `antour solves symmetric TSPLIB instances (EUC_2D, ATT, GEO) with the Ant System
metaheuristic and writes the best tour it finds in TSPLIB tour format.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadSettings,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/antour/config.toml)")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadSettings reads .env, the config file and ANTOUR_* variables, and
// attaches the logger to the command context.
func (c *CLI) loadSettings(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(""); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment file")
	}
	f, err := config.Load(c.configPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file")
	}
	if err := f.ApplyEnv(c.getenv); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "environment")
	}
	c.settings = f

	hooks := newLogHooks(c.Logger)
	observability.SetSolverHooks(hooks)
	observability.SetCacheHooks(hooks)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// config returns the loaded settings, or empty ones before loading.
func (c *CLI) config() *config.File {
	if c.settings == nil {
		return &config.File{}
	}
	return c.settings
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ttl, err := c.config().CacheTTL()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache ttl")
	}
	runner := pipeline.NewRunner(c.newCache(ctx, noCache), nil, c.Logger)
	runner.TTL = ttl
	return runner, nil
}

// newCache opens the configured backend. A backend that cannot be opened
// disables caching with a warning; it never fails the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	settings := c.config().Cache
	if noCache || settings.Backend == config.BackendNone {
		return cache.NewNullCache()
	}

	if settings.Backend == config.BackendRedis {
		rc, err := cache.NewRedisCache(ctx, settings.RedisURL, "")
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return rc
	}

	dir := settings.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/antour/).
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
