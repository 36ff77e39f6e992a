package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/curves/internal/config"
	"github.com/roach88/curves/internal/ir"
	"github.com/roach88/curves/internal/logging"
	"github.com/roach88/curves/internal/series"
	"github.com/roach88/curves/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogDir   string // overrides CURVES_LOG_DIR
	PlotsDir string // overrides CURVES_PLOTS_DIR
	Cache    string // overrides CURVES_CACHE

	// Config is filled from the environment on first use, with LogDir and
	// PlotsDir applied on top.
	Config config.Config
	Logger *slog.Logger

	loaded bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the curves CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "curves",
		Version: ir.ToolVersion,
		Short: "curves - learning curves from TensorBoard logs",
		Long: `Read scalar series from TensorBoard event logs, smooth and aggregate
them across seeds, and render the learning-curve figures declared in CUE specs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogDir, "log-dir", "", "base directory of run directories (default $CURVES_LOG_DIR or data)")
	cmd.PersistentFlags().StringVar(&opts.PlotsDir, "plots-dir", "", "output directory for charts (default $CURVES_PLOTS_DIR or plots)")
	cmd.PersistentFlags().StringVar(&opts.Cache, "cache", "", "SQLite file caching decoded series (default $CURVES_CACHE, disabled when empty)")

	// Add subcommands
	cmd.AddCommand(NewSeriesCommand(opts))
	cmd.AddCommand(NewTagsCommand(opts))
	cmd.AddCommand(NewAggregateCommand(opts))
	cmd.AddCommand(NewPlotCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSynthCommand(opts))

	return cmd
}

// setup validates the global flags, loads the environment configuration and
// installs the logger. Every command calls it first; only the first call
// does any work.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if o.loaded {
		return nil
	}

	// Validate format flag
	if !isValidFormat(o.Format) {
		return exitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats), nil)
	}

	cfg, err := config.Load()
	if err != nil {
		return exitError(ExitCommandError, "loading configuration", err)
	}
	if o.LogDir != "" {
		cfg.LogDir = o.LogDir
	}
	if o.PlotsDir != "" {
		cfg.PlotsDir = o.PlotsDir
	}
	if o.Cache != "" {
		cfg.CacheDB = o.Cache
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return exitError(ExitCommandError, "loading configuration", err)
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())

	o.Config = cfg
	o.Logger = logging.New("cli")
	o.loaded = true
	return nil
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// loader returns a series loader honoring the configured event prefix and
// series cache. The returned func closes the cache. A cache that cannot be
// opened is logged and skipped.
func (o *RootOptions) loader() (*series.Loader, func()) {
	loader := series.NewLoader(o.Config.EventPrefix, logging.New("series"))
	if o.Config.CacheDB == "" {
		return loader, func() {}
	}

	cache, err := store.Open(o.Config.CacheDB)
	if err != nil {
		o.Logger.Warn("series cache disabled", "path", o.Config.CacheDB, "error", err)
		return loader, func() {}
	}
	return loader.WithCache(cache), func() {
		if err := cache.Close(); err != nil {
			o.Logger.Warn("closing series cache", "path", o.Config.CacheDB, "error", err)
		}
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
