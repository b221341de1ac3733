package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/adalundhe/sememe/core/config"
	"github.com/adalundhe/sememe/core/sememe"
	"github.com/adalundhe/sememe/core/storage"
	"github.com/adalundhe/sememe/core/vector"
)

// =============================================================================
// Global Flags
// =============================================================================

var (
	configPath    string
	hierarchyPath string
	glossaryPath  string
	cacheDir      string
	noCache       bool
	verbose       bool
	metricsFile   string
)

var (
	cfgManager *config.Manager
	logger     = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "sememe",
	Short: "Sememe - word feature vectors from a sememe hierarchy",
	Long: `Sememe loads a sememe hierarchy and a word glossary, builds a cached
semantic database, and derives fixed-length feature vectors for words by
activating their sememes and propagating halving weights to ancestors.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupRuntime,
	PersistentPostRunE: writeMetrics,
}

func init() {
	pflags := rootCmd.PersistentFlags()
	pflags.StringVar(&configPath, "config", "", "Config file (skips the standard config layers)")
	pflags.StringVar(&hierarchyPath, "hierarchy", "", "Hierarchy resource path (overrides config)")
	pflags.StringVar(&glossaryPath, "glossary", "", "Glossary resource path (overrides config)")
	pflags.StringVar(&cacheDir, "cache-dir", "", "Semantic database cache directory (overrides config)")
	pflags.BoolVar(&noCache, "no-cache", false, "Do not read or write the semantic database cache")
	pflags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pflags.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the command")
}

func Execute() error {
	return rootCmd.Execute()
}

// setupRuntime loads configuration, applies flag overrides and installs the
// process logger.
func setupRuntime(cmd *cobra.Command, _ []string) error {
	dirs, err := storage.ResolveDirs()
	if err != nil {
		return fmt.Errorf("resolve directories: %w", err)
	}
	cfgManager = config.NewManager(dirs)
	if configPath != "" {
		err = cfgManager.LoadFile(configPath)
	} else {
		err = cfgManager.Load()
	}
	if err != nil {
		return err
	}

	err = cfgManager.Update(func(cfg *config.Config) {
		if hierarchyPath != "" {
			cfg.Resources.Hierarchy = hierarchyPath
		}
		if glossaryPath != "" {
			cfg.Resources.Glossary = glossaryPath
		}
		if cacheDir != "" {
			cfg.Cache.Dir = cacheDir
		}
		if noCache {
			cfg.Cache.Enabled = false
		}
	})
	if err != nil {
		return err
	}

	logger = newLogger(cmd.ErrOrStderr(), cfgManager.Get().Log)
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func writeMetrics(_ *cobra.Command, _ []string) error {
	if metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(metricsFile, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// openDatabase opens the semantic database described by the active config.
func openDatabase(rebuild bool) (*sememe.Database, error) {
	cfg := cfgManager.Get()
	return sememe.Open(sememe.Options{
		HierarchyPath: cfg.Resources.Hierarchy,
		GlossaryPath:  cfg.Resources.Glossary,
		CacheDir:      cfgManager.CacheDir(),
		Rebuild:       rebuild,
		Logger:        logger,
	})
}

// openGenerator opens the database and wraps it in a vector generator.
func openGenerator() (*vector.Generator, error) {
	db, err := openDatabase(false)
	if err != nil {
		return nil, err
	}
	return vector.NewGenerator(db, vector.Options{
		CacheSize: cfgManager.Get().Vector.CacheSize,
		Logger:    logger,
	})
}
