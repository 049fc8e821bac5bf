package cmd

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/schematic/internal/cachemanager"
	"github.com/zjrosen/schematic/internal/config"
	"github.com/zjrosen/schematic/internal/filemanager"
	"github.com/zjrosen/schematic/internal/library"
	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/metrics"
	"github.com/zjrosen/schematic/internal/schematic"
	"github.com/zjrosen/schematic/internal/tracing"
)

// localConfigPath is used when no config file exists anywhere.
const localConfigPath = ".schematic/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	logFile   string
	cfg       config.Config
)

// Services shared by the commands of one invocation, built in setup.
var (
	docs      *schematic.Registry
	files     *filemanager.Manager
	catalog   *library.Catalog
	collector *metrics.Collector
	tracer    *tracing.Provider
	cleanups  []func()
)

var rootCmd = &cobra.Command{
	Use:   "schematic",
	Short: "Inspect and edit schematic documents",
	Long: `Create, inspect and edit schematic sheets from the command line.

Documents are stored as YAML (.yaml, .yml, .oreg) or SQLite (.schdb).
Parts come from a catalog of built-in definitions, extended by the YAML
files in the configured library directories.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/schematic/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also enabled by SCHEMATIC_DEBUG)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"debug log path (overrides log.file)")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("document.author", defaults.Document.Author)
	viper.SetDefault("document.zoom", defaults.Document.Zoom)
	viper.SetDefault("document.format", defaults.Document.Format)
	viper.SetDefault("library.dirs", defaults.Library.Dirs)
	viper.SetDefault("library.cache_ttl", defaults.Library.CacheTTL)
	viper.SetDefault("library.disable_cache", defaults.Library.DisableCache)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("watch.metrics_addr", defaults.Watch.MetricsAddr)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.file", defaults.Log.File)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .schematic/config.yaml (current directory)
		// 2. ~/.config/schematic/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "schematic"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .schematic/config.yaml
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				viper.SetConfigFile(localConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	cfg = config.Config{}
	_ = viper.Unmarshal(&cfg)
}

// setup validates the config and builds the shared services.
func setup(_ *cobra.Command, _ []string) error {
	if err := initLogging(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var err error
	tracer, err = tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cmp.Or(cfg.Tracing.FilePath, config.DefaultTracesFilePath()),
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  tracing.DefaultServiceName,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracer shutdown failed", err)
		}
	})

	docs = schematic.NewRegistry()
	files = filemanager.Default()
	collector = metrics.NewCollector(docs)
	catalog = newCatalog(cfg.Library)

	log.Debug(log.CatConfig, "Configuration loaded", "file", viper.ConfigFileUsed(), "library_dirs", len(cfg.Library.Dirs))
	return nil
}

func initLogging() error {
	if !debugFlag && os.Getenv("SCHEMATIC_DEBUG") == "" {
		return nil
	}
	path := cmp.Or(logFile, os.Getenv("SCHEMATIC_LOG"), cfg.Log.File, "debug.log")
	cleanup, err := log.Init(path)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
	cleanups = append(cleanups, cleanup)

	log.Info(log.CatConfig, "Schematic starting", "version", version, "logPath", path)
	return nil
}

func newCatalog(lc config.LibraryConfig) *library.Catalog {
	if lc.DisableCache {
		return library.NewCatalog(lc.Dirs, nil, 0)
	}
	cache := cachemanager.NewMemory[string, library.Definition]("library", lc.CacheTTL, cachemanager.DefaultCleanupInterval)
	return library.NewCatalog(lc.Dirs, cache, lc.CacheTTL)
}

// shutdown runs the cleanups registered by setup, newest first.
func shutdown() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// Execute runs the root command
func Execute() error {
	defer shutdown()
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
