// Package config provides configuration types and defaults for schematic.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/schematic/internal/log"
)

// Config holds all configuration options for schematic.
type Config struct {
	Document DocumentConfig `mapstructure:"document"`
	Library  LibraryConfig  `mapstructure:"library"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Log      LogConfig      `mapstructure:"log"`
}

// DocumentConfig holds defaults applied to new documents.
type DocumentConfig struct {
	Author string  `mapstructure:"author"`
	Zoom   float64 `mapstructure:"zoom"`
	// Format is the extension used when a path given to "new" has none.
	Format string `mapstructure:"format"`
}

// LibraryConfig controls the part catalog.
type LibraryConfig struct {
	// Dirs are searched in order for <name>.yaml part definitions.
	Dirs     []string      `mapstructure:"dirs"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// DisableCache rereads definition files on every lookup.
	DisableCache bool `mapstructure:"disable_cache"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	MetricsAddr string        `mapstructure:"metrics_addr"` // "" disables the HTTP server
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Exporter is one of "none", "file", "stdout", "otlp".
	Exporter string `mapstructure:"exporter"`

	// FilePath defaults to ~/.config/schematic/traces/traces.jsonl.
	FilePath string `mapstructure:"file_path"`

	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is between 0.0 and 1.0.
	SampleRate float64 `mapstructure:"sample_rate"`
}

// LogConfig controls the debug log.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`
}

// DefaultTracesFilePath returns ~/.config/schematic/traces/traces.jsonl, or
// "" when the home directory is unknown.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "schematic", "traces", "traces.jsonl")
}

// DefaultLibraryDir returns ~/.config/schematic/parts, or "" when the home
// directory is unknown.
func DefaultLibraryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "schematic", "parts")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	var dirs []string
	if dir := DefaultLibraryDir(); dir != "" {
		dirs = append(dirs, dir)
	}
	return Config{
		Document: DocumentConfig{
			Zoom:   1.0,
			Format: ".yaml",
		},
		Library: LibraryConfig{
			Dirs:     dirs,
			CacheTTL: 10 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce:    200 * time.Millisecond,
			MetricsAddr: "",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Log: LogConfig{
			Level: "debug",
			File:  "debug.log",
		},
	}
}

// Validate checks every section and joins the errors.
func (c Config) Validate() error {
	return errors.Join(
		ValidateDocument(c.Document),
		ValidateLibrary(c.Library),
		ValidateWatch(c.Watch),
		ValidateTracing(c.Tracing),
		ValidateLog(c.Log),
	)
}

// ValidateDocument checks document defaults. A zero zoom uses the default.
func ValidateDocument(d DocumentConfig) error {
	if d.Zoom < 0 || math.IsNaN(d.Zoom) || math.IsInf(d.Zoom, 0) {
		return fmt.Errorf("document.zoom must be a positive number, got %v", d.Zoom)
	}
	if d.Format != "" && !strings.HasPrefix(d.Format, ".") {
		return fmt.Errorf("document.format must start with a dot, got %q", d.Format)
	}
	return nil
}

// ValidateLibrary checks the catalog section.
func ValidateLibrary(l LibraryConfig) error {
	if l.CacheTTL < 0 {
		return fmt.Errorf("library.cache_ttl must not be negative, got %s", l.CacheTTL)
	}
	for i, dir := range l.Dirs {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("library.dirs[%d] is empty", i)
		}
	}
	return nil
}

// ValidateWatch checks the watch section.
func ValidateWatch(w WatchConfig) error {
	if w.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", w.Debounce)
	}
	return nil
}

// ValidateTracing checks tracing configuration. Path requirements are only
// enforced when tracing is enabled.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	switch tracing.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
	}

	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// ValidateLog checks the log level name.
func ValidateLog(l LogConfig) error {
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", l.Level)
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Schematic Configuration

# Defaults for new documents
document:
  # author: Ada Lovelace
  zoom: 1.0
  format: .yaml          # Extension used by "new" when none is given (.yaml or .schdb)

# Part catalog
library:
  # Directories searched in order for <name>.yaml part definitions.
  # Files here override the built-in parts of the same name.
  # dirs:
  #   - ~/.config/schematic/parts
  cache_ttl: 10m
  disable_cache: false

# Watch command
watch:
  debounce: 200ms
  # metrics_addr: :9090  # Serve /metrics and /documents while watching

# Debug log, written when --debug or SCHEMATIC_DEBUG is set
log:
  level: debug
  file: debug.log

# Tracing
# Exporters: none, file, stdout, otlp
# tracing:
#   enabled: true
#   exporter: file
#   file_path: ~/.config/schematic/traces/traces.jsonl
#
# Example: Send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1
`
}

// WriteDefaultConfig creates a config file at configPath with default
// settings and comments, creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
