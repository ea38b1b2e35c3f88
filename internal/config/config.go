// Package config loads legend-linker settings from a YAML file, LEGEND_LINKER_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ironsheep/legend-linker/internal/detection"
	"github.com/ironsheep/legend-linker/internal/imaging"
	"github.com/ironsheep/legend-linker/internal/ocr"
)

// Config is the complete application configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// WorkDir is where legend_symbols/, symbol_links/ and the session file
	// are written.
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir" json:"work_dir"`

	// SessionFile is relative to WorkDir unless absolute.
	SessionFile string `mapstructure:"session_file" yaml:"session_file" json:"session_file"`

	Detection detection.Options      `mapstructure:"detection" yaml:"detection" json:"detection"`
	OCR       ocr.Options            `mapstructure:"ocr" yaml:"ocr" json:"ocr"`
	Overlay   imaging.OverlayOptions `mapstructure:"overlay" yaml:"overlay" json:"overlay"`
	Export    ExportConfig           `mapstructure:"export" yaml:"export" json:"export"`
	PDF       PDFConfig              `mapstructure:"pdf" yaml:"pdf" json:"pdf"`
	Server    ServerConfig           `mapstructure:"server" yaml:"server" json:"server"`
}

// ExportConfig controls icon export.
type ExportConfig struct {
	IconsDir string `mapstructure:"icons_dir" yaml:"icons_dir" json:"icons_dir"`
}

// PDFConfig controls PDF conversion.
type PDFConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
}

// ServerConfig controls the MCP server.
type ServerConfig struct {
	// MetricsFile, when set, receives the Prometheus text exposition of the
	// server's metrics on shutdown.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "info",
		WorkDir:     ".",
		SessionFile: "session.json",
		Detection:   detection.DefaultOptions(),
		OCR:         ocr.DefaultOptions(),
		Overlay:     imaging.DefaultOverlayOptions(),
		Export:      ExportConfig{IconsDir: "icons"},
		PDF:         PDFConfig{OutputDir: "converted"},
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir must not be empty")
	}
	if c.SessionFile == "" {
		return fmt.Errorf("session_file must not be empty")
	}
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	if err := c.OCR.Validate(); err != nil {
		return fmt.Errorf("ocr: %w", err)
	}
	if c.Overlay.Stroke < 0 {
		return fmt.Errorf("overlay: stroke must not be negative")
	}
	if c.Export.IconsDir == "" {
		return fmt.Errorf("export: icons_dir must not be empty")
	}
	return nil
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
}

// Level returns the effective log level; Verbose forces debug.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	lvl, _ := ParseLogLevel(c.LogLevel)
	return lvl
}
