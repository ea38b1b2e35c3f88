package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "legend-linker"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "LEGEND_LINKER"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with its own viper instance.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load reads the first legend-linker.yaml found on the search path (if any),
// applies environment overrides and validates the result. An empty
// configFile searches; otherwise that file must exist.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configFile, err)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		for _, p := range SearchPaths() {
			l.v.AddConfigPath(p)
		}
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// BindPFlag binds a command-line flag to a configuration key.
func (l *Loader) BindPFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for key %q", key)
	}
	return l.v.BindPFlag(key, flag)
}

// ConfigFileUsed returns the path of the config file read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)
	l.v.SetDefault("work_dir", d.WorkDir)
	l.v.SetDefault("session_file", d.SessionFile)

	det := d.Detection
	l.v.SetDefault("detection.min_area", det.MinArea)
	l.v.SetDefault("detection.max_area", det.MaxArea)
	l.v.SetDefault("detection.click_radius", det.ClickRadius)
	l.v.SetDefault("detection.tolerance.x", det.Tolerance.X)
	l.v.SetDefault("detection.tolerance.y", det.Tolerance.Y)
	l.v.SetDefault("detection.preprocess.edge_threshold", det.Preprocess.EdgeThreshold)
	l.v.SetDefault("detection.preprocess.close_iterations", det.Preprocess.CloseIterations)
	l.v.SetDefault("detection.preprocess.open_iterations", det.Preprocess.OpenIterations)
	l.v.SetDefault("detection.preprocess.hsv.lower.h", det.Preprocess.HSV.Lower.H)
	l.v.SetDefault("detection.preprocess.hsv.lower.s", det.Preprocess.HSV.Lower.S)
	l.v.SetDefault("detection.preprocess.hsv.lower.v", det.Preprocess.HSV.Lower.V)
	l.v.SetDefault("detection.preprocess.hsv.upper.h", det.Preprocess.HSV.Upper.H)
	l.v.SetDefault("detection.preprocess.hsv.upper.s", det.Preprocess.HSV.Upper.S)
	l.v.SetDefault("detection.preprocess.hsv.upper.v", det.Preprocess.HSV.Upper.V)

	l.v.SetDefault("ocr.min_confidence", d.OCR.MinConfidence)
	l.v.SetDefault("ocr.row_band", d.OCR.RowBand)
	l.v.SetDefault("ocr.page_seg_mode", int(d.OCR.PageSegMode))
	l.v.SetDefault("ocr.language", d.OCR.Language)
	l.v.SetDefault("ocr.tessdata_prefix", d.OCR.TessdataPrefix)

	l.v.SetDefault("overlay.symbol_color", d.Overlay.SymbolColor)
	l.v.SetDefault("overlay.label_color", d.Overlay.LabelColor)
	l.v.SetDefault("overlay.stroke", d.Overlay.Stroke)

	l.v.SetDefault("export.icons_dir", d.Export.IconsDir)
	l.v.SetDefault("pdf.output_dir", d.PDF.OutputDir)
	l.v.SetDefault("server.metrics_file", d.Server.MetricsFile)
}

// SearchPaths returns the directories searched for legend-linker.yaml, in
// order.
func SearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdg != "" {
		paths = append(paths, filepath.Join(xdg, "legend-linker"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "legend-linker"))
	}
	return append(paths, "/etc/legend-linker")
}

// WriteDefault writes DefaultConfig as YAML to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		path = ConfigFileName + ".yaml"
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}
	data, err := Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}
