package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/pkg/tasks"
)

const (
	// ConfigFileName is the name of the configuration file, without extension.
	ConfigFileName = "lumen"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "LUMEN"

	// DefaultFrameInterval is the default time between frames.
	DefaultFrameInterval = 16 * time.Millisecond

	// DefaultDebugAddr is the default debug server address.
	DefaultDebugAddr = "localhost:9191"
)

// Config is the complete lumen configuration.
type Config struct {
	Tasks   TasksConfig   `mapstructure:"tasks"`
	Frame   FrameConfig   `mapstructure:"frame"`
	Debug   DebugConfig   `mapstructure:"debug"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Log     LogConfig     `mapstructure:"log"`
}

// TasksConfig configures the task runner.
type TasksConfig struct {
	// Workers is the worker pool size.
	Workers int `mapstructure:"workers"`
}

// FrameConfig configures the frame driver.
type FrameConfig struct {
	// Interval is the time between frames.
	Interval time.Duration `mapstructure:"interval"`

	// MaxFrames stops the driver after this many frames. Zero means no limit.
	MaxFrames int `mapstructure:"max_frames"`
}

// DebugConfig configures the debug server.
type DebugConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`

	// History is the number of frame reports kept for /frames.
	History int `mapstructure:"history"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	TracerName string `mapstructure:"tracer_name"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Tasks:   TasksConfig{Workers: tasks.DefaultWorkers()},
		Frame:   FrameConfig{Interval: DefaultFrameInterval},
		Debug:   DebugConfig{Addr: DefaultDebugAddr, History: 120},
		Metrics: MetricsConfig{Namespace: "lumen"},
		Tracing: TracingConfig{TracerName: "lumen"},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("tasks.workers", d.Tasks.Workers)
	v.SetDefault("frame.interval", d.Frame.Interval)
	v.SetDefault("frame.max_frames", d.Frame.MaxFrames)
	v.SetDefault("debug.enabled", d.Debug.Enabled)
	v.SetDefault("debug.addr", d.Debug.Addr)
	v.SetDefault("debug.history", d.Debug.History)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("tracing.tracer_name", d.Tracing.TracerName)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads configuration. If path is empty, lumen.yaml in the working
// directory is used when present; a missing default file is not an error.
// An explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return Config{}, errors.New(errors.CodeInvalidConfig).
				WithOp("config.Load").
				WithDetail(fmt.Sprintf("reading %q", path)).
				Wrap(err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.New(errors.CodeInvalidConfig).
			WithOp("config.Load").
			Wrap(err)
	}
	return c, nil
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("tasks.workers", cfg.Tasks.Workers)
	v.Set("frame.interval", cfg.Frame.Interval.String())
	v.Set("frame.max_frames", cfg.Frame.MaxFrames)
	v.Set("debug.enabled", cfg.Debug.Enabled)
	v.Set("debug.addr", cfg.Debug.Addr)
	v.Set("debug.history", cfg.Debug.History)
	v.Set("metrics.namespace", cfg.Metrics.Namespace)
	v.Set("tracing.tracer_name", cfg.Tracing.TracerName)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Validate checks cfg and returns an E201 error naming the first invalid
// field.
func (c Config) Validate() error {
	invalid := func(field, detail string) error {
		return errors.New(errors.CodeInvalidConfig).
			WithOp("config.Validate").
			WithDetail(field + ": " + detail)
	}

	if c.Tasks.Workers < 1 {
		return invalid("tasks.workers", "must be at least 1")
	}
	if c.Frame.Interval <= 0 {
		return invalid("frame.interval", "must be positive")
	}
	if c.Frame.MaxFrames < 0 {
		return invalid("frame.max_frames", "must not be negative")
	}
	if c.Debug.Enabled && c.Debug.Addr == "" {
		return invalid("debug.addr", "required when debug is enabled")
	}
	if c.Debug.History < 1 {
		return invalid("debug.history", "must be at least 1")
	}
	if c.Metrics.Namespace == "" {
		return invalid("metrics.namespace", "must not be empty")
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Log.Level)) {
		return invalid("log.level", fmt.Sprintf("%q is not one of %v", c.Log.Level, validLevels))
	}
	if !slices.Contains(validFormats, strings.ToLower(c.Log.Format)) {
		return invalid("log.format", fmt.Sprintf("%q is not one of %v", c.Log.Format, validFormats))
	}
	return nil
}
