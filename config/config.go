// Package config loads dispatcher settings from YAML, JSON or TOML files and
// environment variables and turns them into a core.Config.
package config

import (
	"strings"
	"time"

	"github.com/Swind/go-nonblock/core"
)

// Config is the file representation of a dispatcher setup.
type Config struct {
	Name     string         `mapstructure:"name"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// NotifierConfig selects the wake strategy.
type NotifierConfig struct {
	// Kind is one of "poll", "timer" or "signal".
	Kind string `mapstructure:"kind"`

	// Signal names the signal used by the "signal" kind, e.g. "SIGUSR2".
	// Empty selects SIGUSR1.
	Signal string `mapstructure:"signal"`

	// PollInterval is the pump cadence for the "poll" kind.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type WorkerConfig struct {
	LockOSThread bool `mapstructure:"lock_os_thread"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Address   string `mapstructure:"address"`
}

// Defaults returns the settings used for keys absent from the file.
func Defaults() map[string]any {
	return map[string]any{
		"name":                   "dispatcher",
		"notifier.kind":          core.NotifierPoll.String(),
		"notifier.signal":        "",
		"notifier.poll_interval": core.DefaultPollInterval,
		"worker.lock_os_thread":  false,
		"log.level":              "info",
		"log.development":        false,
		"metrics.enabled":        false,
		"metrics.namespace":      "nonblock",
		"metrics.address":        ":9090",
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if strings.TrimSpace(c.Name) == "" {
		return &ConfigError{Field: "name", Message: "must not be empty"}
	}
	kind, err := c.NotifierKind()
	if err != nil {
		return err
	}
	if kind != core.NotifierDirectSignal && c.Notifier.Signal != "" {
		return &ConfigError{Field: "notifier.signal", Message: "only valid with kind \"signal\""}
	}
	if kind == core.NotifierDirectSignal && c.Notifier.Signal != "" {
		if err := validateSignal(c.Notifier.Signal); err != nil {
			return err
		}
	}
	if kind == core.NotifierPoll && c.Notifier.PollInterval <= 0 {
		return &ConfigError{Field: "notifier.poll_interval", Message: "must be positive"}
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return &ConfigError{Field: "metrics.namespace", Message: "must not be empty when metrics are enabled"}
	}
	return nil
}

// NotifierKind parses Notifier.Kind.
func (c *Config) NotifierKind() (core.NotifierKind, error) {
	switch strings.ToLower(strings.TrimSpace(c.Notifier.Kind)) {
	case "", "poll":
		return core.NotifierPoll, nil
	case "timer", "ostimer":
		return core.NotifierOSTimer, nil
	case "signal", "direct_signal":
		return core.NotifierDirectSignal, nil
	default:
		return 0, &ConfigError{Field: "notifier.kind", Message: "unknown kind " + c.Notifier.Kind}
	}
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (core.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug":
		return core.LevelDebug, nil
	case "", "info":
		return core.LevelInfo, nil
	case "warn", "warning":
		return core.LevelWarn, nil
	case "error":
		return core.LevelError, nil
	default:
		return 0, &ConfigError{Field: "log.level", Message: "unknown level " + c.Log.Level}
	}
}

// BuildNotifier creates an unregistered notifier for the configured kind.
func (c *Config) BuildNotifier() (core.Notifier, error) {
	kind, err := c.NotifierKind()
	if err != nil {
		return nil, err
	}
	if kind == core.NotifierPoll {
		return core.NewPollNotifier(), nil
	}
	return buildSignalNotifier(kind, c.Notifier.Signal)
}

// CoreConfig builds a core.Config. A nil logger selects a DefaultLogger at the
// configured level; a nil metrics selects NilMetrics.
func (c *Config) CoreConfig(logger core.Logger, metrics core.Metrics) (*core.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	notifier, err := c.BuildNotifier()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		level, _ := c.LogLevel()
		logger = core.NewLeveledLogger(level)
	}
	if metrics == nil {
		metrics = &core.NilMetrics{}
	}
	return &core.Config{
		Name:     c.Name,
		Notifier: notifier,
		Spawner:  core.GoSpawner{LockOSThread: c.Worker.LockOSThread},
		Logger:   logger,
		Metrics:  metrics,
	}, nil
}
