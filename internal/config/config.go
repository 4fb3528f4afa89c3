package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Watcher WatcherConfig `yaml:"watcher"`
	Retry   RetryConfig   `yaml:"retry"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type PathsConfig struct {
	ReportDirs []string `yaml:"report_dirs"`
}

type WatcherConfig struct {
	SettleInterval time.Duration `yaml:"settle_interval"`
	StableChecks   int           `yaml:"stable_checks"`
	MaxSettleWait  time.Duration `yaml:"max_settle_wait"`
	Extensions     []string      `yaml:"extensions"`
	ReplayExisting bool          `yaml:"replay_existing"`
	MaxConcurrent  int           `yaml:"max_concurrent"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	MaxPending   int           `yaml:"max_pending"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads a YAML config file and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Default returns a validated config watching the platform crash report directories.
func Default() *Config {
	cfg := &Config{
		Paths: PathsConfig{ReportDirs: DefaultReportDirs()},
	}
	if err := cfg.Validate(); err != nil {
		// No report directory is known for this platform; callers must set one.
		cfg.applyDefaults()
	}
	return cfg
}

// DefaultReportDirs returns where the OS deposits user crash reports.
// Simulator crashes land in the same directory as host crashes.
func DefaultReportDirs() []string {
	if runtime.GOOS != "darwin" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, "Library", "Logs", "DiagnosticReports")}
}

func (c *Config) Validate() error {
	if len(c.Paths.ReportDirs) == 0 {
		return fmt.Errorf("paths.report_dirs is required")
	}
	for i, dir := range c.Paths.ReportDirs {
		if dir == "" {
			return fmt.Errorf("paths.report_dirs[%d] is empty", i)
		}
	}
	if c.Watcher.StableChecks < 0 {
		return fmt.Errorf("watcher.stable_checks must be >= 0")
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry.max_attempts must be >= 0")
	}
	if c.Retry.Multiplier != 0 && c.Retry.Multiplier < 1 {
		return fmt.Errorf("retry.multiplier must be >= 1")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}

	c.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	if c.Watcher.SettleInterval == 0 {
		c.Watcher.SettleInterval = 250 * time.Millisecond
	}
	if c.Watcher.StableChecks == 0 {
		c.Watcher.StableChecks = 2
	}
	if c.Watcher.MaxSettleWait == 0 {
		c.Watcher.MaxSettleWait = 10 * time.Second
	}
	if len(c.Watcher.Extensions) == 0 {
		c.Watcher.Extensions = []string{".ips", ".crash"}
	}
	if c.Watcher.MaxConcurrent == 0 {
		c.Watcher.MaxConcurrent = 4
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 5
	}
	if c.Retry.InitialDelay == 0 {
		c.Retry.InitialDelay = 500 * time.Millisecond
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 5 * time.Second
	}
	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = 2
	}
	if c.Retry.MaxPending == 0 {
		c.Retry.MaxPending = 256
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = "127.0.0.1:9465"
	}
}
