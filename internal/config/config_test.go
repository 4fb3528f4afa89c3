package config

import (
	"os"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				Paths: PathsConfig{ReportDirs: []string{"/tmp/reports"}},
			},
			wantErr: false,
		},
		{
			name:    "missing report dirs",
			config:  Config{},
			wantErr: true,
		},
		{
			name: "empty report dir entry",
			config: Config{
				Paths: PathsConfig{ReportDirs: []string{"/tmp/reports", ""}},
			},
			wantErr: true,
		},
		{
			name: "multiplier below one",
			config: Config{
				Paths: PathsConfig{ReportDirs: []string{"/tmp/reports"}},
				Retry: RetryConfig{Multiplier: 0.5},
			},
			wantErr: true,
		},
		{
			name: "unknown log format",
			config: Config{
				Paths:   PathsConfig{ReportDirs: []string{"/tmp/reports"}},
				Logging: LoggingConfig{Format: "xml"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{Paths: PathsConfig{ReportDirs: []string{"/tmp/reports"}}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Watcher.SettleInterval != 250*time.Millisecond {
		t.Errorf("SettleInterval = %v, want 250ms", cfg.Watcher.SettleInterval)
	}
	if cfg.Watcher.StableChecks != 2 {
		t.Errorf("StableChecks = %d, want 2", cfg.Watcher.StableChecks)
	}
	if len(cfg.Watcher.Extensions) != 2 {
		t.Errorf("Extensions = %v, want .ips and .crash", cfg.Watcher.Extensions)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Retry.MaxAttempts)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
paths:
  report_dirs:
    - "/var/reports"
    - "/var/reports/Retired"

watcher:
  settle_interval: 50ms
  stable_checks: 3
  extensions: [".ips"]
  replay_existing: true

retry:
  max_attempts: 2
  initial_delay: 1s

logging:
  level: "debug"
  format: "json"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Paths.ReportDirs) != 2 || cfg.Paths.ReportDirs[1] != "/var/reports/Retired" {
		t.Errorf("ReportDirs = %v", cfg.Paths.ReportDirs)
	}
	if cfg.Watcher.SettleInterval != 50*time.Millisecond {
		t.Errorf("SettleInterval = %v, want 50ms", cfg.Watcher.SettleInterval)
	}
	if !cfg.Watcher.ReplayExisting {
		t.Error("ReplayExisting = false, want true")
	}
	if cfg.Retry.InitialDelay != time.Second {
		t.Errorf("InitialDelay = %v, want 1s", cfg.Retry.InitialDelay)
	}
	if cfg.Retry.MaxDelay != 5*time.Second {
		t.Errorf("MaxDelay = %v, want default 5s", cfg.Retry.MaxDelay)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Watcher.SettleInterval == 0 || cfg.Retry.MaxAttempts == 0 {
		t.Errorf("Default() did not apply defaults: %+v", cfg)
	}
}
