package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/config"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/httpapi"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/logger"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/metrics"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/notifier"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "crashwatch",
	Short: "Wait for crash reports as the OS writes them",
	Long: `crashwatch watches the crash report directories and hands each new report
to whoever is waiting for a crash matching their criteria.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (YAML)")
	pf.StringVar(&outputFormat, "output", "table", "output format: table or json")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.StringSlice("dir", nil, "crash report directory to watch (repeatable)")

	viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	viper.BindPFlag("paths.report_dirs", pf.Lookup("dir"))

	rootCmd.AddCommand(watchCmd, waitCmd, inspectCmd, runCmd, serveCmd)
}

// initConfig reads overrides from CRASHWATCH_* environment variables,
// e.g. CRASHWATCH_LOGGING_LEVEL or CRASHWATCH_PATHS_REPORT_DIRS.
func initConfig() {
	viper.SetEnvPrefix("CRASHWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// loadConfig builds the effective config: the YAML file or the built-in
// defaults, then environment and flag overrides.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}
	applyOverrides(cfg, viper.GetViper())

	if err := cfg.Validate(); err != nil {
		if len(cfg.Paths.ReportDirs) == 0 {
			return nil, fmt.Errorf("no crash report directory for this platform, pass --dir: %w", err)
		}
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, v *viper.Viper) {
	if dirs := v.GetStringSlice("paths.report_dirs"); len(dirs) > 0 {
		cfg.Paths.ReportDirs = dirs
	}
	if level := v.GetString("logging.level"); level != "" {
		cfg.Logging.Level = level
	}
	if format := v.GetString("logging.format"); format != "" {
		cfg.Logging.Format = format
	}
	if v.IsSet("watcher.replay_existing") {
		cfg.Watcher.ReplayExisting = v.GetBool("watcher.replay_existing")
	}
	if v.IsSet("metrics.enabled") {
		cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	}
	if addr := v.GetString("metrics.addr"); addr != "" {
		cfg.Metrics.Addr = addr
	}
}

type app struct {
	cfg      *config.Config
	logger   logger.Logger
	metrics  *metrics.Metrics
	notifier *notifier.Notifier
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	m := metrics.New()
	return &app{
		cfg:     cfg,
		logger:  log,
		metrics: m,
		notifier: notifier.New(notifier.Options{
			Config:  cfg,
			Logger:  log,
			Metrics: m,
		}),
	}, nil
}

// startHTTP serves the HTTP API on addr until ctx ends.
func (a *app) startHTTP(ctx context.Context, addr string) <-chan error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(a.notifier, a.metrics, a.logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "HTTP API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	return errc
}
