package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var watchStats bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Log every new crash report until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.notifier.StartListening(); err != nil {
			return err
		}
		defer a.notifier.Close()

		if watchStats {
			defer a.writeStats(ctx, os.Stdout)
		}

		var httpErr <-chan error
		if a.cfg.Metrics.Enabled {
			httpErr = a.startHTTP(ctx, a.cfg.Metrics.Addr)
		}

		a.logger.Info(ctx, "Watching %s. Press Ctrl+C to stop", strings.Join(a.cfg.Paths.ReportDirs, ", "))
		select {
		case <-ctx.Done():
			a.logger.Info(ctx, "Shutdown signal received")
		case err, ok := <-httpErr:
			if ok {
				return err
			}
		}
		return nil
	},
}

// writeStats prints the pipeline counters; a failed write is only logged.
func (a *app) writeStats(ctx context.Context, w io.Writer) {
	if err := a.metrics.WriteText(w); err != nil {
		a.logger.Warn(ctx, "Failed to write pipeline stats: %v", err)
	}
}

func init() {
	watchCmd.Flags().BoolVar(&watchStats, "stats", false, "print pipeline counters on exit")
}
