package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the crash long-poll API, health and metrics over HTTP",
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

		addr := serveAddr
		if addr == "" {
			addr = a.cfg.Metrics.Addr
		}
		errc := a.startHTTP(ctx, addr)

		select {
		case <-ctx.Done():
			a.logger.Info(ctx, "Shutdown signal received")
			<-errc
		case err, ok := <-errc:
			if ok {
				return err
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default metrics.addr from config)")
}
