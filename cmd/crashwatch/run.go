package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
	"github.com/nguyentantai21042004/crashlog-notifier/pkg/executor"
	"github.com/spf13/cobra"
)

var runGrace time.Duration

var runCmd = &cobra.Command{
	Use:   "run -- <command> [args...]",
	Short: "Run a command and print its crash report if it crashes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Listen before the child starts so its report cannot be missed.
		if err := a.notifier.StartListening(); err != nil {
			return err
		}
		defer a.notifier.Close()

		proc, err := executor.New().Start(ctx, executor.Command{
			Name:   args[0],
			Args:   args[1:],
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		})
		if err != nil {
			return err
		}
		waiter := a.notifier.NextCrashLog(crashlog.PID(proc.PID()))
		a.logger.Info(ctx, "Started %s (pid %d)", args[0], proc.PID())

		status, err := proc.Wait()
		if err != nil {
			waiter.Cancel()
			return err
		}
		if !status.Abnormal() {
			waiter.Cancel()
			a.logger.Info(ctx, "%s exited cleanly", args[0])
			return nil
		}

		a.logger.Warn(ctx, "%s exited abnormally (code %d, signal %q), waiting up to %s for its crash report",
			args[0], status.Code, status.Signal, runGrace)

		graceCtx, cancel := context.WithTimeout(ctx, runGrace)
		defer cancel()
		spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " Waiting for crash report"
		spin.Start()
		rec, err := waiter.Wait(graceCtx)
		spin.Stop()

		switch {
		case err == nil:
			if err := printRecord(os.Stdout, rec, outputFormat); err != nil {
				return err
			}
		case errors.Is(err, context.DeadlineExceeded):
			a.logger.Warn(ctx, "No crash report for pid %d within %s", proc.PID(), runGrace)
		default:
			return err
		}
		return fmt.Errorf("%s exited abnormally (code %d, signal %q)", args[0], status.Code, status.Signal)
	},
}

func init() {
	runCmd.Flags().DurationVar(&runGrace, "grace", 10*time.Second, "how long to wait for the crash report after an abnormal exit")
}
