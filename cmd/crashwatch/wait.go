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
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"
)

var (
	waitMatch   matchFlags
	waitTimeout time.Duration
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until the next crash matching the given filters",
	Example: `  crashwatch wait --process Foo --timeout 2m
  crashwatch wait --pid 4242 --signal SIGSEGV`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pred, err := waitMatch.predicate()
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if waitTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, waitTimeout)
			defer cancel()
		}

		if err := a.notifier.StartListening(); err != nil {
			return err
		}
		defer a.notifier.Close()

		if waitMatch.pid > 0 {
			a.logger.Info(ctx, "Waiting for a crash of pid %d (%s)", waitMatch.pid, describePID(ctx, waitMatch.pid))
		}
		waiter := a.notifier.NextCrashLog(pred)

		spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = fmt.Sprintf(" Waiting for %s", pred)
		spin.Start()
		rec, err := waiter.Wait(ctx)
		spin.Stop()

		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("no matching crash within %s", waitTimeout)
		}
		if err != nil {
			return err
		}
		return printRecord(os.Stdout, rec, outputFormat)
	},
}

func init() {
	waitMatch.register(waitCmd)
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "give up after this long (0 waits forever)")
}

// describePID names a live process for log output.
func describePID(ctx context.Context, pid int) string {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "not running"
	}
	name, err := p.NameWithContext(ctx)
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}
