package main

import (
	"fmt"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
	"github.com/spf13/cobra"
)

type matchFlags struct {
	process   string
	pid       int
	ppid      int
	signal    string
	exception string
	path      string
}

func (f *matchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.process, "process", "", "process name")
	cmd.Flags().IntVar(&f.pid, "pid", 0, "process id")
	cmd.Flags().IntVar(&f.ppid, "ppid", 0, "parent process id")
	cmd.Flags().StringVar(&f.signal, "signal", "", "terminating signal, e.g. SIGSEGV")
	cmd.Flags().StringVar(&f.exception, "exception", "", "exception type, e.g. EXC_BAD_ACCESS")
	cmd.Flags().StringVar(&f.path, "path", "", "executable path")
}

// predicate combines every set flag; with none set it matches any crash.
func (f *matchFlags) predicate() (crashlog.Predicate, error) {
	var preds []crashlog.Predicate
	if f.process != "" {
		preds = append(preds, crashlog.ProcessName(f.process))
	}
	if f.pid < 0 || f.ppid < 0 {
		return nil, fmt.Errorf("pid and ppid must be positive")
	}
	if f.pid > 0 {
		preds = append(preds, crashlog.PID(f.pid))
	}
	if f.ppid > 0 {
		preds = append(preds, crashlog.ParentPID(f.ppid))
	}
	if f.signal != "" {
		preds = append(preds, crashlog.Signal(f.signal))
	}
	if f.exception != "" {
		preds = append(preds, crashlog.ExceptionType(f.exception))
	}
	if f.path != "" {
		preds = append(preds, crashlog.ExecutablePath(f.path))
	}

	if len(preds) == 1 {
		return preds[0], nil
	}
	return crashlog.All(preds...), nil
}
