package executor

import (
	"context"
	"io"
)

// Executor launches external commands
type Executor interface {
	// Start launches a command without waiting for it.
	Start(ctx context.Context, cmd Command) (Process, error)
}

// Command describes a process to start. Nil writers discard output.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Process is a started command
type Process interface {
	PID() int
	// Wait blocks until the process exits. A non-zero exit or a fatal signal
	// is reported in ExitStatus, not as an error.
	Wait() (ExitStatus, error)
}

// ExitStatus describes how a process ended
type ExitStatus struct {
	Code int
	// Signal is the name of the signal that killed the process, e.g. SIGSEGV.
	Signal string
}

// Abnormal reports whether the process crashed or exited non-zero
func (s ExitStatus) Abnormal() bool {
	return s.Signal != "" || s.Code != 0
}
