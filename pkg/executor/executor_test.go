package executor

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestStartWait(t *testing.T) {
	skipWithoutShell(t)

	tests := []struct {
		name       string
		script     string
		wantCode   int
		wantSignal string
		abnormal   bool
	}{
		{name: "clean exit", script: "exit 0"},
		{name: "non-zero exit", script: "exit 3", wantCode: 3, abnormal: true},
		{name: "killed by SIGSEGV", script: "kill -SEGV $$", wantCode: -1, wantSignal: "SIGSEGV", abnormal: true},
		{name: "killed by SIGABRT", script: "kill -ABRT $$", wantCode: -1, wantSignal: "SIGABRT", abnormal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New().Start(context.Background(), Command{Name: "sh", Args: []string{"-c", tt.script}})
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			if p.PID() <= 0 {
				t.Errorf("PID() = %d", p.PID())
			}
			status, err := p.Wait()
			if err != nil {
				t.Fatalf("Wait() error = %v", err)
			}
			if status.Code != tt.wantCode || status.Signal != tt.wantSignal {
				t.Errorf("status = %+v, want code %d signal %q", status, tt.wantCode, tt.wantSignal)
			}
			if status.Abnormal() != tt.abnormal {
				t.Errorf("Abnormal() = %v, want %v", status.Abnormal(), tt.abnormal)
			}
		})
	}
}

func TestStartCapturesOutput(t *testing.T) {
	skipWithoutShell(t)
	var stdout bytes.Buffer
	p, err := New().Start(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo out"}, Stdout: &stdout})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := p.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "out" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestStartMissingBinary(t *testing.T) {
	if _, err := New().Start(context.Background(), Command{Name: "definitely-not-a-real-binary-xyz"}); err == nil {
		t.Error("Start() error = nil for a missing binary")
	}
}
