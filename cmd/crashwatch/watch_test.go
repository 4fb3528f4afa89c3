package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/logger"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/metrics"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteStats(t *testing.T) {
	m := metrics.New()
	m.ReportDetected()

	var logs bytes.Buffer
	a := &app{metrics: m, logger: logger.NewWithOutput("info", "text", &logs)}

	var out bytes.Buffer
	a.writeStats(context.Background(), &out)
	if !strings.Contains(out.String(), "crashlog_reports_detected_total 1") {
		t.Errorf("stats output missing counter:\n%s", out.String())
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected log output: %s", logs.String())
	}

	a.writeStats(context.Background(), failingWriter{})
	if !strings.Contains(logs.String(), "[WARN] Failed to write pipeline stats") {
		t.Errorf("write failure not logged, got %q", logs.String())
	}
}
