package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

var levels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

type implLogger struct {
	logger *log.Logger
	out    io.Writer
	mu     sync.Mutex
	level  string
	format string
}

// New creates a text Logger writing to stdout
func New(level string) Logger {
	return NewWithOutput(level, "text", os.Stdout)
}

// NewWithOutput creates a Logger with the given format ("text" or "json") and writer
func NewWithOutput(level, format string, w io.Writer) Logger {
	if w == nil {
		w = io.Discard
	}
	return &implLogger{
		logger: log.New(w, "", log.LstdFlags),
		out:    w,
		level:  strings.ToLower(level),
		format: strings.ToLower(format),
	}
}

// Nop returns a Logger that discards everything
func Nop() Logger {
	return NewWithOutput("error", "text", io.Discard)
}

func (l *implLogger) shouldLog(level string) bool {
	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) write(level, msg string, args []interface{}) {
	if !l.shouldLog(level) {
		return
	}
	if l.format != "json" {
		l.logger.Printf("["+strings.ToUpper(level)+"] "+msg, args...)
		return
	}

	line, err := json.Marshal(struct {
		Time    string `json:"time"`
		Level   string `json:"level"`
		Message string `json:"message"`
	}{
		Time:    time.Now().UTC().Format(time.RFC3339Nano),
		Level:   level,
		Message: fmt.Sprintf(msg, args...),
	})
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(line, '\n'))
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.write("debug", msg, args)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.write("info", msg, args)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.write("warn", msg, args)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.write("error", msg, args)
}
