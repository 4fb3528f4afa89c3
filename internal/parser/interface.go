package parser

import (
	"context"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
)

// Parser turns a crash report on disk into a Record.
// Failures are always a *ParseError; Parse never panics on bad input.
type Parser interface {
	Parse(ctx context.Context, path string) (crashlog.Record, error)
}

// Func adapts a function to Parser
type Func func(ctx context.Context, path string) (crashlog.Record, error)

func (f Func) Parse(ctx context.Context, path string) (crashlog.Record, error) {
	return f(ctx, path)
}
