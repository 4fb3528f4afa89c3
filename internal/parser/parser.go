package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
)

// Timestamp layouts seen in crash reports. Fractional seconds are accepted
// on parse even though the layouts omit them.
var timestampLayouts = []string{
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
}

// Parse reads the report at path and dispatches on its extension
func (p *implParser) Parse(ctx context.Context, path string) (crashlog.Record, error) {
	if err := ctx.Err(); err != nil {
		return crashlog.Record{}, unreadable(path, err)
	}

	data, err := p.readFile(path)
	if err != nil {
		return crashlog.Record{}, err
	}
	if len(data) == 0 {
		return crashlog.Record{}, incomplete(path, fmt.Errorf("empty file"))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ips":
		return parseIPS(path, data)
	case ".crash":
		return parseText(path, data, nil)
	default:
		return crashlog.Record{}, malformed(path, fmt.Errorf("unsupported extension %q", filepath.Ext(path)))
	}
}

func (p *implParser) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, unreadable(path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, p.maxSize+1))
	if err != nil {
		return nil, unreadable(path, err)
	}
	if int64(len(data)) > p.maxSize {
		return nil, malformed(path, fmt.Errorf("report larger than %d bytes", p.maxSize))
	}
	return data, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func setIfNotEmpty(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}
