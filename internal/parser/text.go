package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
)

var (
	reNameAndPID = regexp.MustCompile(`^(.*?)\s*\[(\d+)\]`)
	reException  = regexp.MustCompile(`^(\S+)(?:\s*\((\w+)\))?`)
	keyReplacer  = strings.NewReplacer(" ", "_", "/", "_", "-", "_")
)

// parseText handles the classic text report. A report counts as complete
// once its trailing "Binary Images:" section has been written.
func parseText(path string, data []byte, meta map[string]string) (crashlog.Record, error) {
	if !bytes.HasPrefix(data, []byte("Binary Images:")) && !bytes.Contains(data, []byte("\nBinary Images:")) {
		return crashlog.Record{}, incomplete(path, fmt.Errorf("binary images section not written yet"))
	}
	if meta == nil {
		meta = make(map[string]string)
	}

	rec := crashlog.Record{ReportPath: path}
	foundProcess := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Thread ") || strings.HasPrefix(line, "Binary Images:") {
			break
		}
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Process":
			name, pid := splitNameAndPID(value)
			rec.ProcessName, rec.PID = name, pid
			foundProcess = name != ""
		case "Parent Process":
			rec.ParentProcessName, rec.ParentPID = splitNameAndPID(value)
		case "Path":
			rec.ExecutablePath = value
		case "Date/Time":
			if ts, ok := parseTimestamp(value); ok {
				rec.Timestamp = ts
			} else {
				meta["raw_timestamp"] = value
			}
		case "Exception Type":
			if m := reException.FindStringSubmatch(value); m != nil {
				rec.ExceptionType = m[1]
				rec.Signal = m[2]
			}
		default:
			setIfNotEmpty(meta, metadataKey(key), value)
		}
	}
	if err := scanner.Err(); err != nil {
		return crashlog.Record{}, malformed(path, err)
	}

	if !foundProcess {
		return crashlog.Record{}, malformed(path, fmt.Errorf("missing Process line"))
	}

	return crashlog.NewRecord(rec, meta), nil
}

func splitNameAndPID(value string) (string, int) {
	m := reNameAndPID.FindStringSubmatch(value)
	if m == nil {
		return value, 0
	}
	pid, err := strconv.Atoi(m[2])
	if err != nil {
		return m[1], 0
	}
	return m[1], pid
}

func metadataKey(key string) string {
	return keyReplacer.Replace(strings.ToLower(key))
}
