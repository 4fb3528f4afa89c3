// Package crashlog holds the parsed crash report model and the predicates
// waiters use to select reports.
package crashlog

import (
	"fmt"
	"sort"
	"time"
)

// Record is one parsed crash report. It is immutable once built with
// NewRecord and safe to share between goroutines.
type Record struct {
	ProcessName       string
	PID               int
	ParentPID         int
	ParentProcessName string
	Timestamp         time.Time
	ExecutablePath    string
	ReportPath        string
	ExceptionType     string
	Signal            string

	metadata map[string]string
}

// NewRecord returns r with its own copy of metadata.
func NewRecord(r Record, metadata map[string]string) Record {
	r.metadata = make(map[string]string, len(metadata))
	for k, v := range metadata {
		r.metadata[k] = v
	}
	return r
}

// Metadata returns an extra key extracted from the report.
func (r Record) Metadata(key string) (string, bool) {
	v, ok := r.metadata[key]
	return v, ok
}

// MetadataKeys returns the metadata keys in sorted order.
func (r Record) MetadataKeys() []string {
	keys := make([]string, 0, len(r.metadata))
	for k := range r.metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MetadataMap returns a copy of the metadata.
func (r Record) MetadataMap() map[string]string {
	out := make(map[string]string, len(r.metadata))
	for k, v := range r.metadata {
		out[k] = v
	}
	return out
}

func (r Record) String() string {
	return fmt.Sprintf("%s[%d] %s %s (%s)", r.ProcessName, r.PID, r.ExceptionType, r.Signal, r.ReportPath)
}
