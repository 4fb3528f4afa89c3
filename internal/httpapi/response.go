package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
)

type healthResponse struct {
	Status         string `json:"status"`
	State          string `json:"state"`
	PendingWaiters int    `json:"pending_waiters"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RecordResponse is the JSON form of a crash record
type RecordResponse struct {
	ProcessName       string            `json:"process_name"`
	PID               int               `json:"pid"`
	ParentPID         int               `json:"parent_pid,omitempty"`
	ParentProcessName string            `json:"parent_process_name,omitempty"`
	Timestamp         *time.Time        `json:"timestamp,omitempty"`
	ExecutablePath    string            `json:"executable_path,omitempty"`
	ReportPath        string            `json:"report_path"`
	ExceptionType     string            `json:"exception_type,omitempty"`
	Signal            string            `json:"signal,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// NewRecordResponse converts rec for JSON output
func NewRecordResponse(rec crashlog.Record) RecordResponse {
	resp := RecordResponse{
		ProcessName:       rec.ProcessName,
		PID:               rec.PID,
		ParentPID:         rec.ParentPID,
		ParentProcessName: rec.ParentProcessName,
		ExecutablePath:    rec.ExecutablePath,
		ReportPath:        rec.ReportPath,
		ExceptionType:     rec.ExceptionType,
		Signal:            rec.Signal,
	}
	if !rec.Timestamp.IsZero() {
		ts := rec.Timestamp
		resp.Timestamp = &ts
	}
	if keys := rec.MetadataKeys(); len(keys) > 0 {
		resp.Metadata = rec.MetadataMap()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
