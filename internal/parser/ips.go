package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
)

type ipsHeader struct {
	AppName    string `json:"app_name"`
	Name       string `json:"name"`
	Timestamp  string `json:"timestamp"`
	BugType    string `json:"bug_type"`
	IncidentID string `json:"incident_id"`
	OSVersion  string `json:"os_version"`
	BundleID   string `json:"bundleID"`
	AppVersion string `json:"app_version"`
}

type ipsBody struct {
	PID         int    `json:"pid"`
	ProcName    string `json:"procName"`
	ProcPath    string `json:"procPath"`
	ParentPID   int    `json:"parentPid"`
	ParentProc  string `json:"parentProc"`
	CaptureTime string `json:"captureTime"`
	CPUType     string `json:"cpuType"`
	Coalition   string `json:"coalitionName"`
	Exception   struct {
		Type    string `json:"type"`
		Signal  string `json:"signal"`
		Subtype string `json:"subtype"`
	} `json:"exception"`
	Termination struct {
		Indicator string `json:"indicator"`
		Namespace string `json:"namespace"`
	} `json:"termination"`
}

// parseIPS handles the two-part .ips format: a one-line JSON header followed
// by either a JSON body or, for older reports, the classic text body.
func parseIPS(path string, data []byte) (crashlog.Record, error) {
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return crashlog.Record{}, incomplete(path, fmt.Errorf("header not terminated"))
	}

	var header ipsHeader
	if err := json.Unmarshal(data[:idx], &header); err != nil {
		return crashlog.Record{}, malformed(path, fmt.Errorf("header: %w", err))
	}

	meta := make(map[string]string)
	setIfNotEmpty(meta, "bug_type", header.BugType)
	setIfNotEmpty(meta, "incident_id", header.IncidentID)
	setIfNotEmpty(meta, "os_version", header.OSVersion)
	setIfNotEmpty(meta, "bundle_id", header.BundleID)
	setIfNotEmpty(meta, "app_version", header.AppVersion)

	body := bytes.TrimSpace(data[idx+1:])
	if len(body) == 0 {
		return crashlog.Record{}, incomplete(path, fmt.Errorf("empty body"))
	}
	if body[0] != '{' {
		return parseText(path, body, meta)
	}

	var b ipsBody
	if err := json.Unmarshal(body, &b); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) && syntaxErr.Offset >= int64(len(body)) {
			return crashlog.Record{}, incomplete(path, err)
		}
		return crashlog.Record{}, malformed(path, fmt.Errorf("body: %w", err))
	}

	name := b.ProcName
	if name == "" {
		name = header.AppName
	}
	if name == "" {
		name = header.Name
	}
	if name == "" {
		return crashlog.Record{}, malformed(path, fmt.Errorf("no process name"))
	}

	ts, ok := parseTimestamp(b.CaptureTime)
	if !ok {
		ts, ok = parseTimestamp(header.Timestamp)
	}
	if !ok {
		setIfNotEmpty(meta, "raw_timestamp", header.Timestamp)
	}

	setIfNotEmpty(meta, "cpu_type", b.CPUType)
	setIfNotEmpty(meta, "coalition", b.Coalition)
	setIfNotEmpty(meta, "exception_subtype", b.Exception.Subtype)
	setIfNotEmpty(meta, "termination_indicator", b.Termination.Indicator)
	setIfNotEmpty(meta, "termination_namespace", b.Termination.Namespace)
	if b.PID == 0 {
		meta["pid_missing"] = strconv.FormatBool(true)
	}

	return crashlog.NewRecord(crashlog.Record{
		ProcessName:       name,
		PID:               b.PID,
		ParentPID:         b.ParentPID,
		ParentProcessName: b.ParentProc,
		Timestamp:         ts,
		ExecutablePath:    b.ProcPath,
		ReportPath:        path,
		ExceptionType:     b.Exception.Type,
		Signal:            b.Exception.Signal,
	}, meta), nil
}
