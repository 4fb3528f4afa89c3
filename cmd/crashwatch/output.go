package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/httpapi"
	"github.com/olekukonko/tablewriter"
)

func printRecord(w io.Writer, rec crashlog.Record, format string) error {
	if format == "json" {
		output, err := json.MarshalIndent(httpapi.NewRecordResponse(rec), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")
	table.Append([]string{"Process", rec.ProcessName})
	table.Append([]string{"PID", strconv.Itoa(rec.PID)})
	if rec.ParentProcessName != "" || rec.ParentPID != 0 {
		table.Append([]string{"Parent", fmt.Sprintf("%s [%d]", rec.ParentProcessName, rec.ParentPID)})
	}
	table.Append([]string{"Exception", rec.ExceptionType})
	table.Append([]string{"Signal", rec.Signal})
	table.Append([]string{"Time", formatTime(rec.Timestamp)})
	table.Append([]string{"Executable", rec.ExecutablePath})
	table.Append([]string{"Report", rec.ReportPath})
	for _, key := range rec.MetadataKeys() {
		value, _ := rec.Metadata(key)
		table.Append([]string{key, value})
	}
	return table.Render()
}

type inspectResult struct {
	path string
	rec  crashlog.Record
	err  error
}

func printInspectResults(w io.Writer, results []inspectResult, format string) error {
	if format == "json" {
		type jsonResult struct {
			Path   string                  `json:"path"`
			Record *httpapi.RecordResponse `json:"record,omitempty"`
			Error  string                  `json:"error,omitempty"`
		}
		out := make([]jsonResult, 0, len(results))
		for _, r := range results {
			jr := jsonResult{Path: r.path}
			if r.err != nil {
				jr.Error = r.err.Error()
			} else {
				resp := httpapi.NewRecordResponse(r.rec)
				jr.Record = &resp
			}
			out = append(out, jr)
		}
		output, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Report", "Process", "PID", "Exception", "Signal", "Time", "Status")
	for _, r := range results {
		if r.err != nil {
			table.Append([]string{r.path, "", "", "", "", "", r.err.Error()})
			continue
		}
		table.Append([]string{
			r.path,
			r.rec.ProcessName,
			strconv.Itoa(r.rec.PID),
			r.rec.ExceptionType,
			r.rec.Signal,
			formatTime(r.rec.Timestamp),
			"ok",
		})
	}
	return table.Render()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
