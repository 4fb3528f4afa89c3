package crashlog

import (
	"testing"
	"time"
)

func sampleRecord() Record {
	return NewRecord(Record{
		ProcessName:    "Foo",
		PID:            42,
		ParentPID:      1,
		Timestamp:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		ExecutablePath: "/Applications/Foo.app/Contents/MacOS/Foo",
		ExceptionType:  "EXC_CRASH",
		Signal:         "SIGABRT",
	}, map[string]string{"incident_id": "ABC"})
}

func TestPredicates(t *testing.T) {
	r := sampleRecord()

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"process name match", ProcessName("Foo"), true},
		{"process name mismatch", ProcessName("Bar"), false},
		{"pid", PID(42), true},
		{"pid mismatch", PID(43), false},
		{"parent pid", ParentPID(1), true},
		{"signal case-insensitive", Signal("sigabrt"), true},
		{"signal mismatch", Signal("SIGSEGV"), false},
		{"exception type", ExceptionType("EXC_CRASH"), true},
		{"executable path", ExecutablePath("/Applications/Foo.app/Contents/MacOS/Foo"), true},
		{"metadata", MetadataEquals("incident_id", "ABC"), true},
		{"metadata missing key", MetadataEquals("bug_type", "309"), false},
		{"after", After(r.Timestamp.Add(-time.Minute)), true},
		{"not after", After(r.Timestamp), false},
		{"not", Not(PID(42)), false},
		{"all", All(ProcessName("Foo"), PID(42)), true},
		{"all one fails", All(ProcessName("Foo"), PID(7)), false},
		{"empty all", All(), true},
		{"any", Any(PID(7), Signal("SIGABRT")), true},
		{"empty any", Any(), false},
		{"func", Func("odd pid", func(r Record) bool { return r.PID%2 == 1 }), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred.Match(r); got != tt.want {
				t.Errorf("%s.Match() = %v, want %v", tt.pred, got, tt.want)
			}
		})
	}
}

func TestPredicateIdentity(t *testing.T) {
	if ProcessName("Foo").String() != ProcessName("Foo").String() {
		t.Error("equal tagged predicates should share an identity")
	}
	if Signal("sigsegv").String() != Signal("SIGSEGV").String() {
		t.Error("signal identity should ignore case")
	}
	always := func(Record) bool { return true }
	if Func("x", always).String() == Func("x", always).String() {
		t.Error("Func predicates should never share an identity")
	}
}

func TestRecordMetadataIsCopied(t *testing.T) {
	meta := map[string]string{"k": "v"}
	r := NewRecord(Record{ProcessName: "Foo"}, meta)
	meta["k"] = "changed"

	if v, _ := r.Metadata("k"); v != "v" {
		t.Errorf("Metadata(k) = %q, want v", v)
	}

	copied := r.MetadataMap()
	copied["k"] = "mutated"
	if v, _ := r.Metadata("k"); v != "v" {
		t.Errorf("MetadataMap exposed internal map, Metadata(k) = %q", v)
	}

	if keys := r.MetadataKeys(); len(keys) != 1 || keys[0] != "k" {
		t.Errorf("MetadataKeys() = %v", keys)
	}
}
