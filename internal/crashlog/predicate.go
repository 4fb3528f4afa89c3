package crashlog

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// A Predicate selects the crash records a waiter cares about.
// String doubles as the predicate's identity: two predicates with the same
// String are treated as identical when waiters compete for one record.
type Predicate interface {
	Match(r Record) bool
	String() string
}

type predicate struct {
	desc  string
	match func(Record) bool
}

func (p predicate) Match(r Record) bool { return p.match(r) }
func (p predicate) String() string      { return p.desc }

var funcSeq atomic.Uint64

// Func wraps an arbitrary match function. Each call yields a distinct identity,
// so two Func predicates never count as identical.
func Func(description string, fn func(Record) bool) Predicate {
	id := funcSeq.Add(1)
	return predicate{
		desc:  fmt.Sprintf("func#%d(%s)", id, description),
		match: fn,
	}
}

// ProcessName matches records for the named process.
func ProcessName(name string) Predicate {
	return predicate{
		desc:  fmt.Sprintf("process_name == %q", name),
		match: func(r Record) bool { return r.ProcessName == name },
	}
}

// PID matches records for the given process identifier.
func PID(pid int) Predicate {
	return predicate{
		desc:  fmt.Sprintf("pid == %d", pid),
		match: func(r Record) bool { return r.PID == pid },
	}
}

// ParentPID matches records whose parent is the given process identifier.
func ParentPID(ppid int) Predicate {
	return predicate{
		desc:  fmt.Sprintf("parent_pid == %d", ppid),
		match: func(r Record) bool { return r.ParentPID == ppid },
	}
}

// Signal matches on the terminating signal, e.g. "SIGSEGV". Case-insensitive.
func Signal(sig string) Predicate {
	return predicate{
		desc:  fmt.Sprintf("signal == %q", strings.ToUpper(sig)),
		match: func(r Record) bool { return strings.EqualFold(r.Signal, sig) },
	}
}

// ExceptionType matches on the exception type, e.g. "EXC_BAD_ACCESS".
func ExceptionType(exc string) Predicate {
	return predicate{
		desc:  fmt.Sprintf("exception_type == %q", exc),
		match: func(r Record) bool { return r.ExceptionType == exc },
	}
}

// ExecutablePath matches records whose executable path equals path.
func ExecutablePath(path string) Predicate {
	return predicate{
		desc:  fmt.Sprintf("executable_path == %q", path),
		match: func(r Record) bool { return r.ExecutablePath == path },
	}
}

// MetadataEquals matches records carrying key with the given value.
func MetadataEquals(key, value string) Predicate {
	return predicate{
		desc: fmt.Sprintf("metadata[%q] == %q", key, value),
		match: func(r Record) bool {
			v, ok := r.Metadata(key)
			return ok && v == value
		},
	}
}

// After matches records whose crash timestamp is after t.
func After(t time.Time) Predicate {
	return predicate{
		desc:  fmt.Sprintf("timestamp > %s", t.UTC().Format(time.RFC3339Nano)),
		match: func(r Record) bool { return r.Timestamp.After(t) },
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return predicate{
		desc:  "NOT(" + p.String() + ")",
		match: func(r Record) bool { return !p.Match(r) },
	}
}

// All matches when every predicate matches. An empty All matches everything.
func All(ps ...Predicate) Predicate {
	return predicate{
		desc: "all(" + join(ps) + ")",
		match: func(r Record) bool {
			for _, p := range ps {
				if !p.Match(r) {
					return false
				}
			}
			return true
		},
	}
}

// Any matches when at least one predicate matches.
func Any(ps ...Predicate) Predicate {
	return predicate{
		desc: "any(" + join(ps) + ")",
		match: func(r Record) bool {
			for _, p := range ps {
				if p.Match(r) {
					return true
				}
			}
			return false
		},
	}
}

func join(ps []Predicate) string {
	descs := make([]string, 0, len(ps))
	for _, p := range ps {
		descs = append(descs, p.String())
	}
	return strings.Join(descs, ", ")
}
