package parser

import (
	"errors"
	"fmt"
)

// Reason classifies why a report could not be parsed.
type Reason int

const (
	// Incomplete means the file is still being written; retry later.
	Incomplete Reason = iota + 1
	// Malformed means the format is not recognized; do not retry.
	Malformed
	// Unreadable means an I/O error occurred; do not retry.
	Unreadable
)

func (r Reason) String() string {
	switch r {
	case Incomplete:
		return "incomplete"
	case Malformed:
		return "malformed"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// ParseError is the typed failure returned by Parser implementations.
type ParseError struct {
	Path   string
	Reason Reason
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("parse %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ReasonOf returns the Reason carried by err, or 0 if err is not a ParseError.
func ReasonOf(err error) Reason {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return 0
}

func incomplete(path string, err error) error {
	return &ParseError{Path: path, Reason: Incomplete, Err: err}
}

func malformed(path string, err error) error {
	return &ParseError{Path: path, Reason: Malformed, Err: err}
}

func unreadable(path string, err error) error {
	return &ParseError{Path: path, Reason: Unreadable, Err: err}
}
