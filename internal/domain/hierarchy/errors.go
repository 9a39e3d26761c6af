package hierarchy

import (
	"errors"
	"fmt"
)

// Sentinel kinds for hierarchy building errors.
var (
	ErrEmptyInput      = errors.New("empty input: no records to group")
	ErrMalformedRecord = errors.New("malformed record")
)

// MalformedRecordError describes a record that cannot be placed in the
// hierarchy. It matches ErrMalformedRecord with errors.Is.
type MalformedRecordError struct {
	Line   int
	Field  string
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("%s: line %d: field %s: %s", ErrMalformedRecord, e.Line, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRecordError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedRecord}
	}
	return []error{ErrMalformedRecord, e.Err}
}
