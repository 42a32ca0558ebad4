package errors

import (
	"fmt"
)

// ConfigurationMismatchError occurs when a table's declared schema disagrees with the
// byte offsets used to slice it, or when a raw cell holds an unrecognized placeholder.
// It aborts the whole table build.
type ConfigurationMismatchError struct {
	Table  string
	Reason string
}

// Error returns a textual representation of this ConfigurationMismatchError
func (e ConfigurationMismatchError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("configuration mismatch: %s", e.Reason)
	}
	return fmt.Sprintf("configuration mismatch in table %s: %s", e.Table, e.Reason)
}

// LookupError occurs when a column reference or a geography key cannot be resolved
type LookupError struct {
	Kind string // Kind describes what was being looked up, e.g. "column" or "geography"
	Key  string
}

// Error returns a textual representation of this LookupError
func (e LookupError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

// FetchError occurs when a jurisdiction's files cannot be downloaded or opened. It is
// isolated to that jurisdiction.
type FetchError struct {
	Jurisdiction string
	URL          string
	Err          error
}

// Error returns a textual representation of this FetchError
func (e FetchError) Error() string {
	return fmt.Sprintf("jurisdiction %s: fetching %s: %v", e.Jurisdiction, e.URL, e.Err)
}

// Unwrap returns the underlying cause of this FetchError
func (e FetchError) Unwrap() error {
	return e.Err
}

// IncompatibleRecordError occurs when a record is too narrow for the positions being sliced from it
type IncompatibleRecordError struct {
	Want int
	Got  int
}

// Error returns a textual representation of this IncompatibleRecordError
func (e IncompatibleRecordError) Error() string {
	return fmt.Sprintf("record has %d fields, slicing requires at least %d", e.Got, e.Want)
}

// NoMoreRowsError occurs when Next is called on an exhausted RowIterator
type NoMoreRowsError struct{}

// Error returns a textual representation of this NoMoreRowsError
func (e NoMoreRowsError) Error() string {
	return "No more rows"
}
