// pkg/model/errors.go
package model

import "fmt"

// MissingColumnError reports a required column absent from a table.
// It usually means the wrong dataset was supplied or the data was already cleaned.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("missing required column %q", e.Column)
	}
	return fmt.Sprintf("table %s is missing required column %q", e.Table, e.Column)
}

// AlreadyCleanedError reports that the cleaning precondition failed
type AlreadyCleanedError struct {
	Table  string
	Reason string
}

func (e *AlreadyCleanedError) Error() string {
	return fmt.Sprintf("table %s has already been cleaned: %s", e.Table, e.Reason)
}

// DateParseError reports a date value that no known layout accepts
type DateParseError struct {
	Column string
	Row    int
	Value  interface{}
	Err    error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("failed to parse %s at row %d (%v): %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// InvalidShapeError reports aggregation over data that has not been prepared for it
type InvalidShapeError struct {
	Table  string
	Reason string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("table %s has an invalid shape: %s", e.Table, e.Reason)
}
