package pipeline

import "fmt"

// MissingColumnError is returned when a column needed for grouping is absent
// after normalization.
type MissingColumnError struct {
	Column string
	Source string
}

func (e *MissingColumnError) Error() string {
	if e.Source != "" && e.Source != e.Column {
		return fmt.Sprintf("missing required column %q (report header %q)", e.Column, e.Source)
	}
	return fmt.Sprintf("missing required column %q", e.Column)
}

// ValidationError is returned when a mutation request lacks a required field
// or carries a value that does not fit the field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("required field missing: %s", e.Field)
}

// NotFoundError is returned when an update targets a row outside the table.
type NotFoundError struct {
	Index int
	Len   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("row not found: index %d (table has %d rows)", e.Index, e.Len)
}

// ParseError reports a cell that cannot be read as the type of its column.
// Row is 1-based and counts data rows only.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %s: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
