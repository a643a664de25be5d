package parser

import (
	"fmt"
	"strings"
)

// SourceNotFoundError is returned when an input file does not exist.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Path)
}

// SchemaError is returned when a table lacks required columns.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// MalformedDateError is returned when a date cell cannot be parsed.
// The whole load fails; rows are never skipped.
type MalformedDateError struct {
	Source string
	Row    int
	Value  string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("%s: row %d: malformed date %q", e.Source, e.Row, e.Value)
}

// ValueError is returned when a numeric cell is invalid.
type ValueError struct {
	Source string
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: row %d: column %s: %s (%q)", e.Source, e.Row, e.Column, e.Reason, e.Value)
}
