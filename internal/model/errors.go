package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks bad simulation or valuation inputs.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrSchema marks missing or malformed observation fields.
	ErrSchema = errors.New("schema error")
	// ErrIndexOutOfRange marks a grant month outside the simulated window.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// ParamError reports a rejected parameter. Row is zero for run-level parameters
// such as the iteration count.
type ParamError struct {
	Row   FirmYear
	Name  string
	Value float64
	Msg   string
}

func (e *ParamError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "out of range"
	}
	if e.Row.IsZero() {
		return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, msg)
	}
	return fmt.Sprintf("row %s: invalid parameter %s=%v: %s", e.Row, e.Name, e.Value, msg)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// SchemaError reports a missing or malformed field. Line is the 1-based input
// line when the row came from a file, 0 otherwise.
type SchemaError struct {
	Row    FirmYear
	Line   int
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	where := "row " + e.Row.String()
	if e.Line > 0 {
		where = fmt.Sprintf("line %d (%s)", e.Line, e.Row)
	}
	return fmt.Sprintf("%s: field %q: %s", where, e.Field, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }
