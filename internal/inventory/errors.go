package inventory

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// IntegrityError reports a row that violates the record schema.
// Loading stops at the first such row.
type IntegrityError struct {
	Row     int // line number in the CSV file
	Field   string
	Message string
}

func (e *IntegrityError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d: field %q: %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// FormatError reports a CSV file that cannot be parsed as a table.
type FormatError struct {
	Row     int
	Message string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Message, e.Err)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// SchemaError reports an invalid CUE schema.
type SchemaError struct {
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &SchemaError{Message: err.Error()}
	}
	first := errs[0]
	se := &SchemaError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		se.Pos = positions[0]
	}
	return se
}

// integrityFromCUE converts a validation failure into an IntegrityError
// naming the offending column.
func integrityFromCUE(row int, err error) *IntegrityError {
	ie := &IntegrityError{Row: row, Message: err.Error()}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return ie
	}
	first := errs[0]
	format, args := first.Msg()
	ie.Message = fmt.Sprintf(format, args...)
	path := first.Path()
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] != "" && path[i][0] != '#' {
			ie.Field = path[i]
			break
		}
	}
	return ie
}
