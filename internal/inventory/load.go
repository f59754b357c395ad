// Package inventory loads host records from CSV and validates them against a
// CUE schema.
//
// The first row of the file names the columns. An empty cell leaves the field
// out of the record, so optional columns stay absent rather than empty. Any
// invalid row aborts the load: bad data must not reach generated files.
package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/roach88/gandalf/internal/ir"
)

// Load reads and validates the CSV file at path.
//
// Errors: *fs.PathError (wrapped) when the file cannot be opened,
// *FormatError when it is not a well-formed table, *IntegrityError when a
// row violates the schema.
func Load(path string, schema *Schema) ([]ir.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	defer f.Close()
	return Read(f, schema)
}

// Read parses and validates CSV from r.
func Read(r io.Reader, schema *Schema) ([]ir.Record, error) {
	if schema == nil {
		var err error
		if schema, err = DefaultSchema(); err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []ir.Record{}, nil
	}
	if err != nil {
		return nil, csvError(err)
	}
	columns, err := newColumns(header, schema)
	if err != nil {
		return nil, err
	}

	var records []ir.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := columns.record(line, row, schema)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if records == nil {
		records = []ir.Record{}
	}
	return records, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FormatError{Row: pe.Line, Message: "malformed CSV", Err: pe.Err}
	}
	return &FormatError{Message: "reading CSV", Err: err}
}

type column struct {
	name  string
	kind  Kind
	lower bool
}

type columns []column

func newColumns(header []string, schema *Schema) (columns, error) {
	seen := make(map[string]bool, len(header))
	cols := make(columns, 0, len(header))
	for _, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, &FormatError{Row: 1, Message: "empty column name in header"}
		}
		if seen[name] {
			return nil, &FormatError{Row: 1, Message: fmt.Sprintf("duplicate column %q", name)}
		}
		seen[name] = true
		cols = append(cols, column{name: name, kind: schema.Kind(name), lower: schema.Lowercase(name)})
	}
	return cols, nil
}

// record types the cells of one row and validates the result.
func (cols columns) record(line int, row []string, schema *Schema) (ir.Record, error) {
	fields := make([]ir.Field, 0, len(cols))
	doc := make(map[string]any, len(cols))

	for i, col := range cols {
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		if col.lower {
			cell = strings.ToLower(cell)
		}

		var val ir.Value
		switch col.kind {
		case KindInt:
			n, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return ir.Record{}, &IntegrityError{Row: line, Field: col.name, Message: fmt.Sprintf("%q is not an integer", cell)}
			}
			val = ir.Int(n)
		case KindBool:
			b, err := strconv.ParseBool(cell)
			if err != nil {
				return ir.Record{}, &IntegrityError{Row: line, Field: col.name, Message: fmt.Sprintf("%q is not a boolean", cell)}
			}
			val = ir.Bool(b)
		default:
			val = ir.String(cell)
		}
		fields = append(fields, ir.F(col.name, val))
		doc[col.name] = ir.ToGo(val)
	}

	if err := schema.Validate(doc); err != nil {
		return ir.Record{}, integrityFromCUE(line, err)
	}
	return ir.NewRecord(fields...), nil
}
