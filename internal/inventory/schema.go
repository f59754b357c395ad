package inventory

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var defaultSchema []byte

// DefinitionName is the CUE definition rows are validated against.
const DefinitionName = "#Record"

// Kind is the value type a column is parsed into.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

// Schema is a compiled record schema.
//
// A Schema belongs to a single CUE context and is not safe for concurrent
// use; loading is single-threaded.
type Schema struct {
	ctx *cue.Context
	def cue.Value
}

// DefaultSchema returns the built-in host inventory schema.
func DefaultSchema() (*Schema, error) {
	return ParseSchema("schema.cue", defaultSchema)
}

// LoadSchema reads a CUE schema file. An empty path selects the default.
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return DefaultSchema()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return ParseSchema(filepath.Base(path), data)
}

// ParseSchema compiles CUE source that defines #Record.
func ParseSchema(filename string, src []byte) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := v.LookupPath(cue.ParsePath(DefinitionName))
	if !def.Exists() {
		return nil, &SchemaError{Message: fmt.Sprintf("%s: schema defines no %s", filename, DefinitionName)}
	}
	if err := def.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return &Schema{ctx: ctx, def: def}, nil
}

// field looks up the constraint for a column, required or optional.
func (s *Schema) field(name string) (cue.Value, bool) {
	for _, sel := range []cue.Selector{cue.Str(name), cue.Str(name).Optional()} {
		v := s.def.LookupPath(cue.MakePath(sel))
		if v.Exists() {
			return v, true
		}
	}
	return cue.Value{}, false
}

// Kind reports how values of column name are typed. Columns the schema does
// not constrain to exactly int or bool are text.
func (s *Schema) Kind(name string) Kind {
	v, ok := s.field(name)
	if !ok {
		return KindString
	}
	switch v.IncompleteKind() {
	case cue.IntKind:
		return KindInt
	case cue.BoolKind:
		return KindBool
	default:
		return KindString
	}
}

// Lowercase reports whether column name carries @gandalf(lower), meaning its
// values are folded to lower case before validation.
func (s *Schema) Lowercase(name string) bool {
	v, ok := s.field(name)
	if !ok {
		return false
	}
	attr := v.Attribute("gandalf")
	if attr.Err() != nil {
		return false
	}
	lower, err := attr.Flag(0, "lower")
	return err == nil && lower
}

// Validate unifies a row with #Record and requires every field to be concrete.
func (s *Schema) Validate(row map[string]any) error {
	v := s.ctx.Encode(row)
	if err := v.Err(); err != nil {
		return err
	}
	return s.def.Unify(v).Validate(cue.Concrete(true))
}
