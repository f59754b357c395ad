package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field is one name/value pair of a Record.
type Field struct {
	Name  string
	Value Value
}

// F is a shorthand for Field for ergonomic construction.
// Example: NewRecord(F("hostname", String("a")), F("vlan", Int(10)))
func F(name string, value Value) Field {
	return Field{Name: name, Value: value}
}

// Record is an ordered, immutable mapping from field name to Value.
//
// Field order is the order of the input columns. Records have no identity
// beyond their values; two records may be Equal.
type Record struct {
	names  []string
	values map[string]Value
}

// NewRecord creates a record from fields in order. A repeated name keeps its
// first position and takes the last value.
func NewRecord(fields ...Field) Record {
	r := Record{
		names:  make([]string, 0, len(fields)),
		values: make(map[string]Value, len(fields)),
	}
	for _, f := range fields {
		if _, dup := r.values[f.Name]; !dup {
			r.names = append(r.names, f.Name)
		}
		v := f.Value
		if v == nil {
			v = Null{}
		}
		r.values[f.Name] = v
	}
	return r
}

// Get returns the value of the named field and whether the field is present.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Value returns the named field, or Null when absent.
// Intended for templates where a missing column should print as nothing.
func (r Record) Value(name string) Value {
	if v, ok := r.values[name]; ok {
		return v
	}
	return Null{}
}

// Str returns the textual form of the named field ("" when absent).
func (r Record) Str(name string) string {
	return Text(r.Value(name))
}

// Has reports whether the record carries the named field.
func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Fields returns the record's fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.names))
	for i, n := range r.names {
		out[i] = Field{Name: n, Value: r.values[n]}
	}
	return out
}

// Names returns the field names in order.
func (r Record) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.names)
}

// Map returns a plain Go copy of the record, suitable for JSON output and templates.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.names))
	for _, n := range r.names {
		m[n] = ToGo(r.values[n])
	}
	return m
}

// Equal reports whether two records carry the same fields with equal values.
// Field order is ignored.
func (r Record) Equal(other Record) bool {
	if len(r.names) != len(other.names) {
		return false
	}
	for n, v := range r.values {
		ov, ok := other.values[n]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// String renders the record as "{name: value, ...}" in field order.
func (r Record) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, n := range r.names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", n, Text(r.values[n]))
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON implements json.Marshaler, preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(n)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", n, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(ToGo(r.values[n]))
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", n, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving field order.
// Floats with a fractional part are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected JSON object")
	}

	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: expected string key, got %T", keyTok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("record key %q: %w", key, err)
		}
		val, err := FromGo(raw)
		if err != nil {
			return fmt.Errorf("record key %q: %w", key, err)
		}
		fields = append(fields, F(key, val))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = NewRecord(fields...)
	return nil
}
