package query

import (
	"fmt"
	"strconv"

	"github.com/roach88/gandalf/internal/ir"
)

// Predicate is a boolean expression evaluated against a single record.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in backends (see internal/querysql).
//
// Predicate types:
//   - Equals: field == literal
//   - NotEquals: field != literal
//   - Test: fn(field value) is true
//   - And, Or, Not: boolean combinators
//
// Predicates are immutable. Eval never panics and never returns an error: an
// absent field or a failing test function makes the leaf false.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package

	// Eval reports whether the record satisfies the predicate.
	Eval(r ir.Record) bool

	// String renders the predicate in the expression syntax accepted by Parse.
	String() string
}

// TestFunc is a user-supplied check on one field value.
//
// The function receives ir.Null{} when the record lacks the field. Returning an
// error, or panicking, counts as "false" for that record only; the rest of the
// search continues.
type TestFunc func(v ir.Value) (bool, error)

// Equals represents a field-equals-literal predicate.
//
// Semantics:
//
//	<field> == <value>
//
// Comparison uses ir.Equal: Int with Int, String with String, Null with Null.
// A type mismatch is "not equal". A record without the field never matches.
type Equals struct {
	Field string   // Field name in the record
	Value ir.Value // Literal to compare against
}

func (Equals) predicateNode() {}

// Eval implements Predicate.
func (e Equals) Eval(r ir.Record) bool {
	v, ok := r.Get(e.Field)
	return ok && ir.Equal(v, literal(e.Value))
}

func (e Equals) String() string {
	return e.Field + " == " + formatLiteral(e.Value)
}

// NotEquals represents a field-not-equal-literal predicate.
//
// Semantics:
//
//	<field> != <value>
//
// A record without the field does not match either: absence is neither
// equal nor not-equal. Use Not(Equals) to include records lacking the field.
type NotEquals struct {
	Field string
	Value ir.Value
}

func (NotEquals) predicateNode() {}

// Eval implements Predicate.
func (n NotEquals) Eval(r ir.Record) bool {
	v, ok := r.Get(n.Field)
	return ok && !ir.Equal(v, literal(n.Value))
}

func (n NotEquals) String() string {
	return n.Field + " != " + formatLiteral(n.Value)
}

// Test wraps a TestFunc applied to one field.
//
// Name is used only for String() and diagnostics.
type Test struct {
	Field string
	Name  string
	Fn    TestFunc
}

func (Test) predicateNode() {}

// Eval implements Predicate. Errors and panics raised by Fn are contained
// and evaluate to false.
func (t Test) Eval(r ir.Record) (matched bool) {
	if t.Fn == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()

	v, ok := r.Get(t.Field)
	if !ok {
		v = ir.Null{}
	}
	res, err := t.Fn(v)
	return err == nil && res
}

func (t Test) String() string {
	name := t.Name
	if name == "" {
		name = "fn"
	}
	return fmt.Sprintf("test(%s, %s)", t.Field, name)
}

// And is true when both sides are true. Right is evaluated only if Left is true.
type And struct {
	Left  Predicate
	Right Predicate
}

func (And) predicateNode() {}

// Eval implements Predicate.
func (a And) Eval(r ir.Record) bool {
	return eval(a.Left, r) && eval(a.Right, r)
}

func (a And) String() string {
	return "(" + str(a.Left) + " and " + str(a.Right) + ")"
}

// Or is true when either side is true. Right is evaluated only if Left is false.
type Or struct {
	Left  Predicate
	Right Predicate
}

func (Or) predicateNode() {}

// Eval implements Predicate.
func (o Or) Eval(r ir.Record) bool {
	return eval(o.Left, r) || eval(o.Right, r)
}

func (o Or) String() string {
	return "(" + str(o.Left) + " or " + str(o.Right) + ")"
}

// Not negates its inner predicate.
type Not struct {
	Inner Predicate
}

func (Not) predicateNode() {}

// Eval implements Predicate.
func (n Not) Eval(r ir.Record) bool {
	return !eval(n.Inner, r)
}

func (n Not) String() string {
	return "not " + str(n.Inner)
}

// Never matches no record.
type Never struct{}

func (Never) predicateNode() {}

// Eval implements Predicate.
func (Never) Eval(ir.Record) bool { return false }

func (Never) String() string { return "false" }

// eval treats a nil predicate as false so malformed trees never panic.
func eval(p Predicate, r ir.Record) bool {
	return p != nil && p.Eval(r)
}

func str(p Predicate) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}

func literal(v ir.Value) ir.Value {
	if v == nil {
		return ir.Null{}
	}
	return v
}

// formatLiteral renders a value so that Parse reads it back as the same value.
func formatLiteral(v ir.Value) string {
	switch val := literal(v).(type) {
	case ir.String:
		return strconv.Quote(string(val))
	case ir.Int:
		return strconv.FormatInt(int64(val), 10)
	case ir.Bool:
		return strconv.FormatBool(bool(val))
	default:
		return "null"
	}
}
