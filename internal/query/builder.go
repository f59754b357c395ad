package query

import (
	"fmt"

	"github.com/roach88/gandalf/internal/ir"
)

// Root is the symbolic "current record" handle.
//
// It carries no state and is not bound to any record: it only manufactures
// FieldRefs, which in turn build predicates. Templates receive it as .Host.
type Root struct{}

// Field returns a reference to the named field.
func (Root) Field(name string) FieldRef {
	return FieldRef{Name: name}
}

// FieldRef is a record-independent handle to a named field.
// It has no value until a predicate built from it is evaluated.
type FieldRef struct {
	Name string
}

// Eq builds an Equals predicate. The literal may be any Go scalar accepted by
// ir.FromGo; anything else is an error.
func (f FieldRef) Eq(v any) (Predicate, error) {
	val, err := ir.FromGo(v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Name, err)
	}
	return Equals{Field: f.Name, Value: val}, nil
}

// Ne builds a NotEquals predicate.
func (f FieldRef) Ne(v any) (Predicate, error) {
	val, err := ir.FromGo(v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Name, err)
	}
	return NotEquals{Field: f.Name, Value: val}, nil
}

// Test wraps fn into a Test predicate on this field.
func (f FieldRef) Test(fn TestFunc) Predicate {
	return Test{Field: f.Name, Fn: fn}
}

// NamedTest is like Test but records a name used when the predicate is printed.
func (f FieldRef) NamedTest(name string, fn TestFunc) Predicate {
	return Test{Field: f.Name, Name: name, Fn: fn}
}

// Exists matches records that carry the field with a non-null value.
func (f FieldRef) Exists() Predicate {
	return Test{Field: f.Name, Name: "exists", Fn: IsSet()}
}

// In matches records whose field equals any of vs.
func (f FieldRef) In(vs ...any) (Predicate, error) {
	fn, err := OneOf(vs...)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Name, err)
	}
	return Test{Field: f.Name, Name: "in", Fn: fn}, nil
}

// Matches matches records whose field, as text, matches the regular expression.
func (f FieldRef) Matches(pattern string) (Predicate, error) {
	fn, err := MatchesRegexp(pattern)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.Name, err)
	}
	return Test{Field: f.Name, Name: "matches", Fn: fn}, nil
}

// Eq is shorthand for Equals{Field: field, Value: v}.
func Eq(field string, v ir.Value) Predicate {
	return Equals{Field: field, Value: v}
}

// Ne is shorthand for NotEquals{Field: field, Value: v}.
func Ne(field string, v ir.Value) Predicate {
	return NotEquals{Field: field, Value: v}
}

// Check is shorthand for Test{Field: field, Fn: fn}.
func Check(field string, fn TestFunc) Predicate {
	return Test{Field: field, Fn: fn}
}

// AndOf folds predicates left-associatively into binary And nodes.
// Nil entries are skipped. With no predicates it returns nil, which Filter
// treats as "match everything".
func AndOf(ps ...Predicate) Predicate {
	return fold(ps, func(l, r Predicate) Predicate { return And{Left: l, Right: r} })
}

// OrOf folds predicates left-associatively into binary Or nodes.
// Nil entries are skipped. With no predicates it returns Never, the
// empty disjunction.
func OrOf(ps ...Predicate) Predicate {
	p := fold(ps, func(l, r Predicate) Predicate { return Or{Left: l, Right: r} })
	if p == nil {
		return Never{}
	}
	return p
}

// NotOf negates p. A nil p matches everything, so NotOf(nil) is Never.
func NotOf(p Predicate) Predicate {
	if p == nil {
		return Never{}
	}
	return Not{Inner: p}
}

func fold(ps []Predicate, join func(l, r Predicate) Predicate) Predicate {
	var acc Predicate
	for _, p := range ps {
		if p == nil {
			continue
		}
		if acc == nil {
			acc = p
			continue
		}
		acc = join(acc, p)
	}
	return acc
}

// Filter returns the records satisfying p, in their original order.
//
// A nil predicate matches every record. The input slice is never modified and
// the result is always a fresh, non-nil slice.
func Filter(records []ir.Record, p Predicate) []ir.Record {
	out := make([]ir.Record, 0, len(records))
	for _, r := range records {
		if p == nil || p.Eval(r) {
			out = append(out, r)
		}
	}
	return out
}
