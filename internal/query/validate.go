package query

import (
	"fmt"
)

// ValidationResult contains a structural analysis of a predicate tree.
type ValidationResult struct {
	// Valid is false when the tree contains nil children, empty field names or
	// Test nodes without a function. Such nodes evaluate to false rather than
	// panicking, but they are almost certainly template bugs.
	Valid bool

	// Compilable reports whether the tree can be executed by the SQL backend.
	// Test nodes carry Go functions and are never compilable.
	Compilable bool

	// Problems lists the reasons Valid is false.
	Problems []string
}

// Validate walks a predicate tree and reports structural problems.
//
// A nil predicate is valid (it matches everything) and compilable.
// Validate is a pure function with no side effects.
func Validate(p Predicate) ValidationResult {
	v := &validator{compilable: true}
	if p != nil {
		v.validate(p)
	}
	return ValidationResult{
		Valid:      len(v.problems) == 0,
		Compilable: v.compilable,
		Problems:   v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems   []string
	compilable bool
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.addProblem("nil predicate inside combinator")
	case Equals:
		v.checkField(pred.Field)
	case NotEquals:
		v.checkField(pred.Field)
	case Test:
		v.compilable = false
		v.checkField(pred.Field)
		if pred.Fn == nil {
			v.addProblem("test on field %q has no function", pred.Field)
		}
	case And:
		v.validateChild(pred.Left)
		v.validateChild(pred.Right)
	case Or:
		v.validateChild(pred.Left)
		v.validateChild(pred.Right)
	case Not:
		v.validateChild(pred.Inner)
	case Never:
	default:
		v.compilable = false
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateChild(p Predicate) {
	if p == nil {
		v.addProblem("nil predicate inside combinator")
		return
	}
	v.validate(p)
}

func (v *validator) checkField(name string) {
	if name == "" {
		v.addProblem("empty field name")
	}
}

// ContainsTest reports whether the tree has any Test node.
func ContainsTest(p Predicate) bool {
	return p != nil && !Validate(p).Compilable
}
