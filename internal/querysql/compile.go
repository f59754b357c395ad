// Package querysql compiles query predicates to parameterized SQLite SQL
// over the record snapshot tables of internal/store.
package querysql

import (
	"errors"
	"fmt"

	"github.com/roach88/gandalf/internal/ir"
	"github.com/roach88/gandalf/internal/query"
)

// ErrNotCompilable is returned for predicates holding Go test functions,
// which have no SQL form. Callers fall back to in-process evaluation.
var ErrNotCompilable = errors.New("predicate contains a test function")

// SelectRecords is the statement prefix every compiled query starts with.
const SelectRecords = "SELECT seq, body FROM records"

// OrderBySeq is appended to every compiled query. Results come back in
// insertion order.
const OrderBySeq = " ORDER BY seq ASC"

// SQLCompiler compiles predicates to SQL.
//
// CRITICAL: ALL queries end with ORDER BY seq for deterministic results.
// CRITICAL: All values are parameterized, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts p into a full SELECT statement and its parameters.
// A nil predicate selects every record.
func (c *SQLCompiler) Compile(p query.Predicate) (string, []any, error) {
	if p == nil {
		return SelectRecords + OrderBySeq, nil, nil
	}
	where, params, err := c.compilePredicate(p)
	if err != nil {
		return "", nil, err
	}
	return SelectRecords + " WHERE " + where + OrderBySeq, params, nil
}

// Compile is a convenience wrapper around NewSQLCompiler().Compile.
func Compile(p query.Predicate) (string, []any, error) {
	return NewSQLCompiler().Compile(p)
}

// compilePredicate compiles one node to a WHERE fragment.
//
// Field comparisons become correlated EXISTS subqueries over the fields
// table. A record without the field has no row there, so both Equals and
// NotEquals are false for it, matching in-process evaluation.
func (c *SQLCompiler) compilePredicate(p query.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		// nil children evaluate to false in-process
		return "0 = 1", nil, nil
	case query.Equals:
		return c.compareField(pred.Field, pred.Value, false)
	case query.NotEquals:
		return c.compareField(pred.Field, pred.Value, true)
	case query.And:
		return c.compileBinary("AND", pred.Left, pred.Right)
	case query.Or:
		return c.compileBinary("OR", pred.Left, pred.Right)
	case query.Never:
		return "0 = 1", nil, nil
	case query.Not:
		inner, params, err := c.compilePredicate(pred.Inner)
		if err != nil {
			return "", nil, err
		}
		return "NOT (" + inner + ")", params, nil
	case query.Test:
		return "", nil, fmt.Errorf("%w: %s", ErrNotCompilable, pred.String())
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileBinary(op string, left, right query.Predicate) (string, []any, error) {
	l, lp, err := c.compilePredicate(left)
	if err != nil {
		return "", nil, err
	}
	r, rp, err := c.compilePredicate(right)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("(%s %s %s)", l, op, r), append(lp, rp...), nil
}

// compareField compiles a field comparison. The kind column keeps the
// comparison type-strict: Int(1) never equals Bool(true) or String("1").
func (c *SQLCompiler) compareField(field string, v ir.Value, negate bool) (string, []any, error) {
	if v == nil {
		v = ir.Null{}
	}
	param, err := ValueToParam(v)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}

	match := "f.kind = ? AND f.value IS ?"
	if negate {
		match = "NOT (" + match + ")"
	}
	sql := "EXISTS (SELECT 1 FROM fields f WHERE f.record_seq = records.seq AND f.name = ? AND " + match + ")"
	return sql, []any{field, v.Kind(), param}, nil
}

// ValueToParam converts a Value to a Go native SQL parameter.
func ValueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Bool:
		return bool(val), nil
	case ir.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
