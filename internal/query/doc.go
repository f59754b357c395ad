// Package query provides the predicate algebra used by templates to filter
// the record set.
//
// ARCHITECTURE:
//
// Predicates are explicit expression trees, built either through the
// symbolic Root handle or parsed from a textual filter expression:
//
//	[template: (.Host.Field "vlan").Eq 10] ─┐
//	[template: where "vlan == 10"]  ────────┼→ [Predicate tree] → Eval(record)
//	[Go: query.Eq("vlan", ir.Int(10))] ─────┘                   → SQL (internal/querysql)
//
// Node types are Equals, NotEquals, Test, And, Or and Not. The Predicate
// interface is sealed with a marker method so backends can switch over the
// node types exhaustively.
//
// EVALUATION RULES:
//
//   - A record lacking the referenced field never matches Equals or NotEquals.
//   - Equality is type-strict: Int(10) does not equal String("10").
//   - Test functions that return an error or panic count as false for that
//     record; the query itself never fails.
//   - And evaluates its right side only if the left side is true, Or only if
//     the left side is false, so expensive Test nodes can be placed last.
//   - Filter visits records in store order and returns matches in that order.
package query
