// Package store provides a SQLite-backed record store.
//
// The database holds a snapshot of one run's records: Load replaces the
// previous snapshot inside a single transaction. It is not a history.
//
// # Layout
//
//   - records: seq (insertion order), digest (content hash), body (JSON)
//   - fields: one row per present field with its kind and typed value
//
// Search compiles predicates with internal/querysql. Predicates holding
// Test functions cannot run in SQL and are evaluated in-process over All.
// Both paths return records ordered by seq, identical to records.MemoryStore.
package store
