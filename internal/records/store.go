// Package records holds the record store queried by templates.
//
// A Store is loaded once per run and is read-only afterwards. Search
// returns matching records in insertion order, so rendering the same
// input twice yields byte-identical output.
package records

import (
	"fmt"

	"github.com/roach88/gandalf/internal/ir"
	"github.com/roach88/gandalf/internal/query"
)

// Store is the read-only query surface over a record set.
//
// Implementations: MemoryStore (this package) and store.SQLite.
type Store interface {
	// All returns every record in insertion order.
	All() ([]ir.Record, error)

	// Search returns the records matching p, in insertion order.
	// A nil predicate matches every record. Records that make a Test
	// predicate fail are excluded rather than failing the search.
	Search(p query.Predicate) ([]ir.Record, error)

	// Len returns the number of records.
	Len() int
}

// MemoryStore is a slice-backed Store.
type MemoryStore struct {
	records []ir.Record
}

// New builds a MemoryStore holding a copy of records.
func New(records []ir.Record) *MemoryStore {
	cp := make([]ir.Record, len(records))
	copy(cp, records)
	return &MemoryStore{records: cp}
}

// All returns a fresh slice of every record.
func (s *MemoryStore) All() ([]ir.Record, error) {
	out := make([]ir.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Search filters the store with p.
func (s *MemoryStore) Search(p query.Predicate) ([]ir.Record, error) {
	return query.Filter(s.records, p), nil
}

// Len returns the number of records.
func (s *MemoryStore) Len() int {
	return len(s.records)
}

// Where parses expr and searches store with the resulting predicate.
func Where(store Store, expr string) ([]ir.Record, error) {
	p, err := query.Parse(expr)
	if err != nil {
		return nil, err
	}
	out, err := store.Search(p)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", expr, err)
	}
	return out, nil
}
