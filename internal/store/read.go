package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/gandalf/internal/ir"
	"github.com/roach88/gandalf/internal/query"
	"github.com/roach88/gandalf/internal/querysql"
)

// All returns every record in insertion order.
func (s *Store) All() ([]ir.Record, error) {
	return s.AllContext(context.Background())
}

// Search returns the records matching p in insertion order.
func (s *Store) Search(p query.Predicate) ([]ir.Record, error) {
	return s.SearchContext(context.Background(), p)
}

// AllContext is All with a caller-supplied context.
func (s *Store) AllContext(ctx context.Context) ([]ir.Record, error) {
	return s.SearchContext(ctx, nil)
}

// SearchContext is Search with a caller-supplied context.
//
// Pure predicates run as SQL. Predicates with Test nodes are evaluated
// in-process over the full snapshot, with the same result order.
func (s *Store) SearchContext(ctx context.Context, p query.Predicate) ([]ir.Record, error) {
	check := query.Validate(p)
	if !check.Valid {
		s.logger.Warn("malformed predicate, affected nodes match nothing", "predicate", p.String(), "problems", check.Problems)
	}
	if !check.Compilable {
		s.logger.Debug("predicate evaluated in-process", "predicate", p.String())
		all, err := s.AllContext(ctx)
		if err != nil {
			return nil, err
		}
		return query.Filter(all, p), nil
	}

	sqlText, params, err := querysql.Compile(p)
	if err != nil {
		return nil, fmt.Errorf("compile predicate: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Digest returns the content digest stored for the record at seq (1-based).
func (s *Store) Digest(ctx context.Context, seq int64) (string, error) {
	var digest string
	err := s.db.QueryRowContext(ctx, "SELECT digest FROM records WHERE seq = ?", seq).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("record %d not found", seq)
	}
	if err != nil {
		return "", fmt.Errorf("query digest: %w", err)
	}
	return digest, nil
}

func scanRecords(rows *sql.Rows) ([]ir.Record, error) {
	out := []ir.Record{}
	for rows.Next() {
		var (
			seq  int64
			body string
		)
		if err := rows.Scan(&seq, &body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec ir.Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", seq, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
