package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/gandalf/internal/ir"
	"github.com/roach88/gandalf/internal/querysql"
)

// Load replaces the snapshot with records, preserving their order.
// The whole replacement happens in one transaction.
func (s *Store) Load(ctx context.Context, records []ir.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM fields"); err != nil {
		return fmt.Errorf("clear fields: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}

	insertRecord, err := tx.PrepareContext(ctx, "INSERT INTO records (seq, digest, body) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer insertRecord.Close()

	insertField, err := tx.PrepareContext(ctx, "INSERT INTO fields (record_seq, name, kind, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare field insert: %w", err)
	}
	defer insertField.Close()

	for i, rec := range records {
		seq := int64(i + 1)

		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", seq, err)
		}
		digest, err := ir.RecordDigest(rec)
		if err != nil {
			return fmt.Errorf("digest record %d: %w", seq, err)
		}
		if _, err := insertRecord.ExecContext(ctx, seq, digest, string(body)); err != nil {
			return fmt.Errorf("insert record %d: %w", seq, err)
		}

		for _, f := range rec.Fields() {
			param, err := querysql.ValueToParam(f.Value)
			if err != nil {
				return fmt.Errorf("record %d field %q: %w", seq, f.Name, err)
			}
			if _, err := insertField.ExecContext(ctx, seq, f.Name, f.Value.Kind(), param); err != nil {
				return fmt.Errorf("insert record %d field %q: %w", seq, f.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.count = len(records)
	return nil
}
