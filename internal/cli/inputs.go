package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/gandalf/internal/config"
	"github.com/roach88/gandalf/internal/inventory"
	"github.com/roach88/gandalf/internal/ir"
	"github.com/roach88/gandalf/internal/records"
	"github.com/roach88/gandalf/internal/store"
)

// loadInventory reads and validates the CSV inventory, classifying failures
// by exit code.
func loadInventory(csvPath, schemaPath string, logger *slog.Logger) ([]ir.Record, error) {
	schema, err := inventory.LoadSchema(schemaPath)
	if err != nil {
		return nil, WrapExitError(ExitUsage, ErrCodeSchema, "invalid record schema", err)
	}

	recs, err := inventory.Load(csvPath, schema)
	if err != nil {
		var formatErr *inventory.FormatError
		var integrityErr *inventory.IntegrityError
		switch {
		case errors.As(err, &integrityErr):
			e := WrapExitError(ExitIntegrity, ErrCodeIntegrity, "inventory failed validation", err)
			e.Details = map[string]any{"row": integrityErr.Row, "field": integrityErr.Field}
			return nil, e
		case errors.As(err, &formatErr):
			e := WrapExitError(ExitCSVUnparsable, ErrCodeCSVUnparsable, "could not parse inventory", err)
			e.Details = map[string]any{"row": formatErr.Row}
			return nil, e
		default:
			return nil, WrapExitError(ExitCSVUnreadable, ErrCodeCSVUnreadable, "could not read inventory", err)
		}
	}

	logger.Debug("inventory loaded", "path", csvPath, "records", len(recs))
	return recs, nil
}

// loadVars reads the variables file, if any, over the project file's inline
// variables.
func loadVars(path string, inline map[string]any) (map[string]any, error) {
	if path == "" {
		return config.MergeVars(inline, nil), nil
	}
	vars, err := config.LoadVars(path)
	if err != nil {
		var readErr *config.ReadError
		if errors.As(err, &readErr) {
			return nil, WrapExitError(ExitVarsUnreadable, ErrCodeVarsUnreadable, "could not read variables", err)
		}
		return nil, WrapExitError(ExitVarsSyntax, ErrCodeVarsSyntax, "invalid variables file", err)
	}
	return config.MergeVars(inline, vars), nil
}

// openStore returns the record store templates query. With dbPath set the
// records are snapshotted into SQLite and served from there; the returned
// closer must be called when rendering is done.
func openStore(ctx context.Context, dbPath string, recs []ir.Record, logger *slog.Logger) (records.Store, func(), error) {
	if dbPath == "" {
		return records.New(recs), func() {}, nil
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitUsage, ErrCodeStore, "could not open record database", err)
	}
	db = db.WithLogger(logger)
	closer := func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}
	if err := db.Load(ctx, recs); err != nil {
		closer()
		return nil, nil, WrapExitError(ExitUsage, ErrCodeStore, "could not load records into database", err)
	}
	logger.Debug("records loaded into database", "path", dbPath, "records", db.Len())
	return db, closer, nil
}
