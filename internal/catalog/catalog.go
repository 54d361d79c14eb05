// Package catalog persists run metadata and coverage reports in an embedded
// SQLite file. The catalog is optional; a nil *Catalog is a no-op.
package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tenderworks/tendertag/constants"
	"github.com/tenderworks/tendertag/internal/common"
	"github.com/tenderworks/tendertag/internal/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	rules_path  TEXT NOT NULL,
	output_path TEXT NOT NULL,
	documents   INTEGER NOT NULL,
	amendments  INTEGER NOT NULL,
	records     INTEGER,
	status      TEXT NOT NULL,
	error       TEXT
);
CREATE TABLE IF NOT EXISTS coverage (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	section   TEXT NOT NULL,
	parameter TEXT NOT NULL
);
`

// Catalog wraps the SQLite handle.
type Catalog struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the catalog file and applies the schema.
func Open(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open catalog")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "apply catalog schema")
	}
	logger.Info("catalog.open.ok", "path", path)
	return &Catalog{db: db, logger: logger}, nil
}

func (c *Catalog) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// StartRun inserts the run row in RUNNING state.
func (c *Catalog) StartRun(ctx context.Context, id uuid.UUID, rulesPath, outputPath string, documents, amendments int) error {
	if c == nil {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, rules_path, output_path, documents, amendments, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), time.Now().UTC().Format(time.RFC3339),
		rulesPath, outputPath, documents, amendments, string(constants.RunStatusRunning))
	return common.WrapError(err, "start run")
}

// FinishSuccess marks the run OK with its record count.
func (c *Catalog) FinishSuccess(ctx context.Context, id uuid.UUID, records int) error {
	if c == nil {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, records = ?, status = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), records, string(constants.RunStatusOK), id.String())
	return common.WrapError(err, "finish run")
}

// FinishFailure marks the run FAILED with the error message.
func (c *Catalog) FinishFailure(ctx context.Context, id uuid.UUID, errMsg string) error {
	if c == nil {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), string(constants.RunStatusFailed), errMsg, id.String())
	return common.WrapError(err, "fail run")
}

// RecordCoverage stores the unfilled parameter keys for the run.
func (c *Catalog) RecordCoverage(ctx context.Context, id uuid.UUID, missing []entity.Key) error {
	if c == nil || len(missing) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin coverage tx")
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO coverage (run_id, section, parameter) VALUES (?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return common.WrapError(err, "prepare coverage insert")
	}
	defer func() { _ = stmt.Close() }()
	for _, k := range missing {
		if _, err := stmt.ExecContext(ctx, id.String(), k.Section, k.Parameter); err != nil {
			_ = tx.Rollback()
			return common.WrapError(err, "insert coverage row")
		}
	}
	return common.WrapError(tx.Commit(), "commit coverage")
}

// RunStatus reads back the status and record count for a run.
func (c *Catalog) RunStatus(ctx context.Context, id uuid.UUID) (string, int, error) {
	if c == nil {
		return "", 0, common.ErrNotFound
	}
	var status string
	var records sql.NullInt64
	err := c.db.QueryRowContext(ctx,
		`SELECT status, records FROM runs WHERE id = ?`, id.String()).Scan(&status, &records)
	if err != nil {
		return "", 0, common.WrapError(err, "query run")
	}
	return status, int(records.Int64), nil
}
