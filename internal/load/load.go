// Package load replaces canonical tables in Postgres. Every table lands in one
// shared records table keyed by kind; each row keeps its identity columns
// next to the full record as jsonb.
package load

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/bbref-data/internal/config"
	"github.com/albapepper/bbref-data/internal/frame"
)

// Execer runs a statement outside a transaction.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Beginner opens a transaction. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Columns are the copied columns of the records table, in order.
var Columns = []string{"kind", "load_id", "row_num", "season", "year", "league", "team", "record"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + config.RecordsTable + ` (
		kind      text        NOT NULL,
		load_id   uuid        NOT NULL,
		row_num   integer     NOT NULL,
		season    text,
		year      integer,
		league    text,
		team      text,
		record    jsonb       NOT NULL,
		loaded_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (kind, row_num)
	)`,
	`CREATE INDEX IF NOT EXISTS ` + config.RecordsTable + `_season_idx ON ` + config.RecordsTable + ` (kind, season)`,
	`CREATE INDEX IF NOT EXISTS ` + config.RecordsTable + `_team_idx ON ` + config.RecordsTable + ` (kind, upper(team))`,
}

// Result describes one completed load.
type Result struct {
	LoadID uuid.UUID
	Kind   string
	Rows   int64
}

// EnsureSchema creates the records table and its indexes.
func EnsureSchema(ctx context.Context, db Execer) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Table replaces every row of kind with the rows of f in one transaction.
func Table(ctx context.Context, db Beginner, kind string, f *frame.Frame) (Result, error) {
	res := Result{LoadID: uuid.New(), Kind: kind}
	rows, err := Rows(kind, res.LoadID, f)
	if err != nil {
		return res, err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin load %s: %w", kind, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM `+config.RecordsTable+` WHERE kind = $1`, kind); err != nil {
		return res, fmt.Errorf("clear %s: %w", kind, err)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{config.RecordsTable}, Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return res, fmt.Errorf("copy %s: %w", kind, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit %s: %w", kind, err)
	}
	res.Rows = n
	return res, nil
}

// Rows converts a frame into copy rows matching Columns.
func Rows(kind string, loadID uuid.UUID, f *frame.Frame) ([][]any, error) {
	records := f.Records()
	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode %s row %d: %w", kind, i, err)
		}
		rows = append(rows, []any{
			kind, loadID, i,
			text(rec["season"]), year(rec["year"]), text(rec["league"]), text(rec["team"]),
			data,
		})
	}
	return rows, nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// text returns nil for absent or empty values (maps to SQL NULL).
func text(v any) any {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return s
}

func year(v any) any {
	switch n := v.(type) {
	case int64:
		return int32(n)
	case int:
		return int32(n)
	}
	return nil
}
