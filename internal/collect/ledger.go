package collect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS fetches (
	url        TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	status     INTEGER NOT NULL,
	fetched_at TEXT NOT NULL
)`

// Ledger remembers fetched URLs so an interrupted collection resumes where it
// stopped.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens or creates the ledger database at path. ":memory:" opens
// a private in-memory ledger.
func OpenLedger(ctx context.Context, path string) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores the outcome of fetching url into path.
func (l *Ledger) Record(ctx context.Context, url, path string, status int) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO fetches (url, path, status, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			path = excluded.path,
			status = excluded.status,
			fetched_at = excluded.fetched_at`,
		url, path, status, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", url, err)
	}
	return nil
}

// Done reports whether url was fetched successfully and the stored path.
func (l *Ledger) Done(ctx context.Context, url string) (string, bool, error) {
	var path string
	err := l.db.QueryRowContext(ctx,
		`SELECT path FROM fetches WHERE url = ? AND status = 200`, url,
	).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", url, err)
	}
	return path, true, nil
}

// Counts returns the number of recorded URLs by status.
func (l *Ledger) Counts(ctx context.Context) (map[int]int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM fetches GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count fetches: %w", err)
	}
	defer rows.Close()

	out := map[int]int{}
	for rows.Next() {
		var status, n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
