package load

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bbref-data/internal/frame"
)

func rosterFrame() *frame.Frame {
	f := frame.New("player", "team", "season", "year", "uniform_number")
	f.Append("Kobe Bryant", "LAL", "1997-98", int64(1998), "8")
	f.Append("Shaquille O'Neal", "LAL", "1997-98", int64(1998), nil)
	return f
}

func TestRows(t *testing.T) {
	id := uuid.New()
	rows, err := Rows("teams_stats/rosters", id, rosterFrame())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	require.Len(t, first, len(Columns))
	assert.Equal(t, "teams_stats/rosters", first[0])
	assert.Equal(t, id, first[1])
	assert.Equal(t, 0, first[2])
	assert.Equal(t, "1997-98", first[3])
	assert.Equal(t, int32(1998), first[4])
	assert.Nil(t, first[5])
	assert.Equal(t, "LAL", first[6])

	var rec map[string]any
	require.NoError(t, json.Unmarshal(rows[1][7].([]byte), &rec))
	assert.Equal(t, "Shaquille O'Neal", rec["player"])
	assert.Nil(t, rec["uniform_number"])
	assert.Equal(t, float64(1998), rec["year"])
}

func TestRowsRejectsUnencodableValue(t *testing.T) {
	f := frame.New("ws_per_48")
	f.Append(math.NaN())
	_, err := Rows("x", uuid.New(), f)
	assert.ErrorContains(t, err, "encode x row 0")
}

// fakeTx implements the parts of pgx.Tx a load uses.
type fakeTx struct {
	pgx.Tx
	execs     []string
	copied    [][]any
	copyErr   error
	committed bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, _ pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	if t.copyErr != nil {
		return 0, t.copyErr
	}
	for src.Next() {
		v, err := src.Values()
		if err != nil {
			return 0, err
		}
		t.copied = append(t.copied, v)
	}
	return int64(len(t.copied)), nil
}

func (t *fakeTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct{ tx *fakeTx }

func (d fakeDB) Begin(context.Context) (pgx.Tx, error) { return d.tx, nil }

func (d fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return d.tx.Exec(ctx, sql, args...)
}

func TestTable(t *testing.T) {
	tx := &fakeTx{}
	res, err := Table(context.Background(), fakeDB{tx}, "teams_stats/rosters", rosterFrame())
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Rows)
	assert.NotEqual(t, uuid.Nil, res.LoadID)
	require.Len(t, tx.execs, 1)
	assert.Contains(t, tx.execs[0], "DELETE FROM extracted_records")
	assert.Len(t, tx.copied, 2)
	assert.True(t, tx.committed)
}

func TestTableCopyFailure(t *testing.T) {
	tx := &fakeTx{copyErr: errors.New("connection reset")}
	_, err := Table(context.Background(), fakeDB{tx}, "seasons/seasons", rosterFrame())
	assert.ErrorContains(t, err, "copy seasons/seasons: connection reset")
	assert.False(t, tx.committed)
}

func TestEnsureSchema(t *testing.T) {
	tx := &fakeTx{}
	require.NoError(t, EnsureSchema(context.Background(), fakeDB{tx}))
	require.Len(t, tx.execs, 3)
	assert.Contains(t, tx.execs[0], "CREATE TABLE IF NOT EXISTS extracted_records")
	assert.Contains(t, tx.execs[2], "(kind, upper(team))")
}
