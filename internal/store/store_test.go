package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/bbref-data/internal/frame"
)

func TestLayout(t *testing.T) {
	l := Layout{RawDir: "data/raw", ProcessedDir: "data/processed"}
	assert.Equal(t, filepath.Join("data", "raw", "teams", "lal-1998.html"), l.Raw("teams", "lal-1998.html"))
	assert.Equal(t, filepath.Join("data", "processed", "conferences"), l.Processed("conferences"))
}

func TestLayoutEnsure(t *testing.T) {
	dir := t.TempDir()
	l := Layout{RawDir: filepath.Join(dir, "raw"), ProcessedDir: filepath.Join(dir, "processed")}
	require.NoError(t, l.Ensure("players"))
	assert.DirExists(t, l.Raw("players"))
	assert.DirExists(t, l.Processed("players"))
}

func TestWriteParquet(t *testing.T) {
	f := frame.New("team", "wins", "srs", "is_playoff_team", "nba_debut", "college")
	f.Append("Boston Celtics", int64(64), 10.75, true, time.Date(1956, time.December, 22, 0, 0, 0, 0, time.UTC), nil)
	f.Append("Toronto Raptors", int64(25), -7.2, false, nil, nil)
	f.Append("Chicago Bulls", nil, int64(1), false, nil, nil)

	path := filepath.Join(t.TempDir(), "conferences", "conferences.parquet")
	require.NoError(t, WriteParquet(path, f))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	info, err := file.Stat()
	require.NoError(t, err)

	pf, err := parquet.OpenFile(file, info.Size())
	require.NoError(t, err)
	assert.Equal(t, int64(3), pf.NumRows())

	var names []string
	for _, field := range pf.Schema().Fields() {
		names = append(names, field.Name())
		assert.True(t, field.Optional(), field.Name())
	}
	assert.Equal(t, f.Columns, names)

	rr := pf.RowGroups()[0].Rows()
	defer rr.Close()
	rows := make([]parquet.Row, 3)
	n, err := rr.ReadRows(rows)
	require.Equal(t, 3, n)
	if err != nil {
		require.ErrorIs(t, err, io.EOF)
	}
	assert.Equal(t, "Boston Celtics", rows[0][0].String())
	assert.Equal(t, int64(64), rows[0][1].Int64())
	assert.True(t, rows[2][1].IsNull())
	assert.InDelta(t, 1.0, rows[2][2].Double(), 1e-9)
}

func TestWriteParquetRejectsUnencodableName(t *testing.T) {
	f := frame.New("a,b")
	f.Append("x")
	err := WriteParquet(filepath.Join(t.TempDir(), "x.parquet"), f)
	assert.ErrorContains(t, err, "cannot be a parquet field name")
}

func TestWriteParquetNoColumns(t *testing.T) {
	err := WriteParquet(filepath.Join(t.TempDir(), "x.parquet"), frame.New())
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   kind
	}{
		{"ints", []any{int64(1), nil, int64(2)}, kindInt},
		{"widened", []any{int64(1), 2.5}, kindFloat},
		{"bools", []any{true, false}, kindBool},
		{"dates", []any{time.Now()}, kindDate},
		{"text", []any{"8", "34"}, kindString},
		{"all null", []any{nil, nil}, kindString},
		{"mixed", []any{"a", int64(1)}, kindString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferKind(tt.values))
		})
	}
}

func TestEpochDays(t *testing.T) {
	assert.Equal(t, int32(0), epochDays(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int32(-1), epochDays(time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, int32(12354), epochDays(time.Date(2003, 10, 29, 0, 0, 0, 0, time.UTC)))
}
