package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/albapepper/bbref-data/internal/frame"
)

// ErrNoColumns is returned for a frame without columns, which parquet cannot
// represent.
var ErrNoColumns = errors.New("frame has no columns")

// Physical column kinds inferred from frame cells.
type kind int

const (
	kindString kind = iota
	kindInt
	kindFloat
	kindBool
	kindDate
)

// WriteParquet writes f to path as a snappy-compressed parquet file. Every
// column is optional; its type is inferred from the non-null cells: integer,
// floating point (integers mixed with floats widen), boolean, date or text.
// Columns keep the frame's order.
func WriteParquet(path string, f *frame.Frame) error {
	if f == nil || len(f.Columns) == 0 {
		return ErrNoColumns
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	kinds := make(map[string]kind, len(f.Columns))
	for _, c := range f.Columns {
		kinds[c] = inferKind(f.Column(c))
	}
	schema, err := orderedSchema(f.Columns, kinds)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	w := parquet.NewWriter(out, schema, parquet.Compression(&parquet.Snappy))

	fields := schema.Fields()
	rows := make([]parquet.Row, 0, f.Len())
	for i := range f.Rows {
		row := make(parquet.Row, len(fields))
		for col, field := range fields {
			name := field.Name()
			v, err := value(kinds[name], f.Value(i, name))
			if err != nil {
				return fmt.Errorf("%s row %d column %s: %w", filepath.Base(path), i, name, err)
			}
			row[col] = v.Level(0, definition(v), col)
		}
		rows = append(rows, row)
	}
	if _, err := w.WriteRows(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return out.Close()
}

func definition(v parquet.Value) int {
	if v.IsNull() {
		return 0
	}
	return 1
}

// orderedSchema builds the schema from a struct type with one optional field
// per column. parquet.Group sorts its fields by name; struct fields keep
// their declared order.
func orderedSchema(columns []string, kinds map[string]kind) (*parquet.Schema, error) {
	fields := make([]reflect.StructField, len(columns))
	for i, c := range columns {
		if strings.ContainsAny(c, `,"`) {
			return nil, fmt.Errorf("column %q cannot be a parquet field name", c)
		}
		tag := c
		if kinds[c] == kindDate {
			tag += ",date"
		}
		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("F%d", i),
			Type: reflect.PointerTo(goType(kinds[c])),
			Tag:  reflect.StructTag(fmt.Sprintf(`parquet:%q`, tag)),
		}
	}
	model := reflect.New(reflect.StructOf(fields)).Elem().Interface()
	return parquet.NewSchema("record", parquet.SchemaOf(model)), nil
}

func goType(k kind) reflect.Type {
	switch k {
	case kindInt:
		return reflect.TypeFor[int64]()
	case kindFloat:
		return reflect.TypeFor[float64]()
	case kindBool:
		return reflect.TypeFor[bool]()
	case kindDate:
		return reflect.TypeFor[int32]()
	}
	return reflect.TypeFor[string]()
}

func inferKind(values []any) kind {
	seen := map[kind]bool{}
	for _, v := range values {
		switch v.(type) {
		case nil:
		case int64, int:
			seen[kindInt] = true
		case float64:
			seen[kindFloat] = true
		case bool:
			seen[kindBool] = true
		case time.Time:
			seen[kindDate] = true
		default:
			seen[kindString] = true
		}
	}
	switch {
	case len(seen) == 1:
		for k := range seen {
			return k
		}
	case len(seen) == 2 && seen[kindInt] && seen[kindFloat]:
		return kindFloat
	}
	return kindString
}

func value(k kind, v any) (parquet.Value, error) {
	if v == nil {
		return parquet.NullValue(), nil
	}
	switch k {
	case kindInt:
		switch x := v.(type) {
		case int64:
			return parquet.Int64Value(x), nil
		case int:
			return parquet.Int64Value(int64(x)), nil
		}
	case kindFloat:
		switch x := v.(type) {
		case float64:
			return parquet.DoubleValue(x), nil
		case int64:
			return parquet.DoubleValue(float64(x)), nil
		case int:
			return parquet.DoubleValue(float64(x)), nil
		}
	case kindBool:
		if x, ok := v.(bool); ok {
			return parquet.BooleanValue(x), nil
		}
	case kindDate:
		if x, ok := v.(time.Time); ok {
			return parquet.Int32Value(epochDays(x)), nil
		}
	case kindString:
		return parquet.ByteArrayValue([]byte(text(v))), nil
	}
	return parquet.Value{}, fmt.Errorf("unexpected %T", v)
}

func epochDays(t time.Time) int32 {
	y, m, d := t.Date()
	days := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	return int32(days)
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.DateOnly)
	}
	return fmt.Sprint(v)
}
