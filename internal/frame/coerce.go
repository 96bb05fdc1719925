package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// Type names a canonical cell type.
type Type string

const (
	Int    Type = "int"
	Float  Type = "float"
	String Type = "string"
	Bool   Type = "bool"
	Date   Type = "date"
)

// PlaceholderPrefix marks column labels the locator generated for blank
// headers.
const PlaceholderPrefix = "Unnamed:"

// DateLayout is the layout of dates in source documents.
const DateLayout = "January 2, 2006"

// EmDash is the "not applicable" marker of source documents. Some documents
// carry it as UTF-8 bytes read back through Windows-1252.
const EmDash = "\u2014"

// MisdecodedEmDash is EmDash as it appears after the Windows-1252 misreading.
var MisdecodedEmDash = misdecode(EmDash)

func misdecode(s string) string {
	out, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		panic(fmt.Sprintf("frame: decode %q: %v", s, err))
	}
	return out
}

// IsNotApplicable reports whether text is the "not applicable" marker in
// either encoding.
func IsNotApplicable(text string) bool {
	t := strings.TrimSpace(text)
	return t == EmDash || t == MisdecodedEmDash
}

// CoercionError reports a cell that cannot be converted to its column type.
type CoercionError struct {
	Column string
	Value  any
	Type   Type
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("column %q: cannot convert %q to %s", e.Column, fmt.Sprint(e.Value), e.Type)
}

// DropPlaceholders removes columns labelled with prefix whose cells are all
// nil and returns the removed labels.
func (f *Frame) DropPlaceholders(prefix string) []string {
	var dropped []string
	for _, c := range append([]string(nil), f.Columns...) {
		if !strings.HasPrefix(c, prefix) {
			continue
		}
		empty := true
		for _, v := range f.Column(c) {
			if v != nil {
				empty = false
				break
			}
		}
		if empty {
			f.Drop(c)
			dropped = append(dropped, c)
		}
	}
	return dropped
}

// Coerce converts the cells of every column present in types. Columns not in
// types keep their text. The first failure aborts with a *CoercionError.
func (f *Frame) Coerce(types map[string]Type) error {
	for ci, c := range f.Columns {
		typ, ok := types[c]
		if !ok {
			continue
		}
		for _, row := range f.Rows {
			v, err := convert(row[ci], typ)
			if err != nil {
				return &CoercionError{Column: c, Value: row[ci], Type: typ}
			}
			row[ci] = v
		}
	}
	return nil
}

func convert(v any, typ Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case String:
		return toString(v), nil
	case Int:
		return toInt(v)
	case Float:
		return toFloat(v)
	case Bool:
		return toBool(v)
	case Date:
		return toDate(v)
	}
	return nil, fmt.Errorf("unknown type %q", typ)
}

func toString(v any) any {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.DateOnly)
	default:
		return fmt.Sprint(x)
	}
}

// numeric strips presentation characters from a number cell. The boolean
// result is false for empty text, which converts to nil.
func numeric(s string) (string, bool) {
	if IsNotApplicable(s) {
		return "0", true
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	return s, s != ""
}

func toInt(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		return int64(math.Trunc(x)), nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		s, ok := numeric(x)
		if !ok {
			return nil, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		fl, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(fl) || math.IsInf(fl, 0) {
			return nil, fmt.Errorf("parse int %q", x)
		}
		return int64(math.Trunc(fl)), nil
	}
	return nil, fmt.Errorf("unsupported %T", v)
}

func toFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case string:
		s, ok := numeric(x)
		if !ok {
			return nil, nil
		}
		fl, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return fl, nil
	}
	return nil, fmt.Errorf("unsupported %T", v)
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		return strconv.ParseBool(s)
	}
	return nil, fmt.Errorf("unsupported %T", v)
}

func toDate(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		for _, layout := range []string{DateLayout, time.DateOnly} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("parse date %q", s)
	}
	return nil, fmt.Errorf("unsupported %T", v)
}
