package datatable

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

func filterRecords[T any](data []T, term string, fields []string, get Accessor[T]) []T {
	if term == "" || len(fields) == 0 {
		return slices.Clone(data)
	}
	needle := strings.ToLower(term)
	out := make([]T, 0, len(data))
	for _, item := range data {
		for _, field := range fields {
			v, ok := get(item, field)
			if !ok || isFalsy(v) {
				continue
			}
			if strings.Contains(strings.ToLower(Text(v)), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func sortRecords[T any](data []T, field string, dir SortDirection, get Accessor[T]) []T {
	out := slices.Clone(data)
	if field == "" {
		return out
	}
	slices.SortStableFunc(out, func(a, b T) int {
		av, aok := get(a, field)
		bv, bok := get(b, field)
		aNil := !aok || isNil(av)
		bNil := !bok || isNil(bv)
		switch {
		case aNil && bNil:
			return 0
		case aNil:
			return 1
		case bNil:
			return -1
		}
		c := Compare(av, bv)
		if dir == Descending {
			return -c
		}
		return c
	})
	return out
}

// Text renders a field value the way search and the default cell renderer see it.
// Nil values render as the empty string.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04")
	case *time.Time:
		if x == nil {
			return ""
		}
		return Text(*x)
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		return Text(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// isFalsy reports values that never match a search: nil, false, zero numbers,
// empty strings and zero times.
func isFalsy(v any) bool {
	if isNil(v) {
		return true
	}
	if t, ok := v.(time.Time); ok {
		return t.IsZero()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return isFalsy(rv.Elem().Interface())
	}
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	}
	return false
}

type kind int

const (
	kindBool kind = iota
	kindNumber
	kindTime
	kindString
	kindOther
)

// Compare orders two non-nil field values by their natural ordering. Values of
// different kinds order by kind so that the comparison stays total.
func Compare(a, b any) int {
	a, b = deref(a), deref(b)
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case kindBool:
		ab, bb := reflect.ValueOf(a).Bool(), reflect.ValueOf(b).Bool()
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case kindNumber:
		return compareNumbers(a, b)
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case kindString:
		return strings.Compare(stringOf(a), stringOf(b))
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func kindOf(v any) kind {
	if _, ok := v.(time.Time); ok {
		return kindTime
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool:
		return kindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return kindNumber
	case reflect.String:
		return kindString
	}
	if _, ok := v.(fmt.Stringer); ok {
		return kindString
	}
	return kindOther
}

func stringOf(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return reflect.ValueOf(v).String()
}

func compareNumbers(a, b any) int {
	ai, aInt := asInt(a)
	bi, bInt := asInt(b)
	if aInt && bInt {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(asFloat(a), asFloat(b))
}

func asInt(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func asFloat(v any) float64 {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprint(v), 64)
	return f
}
