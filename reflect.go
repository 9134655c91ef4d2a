package dcpipc

import (
	"fmt"
	"reflect"
)

// intBits returns v, which must be a Go integer that fits in t, as
// the raw bits to encode.
func intBits(t Int, v any) (uint64, error) {
	bits := uint(t.Width * 8)
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if t.Signed {
			if bits < 64 && (i < -(1<<(bits-1)) || i > (1<<(bits-1))-1) {
				return 0, fmt.Errorf("%d overflows %s", i, t)
			}
		} else if i < 0 || (bits < 64 && uint64(i) >= 1<<bits) {
			return 0, fmt.Errorf("%d overflows %s", i, t)
		}
		return uint64(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		limit := bits
		if t.Signed {
			limit--
		}
		if limit < 64 && u >= 1<<limit {
			return 0, fmt.Errorf("%d overflows %s", u, t)
		}
		return u, nil
	}
	return 0, fmt.Errorf("cannot encode %T as %s", v, t)
}

// asInt returns v as an int, if v is any Go integer.
func asInt(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(rv.Uint()), true
	}
	return 0, false
}

// asFloat returns v as a float64, if v is any Go float.
func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// asSlice returns the elements of v, if v is a slice or array of
// anything.
func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, false
	}
	ret := make([]any, rv.Len())
	for i := range ret {
		ret[i] = rv.Index(i).Interface()
	}
	return ret, true
}

// asFields returns v as a set of named values, if v is a map keyed by
// string.
func asFields(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Args:
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	ret := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		ret[iter.Key().String()] = iter.Value().Interface()
	}
	return ret, true
}
