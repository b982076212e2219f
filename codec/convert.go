package codec

import (
	"reflect"
)

// toInt returns the value as a signed integer if it is a Go integer within
// [min, max].
func toInt(v interface{}, min, max int64) (int64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		return n, n >= min && n <= max
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > uint64(max) {
			return 0, false
		}

		return int64(u), true
	default:
		return 0, false
	}
}

// toUint returns the value as an unsigned integer if it is a Go integer
// within [0, max].
func toUint(v interface{}, max uint64) (uint64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return 0, false
		}

		return uint64(n), uint64(n) <= max
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		return u, u <= max
	default:
		return 0, false
	}
}

// isInteger returns true if the value is a Go integer of any width.
func isInteger(v interface{}) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

// toFloat returns the value as a float if it is a Go float or integer.
func toFloat(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}

// toBool returns the value if it is a Go boolean.
func toBool(v interface{}) (bool, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Bool {
		return false, false
	}

	return rv.Bool(), true
}

// toOctets returns the bytes of a string or a byte slice.
func toOctets(v interface{}) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case string:
		return []byte(b), true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.String:
		return []byte(rv.String()), true
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), true
		}
	}

	return nil, false
}

// toString returns the value if it is a Go string.
func toString(v interface{}) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}

	return rv.String(), true
}

// sequence returns the elements of a slice or an array.
func sequence(v interface{}) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, true
	default:
		return reflect.Value{}, false
	}
}
