package memory

import (
	"cmp"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
)

// equalValues reports whether a stored value equals a filter value.
// Numbers compare numerically regardless of their Go type, dates by instant,
// and values of different kinds are never equal.
func equalValues(v1, v2 any) bool {
	if v1 == nil || v2 == nil {
		return v1 == nil && v2 == nil
	}

	if f1, ok := toFloat64(v1); ok {
		f2, ok := toFloat64(v2)
		return ok && f1 == f2
	}

	if isTime(v1) || isTime(v2) {
		t1, ok1 := toTime(v1)
		t2, ok2 := toTime(v2)
		return ok1 && ok2 && t1.Equal(t2)
	}

	switch a := v1.(type) {
	case string:
		b, ok := v2.(string)
		return ok && a == b
	case bool:
		b, ok := v2.(bool)
		return ok && a == b
	}

	return reflect.DeepEqual(v1, v2)
}

// compareValues orders two values: numbers numerically, strings lexicographically,
// dates chronologically and false before true. Any other pairing is a type mismatch.
func compareValues(v1, v2 any) (int, error) {
	if f1, ok := toFloat64(v1); ok {
		if f2, ok := toFloat64(v2); ok {
			return cmp.Compare(f1, f2), nil
		}
	}

	if isTime(v1) || isTime(v2) {
		t1, ok1 := toTime(v1)
		t2, ok2 := toTime(v2)
		if ok1 && ok2 {
			return t1.Compare(t2), nil
		}
	}

	switch a := v1.(type) {
	case string:
		if b, ok := v2.(string); ok {
			return strings.Compare(a, b), nil
		}
	case bool:
		if b, ok := v2.(bool); ok {
			switch {
			case a == b:
				return 0, nil
			case b:
				return -1, nil
			default:
				return 1, nil
			}
		}
	}

	return 0, errors.Wrapf(seal.ErrTypeMismatch, "cannot compare %T with %T", v1, v2)
}

// compareSortValues is compareValues with absent values ordered first.
func compareSortValues(v1, v2 any) (int, error) {
	switch {
	case v1 == nil && v2 == nil:
		return 0, nil
	case v1 == nil:
		return -1, nil
	case v2 == nil:
		return 1, nil
	}
	return compareValues(v1, v2)
}

// orderable reports whether a filter value has a natural ordering.
func orderable(v any) bool {
	if _, ok := toFloat64(v); ok {
		return true
	}
	switch v.(type) {
	case string, bool, time.Time:
		return true
	}
	return false
}

func isTime(v any) bool {
	_, ok := v.(time.Time)
	return ok
}

// toTime accepts time.Time values and RFC 3339 strings.
func toTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		t, err := time.Parse(time.RFC3339Nano, val)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// toFloat64 attempts to convert a value to float64.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}
