package memory

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
)

func TestCompareValues(t *testing.T) {
	day := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		v1       any
		v2       any
		expected int
	}{
		"equal_ints":      {v1: 5, v2: 5, expected: 0},
		"less_ints":       {v1: 3, v2: 5, expected: -1},
		"greater_ints":    {v1: 7, v2: 5, expected: 1},
		"less_floats":     {v1: 3.5, v2: 5.5, expected: -1},
		"int_float_equal": {v1: 5, v2: 5.0, expected: 0},
		"int_float_less":  {v1: 5, v2: 5.1, expected: -1},
		"less_strings":    {v1: "apple", v2: "banana", expected: -1},
		"greater_strings": {v1: "banana", v2: "apple", expected: 1},
		"uint_types":      {v1: uint(10), v2: uint32(10), expected: 0},
		"int8_type":       {v1: int8(10), v2: 10, expected: 0},
		"uint64_type":     {v1: uint64(10), v2: 10, expected: 0},
		"float32_type":    {v1: float32(10.5), v2: 10.5, expected: 0},
		"bools":           {v1: false, v2: true, expected: -1},
		"times":           {v1: day, v2: day.Add(time.Hour), expected: -1},
		"time_string":     {v1: "2024-06-01T12:00:00+02:00", v2: day, expected: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := compareValues(tc.v1, tc.v2)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if result != tc.expected {
				t.Errorf("Expected %d, got %d for comparing %v and %v", tc.expected, result, tc.v1, tc.v2)
			}
		})
	}
}

func TestCompareValuesMismatch(t *testing.T) {
	tests := map[string]struct {
		v1 any
		v2 any
	}{
		"bool_vs_string":  {v1: true, v2: "true"},
		"number_vs_text":  {v1: 5, v2: "5"},
		"time_vs_garbage": {v1: time.Now(), v2: "yesterday"},
		"nil":             {v1: nil, v2: 1},
		"slice":           {v1: []any{1}, v2: 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := compareValues(tc.v1, tc.v2); !errors.Is(err, seal.ErrTypeMismatch) {
				t.Errorf("Expected ErrTypeMismatch, got %v", err)
			}
		})
	}
}

func TestCompareSortValues(t *testing.T) {
	tests := map[string]struct {
		v1       any
		v2       any
		expected int
	}{
		"both_nil":   {v1: nil, v2: nil, expected: 0},
		"first_nil":  {v1: nil, v2: "value", expected: -1},
		"second_nil": {v1: "value", v2: nil, expected: 1},
		"numbers":    {v1: 2, v2: 1.5, expected: 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := compareSortValues(tc.v1, tc.v2)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestEqualValues(t *testing.T) {
	tests := map[string]struct {
		v1       any
		v2       any
		expected bool
	}{
		"equal_ints":         {v1: 5, v2: 5, expected: true},
		"unequal_ints":       {v1: 5, v2: 3, expected: false},
		"int_float_equal":    {v1: 5, v2: 5.0, expected: true},
		"equal_strings":      {v1: "test", v2: "test", expected: true},
		"case_sensitive":     {v1: "test", v2: "Test", expected: false},
		"both_nil":           {v1: nil, v2: nil, expected: true},
		"one_nil":            {v1: nil, v2: "value", expected: false},
		"bool_true":          {v1: true, v2: true, expected: true},
		"bool_different":     {v1: true, v2: false, expected: false},
		"string_vs_number":   {v1: "5", v2: 5, expected: false},
		"bool_vs_string":     {v1: true, v2: "true", expected: false},
		"same_instant":       {v1: "2024-06-01T12:00:00+02:00", v2: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), expected: true},
		"time_vs_non_time":   {v1: time.Now(), v2: 5, expected: false},
		"uncommon_type_same": {v1: []byte("a"), v2: []byte("a"), expected: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result := equalValues(tc.v1, tc.v2)
			if result != tc.expected {
				t.Errorf("Expected %v, got %v for comparing %v and %v", tc.expected, result, tc.v1, tc.v2)
			}
		})
	}
}

func TestToFloat64(t *testing.T) {
	tests := map[string]struct {
		value    any
		expected float64
		ok       bool
	}{
		"float64": {value: float64(10.5), expected: 10.5, ok: true},
		"float32": {value: float32(10.5), expected: 10.5, ok: true},
		"int":     {value: 10, expected: 10.0, ok: true},
		"int16":   {value: int16(10), expected: 10.0, ok: true},
		"int64":   {value: int64(10), expected: 10.0, ok: true},
		"uint8":   {value: uint8(10), expected: 10.0, ok: true},
		"uint64":  {value: uint64(10), expected: 10.0, ok: true},
		"string":  {value: "10.5", ok: false},
		"bool":    {value: true, ok: false},
		"nil":     {value: nil, ok: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result, ok := toFloat64(tc.value)
			if ok != tc.ok {
				t.Errorf("Expected ok=%v, got %v for value %v", tc.ok, ok, tc.value)
			}
			if ok && result != tc.expected {
				t.Errorf("Expected %f, got %f for value %v", tc.expected, result, tc.value)
			}
		})
	}
}
