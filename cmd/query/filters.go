package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
)

// operators in match order; two character operators come first.
var operators = []struct {
	token string
	build func(field string, value any) seal.Condition
}{
	{"!=", seal.NotEqual},
	{">=", seal.GreaterThanEqual},
	{"<=", seal.LessThanEqual},
	{"=", seal.Equal},
	{">", seal.GreaterThan},
	{"<", seal.LessThan},
}

// parseFilter parses field=value, field!=value, field>value, field>=value,
// field<value and field<=value.
func parseFilter(raw string) (seal.Condition, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("filter cannot be empty")
	}

	for _, op := range operators {
		field, value, ok := strings.Cut(raw, op.token)
		if !ok {
			continue
		}

		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)
		if field == "" || value == "" {
			return nil, errors.Newf("filter field and value must be non-empty: %q", raw)
		}
		return op.build(field, parseValue(value)), nil
	}

	return nil, errors.Newf("filter must be in field<op>value format: %q", raw)
}

// parseValue reads numbers, booleans and RFC 3339 dates. Quoted values and anything
// else are strings.
func parseValue(raw string) any {
	if unquoted, err := strconv.Unquote(raw); err == nil {
		return unquoted
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	return raw
}

// parseSort parses field, field:asc or field:desc.
func parseSort(raw string) (seal.SearchOption, error) {
	field, dir, _ := strings.Cut(strings.TrimSpace(raw), ":")
	if field == "" {
		return nil, errors.Newf("sort field cannot be empty: %q", raw)
	}

	switch strings.ToLower(dir) {
	case "", "asc":
		return seal.WithSort(field, seal.Asc), nil
	case "desc":
		return seal.WithSort(field, seal.Desc), nil
	default:
		return nil, errors.Newf("sort direction must be asc or desc: %q", raw)
	}
}
