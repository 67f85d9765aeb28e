package app

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// ParseSets parses repeated --set field=value flags. Later values for the
// same field win.
func ParseSets(pairs []string) (map[string]string, error) {
	sets := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --set %q, expected field=value", pair)
		}
		sets[field] = value
	}
	return sets, nil
}

// ApplySets returns a copy of record with the named JSON fields replaced.
// Field names are the wire names used by the backend. Numeric fields are
// parsed as numbers; the id can never be set.
func ApplySets[T any](record T, sets map[string]string) (T, error) {
	var zero T

	data, err := json.Marshal(record)
	if err != nil {
		return zero, fmt.Errorf("encoding draft: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return zero, fmt.Errorf("decoding draft: %w", err)
	}

	for _, name := range slices.Sorted(maps.Keys(sets)) {
		value := sets[name]
		if name == "id" {
			return zero, fmt.Errorf("the id field is assigned by the server and cannot be set")
		}
		existing, ok := fields[name]
		if !ok {
			return zero, fmt.Errorf("unknown field %q (fields: %s)", name, strings.Join(settable(fields), ", "))
		}
		if _, numeric := existing.(float64); numeric {
			n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return zero, fmt.Errorf("field %q must be a number, got %q", name, value)
			}
			fields[name] = n
			continue
		}
		fields[name] = value
	}

	data, err = json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("encoding draft: %w", err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("invalid field value: %w", err)
	}
	return out, nil
}

// Fields lists the settable wire field names of a record type.
func Fields[T any]() []string {
	var zero T
	data, err := json.Marshal(zero)
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	return settable(fields)
}

func settable(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if name != "id" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
