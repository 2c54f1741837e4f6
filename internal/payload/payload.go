// Package payload checks generation payloads against the example payload
// stored with a template version.
package payload

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ValidationResult lists every difference found between a payload and its
// reference. Paths use dots for object keys and [i] for list elements.
type ValidationResult struct {
	MissingKeys    []string `json:"missing_keys"`
	ExtraKeys      []string `json:"extra_keys"`
	TypeMismatches []string `json:"type_mismatches"`
}

func (r ValidationResult) Valid() bool {
	return len(r.MissingKeys) == 0 && len(r.ExtraKeys) == 0 && len(r.TypeMismatches) == 0
}

// Validate compares incoming with reference. Keys are visited in sorted
// order, so the result is deterministic. Integers and floats are
// interchangeable; booleans are not numbers. The first element of a
// reference list describes every element of the incoming list.
func Validate(reference, incoming map[string]any) ValidationResult {
	r := ValidationResult{
		MissingKeys:    []string{},
		ExtraKeys:      []string{},
		TypeMismatches: []string{},
	}
	r.compareObjects(reference, incoming, "")
	return r
}

func (r *ValidationResult) compareObjects(reference, incoming map[string]any, parent string) {
	for _, key := range sortedKeys(reference) {
		fullKey := joinKey(parent, key)
		value, ok := incoming[key]
		if !ok {
			r.MissingKeys = append(r.MissingKeys, fullKey)
			continue
		}
		r.compareValues(reference[key], value, fullKey)
	}

	for _, key := range sortedKeys(incoming) {
		if _, ok := reference[key]; !ok {
			r.ExtraKeys = append(r.ExtraKeys, joinKey(parent, key))
		}
	}
}

func (r *ValidationResult) compareValues(reference, incoming any, fullKey string) {
	expected, got := TypeName(reference), TypeName(incoming)
	if expected != got {
		if !(isNumber(expected) && isNumber(got)) {
			r.TypeMismatches = append(r.TypeMismatches,
				fmt.Sprintf("%s (expected %s, got %s)", fullKey, expected, got))
		}
		return
	}

	switch ref := reference.(type) {
	case map[string]any:
		r.compareObjects(ref, incoming.(map[string]any), fullKey)
	case []any:
		if len(ref) == 0 {
			return
		}
		for i, value := range incoming.([]any) {
			r.compareValues(ref[0], value, fmt.Sprintf("%s[%d]", fullKey, i))
		}
	}
}

// TypeName names the JSON type of a decoded value: int, float, str, bool,
// dict, list or NoneType.
func TypeName(v any) string {
	switch value := v.(type) {
	case nil:
		return "NoneType"
	case bool:
		return "bool"
	case string:
		return "str"
	case json.Number:
		if strings.ContainsAny(value.String(), ".eE") {
			return "float"
		}
		return "int"
	case float32, float64:
		return "float"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "int"
	case map[string]any:
		return "dict"
	case []any:
		return "list"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func isNumber(typeName string) bool {
	return typeName == "int" || typeName == "float"
}

func joinKey(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
