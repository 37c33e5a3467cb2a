// Package redact masks secret-bearing fields in configuration documents
// before they are logged or printed.
package redact

import (
	"encoding/json"
	"strings"
)

// Mask replaces the value of every redacted field.
const Mask = "******"

// sensitiveFragments flag a key as secret-bearing when any of them appears
// in the key, case-insensitively.
var sensitiveFragments = []string{"password", "secret", "api_key", "token"}

// Sensitive reports whether a key names a secret-bearing field.
func Sensitive(key string) bool {
	k := strings.ToLower(key)
	for _, fragment := range sensitiveFragments {
		if strings.Contains(k, fragment) {
			return true
		}
	}
	return false
}

// Value returns a deep copy of v with every secret-bearing field replaced
// by Mask. The input is never mutated. Maps and slices are walked
// recursively; scalar values pass through unchanged.
func Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if Sensitive(k) {
				out[k] = Mask
				continue
			}
			out[k] = Value(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, inner := range val {
			if Sensitive(k) {
				out[k] = Mask
				continue
			}
			out[k] = inner
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = Value(inner)
		}
		return out
	default:
		return v
	}
}

// JSON renders the redacted form of v as indented JSON.
func JSON(v any) (string, error) {
	data, err := json.MarshalIndent(Value(v), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
