package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

// Violation describes one schema violation at a document location.
type Violation struct {
	// Path is a JSON Pointer to the offending value ("" is the root).
	Path string
	// Expected describes the violated constraint.
	Expected string
	// Actual is the offending value, or "<absent>" for missing fields.
	Actual string
}

// ValidationError carries every violation found in one validation pass, so a
// broken document can be fixed in a single edit.
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "document does not satisfy schema %q (%d violation(s))", e.Schema, len(e.Violations))
	for _, v := range e.Violations {
		path := v.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(&sb, "\n  %s: %s (got %s)", path, v.Expected, v.Actual)
	}
	return sb.String()
}

// Validate checks doc against the named registered schema. It returns nil on
// success, ErrSchemaNotFound for an unknown name, and a *ValidationError
// listing all violations otherwise.
func (r *Registry) Validate(doc any, schemaName string) error {
	compiled, ok := r.compiled[schemaName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrSchemaNotFound, schemaName)
	}

	result := compiled.Validate(doc)
	if result.Valid {
		return nil
	}

	verr := &ValidationError{Schema: schemaName}
	collectViolations(result, doc, verr)
	sort.SliceStable(verr.Violations, func(i, j int) bool {
		if verr.Violations[i].Path != verr.Violations[j].Path {
			return verr.Violations[i].Path < verr.Violations[j].Path
		}
		return verr.Violations[i].Expected < verr.Violations[j].Expected
	})
	if len(verr.Violations) == 0 {
		// The evaluator rejected the document without a leaf assertion we
		// recognize; still report the failure rather than masking it.
		verr.Violations = append(verr.Violations, Violation{
			Path:     "",
			Expected: "document must satisfy schema",
			Actual:   describeValue(doc),
		})
	}
	return verr
}

// applicator keywords aggregate child failures; counting them alongside the
// leaf assertions would double-report every nested violation.
var applicatorKeywords = map[string]struct{}{
	"properties":            {},
	"patternProperties":     {},
	"items":                 {},
	"prefixItems":           {},
	"allOf":                 {},
	"anyOf":                 {},
	"oneOf":                 {},
	"not":                   {},
	"$ref":                  {},
	"if":                    {},
	"then":                  {},
	"else":                  {},
	"dependentSchemas":      {},
	"unevaluatedItems":      {},
	"unevaluatedProperties": {},
	"contains":              {},
}

func collectViolations(result *jsonschema.EvaluationResult, root any, verr *ValidationError) {
	if result == nil || result.Valid {
		return
	}
	seen := make(map[string]struct{})
	walkResult(result, root, verr, seen)
}

func walkResult(node *jsonschema.EvaluationResult, root any, verr *ValidationError, seen map[string]struct{}) {
	if node == nil || node.Valid {
		return
	}
	for keyword, evalErr := range node.Errors {
		if _, aggregate := applicatorKeywords[keyword]; aggregate {
			continue
		}
		path := pointerString(node.InstanceLocation)
		key := path + "\x00" + keyword
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		verr.Violations = append(verr.Violations, Violation{
			Path:     path,
			Expected: evalErr.Error(),
			Actual:   describeValue(valueAtPointer(root, path)),
		})
	}
	for _, detail := range node.Details {
		walkResult(detail, root, verr, seen)
	}
}

// pointerString normalizes the evaluator's instance location to a JSON
// Pointer with a leading slash (root stays "").
func pointerString(location string) string {
	if location == "" || location == "/" {
		return ""
	}
	if !strings.HasPrefix(location, "/") {
		return "/" + location
	}
	return location
}

// valueAtPointer fetches the value a JSON Pointer refers to inside a decoded
// document tree of maps and slices. Missing segments yield nil.
func valueAtPointer(doc any, pointer string) any {
	if pointer == "" {
		return doc
	}
	current := doc
	for _, segment := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		segment = strings.ReplaceAll(strings.ReplaceAll(segment, "~1", "/"), "~0", "~")
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[segment]
			if !ok {
				return nil
			}
			current = value
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil
			}
			current = node[index]
		default:
			return nil
		}
	}
	return current
}

func describeValue(v any) string {
	if v == nil {
		return "<absent>"
	}
	switch value := v.(type) {
	case string:
		return fmt.Sprintf("%q", value)
	case map[string]any:
		return "<object>"
	case []any:
		return "<array>"
	default:
		return fmt.Sprintf("%v", value)
	}
}
