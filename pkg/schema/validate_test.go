package schema

import (
	"errors"
	"testing"
)

func endpointRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	err := reg.Register("endpoint", Document{
		"type":     "object",
		"required": []any{"host", "port", "name"},
		"properties": Document{
			"host": Document{"type": "string", "minLength": 1},
			"port": Document{"type": "integer", "minimum": 1, "maximum": 65535},
			"name": Document{"type": "string", "minLength": 1},
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestValidateAccepts(t *testing.T) {
	reg := endpointRegistry(t)
	doc := map[string]any{"host": "db", "port": 5432, "name": "primary"}
	if err := reg.Validate(doc, "endpoint"); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	reg := endpointRegistry(t)
	// Three independent violations on three distinct fields.
	doc := map[string]any{
		"host": "",
		"port": 99999,
		"name": 7,
	}
	err := reg.Validate(doc, "endpoint")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Violations) < 3 {
		t.Fatalf("expected at least 3 violations, got %d: %v", len(verr.Violations), verr)
	}
	paths := make(map[string]bool)
	for _, v := range verr.Violations {
		paths[v.Path] = true
	}
	for _, want := range []string{"/host", "/port", "/name"} {
		if !paths[want] {
			t.Errorf("missing violation at %s; got %v", want, verr)
		}
	}
}

func TestValidateViolationsSortedByPath(t *testing.T) {
	reg := endpointRegistry(t)
	doc := map[string]any{"host": "", "port": 0, "name": ""}
	err := reg.Validate(doc, "endpoint")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for i := 1; i < len(verr.Violations); i++ {
		if verr.Violations[i-1].Path > verr.Violations[i].Path {
			t.Fatalf("violations not sorted: %v", verr.Violations)
		}
	}
}

func TestValidateReportsAbsentField(t *testing.T) {
	reg := endpointRegistry(t)
	doc := map[string]any{"host": "db", "port": 5432}
	err := reg.Validate(doc, "endpoint")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Violations) == 0 {
		t.Fatal("expected a violation for the missing field")
	}
}

func TestValueAtPointer(t *testing.T) {
	doc := map[string]any{
		"a": map[string]any{
			"b":   []any{"x", "y"},
			"c/d": 1,
		},
	}
	cases := []struct {
		pointer string
		want    any
	}{
		{"", doc},
		{"/a/b/1", "y"},
		{"/a/c~1d", 1},
		{"/a/missing", nil},
		{"/a/b/9", nil},
	}
	for _, tc := range cases {
		got := valueAtPointer(doc, tc.pointer)
		switch want := tc.want.(type) {
		case nil:
			if got != nil {
				t.Errorf("valueAtPointer(%q) = %v, want nil", tc.pointer, got)
			}
		case map[string]any:
			if _, ok := got.(map[string]any); !ok {
				t.Errorf("valueAtPointer(%q) = %v, want object", tc.pointer, got)
			}
		default:
			if got != want {
				t.Errorf("valueAtPointer(%q) = %v, want %v", tc.pointer, got, want)
			}
		}
	}
}
