// Package schema provides a named JSON Schema registry with reference-based
// composition and a validator that reports every violation in a document.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonschema"
	"github.com/mohae/deepcopy"
)

// Document is a JSON-Schema-like document. Sub-schemas are referenced by
// registry name through {"$ref": "<name>"} nodes.
type Document = map[string]any

// Registry misuse errors. Both are startup failures, not recoverable by retry.
var (
	ErrDuplicateSchema     = errors.New("duplicate schema")
	ErrUnresolvedReference = errors.New("unresolved schema reference")
	ErrSchemaNotFound      = errors.New("schema not registered")
)

// Registry stores named schema documents and their compiled forms.
//
// Registration is a one-time startup sequence: all Register calls must
// complete before Validate is used. The registry is not synchronized for
// concurrent mutation.
type Registry struct {
	compiler *jsonschema.Compiler
	names    []string
	docs     map[string]Document
	compiled map[string]*jsonschema.Schema
}

// NewRegistry creates an empty schema registry.
func NewRegistry() *Registry {
	return &Registry{
		compiler: jsonschema.NewCompiler(),
		docs:     make(map[string]Document),
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Register resolves the document's references against already-registered
// schemas, compiles it, and stores it under name.
//
// A reference target must be registered before any schema that references it;
// forward references fail with ErrUnresolvedReference. Resolution happens
// once here, never again at validation time.
func (r *Registry) Register(name string, doc Document) error {
	if name == "" {
		return fmt.Errorf("schema name must not be empty")
	}
	if _, exists := r.docs[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSchema, name)
	}

	resolved, err := r.resolve(deepcopy.Copy(map[string]any(doc)))
	if err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}
	resolvedDoc, ok := resolved.(map[string]any)
	if !ok {
		return fmt.Errorf("register %q: document must be an object", name)
	}

	payload, err := json.Marshal(resolvedDoc)
	if err != nil {
		return fmt.Errorf("register %q: encode schema: %w", name, err)
	}
	compiledSchema, err := r.compiler.Compile(payload)
	if err != nil {
		return fmt.Errorf("register %q: compile schema: %w", name, err)
	}

	r.names = append(r.names, name)
	r.docs[name] = resolvedDoc
	r.compiled[name] = compiledSchema
	return nil
}

// Names returns the registered schema names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Document returns the fully-resolved document registered under name.
func (r *Registry) Document(name string) (Document, bool) {
	doc, ok := r.docs[name]
	if !ok {
		return nil, false
	}
	return deepcopy.Copy(map[string]any(doc)).(map[string]any), true
}

// resolve replaces every {"$ref": "<name>"} node with a copy of the named
// document. Stored documents are themselves already resolved, so one pass
// suffices.
func (r *Registry) resolve(node any) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		if ref, ok := n["$ref"].(string); ok && len(n) == 1 {
			target, exists := r.docs[ref]
			if !exists {
				return nil, fmt.Errorf("%w: %q", ErrUnresolvedReference, ref)
			}
			return deepcopy.Copy(map[string]any(target)), nil
		}
		out := make(map[string]any, len(n))
		for key, value := range n {
			resolved, err := r.resolve(value)
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(n))
		for i, value := range n {
			resolved, err := r.resolve(value)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return node, nil
	}
}
