// Package source loads the structural services document and the env-style
// secret document, validating each against its registered schema. The two
// loaders are independent and safe to run concurrently.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSourceNotFound reports a source that could not be located or read.
var ErrSourceNotFound = errors.New("configuration source not found")

// ErrRequiredSecretMissing reports a schema-declared required secret key
// that is absent or empty. An empty string is treated as missing.
var ErrRequiredSecretMissing = errors.New("required secret missing")

// ParseError reports source content that is not well-formed.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Source is a re-readable configuration input.
type Source interface {
	// Read returns the source's current content.
	Read() ([]byte, error)
	// Name identifies the source in errors and determines the expected
	// format for file sources (by extension).
	Name() string
}

type fileSource struct {
	path string
}

// File returns a Source backed by a file on disk.
func File(path string) Source { return fileSource{path: path} }

func (s fileSource) Read() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, s.path)
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

func (s fileSource) Name() string { return s.path }

type inlineSource struct {
	name string
	data []byte
}

// Inline returns a Source backed by in-memory content. The name should carry
// an extension when the content is not JSON (for example "services.yaml").
func Inline(name string, data []byte) Source {
	return inlineSource{name: name, data: data}
}

func (s inlineSource) Read() ([]byte, error) {
	return append([]byte(nil), s.data...), nil
}

func (s inlineSource) Name() string { return s.name }

// formatFor maps a source name to the serialization viper should parse.
// JSON is the default; YAML is accepted as a convenience.
func formatFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
