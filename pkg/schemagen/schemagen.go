// Package schemagen derives a JSON Schema from the typed services
// configuration, so tooling and editors can validate documents against the
// same shape the decoder expects.
package schemagen

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/services"
)

// BuildSchema returns a JSON Schema describing the typed services
// configuration. Property names follow the mapstructure tags the decoder
// uses, falling back to snake_case field names.
func BuildSchema() (*jsonschema.Schema, error) {
	t := reflect.TypeOf(services.Config{})
	schema, err := jsonschema.ForType(t, &jsonschema.ForOptions{
		IgnoreInvalidTypes: true,
	})
	if err != nil {
		return nil, fmt.Errorf("schemagen: build schema: %w", err)
	}
	applyFieldNames(schema, t)

	schema.Title = "Services Configuration"
	schema.Description = "Schema for the composed services stack configuration."
	schema.Schema = "https://json-schema.org/draft/2020-12/schema"
	return schema, nil
}

// MarshalIndent renders the generated schema as indented JSON.
func MarshalIndent() ([]byte, error) {
	schema, err := BuildSchema()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schemagen: marshal schema: %w", err)
	}
	return data, nil
}

// applyFieldNames renames generated properties from Go field names to the
// keys the mapstructure decoder binds.
func applyFieldNames(schema *jsonschema.Schema, t reflect.Type) {
	if schema == nil || t == nil {
		return
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		if len(schema.Properties) == 0 {
			return
		}
		nameMap := make(map[string]string)
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			generated := field.Name
			desired := fieldKeyName(field)
			nameMap[generated] = desired
			if prop, ok := schema.Properties[generated]; ok {
				delete(schema.Properties, generated)
				schema.Properties[desired] = prop
				applyFieldNames(prop, field.Type)
			}
		}
		if len(schema.Required) > 0 {
			updated := make([]string, 0, len(schema.Required))
			for _, name := range schema.Required {
				if mapped, ok := nameMap[name]; ok {
					name = mapped
				}
				updated = append(updated, name)
			}
			schema.Required = updated
		}

	case reflect.Slice, reflect.Array:
		applyFieldNames(schema.Items, t.Elem())

	case reflect.Map:
		if schema.AdditionalProperties != nil {
			applyFieldNames(schema.AdditionalProperties, t.Elem())
		}
	}
}

func fieldKeyName(field reflect.StructField) string {
	tag := field.Tag.Get("mapstructure")
	if tag != "" {
		name := strings.Split(tag, ",")[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return toSnakeCase(field.Name)
}

func toSnakeCase(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 4)
	for i, r := range value {
		if i > 0 && unicode.IsUpper(r) && !unicode.IsUpper(rune(value[i-1])) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
