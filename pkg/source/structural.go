package source

import (
	"bytes"

	"github.com/spf13/viper"

	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/catalog"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/schema"
)

// LoadServices reads the structural services document from src, parses it,
// and validates it against the structural schema (which also rejects any
// secret field present in the source).
//
// Keys are case-insensitive: the parser normalizes every key, including
// logical network names, to lowercase. Network lookups must use the
// lowercase form.
//
// Failure modes: ErrSourceNotFound, *ParseError, *schema.ValidationError.
func LoadServices(src Source, reg *schema.Registry) (map[string]any, error) {
	data, err := src.Read()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType(formatFor(src.Name()))
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, &ParseError{Source: src.Name(), Err: err}
	}

	doc := v.AllSettings()
	if err := reg.Validate(doc, catalog.SchemaStructural); err != nil {
		return nil, err
	}
	return doc, nil
}
