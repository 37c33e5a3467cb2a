package source

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/catalog"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/schema"
)

// LoadSecrets reads the secret document from src as KEY=value lines and
// validates it against the secrets schema. Unknown keys pass validation and
// are returned untouched for the merger's injection map.
//
// Failure modes: ErrSourceNotFound, *ParseError, ErrRequiredSecretMissing
// (wrapping the validation detail) when a required key is absent or empty,
// and *schema.ValidationError for other violations (for example a malformed
// admin email).
func LoadSecrets(src Source, reg *schema.Registry) (map[string]string, error) {
	data, err := src.Read()
	if err != nil {
		return nil, err
	}

	env, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return nil, &ParseError{Source: src.Name(), Err: err}
	}

	doc := make(map[string]any, len(env))
	for key, value := range env {
		doc[key] = value
	}
	if err := reg.Validate(doc, catalog.SchemaSecrets); err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) && hasMissingSecret(verr) {
			return nil, fmt.Errorf("%w: %w", ErrRequiredSecretMissing, verr)
		}
		return nil, err
	}
	return env, nil
}

// hasMissingSecret reports whether any violation describes an absent or
// empty key, as opposed to a present-but-malformed value.
func hasMissingSecret(verr *schema.ValidationError) bool {
	for _, v := range verr.Violations {
		if v.Actual == "<absent>" || v.Actual == `""` {
			return true
		}
	}
	return false
}
