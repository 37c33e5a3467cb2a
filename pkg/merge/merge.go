// Package merge injects secret values into the structural services document
// and re-validates the composite against the merged schema. The injection
// table is the single, statically reviewable mapping from structural path to
// secret key; nothing guesses where a secret belongs.
package merge

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/mohae/deepcopy"

	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/catalog"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/schema"
)

// Injection maps one structural path (dotted) to the secret key whose value
// is written there.
type Injection struct {
	Path      string
	SecretKey string
}

// injections is the exhaustive secret-injection table. Every secret-required
// field of the merged schema must appear here exactly once; VerifyCoverage
// enforces that at startup.
var injections = []Injection{
	{"databases.postgres.password", catalog.SecretPostgresPassword},
	{"cache.redis.password", catalog.SecretRedisPassword},
	{"monitoring.grafana.admin_password", catalog.SecretGrafanaPassword},
	{"monitoring.pgadmin.admin_email", catalog.SecretPgAdminEmail},
	{"monitoring.pgadmin.admin_password", catalog.SecretPgAdminPassword},
}

// Injections returns a copy of the injection table.
func Injections() []Injection {
	return append([]Injection(nil), injections...)
}

// ValidationError reports a post-injection composite that fails the merged
// schema. It wraps the underlying schema violations.
type ValidationError struct {
	Err *schema.ValidationError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("merged configuration invalid: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Merge deep-copies the structural document, writes each mapped secret at
// its designated path, and validates the result against the merged schema.
// The merge is atomic: on any failure no partially-injected document is
// returned.
func Merge(services map[string]any, secrets map[string]string, reg *schema.Registry) (map[string]any, error) {
	merged, ok := deepcopy.Copy(services).(map[string]any)
	if !ok {
		return nil, errors.New("merge: structural document must be an object")
	}

	overlay := make(map[string]any)
	for _, inj := range injections {
		value, present := secrets[inj.SecretKey]
		if !present {
			// The merged-schema validation below reports the resulting gap.
			continue
		}
		setPath(overlay, inj.Path, value)
	}
	if err := mergo.Merge(&merged, overlay, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge: inject secrets: %w", err)
	}

	if err := reg.Validate(merged, catalog.SchemaMerged); err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			return nil, &ValidationError{Err: verr}
		}
		return nil, err
	}
	return merged, nil
}

// VerifyCoverage checks the injection table against the merged schema's
// secret requirements: every secret-required field has exactly one injection
// and no injection targets an unknown field. Called once at startup.
func VerifyCoverage() error {
	required := catalog.SecretPaths()
	requiredSet := make(map[string]struct{}, len(required))
	for _, path := range required {
		requiredSet[path] = struct{}{}
	}

	covered := make(map[string]struct{}, len(injections))
	var problems []string
	for _, inj := range injections {
		if _, dup := covered[inj.Path]; dup {
			problems = append(problems, fmt.Sprintf("duplicate injection for %s", inj.Path))
			continue
		}
		covered[inj.Path] = struct{}{}
		if _, known := requiredSet[inj.Path]; !known {
			problems = append(problems, fmt.Sprintf("injection %s targets no secret-required field", inj.Path))
		}
	}
	for _, path := range required {
		if _, ok := covered[path]; !ok {
			problems = append(problems, fmt.Sprintf("secret-required field %s has no injection", path))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("merge: injection table incomplete: %s", strings.Join(problems, "; "))
	}
	return nil
}

// setPath writes value at the dotted path inside doc, creating intermediate
// objects as needed.
func setPath(doc map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	node := doc
	for _, segment := range segments[:len(segments)-1] {
		child, ok := node[segment].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[segment] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = value
}
