package catalog

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mohae/deepcopy"

	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/schema"
)

func newRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register catalog: %v", err)
	}
	return reg
}

func validStructural() map[string]any {
	return map[string]any{
		"kind":    "services",
		"version": "1.0",
		"databases": map[string]any{
			"postgres": map[string]any{
				"host": "postgres", "port": 5432, "database": "app", "user": "svc",
			},
		},
		"timeseries": map[string]any{
			"questdb": map[string]any{
				"host": "questdb", "http_port": 9000, "pg_port": 8812, "ilp_port": 9009,
			},
		},
		"cache": map[string]any{
			"redis": map[string]any{"host": "redis", "port": 6379},
		},
		"messaging": map[string]any{
			"redpanda": map[string]any{
				"broker_port": 9092, "schema_registry_port": 8081, "admin_port": 9644, "proxy_port": 8082,
			},
		},
		"monitoring": map[string]any{
			"grafana": map[string]any{"host": "grafana", "port": 3000},
			"pgadmin": map[string]any{"host": "pgadmin", "port": 5050},
		},
		"networks": map[string]any{"data": "stack_data"},
	}
}

func TestStructuralAcceptsSecretFreeDocument(t *testing.T) {
	reg := newRegistry(t)
	if err := reg.Validate(validStructural(), SchemaStructural); err != nil {
		t.Fatalf("expected valid structural document, got %v", err)
	}
}

func TestStructuralRejectsEmbeddedSecret(t *testing.T) {
	reg := newRegistry(t)
	doc := validStructural()
	postgres := doc["databases"].(map[string]any)["postgres"].(map[string]any)
	postgres["password"] = "leaked"
	if err := reg.Validate(doc, SchemaStructural); err == nil {
		t.Fatal("structural schema must reject embedded secrets")
	}
	// The shared services shape stays secret-silent, so the same document
	// is fine there.
	if err := reg.Validate(doc, SchemaServices); err != nil {
		t.Fatalf("services schema must tolerate secrets: %v", err)
	}
}

func TestMergedRequiresEverySecret(t *testing.T) {
	reg := newRegistry(t)
	doc := validStructural()
	err := reg.Validate(doc, SchemaMerged)
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for secret-free merged document, got %v", err)
	}
}

func TestMergedAcceptsInjectedDocument(t *testing.T) {
	reg := newRegistry(t)
	doc := deepcopy.Copy(validStructural()).(map[string]any)
	doc["databases"].(map[string]any)["postgres"].(map[string]any)["password"] = "pgpw"
	doc["cache"].(map[string]any)["redis"].(map[string]any)["password"] = "rpw"
	grafana := doc["monitoring"].(map[string]any)["grafana"].(map[string]any)
	grafana["admin_password"] = "gpw"
	pgadmin := doc["monitoring"].(map[string]any)["pgadmin"].(map[string]any)
	pgadmin["admin_email"] = "ops@example.com"
	pgadmin["admin_password"] = "papw"

	if err := reg.Validate(doc, SchemaMerged); err != nil {
		t.Fatalf("expected valid merged document, got %v", err)
	}
}

func TestMergedRejectsMalformedEmail(t *testing.T) {
	reg := newRegistry(t)
	doc := validStructural()
	pgadmin := doc["monitoring"].(map[string]any)["pgadmin"].(map[string]any)
	pgadmin["admin_email"] = "not-an-email"
	pgadmin["admin_password"] = "papw"
	doc["databases"].(map[string]any)["postgres"].(map[string]any)["password"] = "pgpw"
	doc["cache"].(map[string]any)["redis"].(map[string]any)["password"] = "rpw"
	doc["monitoring"].(map[string]any)["grafana"].(map[string]any)["admin_password"] = "gpw"

	if err := reg.Validate(doc, SchemaMerged); err == nil {
		t.Fatal("merged schema must reject a malformed admin email")
	}
}

func TestStructuralRejectsWrongKind(t *testing.T) {
	reg := newRegistry(t)
	doc := validStructural()
	doc["kind"] = "workloads"
	if err := reg.Validate(doc, SchemaStructural); err == nil {
		t.Fatal("structural schema must pin the kind discriminator")
	}
}

func TestSecretPathsDeterministic(t *testing.T) {
	want := []string{
		"cache.redis.password",
		"databases.postgres.password",
		"monitoring.grafana.admin_password",
		"monitoring.pgadmin.admin_email",
		"monitoring.pgadmin.admin_password",
	}
	if got := SecretPaths(); !reflect.DeepEqual(got, want) {
		t.Errorf("SecretPaths() = %v, want %v", got, want)
	}
	if got := SecretPaths(); !reflect.DeepEqual(got, want) {
		t.Errorf("SecretPaths() not stable across calls: %v", got)
	}
}

func TestSecretsSchemaToleratesUnknownKeys(t *testing.T) {
	reg := newRegistry(t)
	doc := map[string]any{
		SecretPostgresPassword: "pgpw",
		SecretRedisPassword:    "rpw",
		SecretGrafanaPassword:  "gpw",
		SecretPgAdminEmail:     "ops@example.com",
		SecretPgAdminPassword:  "papw",
		"UNRELATED_KEY":        "anything",
	}
	if err := reg.Validate(doc, SchemaSecrets); err != nil {
		t.Fatalf("unknown secret keys must be tolerated: %v", err)
	}
}

func TestSecretsSchemaRejectsEmptyValue(t *testing.T) {
	reg := newRegistry(t)
	doc := map[string]any{
		SecretPostgresPassword: "",
		SecretRedisPassword:    "rpw",
		SecretGrafanaPassword:  "gpw",
		SecretPgAdminEmail:     "ops@example.com",
		SecretPgAdminPassword:  "papw",
	}
	if err := reg.Validate(doc, SchemaSecrets); err == nil {
		t.Fatal("an empty secret value must count as missing")
	}
}
