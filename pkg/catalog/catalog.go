// Package catalog defines the built-in schema documents for the services
// stack and registers them in dependency order.
//
// Composition is reference-based: the "services" schema composes the family
// sub-schemas, and the "structural" and "merged" schemas compose "services"
// with, respectively, a no-secrets constraint and the secret-field
// requirements. A family's shape is defined exactly once.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/schema"
)

// Registered schema names.
const (
	SchemaPostgres   = "postgres"
	SchemaQuestDB    = "questdb"
	SchemaRedis      = "redis"
	SchemaRedpanda   = "redpanda"
	SchemaGrafana    = "grafana"
	SchemaPgAdmin    = "pgadmin"
	SchemaNetworks   = "networks"
	SchemaServices   = "services"
	SchemaStructural = "structural"
	SchemaSecrets    = "secrets"
	SchemaMerged     = "merged"
)

// KindServices is the discriminator value required in structural documents.
const KindServices = "services"

// Register installs every built-in schema into reg. Sub-schemas are
// registered before the composites that reference them.
func Register(reg *schema.Registry) error {
	ordered := []struct {
		name string
		doc  schema.Document
	}{
		{SchemaPostgres, postgresSchema()},
		{SchemaQuestDB, questdbSchema()},
		{SchemaRedis, redisSchema()},
		{SchemaRedpanda, redpandaSchema()},
		{SchemaGrafana, grafanaSchema()},
		{SchemaPgAdmin, pgadminSchema()},
		{SchemaNetworks, networksSchema()},
		{SchemaServices, servicesSchema()},
		{SchemaStructural, structuralSchema()},
		{SchemaSecrets, secretsSchema()},
		{SchemaMerged, mergedSchema()},
	}
	for _, entry := range ordered {
		if err := reg.Register(entry.name, entry.doc); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}
	return nil
}

// portSchema constrains a value to the valid TCP/UDP port range.
func portSchema() schema.Document {
	return schema.Document{"type": "integer", "minimum": 1, "maximum": 65535}
}

func requiredString() schema.Document {
	return schema.Document{"type": "string", "minLength": 1}
}

func emailString() schema.Document {
	return schema.Document{
		"type":      "string",
		"minLength": 3,
		"pattern":   `^[^@\s]+@[^@\s]+\.[^@\s]+$`,
	}
}

func postgresSchema() schema.Document {
	return schema.Document{
		"type":     "object",
		"required": []any{"host", "port", "database", "user"},
		"properties": schema.Document{
			"host":            requiredString(),
			"port":            portSchema(),
			"database":        requiredString(),
			"user":            requiredString(),
			"max_connections": schema.Document{"type": "integer", "minimum": 1},
		},
	}
}

func questdbSchema() schema.Document {
	return schema.Document{
		"type":     "object",
		"required": []any{"host", "http_port", "pg_port", "ilp_port"},
		"properties": schema.Document{
			"host":      requiredString(),
			"http_port": portSchema(),
			"pg_port":   portSchema(),
			"ilp_port":  portSchema(),
		},
	}
}

func redisSchema() schema.Document {
	return schema.Document{
		"type":     "object",
		"required": []any{"host", "port"},
		"properties": schema.Document{
			"host":        requiredString(),
			"port":        portSchema(),
			"max_retries": schema.Document{"type": "integer", "minimum": 0},
		},
	}
}

func redpandaSchema() schema.Document {
	return schema.Document{
		"type":     "object",
		"required": []any{"broker_port", "schema_registry_port", "admin_port", "proxy_port"},
		"properties": schema.Document{
			"broker_port":                portSchema(),
			"schema_registry_port":       portSchema(),
			"admin_port":                 portSchema(),
			"proxy_port":                 portSchema(),
			"advertised_broker":          schema.Document{"type": "string"},
			"advertised_schema_registry": schema.Document{"type": "string"},
			"advertised_admin":           schema.Document{"type": "string"},
			"advertised_proxy":           schema.Document{"type": "string"},
		},
	}
}

func grafanaSchema() schema.Document {
	return schema.Document{
		"type":     "object",
		"required": []any{"host", "port"},
		"properties": schema.Document{
			"host":       requiredString(),
			"port":       portSchema(),
			"admin_user": requiredString(),
		},
	}
}

func pgadminSchema() schema.Document {
	return schema.Document{
		"type":     "object",
		"required": []any{"host", "port"},
		"properties": schema.Document{
			"host": requiredString(),
			"port": portSchema(),
		},
	}
}

func networksSchema() schema.Document {
	return schema.Document{
		"type":                 "object",
		"minProperties":        1,
		"additionalProperties": requiredString(),
	}
}

// servicesSchema composes the family sub-schemas into the full services
// document shape. It says nothing about secrets; "structural" and "merged"
// layer those constraints on top.
func servicesSchema() schema.Document {
	return schema.Document{
		"type": "object",
		"required": []any{
			"kind", "version", "databases", "timeseries", "cache", "messaging", "monitoring", "networks",
		},
		"properties": schema.Document{
			"kind":    schema.Document{"const": KindServices},
			"version": schema.Document{"type": "string", "minLength": 1},
			"databases": schema.Document{
				"type":     "object",
				"required": []any{"postgres"},
				"properties": schema.Document{
					"postgres": schema.Document{"$ref": SchemaPostgres},
				},
			},
			"timeseries": schema.Document{
				"type":     "object",
				"required": []any{"questdb"},
				"properties": schema.Document{
					"questdb": schema.Document{"$ref": SchemaQuestDB},
				},
			},
			"cache": schema.Document{
				"type":     "object",
				"required": []any{"redis"},
				"properties": schema.Document{
					"redis": schema.Document{"$ref": SchemaRedis},
				},
			},
			"messaging": schema.Document{
				"type":     "object",
				"required": []any{"redpanda"},
				"properties": schema.Document{
					"redpanda": schema.Document{"$ref": SchemaRedpanda},
				},
			},
			"monitoring": schema.Document{
				"type":     "object",
				"required": []any{"grafana", "pgadmin"},
				"properties": schema.Document{
					"grafana": schema.Document{"$ref": SchemaGrafana},
					"pgadmin": schema.Document{"$ref": SchemaPgAdmin},
				},
			},
			"networks": schema.Document{"$ref": SchemaNetworks},
		},
	}
}

// structuralSchema is the services shape plus the invariant that no secret
// field may appear in the structural source. A boolean false schema rejects
// the property outright.
func structuralSchema() schema.Document {
	return schema.Document{
		"allOf": []any{
			schema.Document{"$ref": SchemaServices},
			secretFieldOverlay(func(string) any { return false }),
		},
	}
}

// mergedSchema is the services shape plus the requirement that every secret
// field is present and non-empty after injection.
func mergedSchema() schema.Document {
	return schema.Document{
		"allOf": []any{
			schema.Document{"$ref": SchemaServices},
			secretFieldOverlay(func(path string) any {
				if strings.HasSuffix(path, "admin_email") {
					return emailString()
				}
				return requiredString()
			}),
		},
	}
}

// secretFields maps each secret-carrying structural path to its field name.
// This is the single definition both overlays grow from; SecretPaths and the
// merger's coverage check read it too.
var secretFields = map[string][]string{
	"databases.postgres": {"password"},
	"cache.redis":        {"password"},
	"monitoring.grafana": {"admin_password"},
	"monitoring.pgadmin": {"admin_email", "admin_password"},
}

// secretFieldOverlay builds a schema overlay assigning fieldSchema(path) to
// every secret field, requiring each one when the schema is not boolean
// false.
func secretFieldOverlay(fieldSchema func(path string) any) schema.Document {
	overlay := schema.Document{"properties": schema.Document{}}
	for groupPath, fields := range secretFields {
		node := overlay
		for _, segment := range strings.Split(groupPath, ".") {
			props := node["properties"].(schema.Document)
			child, ok := props[segment].(schema.Document)
			if !ok {
				child = schema.Document{"properties": schema.Document{}}
				props[segment] = child
			}
			node = child
		}
		props := node["properties"].(schema.Document)
		for _, field := range fields {
			fs := fieldSchema(groupPath + "." + field)
			props[field] = fs
			if _, forbidden := fs.(bool); !forbidden {
				required, _ := node["required"].([]any)
				node["required"] = append(required, field)
			}
		}
	}
	return overlay
}

// SecretPaths returns every structural path that receives a secret, as
// dotted paths in deterministic order.
func SecretPaths() []string {
	var paths []string
	for groupPath, fields := range secretFields {
		for _, field := range fields {
			paths = append(paths, groupPath+"."+field)
		}
	}
	sort.Strings(paths)
	return paths
}

// Secret source keys.
const (
	SecretPostgresPassword = "POSTGRES_PASSWORD"
	SecretRedisPassword    = "REDIS_PASSWORD"
	SecretGrafanaPassword  = "GRAFANA_ADMIN_PASSWORD"
	SecretPgAdminEmail     = "PGADMIN_DEFAULT_EMAIL"
	SecretPgAdminPassword  = "PGADMIN_DEFAULT_PASSWORD"
)

func secretsSchema() schema.Document {
	return schema.Document{
		"type": "object",
		"required": []any{
			SecretPostgresPassword,
			SecretRedisPassword,
			SecretGrafanaPassword,
			SecretPgAdminEmail,
			SecretPgAdminPassword,
		},
		"properties": schema.Document{
			SecretPostgresPassword: requiredString(),
			SecretRedisPassword:    requiredString(),
			SecretGrafanaPassword:  requiredString(),
			SecretPgAdminEmail:     emailString(),
			SecretPgAdminPassword:  requiredString(),
		},
		// Unknown keys are tolerated; they pass through to the merger's
		// injection map untouched.
	}
}
