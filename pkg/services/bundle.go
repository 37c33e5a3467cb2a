package services

import (
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/dsl"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/redact"
)

// Bundle holds one fully constructed handler per service family. A Bundle
// only exists once every handler validated its slice of the merged
// configuration.
type Bundle struct {
	Postgres *dsl.Postgres
	QuestDB  *dsl.QuestDB
	Redis    *dsl.Redis
	Redpanda *dsl.Redpanda
	Grafana  *dsl.Grafana
	PgAdmin  *dsl.PgAdmin
	Networks *dsl.Networks

	merged map[string]any
}

// newBundle constructs every handler from the typed configuration,
// failing on the first handler whose slice is unusable.
func newBundle(cfg Config, merged map[string]any) (*Bundle, error) {
	postgres, err := dsl.NewPostgres(cfg.Databases.Postgres)
	if err != nil {
		return nil, err
	}
	questdb, err := dsl.NewQuestDB(cfg.Timeseries.QuestDB)
	if err != nil {
		return nil, err
	}
	redis, err := dsl.NewRedis(cfg.Cache.Redis)
	if err != nil {
		return nil, err
	}
	redpanda, err := dsl.NewRedpanda(cfg.Messaging.Redpanda)
	if err != nil {
		return nil, err
	}
	grafana, err := dsl.NewGrafana(cfg.Monitoring.Grafana)
	if err != nil {
		return nil, err
	}
	pgadmin, err := dsl.NewPgAdmin(cfg.Monitoring.PgAdmin)
	if err != nil {
		return nil, err
	}
	networks, err := dsl.NewNetworks(cfg.Networks)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		Postgres: postgres,
		QuestDB:  questdb,
		Redis:    redis,
		Redpanda: redpanda,
		Grafana:  grafana,
		PgAdmin:  pgadmin,
		Networks: networks,
		merged:   merged,
	}, nil
}

// Merged returns the merged document the bundle was built from. Callers
// must treat it as read-only; it still contains raw secret values.
func (b *Bundle) Merged() map[string]any {
	return b.merged
}

// Diagnostics renders the merged document as indented JSON with every
// secret-bearing field masked. Safe to log.
func (b *Bundle) Diagnostics() (string, error) {
	return redact.JSON(b.merged)
}
