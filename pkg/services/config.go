package services

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/dsl"
)

// Config is the typed form of a merged services document.
type Config struct {
	Kind       string            `mapstructure:"kind"`
	Version    string            `mapstructure:"version"`
	Databases  DatabasesConfig   `mapstructure:"databases"`
	Timeseries TimeseriesConfig  `mapstructure:"timeseries"`
	Cache      CacheConfig       `mapstructure:"cache"`
	Messaging  MessagingConfig   `mapstructure:"messaging"`
	Monitoring MonitoringConfig  `mapstructure:"monitoring"`
	Networks   map[string]string `mapstructure:"networks"`
}

type DatabasesConfig struct {
	Postgres dsl.PostgresConfig `mapstructure:"postgres"`
}

type TimeseriesConfig struct {
	QuestDB dsl.QuestDBConfig `mapstructure:"questdb"`
}

type CacheConfig struct {
	Redis dsl.RedisConfig `mapstructure:"redis"`
}

type MessagingConfig struct {
	Redpanda dsl.RedpandaConfig `mapstructure:"redpanda"`
}

type MonitoringConfig struct {
	Grafana dsl.GrafanaConfig `mapstructure:"grafana"`
	PgAdmin dsl.PgAdminConfig `mapstructure:"pgadmin"`
}

// decodeConfig maps a merged document onto the typed Config. Numeric values
// arrive as float64 from the YAML and JSON decoders, so weak typing is on.
func decodeConfig(merged map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, fmt.Errorf("services: build decoder: %w", err)
	}
	if err := dec.Decode(merged); err != nil {
		return Config{}, fmt.Errorf("services: decode merged document: %w", err)
	}
	return cfg, nil
}
