package dsl

import "fmt"

// QuestDBConfig is the time-series slice of the merged configuration.
type QuestDBConfig struct {
	Host     string `mapstructure:"host"`
	HTTPPort int    `mapstructure:"http_port"`
	PGPort   int    `mapstructure:"pg_port"`
	ILPPort  int    `mapstructure:"ilp_port"`
}

// QuestDB derives the time-series endpoints. QuestDB speaks three protocols
// on three ports: the REST API, the Postgres wire protocol, and the InfluxDB
// line protocol.
type QuestDB struct {
	cfg QuestDBConfig
}

// NewQuestDB validates the configuration slice and returns the handler.
func NewQuestDB(cfg QuestDBConfig) (*QuestDB, error) {
	if err := requireString("questdb", "host", cfg.Host); err != nil {
		return nil, err
	}
	if err := requirePort("questdb", "http_port", cfg.HTTPPort); err != nil {
		return nil, err
	}
	if err := requirePort("questdb", "pg_port", cfg.PGPort); err != nil {
		return nil, err
	}
	if err := requirePort("questdb", "ilp_port", cfg.ILPPort); err != nil {
		return nil, err
	}
	return &QuestDB{cfg: cfg}, nil
}

func (q *QuestDB) Host() string { return q.cfg.Host }

// HTTPEndpoint is the REST API base URL.
func (q *QuestDB) HTTPEndpoint() string {
	return fmt.Sprintf("http://%s", authority(q.cfg.Host, q.cfg.HTTPPort))
}

// PGWireEndpoint is the Postgres wire protocol URL.
func (q *QuestDB) PGWireEndpoint() string {
	return fmt.Sprintf("postgresql://%s", authority(q.cfg.Host, q.cfg.PGPort))
}

// ILPEndpoint is the InfluxDB line protocol URL.
func (q *QuestDB) ILPEndpoint() string {
	return fmt.Sprintf("tcp://%s", authority(q.cfg.Host, q.cfg.ILPPort))
}
