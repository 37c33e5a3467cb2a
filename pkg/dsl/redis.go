package dsl

import "fmt"

// defaultRedisMaxRetries applies when the structural document leaves the
// retry hint unset.
const defaultRedisMaxRetries = 3

// RedisConfig is the cache slice of the merged configuration.
type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// Redis derives connection details for the cache.
type Redis struct {
	cfg RedisConfig
}

// NewRedis validates the configuration slice and returns the handler.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if err := requireString("redis", "host", cfg.Host); err != nil {
		return nil, err
	}
	if err := requirePort("redis", "port", cfg.Port); err != nil {
		return nil, err
	}
	if err := requireString("redis", "password", cfg.Password); err != nil {
		return nil, err
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultRedisMaxRetries
	}
	if cfg.MaxRetries < 0 {
		return nil, &ConstructionError{Handler: "redis", Field: "max_retries"}
	}
	return &Redis{cfg: cfg}, nil
}

func (r *Redis) Host() string { return r.cfg.Host }
func (r *Redis) Port() int    { return r.cfg.Port }

// MaxRetries is the command retry hint for the client.
func (r *Redis) MaxRetries() int { return r.cfg.MaxRetries }

// ConnectionString renders redis://:password@host:port with a
// percent-encoded password.
func (r *Redis) ConnectionString() string {
	return fmt.Sprintf("redis://:%s@%s",
		EncodeCredential(r.cfg.Password),
		authority(r.cfg.Host, r.cfg.Port),
	)
}
