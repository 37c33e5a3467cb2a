package dsl

// RedpandaConfig is the message-broker slice of the merged configuration.
// Advertised addresses are optional; when one already embeds a port it is
// used verbatim.
type RedpandaConfig struct {
	BrokerPort               int    `mapstructure:"broker_port"`
	SchemaRegistryPort       int    `mapstructure:"schema_registry_port"`
	AdminPort                int    `mapstructure:"admin_port"`
	ProxyPort                int    `mapstructure:"proxy_port"`
	AdvertisedBroker         string `mapstructure:"advertised_broker"`
	AdvertisedSchemaRegistry string `mapstructure:"advertised_schema_registry"`
	AdvertisedAdmin          string `mapstructure:"advertised_admin"`
	AdvertisedProxy          string `mapstructure:"advertised_proxy"`
}

// Redpanda derives the broker, schema-registry, admin, and proxy endpoints.
type Redpanda struct {
	cfg RedpandaConfig
}

// NewRedpanda validates the configuration slice and returns the handler.
func NewRedpanda(cfg RedpandaConfig) (*Redpanda, error) {
	if err := requirePort("redpanda", "broker_port", cfg.BrokerPort); err != nil {
		return nil, err
	}
	if err := requirePort("redpanda", "schema_registry_port", cfg.SchemaRegistryPort); err != nil {
		return nil, err
	}
	if err := requirePort("redpanda", "admin_port", cfg.AdminPort); err != nil {
		return nil, err
	}
	if err := requirePort("redpanda", "proxy_port", cfg.ProxyPort); err != nil {
		return nil, err
	}
	return &Redpanda{cfg: cfg}, nil
}

// BrokerEndpoint is the Kafka API bootstrap address.
func (r *Redpanda) BrokerEndpoint() string {
	return advertisedOrLocal(r.cfg.AdvertisedBroker, r.cfg.BrokerPort)
}

// SchemaRegistryEndpoint is the schema registry address.
func (r *Redpanda) SchemaRegistryEndpoint() string {
	return advertisedOrLocal(r.cfg.AdvertisedSchemaRegistry, r.cfg.SchemaRegistryPort)
}

// AdminEndpoint is the admin API address.
func (r *Redpanda) AdminEndpoint() string {
	return advertisedOrLocal(r.cfg.AdvertisedAdmin, r.cfg.AdminPort)
}

// ProxyEndpoint is the HTTP proxy address.
func (r *Redpanda) ProxyEndpoint() string {
	return advertisedOrLocal(r.cfg.AdvertisedProxy, r.cfg.ProxyPort)
}

// advertisedOrLocal resolves an endpoint address. With no advertised value
// it falls back to localhost with the configured port. An advertised value
// that already embeds a port is used verbatim; the configured port is only
// appended to a bare advertised host.
func advertisedOrLocal(advertised string, port int) string {
	if advertised == "" {
		return authority("localhost", port)
	}
	if hasPort(advertised) {
		return advertised
	}
	return authority(advertised, port)
}
