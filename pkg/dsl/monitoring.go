package dsl

import "fmt"

// defaultGrafanaAdminUser applies when the structural document leaves the
// admin username unset.
const defaultGrafanaAdminUser = "admin"

// GrafanaConfig is the dashboard slice of the merged configuration.
type GrafanaConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	AdminUser     string `mapstructure:"admin_user"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Grafana derives the dashboard endpoint and admin credentials.
type Grafana struct {
	cfg GrafanaConfig
}

// NewGrafana validates the configuration slice and returns the handler.
func NewGrafana(cfg GrafanaConfig) (*Grafana, error) {
	if err := requireString("grafana", "host", cfg.Host); err != nil {
		return nil, err
	}
	if err := requirePort("grafana", "port", cfg.Port); err != nil {
		return nil, err
	}
	if err := requireString("grafana", "admin_password", cfg.AdminPassword); err != nil {
		return nil, err
	}
	if cfg.AdminUser == "" {
		cfg.AdminUser = defaultGrafanaAdminUser
	}
	return &Grafana{cfg: cfg}, nil
}

func (g *Grafana) Host() string { return g.cfg.Host }
func (g *Grafana) Port() int    { return g.cfg.Port }

// Endpoint is the dashboard base URL.
func (g *Grafana) Endpoint() string {
	return fmt.Sprintf("http://%s", authority(g.cfg.Host, g.cfg.Port))
}

// Credentials returns the admin login pair.
func (g *Grafana) Credentials() BasicCredentials {
	return BasicCredentials{Username: g.cfg.AdminUser, Password: g.cfg.AdminPassword}
}

// PgAdminConfig is the database-admin slice of the merged configuration.
// pgAdmin authenticates by email address rather than username.
type PgAdminConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// PgAdmin derives the admin console endpoint and credentials.
type PgAdmin struct {
	cfg PgAdminConfig
}

// NewPgAdmin validates the configuration slice and returns the handler.
func NewPgAdmin(cfg PgAdminConfig) (*PgAdmin, error) {
	if err := requireString("pgadmin", "host", cfg.Host); err != nil {
		return nil, err
	}
	if err := requirePort("pgadmin", "port", cfg.Port); err != nil {
		return nil, err
	}
	if err := requireString("pgadmin", "admin_email", cfg.AdminEmail); err != nil {
		return nil, err
	}
	if err := requireString("pgadmin", "admin_password", cfg.AdminPassword); err != nil {
		return nil, err
	}
	return &PgAdmin{cfg: cfg}, nil
}

func (p *PgAdmin) Host() string { return p.cfg.Host }
func (p *PgAdmin) Port() int    { return p.cfg.Port }

// Endpoint is the admin console base URL.
func (p *PgAdmin) Endpoint() string {
	return fmt.Sprintf("http://%s", authority(p.cfg.Host, p.cfg.Port))
}

// Credentials returns the login pair; Username carries the admin email.
func (p *PgAdmin) Credentials() BasicCredentials {
	return BasicCredentials{Username: p.cfg.AdminEmail, Password: p.cfg.AdminPassword}
}
