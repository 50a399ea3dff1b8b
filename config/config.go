package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the complete taskdeck configuration.
type Config struct {
	// Database connection and pool settings
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Log settings
	Log LogConfig `yaml:"log" env:"LOG"`

	// Seed sample-data settings
	Seed SeedConfig `yaml:"seed" env:"SEED"`
}

// DatabaseConfig holds connection parameters and pool bounds. Values are read
// once at startup; the pool never re-reads them per call.
type DatabaseConfig struct {
	// Driver name: postgres or sqlite
	Driver string `yaml:"driver" env:"DRIVER"`
	// Host name
	Host string `yaml:"host" env:"HOST"`
	// Port number
	Port int `yaml:"port" env:"PORT"`
	// User name
	User string `yaml:"user" env:"USER"`
	// Password
	Password string `yaml:"password" env:"PASSWORD"`
	// Database name; for sqlite this is the file path
	Name string `yaml:"name" env:"NAME"`
	// SSL mode (postgres only)
	SSLMode string `yaml:"ssl_mode" env:"SSL_MODE"`
	// Minimum number of idle connections kept open
	MinConns int `yaml:"min_conns" env:"MIN_CONNS"`
	// Maximum number of open connections
	MaxConns int `yaml:"max_conns" env:"MAX_CONNS"`
	// How long an Acquire waits for a free connection
	AcquireTimeout time.Duration `yaml:"acquire_timeout" env:"ACQUIRE_TIMEOUT"`
	// Maximum lifetime of a single connection
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
	// Interval between background liveness probes; 0 disables them
	HealthCheckInterval time.Duration `yaml:"health_check_interval" env:"HEALTH_CHECK_INTERVAL"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json or console
	Format string `yaml:"format" env:"FORMAT"`
}

// SeedConfig controls the sample-data loader.
type SeedConfig struct {
	// Number of sample todos
	Todos int `yaml:"todos" env:"TODOS"`
	// Number of sample tasks attached to the first todo
	Tasks int `yaml:"tasks" env:"TASKS"`
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	return c.Database.Validate()
}

// Validate checks pool bounds and connection parameters.
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Driver)
	}

	if c.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.MaxConns < 1 {
		return fmt.Errorf("max_conns must be at least 1, got %d", c.MaxConns)
	}
	if c.MinConns < 0 || c.MinConns > c.MaxConns {
		return fmt.Errorf("min_conns must be between 0 and max_conns, got %d", c.MinConns)
	}
	if c.AcquireTimeout <= 0 {
		return fmt.Errorf("acquire_timeout must be positive, got %s", c.AcquireTimeout)
	}
	return nil
}

// DriverName returns the database/sql driver name to open connections with.
func (c *DatabaseConfig) DriverName() string {
	if c.Driver == "postgres" {
		// pgx stdlib driver
		return "pgx"
	}
	return "sqlite"
}

// URL builds the connection string for the configured driver.
func (c *DatabaseConfig) URL() string {
	switch c.Driver {
	case "postgres":
		ssl := c.SSLMode
		if ssl == "" {
			ssl = "require"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:     "/" + c.Name,
			RawQuery: "sslmode=" + ssl,
		}
		return u.String()
	case "sqlite":
		return fmt.Sprintf("file:%s?mode=rwc", c.Name)
	default:
		return ""
	}
}

// MaintenanceURL returns a connection string for the server-level maintenance
// database, used to create the target database before migrations run.
// Postgres only.
func (c *DatabaseConfig) MaintenanceURL() string {
	m := *c
	m.Name = "postgres"
	return m.URL()
}
