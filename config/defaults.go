package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DefaultDatabaseConfig(),
		Log:      DefaultLogConfig(),
		Seed:     DefaultSeedConfig(),
	}
}

// DefaultDatabaseConfig returns the default database configuration.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:              "postgres",
		Host:                "localhost",
		Port:                5432,
		User:                "postgres",
		Password:            "postgres",
		Name:                "taskdeck",
		SSLMode:             "disable",
		MinConns:            2,
		MaxConns:            10,
		AcquireTimeout:      5 * time.Second,
		ConnMaxLifetime:     time.Hour,
		HealthCheckInterval: 30 * time.Second,
	}
}

// DefaultLogConfig returns the default log configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "console",
	}
}

// DefaultSeedConfig returns the default seed configuration.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Todos: 10,
		Tasks: 10,
	}
}
