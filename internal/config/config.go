// Package config loads YAML configuration for the archiver and CLI tools.
package config

import "time"

// ArchiverConfig is the root configuration for an archiver instance.
type ArchiverConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Database DatabaseConfig `yaml:"database"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this archiver.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// GatewayConfig holds gateway API settings.
type GatewayConfig struct {
	BaseURL  string        `yaml:"base_url"`
	WSURL    string        `yaml:"ws_url"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Token    string        `yaml:"token"` // pre-issued token; takes precedence over credentials
	Timeout  time.Duration `yaml:"timeout"`
}

// DatabaseConfig holds the archive database connection.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ArchiveConfig holds history archiver settings.
type ArchiveConfig struct {
	Connections   []string      `yaml:"connections"` // connection identifiers to archive
	Interval      time.Duration `yaml:"interval"`
	Concurrency   int           `yaml:"concurrency"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// HealthConfig holds health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
