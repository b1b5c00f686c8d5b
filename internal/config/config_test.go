package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-archiver
gateway:
  base_url: https://gateway.example.com
  token: pre-issued
database:
  postgres:
    host: localhost
    port: 5432
    name: test_db
    user: testuser
    password: testpass
archive:
  connections: ["42", "43"]
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-archiver" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-archiver")
	}
	if cfg.Gateway.BaseURL != "https://gateway.example.com" {
		t.Errorf("Gateway.BaseURL = %q, want %q", cfg.Gateway.BaseURL, "https://gateway.example.com")
	}
	if cfg.Database.Postgres.Host != "localhost" {
		t.Errorf("Database.Postgres.Host = %q, want %q", cfg.Database.Postgres.Host, "localhost")
	}
	if len(cfg.Archive.Connections) != 2 {
		t.Errorf("len(Archive.Connections) = %d, want 2", len(cfg.Archive.Connections))
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_GW_PASSWORD", "secret123")

	yaml := `
instance:
  id: test-archiver
gateway:
  base_url: https://gateway.example.com
  username: archiver
  password: ${TEST_GW_PASSWORD}
database:
  postgres:
    host: localhost
    name: test_db
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Gateway.Password != "secret123" {
		t.Errorf("Gateway.Password = %q, want %q", cfg.Gateway.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-archiver
gateway:
  base_url: https://gateway.example.com
  token: pre-issued
database:
  postgres:
    host: localhost
    name: test_db
    user: testuser
    password: testpass
archive:
  connections: ["42"]
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Gateway.Timeout != DefaultAPITimeout {
		t.Errorf("Gateway.Timeout = %v, want default %v", cfg.Gateway.Timeout, DefaultAPITimeout)
	}
	if cfg.Database.Postgres.Port != DefaultDBPort {
		t.Errorf("Database.Postgres.Port = %d, want default %d", cfg.Database.Postgres.Port, DefaultDBPort)
	}
	if cfg.Database.Postgres.MaxConns != DefaultMaxConns {
		t.Errorf("Database.Postgres.MaxConns = %d, want default %d", cfg.Database.Postgres.MaxConns, DefaultMaxConns)
	}
	if cfg.Archive.Interval != DefaultArchiveInterval {
		t.Errorf("Archive.Interval = %v, want default %v", cfg.Archive.Interval, DefaultArchiveInterval)
	}
	if cfg.Archive.BatchSize != DefaultBatchSize {
		t.Errorf("Archive.BatchSize = %d, want default %d", cfg.Archive.BatchSize, DefaultBatchSize)
	}
	if cfg.Health.Port != DefaultHealthPort {
		t.Errorf("Health.Port = %d, want default %d", cfg.Health.Port, DefaultHealthPort)
	}
}

func TestLoadAndValidate(t *testing.T) {
	yaml := `
instance:
  id: test-archiver
gateway:
  base_url: https://gateway.example.com
  token: pre-issued
database:
  postgres:
    host: localhost
    name: test_db
    user: testuser
    password: testpass
archive:
  connections: ["42"]
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.Instance.ID != "test-archiver" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-archiver")
	}
}

func TestValidate(t *testing.T) {
	validDB := DatabaseConfig{
		Postgres: DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 10, MinConns: 2},
	}
	validArchive := ArchiveConfig{
		Connections: []string{"42"},
		Concurrency: 10,
		BatchSize:   1000,
		BufferSize:  10000,
	}

	tests := []struct {
		name    string
		cfg     ArchiverConfig
		wantErr string
	}{
		{
			name:    "missing instance id",
			cfg:     ArchiverConfig{},
			wantErr: "instance.id is required",
		},
		{
			name: "missing gateway base url",
			cfg: ArchiverConfig{
				Instance: InstanceConfig{ID: "test"},
			},
			wantErr: "gateway.base_url is required",
		},
		{
			name: "missing credentials",
			cfg: ArchiverConfig{
				Instance: InstanceConfig{ID: "test"},
				Gateway:  GatewayConfig{BaseURL: "https://gw"},
			},
			wantErr: "gateway.token or gateway.username/gateway.password is required",
		},
		{
			name: "username without password",
			cfg: ArchiverConfig{
				Instance: InstanceConfig{ID: "test"},
				Gateway:  GatewayConfig{BaseURL: "https://gw", Username: "archiver"},
			},
			wantErr: "gateway.token or gateway.username/gateway.password is required",
		},
		{
			name: "missing postgres host",
			cfg: ArchiverConfig{
				Instance: InstanceConfig{ID: "test"},
				Gateway:  GatewayConfig{BaseURL: "https://gw", Token: "tok"},
			},
			wantErr: "database.postgres.host is required",
		},
		{
			name: "min_conns exceeds max_conns",
			cfg: ArchiverConfig{
				Instance: InstanceConfig{ID: "test"},
				Gateway:  GatewayConfig{BaseURL: "https://gw", Token: "tok"},
				Database: DatabaseConfig{
					Postgres: DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10},
				},
			},
			wantErr: "database.postgres.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name: "no connections configured",
			cfg: ArchiverConfig{
				Instance: InstanceConfig{ID: "test"},
				Gateway:  GatewayConfig{BaseURL: "https://gw", Token: "tok"},
				Database: validDB,
			},
			wantErr: "archive.connections must list at least one identifier",
		},
		{
			name: "invalid health port",
			cfg: ArchiverConfig{
				Instance: InstanceConfig{ID: "test"},
				Gateway:  GatewayConfig{BaseURL: "https://gw", Token: "tok"},
				Database: validDB,
				Archive:  validArchive,
				Health:   HealthConfig{Port: 70000},
			},
			wantErr: "health.port must be between 1 and 65535, got 70000",
		},
		{
			name: "valid config with token",
			cfg: ArchiverConfig{
				Instance: InstanceConfig{ID: "test"},
				Gateway:  GatewayConfig{BaseURL: "https://gw", Token: "tok"},
				Database: validDB,
				Archive:  validArchive,
				Health:   HealthConfig{Port: 8080},
			},
			wantErr: "",
		},
		{
			name: "valid config with credentials",
			cfg: ArchiverConfig{
				Instance: InstanceConfig{ID: "test"},
				Gateway:  GatewayConfig{BaseURL: "https://gw", Username: "archiver", Password: "pass"},
				Database: validDB,
				Archive:  validArchive,
				Health:   HealthConfig{Port: 8080},
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
