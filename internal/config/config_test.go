package config

import (
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	// Load config without a config file (use defaults)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	// Verify some default values
	if cfg.Server.Port != 8087 {
		t.Errorf("Server.Port = %d, want 8087", cfg.Server.Port)
	}

	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}

	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "postgres")
	}

	if cfg.Database.MigrationsPath != "migrations" {
		t.Errorf("Database.MigrationsPath = %q, want %q", cfg.Database.MigrationsPath, "migrations")
	}

	if cfg.Redis.Enabled {
		t.Error("Redis.Enabled should be false by default")
	}

	if cfg.DLQ.Enabled {
		t.Error("DLQ.Enabled should be false by default")
	}

	if cfg.Webhook.MaxPayloadSize != 1048576 {
		t.Errorf("Webhook.MaxPayloadSize = %d, want 1048576", cfg.Webhook.MaxPayloadSize)
	}

	if cfg.Webhook.RateLimitWindow != time.Minute {
		t.Errorf("Webhook.RateLimitWindow = %v, want 1m", cfg.Webhook.RateLimitWindow)
	}

	if cfg.Sync.DeleteMode != "hard" {
		t.Errorf("Sync.DeleteMode = %q, want %q", cfg.Sync.DeleteMode, "hard")
	}

	if cfg.Sync.UnknownEventPolicy != "reject" {
		t.Errorf("Sync.UnknownEventPolicy = %q, want %q", cfg.Sync.UnknownEventPolicy, "reject")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}

	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "soft delete mode is valid",
			mutate:  func(c *Config) { c.Sync.DeleteMode = "soft" },
			wantErr: false,
		},
		{
			name:    "invalid delete mode",
			mutate:  func(c *Config) { c.Sync.DeleteMode = "tombstone" },
			wantErr: true,
		},
		{
			name:    "accept unknown event policy is valid",
			mutate:  func(c *Config) { c.Sync.UnknownEventPolicy = "accept" },
			wantErr: false,
		},
		{
			name:    "invalid unknown event policy",
			mutate:  func(c *Config) { c.Sync.UnknownEventPolicy = "drop" },
			wantErr: true,
		},
		{
			name:    "memory driver is valid",
			mutate:  func(c *Config) { c.Database.Driver = "memory" },
			wantErr: false,
		},
		{
			name:    "invalid database driver",
			mutate:  func(c *Config) { c.Database.Driver = "sqlite" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
