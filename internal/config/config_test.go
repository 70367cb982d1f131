package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/config"
)

// TestLoad tests configuration loading from the environment and the YAML overlay.
//
// WHY: The price loop cadence, the admin gate and the hosted tier switch are all
// driven by configuration. Wrong defaults silently change polling behavior.
func TestLoad(t *testing.T) {
	t.Run("applies defaults when nothing is set", func(t *testing.T) {
		// Setup
		t.Setenv("CONFIG_FILE", "")
		t.Setenv("HOSTED_DB_DSN", "")

		// Execute
		cfg, err := config.Load()

		// Assert
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if cfg.Polling.Interval != 30*time.Second {
			t.Errorf("Expected interval 30s, got %s", cfg.Polling.Interval)
		}
		if cfg.Polling.RequestDelay != 100*time.Millisecond {
			t.Errorf("Expected request delay 100ms, got %s", cfg.Polling.RequestDelay)
		}
		if cfg.Admin.Password != "admin123" {
			t.Errorf("Expected default admin password, got '%s'", cfg.Admin.Password)
		}
		if cfg.Admin.SessionTTL != 24*time.Hour {
			t.Errorf("Expected 24h session TTL, got %s", cfg.Admin.SessionTTL)
		}
		if cfg.Storage.Hosted.HostedEnabled() {
			t.Error("Expected hosted store to be disabled without a DSN")
		}
		if cfg.Server.Addr != cfg.Server.Host+":"+cfg.Server.Port {
			t.Errorf("Expected Addr to combine host and port, got '%s'", cfg.Server.Addr)
		}
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		// Setup
		t.Setenv("CONFIG_FILE", "")
		t.Setenv("POLLING_INTERVAL", "45s")
		t.Setenv("HOSTED_DB_DSN", "file:hosted.db")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

		// Execute
		cfg, err := config.Load()

		// Assert
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if cfg.Polling.Interval != 45*time.Second {
			t.Errorf("Expected interval 45s, got %s", cfg.Polling.Interval)
		}
		if !cfg.Storage.Hosted.HostedEnabled() {
			t.Error("Expected hosted store to be enabled")
		}
		if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
			t.Errorf("Expected two trimmed origins, got %v", cfg.CORS.AllowedOrigins)
		}
	})

	t.Run("yaml file overrides polling but keeps unset keys", func(t *testing.T) {
		// Setup
		path := filepath.Join(t.TempDir(), "tracker.yaml")
		content := "polling:\n  interval: 1m\n  price_api_url: https://prices.example/\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("POLLING_REQUEST_DELAY", "250ms")

		// Execute
		cfg, err := config.Load()

		// Assert
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if cfg.Polling.Interval != time.Minute {
			t.Errorf("Expected interval 1m, got %s", cfg.Polling.Interval)
		}
		if cfg.Polling.RequestDelay != 250*time.Millisecond {
			t.Errorf("Expected env request delay to survive, got %s", cfg.Polling.RequestDelay)
		}
		if cfg.Polling.PriceAPIURL != "https://prices.example" {
			t.Errorf("Expected trailing slash trimmed, got '%s'", cfg.Polling.PriceAPIURL)
		}
	})

	t.Run("postgres settings build a connection string", func(t *testing.T) {
		// Setup
		t.Setenv("CONFIG_FILE", "")
		t.Setenv("HOSTED_DB_DSN", "")
		t.Setenv("HOSTED_DB_DRIVER", "postgres")
		t.Setenv("POSTGRES_HOST", "db.internal")

		// Execute
		cfg, err := config.Load()

		// Assert
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		want := "host=db.internal port=5432 user=postgres dbname=postgres password=postgres sslmode=disable"
		if got := cfg.Storage.Hosted.ConnectionString(); got != want {
			t.Errorf("Expected '%s', got '%s'", want, got)
		}
	})

	t.Run("missing yaml file is an error", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

		if _, err := config.Load(); err == nil {
			t.Error("Expected error for missing config file, got nil")
		}
	})
}
