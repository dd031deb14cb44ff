package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./recipebox.db" {
			t.Errorf("expected database path ./recipebox.db, got %s", config.Database.Path)
		}
		if config.Backend.Driver != DriverSQLite {
			t.Errorf("expected sqlite driver, got %s", config.Backend.Driver)
		}
		if config.Auth.Provider != ProviderLocal {
			t.Errorf("expected local auth provider, got %s", config.Auth.Provider)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.Search.DebounceDelay() != 300*time.Millisecond {
			t.Errorf("expected 300ms debounce, got %v", config.Search.DebounceDelay())
		}
		if config.Server.TokenTTL.Duration != 24*time.Hour {
			t.Errorf("expected 24h token ttl, got %v", config.Server.TokenTTL.Duration)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[database]
path = "/custom/path.db"

[backend]
driver = "rest"
url = "https://project.supabase.co"
anon_key = "anon"
timeout = "5s"

[auth]
provider = "gotrue"

[search]
debounce_ms = 150
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Backend.Timeout.Duration != 5*time.Second {
			t.Errorf("expected 5s timeout, got %v", config.Backend.Timeout.Duration)
		}
		if config.Search.DebounceDelay() != 150*time.Millisecond {
			t.Errorf("expected 150ms debounce, got %v", config.Search.DebounceDelay())
		}
		if config.Server.Port != 3000 {
			t.Errorf("unset values should keep defaults, got port %d", config.Server.Port)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("LoadConfig With Bad Duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[backend]\ntimeout = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("RECIPEBOX_BACKEND_URL=https://from-dotenv.example\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("RECIPEBOX_BACKEND_URL", "")
		os.Unsetenv("RECIPEBOX_BACKEND_URL")
		t.Setenv("RECIPEBOX_LOG_LEVEL", "debug")

		config := DefaultConfig()
		if err := ApplyEnv(config, envPath); err != nil {
			t.Fatalf("ApplyEnv failed: %v", err)
		}

		if config.Backend.URL != "https://from-dotenv.example" {
			t.Errorf("expected url from .env, got %q", config.Backend.URL)
		}
		if config.Log.Level != "debug" {
			t.Errorf("expected debug level from env, got %q", config.Log.Level)
		}
		if config.Database.Path != "./recipebox.db" {
			t.Errorf("unset variables should not override, got %q", config.Database.Path)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tt := []struct {
			name   string
			mutate func(*Config)
		}{
			{"unknown driver", func(c *Config) { c.Backend.Driver = "mongo" }},
			{"postgres without dsn", func(c *Config) { c.Backend.Driver = DriverPostgres }},
			{"rest without url", func(c *Config) { c.Backend.Driver = DriverREST }},
			{"gotrue without key", func(c *Config) { c.Auth.Provider = ProviderGoTrue }},
			{"unknown provider", func(c *Config) { c.Auth.Provider = "ldap" }},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				config := DefaultConfig()
				tc.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}
