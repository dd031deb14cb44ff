package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix is the prefix of environment variables that override config values.
const EnvPrefix = "RECIPEBOX"

// Backend drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverREST     = "rest"
)

// Auth providers
const (
	ProviderLocal  = "local"
	ProviderGoTrue = "gotrue"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Backend  BackendConfig  `toml:"backend"`
	Auth     AuthConfig     `toml:"auth"`
	Search   SearchConfig   `toml:"search"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains local database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// BackendConfig selects and configures the store recipes are kept in.
type BackendConfig struct {
	Driver    string   `toml:"driver"`
	URL       string   `toml:"url"`
	AnonKey   string   `toml:"anon_key"`
	DSN       string   `toml:"dsn"`
	RateLimit float64  `toml:"rate_limit"`
	Timeout   Duration `toml:"timeout"`
}

// AuthConfig selects the identity provider.
type AuthConfig struct {
	Provider    string `toml:"provider"`
	SessionPath string `toml:"session_path"`
}

// SearchConfig contains search settings.
type SearchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string   `toml:"host"`
	Port      int      `toml:"port"`
	JWTSecret string   `toml:"jwt_secret"`
	TokenTTL  Duration `toml:"token_ttl"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Duration is a [time.Duration] that decodes from TOML strings like "15s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DebounceDelay returns the search debounce delay.
func (c SearchConfig) DebounceDelay() time.Duration {
	if c.DebounceMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Addr returns the host:port the HTTP server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// envOverrides lists the settings that may be supplied through the environment (or a .env file).
//
// Variables are prefixed with [EnvPrefix], e.g. RECIPEBOX_BACKEND_URL.
type envOverrides struct {
	DatabasePath   string `envconfig:"DATABASE_PATH"`
	BackendDriver  string `envconfig:"BACKEND_DRIVER"`
	BackendURL     string `envconfig:"BACKEND_URL"`
	BackendAnonKey string `envconfig:"BACKEND_ANON_KEY"`
	BackendDSN     string `envconfig:"BACKEND_DSN"`
	AuthProvider   string `envconfig:"AUTH_PROVIDER"`
	JWTSecret      string `envconfig:"JWT_SECRET"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads envFile (when it exists) into the process environment and overlays
// any RECIPEBOX_* variables onto config.
func ApplyEnv(config *Config, envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&config.Database.Path, env.DatabasePath)
	overlay(&config.Backend.Driver, env.BackendDriver)
	overlay(&config.Backend.URL, env.BackendURL)
	overlay(&config.Backend.AnonKey, env.BackendAnonKey)
	overlay(&config.Backend.DSN, env.BackendDSN)
	overlay(&config.Auth.Provider, env.AuthProvider)
	overlay(&config.Server.JWTSecret, env.JWTSecret)
	overlay(&config.Log.Level, env.LogLevel)

	return nil
}

// Validate checks that the selected driver and provider have what they need.
func (c *Config) Validate() error {
	switch c.Backend.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for the sqlite backend", ErrInvalidConfig)
		}
	case DriverPostgres:
		if c.Backend.DSN == "" {
			return fmt.Errorf("%w: backend.dsn is required for the postgres backend", ErrInvalidConfig)
		}
	case DriverREST:
		if c.Backend.URL == "" || c.Backend.AnonKey == "" {
			return fmt.Errorf("%w: backend.url and backend.anon_key are required for the rest backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backend driver %q", ErrInvalidConfig, c.Backend.Driver)
	}

	switch c.Auth.Provider {
	case ProviderLocal:
	case ProviderGoTrue:
		if c.Backend.URL == "" || c.Backend.AnonKey == "" {
			return fmt.Errorf("%w: backend.url and backend.anon_key are required for the gotrue provider", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown auth provider %q", ErrInvalidConfig, c.Auth.Provider)
	}

	return nil
}
