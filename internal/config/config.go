package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

const devSecret = "dev-secret-change-me"

// Config holds all application configuration.
type Config struct {
	Database        DatabaseConfig `yaml:"database"`
	HTTP            HTTPConfig     `yaml:"http"`
	GRPC            GRPCConfig     `yaml:"grpc"`
	Auth            AuthConfig     `yaml:"auth"`
	Log             LogConfig      `yaml:"log"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite3 or pgx
	DSN    string `yaml:"dsn"`    // file path for sqlite3, connection URL for pgx
}

// HTTPConfig contains REST server settings.
type HTTPConfig struct {
	Address string `yaml:"address"`
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string `yaml:"address"` // empty disables the gRPC server
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret             string        `yaml:"jwt_secret"`
	TokenTTL              time.Duration `yaml:"token_ttl"`
	AllowSuperadminSignup bool          `yaml:"allow_superadmin_signup"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "app.db",
		},
		HTTP: HTTPConfig{Address: ":5000"},
		GRPC: GRPCConfig{Address: ":50051"},
		Auth: AuthConfig{TokenTTL: 72 * time.Hour},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load reads the optional YAML file at path (or $CONFIG_FILE), then applies
// environment overrides. JWT_SECRET must end up non-empty.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a fixed JWT secret when none is set.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devSecret
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_DSN", getEnv("DB_PATH", c.Database.DSN))
	c.HTTP.Address = getEnv("HTTP_ADDRESS", c.HTTP.Address)
	c.GRPC.Address = getEnv("GRPC_ADDRESS", c.GRPC.Address)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	var err error
	if c.Auth.TokenTTL, err = getEnvDuration("JWT_TTL", c.Auth.TokenTTL); err != nil {
		return err
	}
	if c.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout); err != nil {
		return err
	}
	if c.Auth.AllowSuperadminSignup, err = getEnvBool("ALLOW_SUPERADMIN_SIGNUP", c.Auth.AllowSuperadminSignup); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q (want %s or %s)", c.Database.Driver, DriverSQLite, DriverPostgres)
	}
	if c.HTTP.Address == "" {
		return errors.New("http address must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvBool retrieves an environment variable as a bool with a default fallback.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid bool for %s: %w", key, err)
		}
		return b, nil
	}
	return defaultVal, nil
}

// getEnvDuration retrieves an environment variable as a duration with a default fallback.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, gRPC: %s, Auth: *** (masked) ***, Log: %s/%s}",
		c.Database.Driver, c.HTTP.Address, c.GRPC.Address, c.Log.Level, c.Log.Format)
}
