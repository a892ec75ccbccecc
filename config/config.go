package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service
type Config struct {
	Env        string           `yaml:"env"`
	Server     ServerConfig     `yaml:"server"`
	Data       DataConfig       `yaml:"data"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	S3         S3Config         `yaml:"s3"`
	Redis      RedisConfig      `yaml:"redis"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int    `yaml:"port"`
	Host           string `yaml:"host"`
	GinMode        string `yaml:"gin_mode"`
	FrontendOrigin string `yaml:"frontend_origin"`
}

// Addr returns host:port for http.Server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DataConfig points at the event log the dashboard is built from.
type DataConfig struct {
	Source   string `yaml:"source"`   // path, s3://bucket/key, clickhouse://table or postgres://table
	Timezone string `yaml:"timezone"` // location for timestamps without a zone
}

// Location resolves Timezone, defaulting to UTC.
func (c DataConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ClickHouseConfig holds the native-protocol connection used by clickhouse:// sources
type ClickHouseConfig struct {
	Enabled            bool   `yaml:"enabled"`
	Host               string `yaml:"host"`
	NativePort         int    `yaml:"native_port"`
	Database           string `yaml:"database"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	DialTimeoutSeconds int    `yaml:"dial_timeout_seconds"`
}

func (c ClickHouseConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}

// PostgresConfig holds the connection used by postgres:// sources
type PostgresConfig struct {
	Enabled     bool   `yaml:"enabled"`
	DatabaseURL string `yaml:"database_url"`
}

// S3Config enables s3:// sources
type S3Config struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
}

// RedisConfig enables the rendered-section cache. Empty Addr disables it.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.FrontendOrigin == "" {
		cfg.Server.FrontendOrigin = "http://localhost:3000"
	}
	if cfg.Data.Source == "" {
		cfg.Data.Source = "data/Wise funnel events regional - Data.xlsx"
	}
	if cfg.ClickHouse.NativePort == 0 {
		cfg.ClickHouse.NativePort = 9000
	}
	if cfg.ClickHouse.DialTimeoutSeconds == 0 {
		cfg.ClickHouse.DialTimeoutSeconds = 5
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	if cfg.Redis.TTLSeconds == 0 {
		cfg.Redis.TTLSeconds = 3600
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file is loaded first if present. A missing config file is not an error:
// defaults plus environment are used instead.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Server.GinMode = v
	}
	if v := os.Getenv("FE_ORIGIN"); v != "" {
		cfg.Server.FrontendOrigin = v
	}
	if v := os.Getenv("FUNNEL_SOURCE"); v != "" {
		cfg.Data.Source = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Data.Timezone = v
	}

	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		cfg.ClickHouse.Host = v
		cfg.ClickHouse.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_NATIVE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CLICKHOUSE_NATIVE_PORT: %w", err)
		}
		cfg.ClickHouse.NativePort = port
	}
	if v := os.Getenv("CLICKHOUSE_DB_NAME"); v != "" {
		cfg.ClickHouse.Database = v
	}
	if v := os.Getenv("CLICKHOUSE_USERNAME"); v != "" {
		cfg.ClickHouse.Username = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		cfg.ClickHouse.Password = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DatabaseURL = v
		cfg.Postgres.Enabled = true
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.S3.Region = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	return cfg, nil
}
