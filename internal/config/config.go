// Package config loads server settings from .env, an optional YAML file and
// the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sudo-init-do/campusgigs/internal/db"
	"github.com/sudo-init-do/campusgigs/internal/marketplace"
	"github.com/sudo-init-do/campusgigs/internal/store/backend"
)

type Config struct {
	Port            int     `yaml:"port" env:"PORT"`
	StoreDriver     string  `yaml:"store_driver" env:"STORE_DRIVER"`
	DataFile        string  `yaml:"data_file" env:"DATA_FILE"`
	DatabaseURL     string  `yaml:"database_url" env:"DATABASE_URL"`
	DB              DB      `yaml:"db"`
	SQLitePath      string  `yaml:"sqlite_path" env:"SQLITE_PATH"`
	DescriptionMin  int     `yaml:"description_min" env:"DESCRIPTION_MIN"`
	DescriptionUnit string  `yaml:"description_unit" env:"DESCRIPTION_UNIT"`
	LogLevel        string  `yaml:"log_level" env:"LOG_LEVEL"`
	LogPretty       bool    `yaml:"log_pretty" env:"LOG_PRETTY"`
	LoginRateLimit  float64 `yaml:"login_rate_limit" env:"LOGIN_RATE_LIMIT"`
	CORSOrigins     string  `yaml:"cors_origins" env:"CORS_ORIGINS"`
}

// DB holds discrete Postgres settings, used when DatabaseURL is empty.
type DB struct {
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     string `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Port:            4000,
		StoreDriver:     backend.DriverJSON,
		DataFile:        "data/db.json",
		DB:              DB{Host: "localhost", Port: "5432"},
		SQLitePath:      "data/campusgigs.db",
		DescriptionMin:  marketplace.DefaultDescriptionPolicy.Min,
		DescriptionUnit: string(marketplace.DefaultDescriptionPolicy.Unit),
		LogLevel:        "info",
		LoginRateLimit:  20,
		CORSOrigins:     "*",
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case backend.DriverJSON, backend.DriverPostgres, backend.DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DescriptionMin < 0 {
		return fmt.Errorf("description minimum must not be negative")
	}
	if _, err := marketplace.ParseLengthUnit(c.DescriptionUnit); err != nil {
		return err
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("login rate limit must be positive")
	}
	return nil
}

// DescriptionPolicy is the configured listing description rule.
func (c *Config) DescriptionPolicy() marketplace.DescriptionPolicy {
	unit, _ := marketplace.ParseLengthUnit(c.DescriptionUnit)
	return marketplace.DescriptionPolicy{Unit: unit, Min: c.DescriptionMin}
}

// DSN is DatabaseURL, or a URL assembled from the DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return db.Params{
		User:     c.DB.User,
		Password: c.DB.Password,
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		Name:     c.DB.Name,
	}.DSN()
}

func (c *Config) Backend() backend.Options {
	opts := backend.Options{Driver: c.StoreDriver}
	switch c.StoreDriver {
	case backend.DriverJSON:
		opts.Path = c.DataFile
	case backend.DriverSQLite:
		opts.Path = c.SQLitePath
	case backend.DriverPostgres:
		opts.DSN = c.DSN()
	}
	return opts
}

// AllowOrigins splits CORSOrigins on commas.
func (c *Config) AllowOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
