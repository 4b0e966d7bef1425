// Package config loads the service configuration from an optional YAML file
// with environment-variable overrides. A .env file is honored when present.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Demo     bool           `yaml:"demo"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects and configures the event store.
// Driver is "memory" or "postgres".
type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	ConnString string `yaml:"conn_string"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when nothing else is specified
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Driver: "memory"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the configuration file at path (empty path skips the file),
// then applies environment overrides on top
func Load(path string) (*Config, error) {
	// Missing .env is fine; it only exists in local setups.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DB_CONN_STR"); v != "" {
		c.Database.ConnString = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_PRETTY"); v == "true" {
		c.Log.Pretty = true
	}
	if v := os.Getenv("DEMO"); v == "true" {
		c.Demo = true
	}
}
