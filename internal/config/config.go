package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs at boot. Values come from the
// environment, optionally overlaid by a YAML file named in CONFIG_FILE.
type Config struct {
	DBPath      string
	ListenAddr  string
	BaseURL     string
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration
}

// fileConfig mirrors Config for the YAML overlay. The expiry is a string
// so the file can say "2h" instead of nanoseconds.
type fileConfig struct {
	DBPath      string `yaml:"db_path"`
	ListenAddr  string `yaml:"listen_addr"`
	BaseURL     string `yaml:"base_url"`
	JWTSecret   string `yaml:"jwt_secret"`
	JWTIssuer   string `yaml:"jwt_issuer"`
	JWTAudience string `yaml:"jwt_audience"`
	JWTExpiry   string `yaml:"jwt_expiry"`
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	config := &Config{
		DBPath:      getEnv("ASSETS_DB", "production_assets.db"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		BaseURL:     os.Getenv("BASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me-before-production"),
		JWTIssuer:   getEnv("JWT_ISS", "asset-tracking-system"),
		JWTAudience: getEnv("JWT_AUD", "asset-tracking-system"),
		JWTExpiry:   24 * time.Hour,
	}

	if expiryStr := os.Getenv("JWT_EXPIRY"); expiryStr != "" {
		if expiry, err := time.ParseDuration(expiryStr); err == nil {
			config.JWTExpiry = expiry
		}
	}

	return config
}

// LoadAndValidate loads configuration, overlays the optional YAML file and
// validates the result.
func LoadAndValidate() (*Config, error) {
	cfg := Load()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayFile applies non-zero values from a YAML file on top of the
// environment-derived config. File values win.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if file.DBPath != "" {
		c.DBPath = file.DBPath
	}
	if file.ListenAddr != "" {
		c.ListenAddr = file.ListenAddr
	}
	if file.BaseURL != "" {
		c.BaseURL = file.BaseURL
	}
	if file.JWTSecret != "" {
		c.JWTSecret = file.JWTSecret
	}
	if file.JWTIssuer != "" {
		c.JWTIssuer = file.JWTIssuer
	}
	if file.JWTAudience != "" {
		c.JWTAudience = file.JWTAudience
	}
	if file.JWTExpiry != "" {
		expiry, err := time.ParseDuration(file.JWTExpiry)
		if err != nil {
			return fmt.Errorf("parse jwt_expiry: %w", err)
		}
		c.JWTExpiry = expiry
	}
	return nil
}

// Validate checks the loaded configuration for unusable values.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if c.ListenAddr == "" {
		return errors.New("listen_addr must not be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret must not be empty")
	}
	if c.JWTIssuer == "" {
		return errors.New("jwt_issuer must not be empty")
	}
	if c.JWTAudience == "" {
		return errors.New("jwt_audience must not be empty")
	}
	if c.JWTExpiry <= 0 {
		return errors.New("jwt_expiry must be positive")
	}
	return nil
}

// DSN returns the driver connection string for the configured database
// file. _txlock=immediate makes every transaction take the write lock at
// BEGIN, which serializes concurrent asset-code allocations; busy_timeout
// makes contending writers wait instead of failing immediately.
func (c *Config) DSN() string {
	return "file:" + c.DBPath + "?_txlock=immediate&_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
