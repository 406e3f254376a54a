package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"` // Listen address, e.g. ":3000".
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // SQLite path or PostgreSQL DSN.
}

// JWTConfig holds token issuance settings.
type JWTConfig struct {
	Secret        string `yaml:"secret"`
	ExpiryMinutes int    `yaml:"expiry_minutes"`
}

// Expiry returns the token lifetime as a duration.
func (j JWTConfig) Expiry() time.Duration {
	if j.ExpiryMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpiryMinutes) * time.Minute
}

// LogConfig holds logging settings. With File set, output rotates through
// lumberjack; otherwise it goes to stderr.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// BootstrapConfig describes the admin account seeded on first run so the
// instance is reachable before any other user exists.
type BootstrapConfig struct {
	AdminName        string `yaml:"admin_name"`
	AdminToken       string `yaml:"admin_token"`
	AdminProxyAmount int64  `yaml:"admin_proxy_amount"`
}

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

// Default returns the configuration used when no file or env override is
// present.
func Default() Config {
	return Config{
		Server:   ServerConfig{Addr: ":3000"},
		Database: DatabaseConfig{DSN: "file:proxyvote.db"},
		JWT:      JWTConfig{ExpiryMinutes: 60},
		Log:      LogConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 5, MaxAgeDays: 30},
		Bootstrap: BootstrapConfig{
			AdminName:        "admin",
			AdminProxyAmount: 1,
		},
	}
}

// Load reads the YAML config at path (when it exists) over the defaults and
// applies environment overrides last.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, errRead := os.ReadFile(path)
		switch {
		case errRead == nil:
			if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
			}
		case os.IsNotExist(errRead):
			// fall through to env overrides
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
		}
	}

	applyEnvOverrides(&cfg)

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return Config{}, fmt.Errorf("config: jwt secret is required (set jwt.secret or PROXYVOTE_JWT_SECRET)")
	}
	return cfg, nil
}

// applyEnvOverrides replaces config values with PROXYVOTE_* env vars.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PROXYVOTE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PROXYVOTE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("PROXYVOTE_JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("PROXYVOTE_JWT_EXPIRY_MINUTES"); v != "" {
		if minutes, errParse := strconv.Atoi(v); errParse == nil && minutes > 0 {
			cfg.JWT.ExpiryMinutes = minutes
		}
	}
	if v := os.Getenv("PROXYVOTE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PROXYVOTE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("PROXYVOTE_BOOTSTRAP_ADMIN"); v != "" {
		cfg.Bootstrap.AdminName = v
	}
	if v := os.Getenv("PROXYVOTE_BOOTSTRAP_TOKEN"); v != "" {
		cfg.Bootstrap.AdminToken = v
	}
	if v := os.Getenv("PROXYVOTE_BOOTSTRAP_PROXY_AMOUNT"); v != "" {
		if amount, errParse := strconv.ParseInt(v, 10, 64); errParse == nil && amount > 0 {
			cfg.Bootstrap.AdminProxyAmount = amount
		}
	}
}
