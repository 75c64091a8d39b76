package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers for the workspace document.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverFile     = "file"
	DriverDrive    = "drive"
)

type ServerConfig struct {
	Port   string `mapstructure:"port"`
	AppURL string `mapstructure:"app_url"`
}

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	InviteSecret string        `mapstructure:"invite_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

type StorageConfig struct {
	Driver       string        `mapstructure:"storage_driver"`
	DatabaseURL  string        `mapstructure:"database_url"`
	SQLitePath   string        `mapstructure:"sqlite_path"`
	FileDir      string        `mapstructure:"file_store_dir"`
	SyncDebounce time.Duration `mapstructure:"sync_debounce"`
}

type CacheConfig struct {
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"cache_ttl"`
}

type MailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"mail_from"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:",squash"`
	Auth    AuthConfig    `mapstructure:",squash"`
	Storage StorageConfig `mapstructure:",squash"`
	Cache   CacheConfig   `mapstructure:",squash"`
	Mail    MailConfig    `mapstructure:",squash"`
}

var keys = map[string]interface{}{
	"port":           "3000",
	"app_url":        "http://localhost:3000",
	"jwt_secret":     "",
	"invite_secret":  "",
	"token_ttl":      "24h",
	"storage_driver": DriverSQLite,
	"database_url":   "",
	"sqlite_path":    "data/cashbooks.db",
	"file_store_dir": "data/workspaces",
	"sync_debounce":  "1s",
	"redis_addr":     "",
	"cache_ttl":      "30m",
	"resend_api_key": "",
	"mail_from":      "onboarding@resend.dev",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, relying on system env")
	}
	return FromViper(viper.New())
}

// FromViper builds a Config from v, registering defaults and env bindings.
func FromViper(v *viper.Viper) (*Config, error) {
	for key, def := range keys {
		v.SetDefault(key, def)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	switch c.Storage.Driver {
	case DriverPostgres, DriverSQLite, DriverFile, DriverDrive:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if c.Auth.InviteSecret == "" {
		c.Auth.InviteSecret = c.Auth.JWTSecret
	}
	return &c, nil
}
