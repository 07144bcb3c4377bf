package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers for content records.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// DefaultJWTSecret is the placeholder shipped in the sample config. The server
// refuses to sign or verify tokens with it.
const DefaultJWTSecret = "change-this-to-a-secure-random-string"

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Storage struct {
		Driver string `yaml:"driver"`
		Seed   bool   `yaml:"seed"`
	} `yaml:"storage"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Auth struct {
		JWTSecret         string `yaml:"jwt_secret"`
		AdminEmail        string `yaml:"admin_email"`
		AdminPasswordHash string `yaml:"admin_password_hash"`
		AdminTokenTTL     string `yaml:"admin_token_ttl"`
	} `yaml:"auth"`
	Sweeper struct {
		Interval  string `yaml:"interval"`
		Retention string `yaml:"retention"`
	} `yaml:"sweeper"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "pretty"
	cfg.Storage.Driver = DriverMemory
	cfg.Storage.Seed = true
	cfg.SQLite.Path = "data/quizverse.db"
	cfg.Redis.TTL = "30m"
	cfg.Quiz.TTL = "10m"
	cfg.Auth.JWTSecret = DefaultJWTSecret
	cfg.Auth.AdminTokenTTL = "12h"
	cfg.Sweeper.Interval = "1m"
	cfg.Sweeper.Retention = "30m"
	return cfg
}

// Load reads YAML config from path on top of the defaults, then applies
// environment overrides. A .env file is loaded first if present. A missing
// config file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Server.Port, "PORT")
	setFromEnv(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setFromEnv(&cfg.Redis.Addr, "REDIS_ADDR")
	setFromEnv(&cfg.Postgres.URL, "DATABASE_URL")
	setFromEnv(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setFromEnv(&cfg.Log.Level, "LOG_LEVEL")
	setFromEnv(&cfg.Log.Format, "LOG_FORMAT")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, o)
			}
		}
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	case DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("storage driver %q needs redis.addr", c.Storage.Driver)
		}
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("storage driver %q needs postgres.url", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// CheckJWTSecret fails when the token secret is empty or still the placeholder.
func (c Config) CheckJWTSecret() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" || secret == DefaultJWTSecret {
		return errors.New("auth.jwt_secret is empty or the default placeholder; set jwt_secret or JWT_SECRET")
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
