package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendValkey   = "valkey"
)

type App struct {
	Env             string        `yaml:"env"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       int           `yaml:"rate_limit_per_min"`
	CORSOrigin      string        `yaml:"cors_origin"`
	LogLevel        string        `yaml:"log_level"`
}

func (a *App) Addr() string { return fmt.Sprintf(":%d", a.Port) }

// Development reports whether the service runs with developer defaults.
func (a *App) Development() bool { return a.Env == "" || a.Env == "development" }

type Store struct {
	Backend string        `yaml:"backend"`
	Latency time.Duration `yaml:"latency"`
	Seed    bool          `yaml:"seed"`
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

type Valkey struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Prefix   string `yaml:"prefix"`
}

type JWT struct {
	HSSecret string `yaml:"hs_secret"`
}

type Config struct {
	App      App      `yaml:"app"`
	Store    Store    `yaml:"store"`
	Postgres Postgres `yaml:"postgres"`
	Valkey   Valkey   `yaml:"valkey"`
	JWT      JWT      `yaml:"jwt"`
}

func defaults() *Config {
	return &Config{
		App: App{
			Env:             "development",
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       120,
			CORSOrigin:      "http://127.0.0.1:5173",
			LogLevel:        "info",
		},
		Store: Store{
			Backend: BackendMemory,
			Seed:    true,
		},
		Valkey: Valkey{Prefix: "feed"},
	}
}

// Load reads path (skipped when empty or missing), then .env, then the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()
	if err := overrideFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("SERVICE_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERVICE_PORT: %w", err)
		}
		cfg.App.Port = n
	}
	if v := os.Getenv("RATE_LIMIT_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_PER_MIN: %w", err)
		}
		cfg.App.RateLimit = n
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.App.CORSOrigin = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}

	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.Store.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("STORE_LATENCY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STORE_LATENCY: %w", err)
		}
		cfg.Store.Latency = d
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}

	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
	if v := os.Getenv("VALKEY_PASSWORD"); v != "" {
		cfg.Valkey.Password = v
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.HSSecret = v
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		return errors.New("app.port missing or invalid")
	}
	if cfg.App.RateLimit < 0 {
		return errors.New("app.rate_limit_per_min must not be negative")
	}
	if cfg.Store.Latency < 0 {
		return errors.New("store.latency must not be negative")
	}

	switch cfg.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn required for the postgres backend")
		}
	case BackendValkey:
		if cfg.Valkey.Addr == "" {
			return errors.New("valkey.addr required for the valkey backend")
		}
	default:
		return fmt.Errorf("invalid store.backend %q (use memory, postgres or valkey)", cfg.Store.Backend)
	}

	if cfg.JWT.HSSecret == "" {
		return errors.New("jwt.hs_secret missing")
	}
	return nil
}
