// Package config loads server settings from a YAML file and the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"prod"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"./data/sla.db"`
	HTTPServer  `yaml:"http_server"`
	Engine      `yaml:"engine"`
	CORS        `yaml:"cors"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Engine struct {
	// StepBudget caps how many calendar days a deadline walk may cover.
	StepBudget int `yaml:"step_budget" env:"ENGINE_STEP_BUDGET" env-default:"732"`
	// LeaveLookahead bounds the window of approved leaves fetched per request.
	LeaveLookahead time.Duration `yaml:"leave_lookahead" env:"ENGINE_LEAVE_LOOKAHEAD" env-default:"1440h"`
}

// CORS origins. Empty means api.DefaultAllowedOrigins.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// Load reads the YAML file at path, with environment overrides. An empty
// path reads the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from env: %w", err)
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load that exits on failure. An empty path falls back to
// CONFIG_PATH.
func MustLoad(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("env must be one of %s, %s, %s; got %q", EnvLocal, EnvDev, EnvProd, c.Env)
	}
	if c.Engine.StepBudget <= 0 {
		return fmt.Errorf("engine.step_budget must be positive, got %d", c.Engine.StepBudget)
	}
	if c.Engine.LeaveLookahead <= 0 {
		return fmt.Errorf("engine.leave_lookahead must be positive, got %s", c.Engine.LeaveLookahead)
	}
	return nil
}
