package config

import (
	"RandomWalkService/internal/core"
	"RandomWalkService/internal/data"
	"RandomWalkService/internal/mock"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	App     AppConfig     `yaml:"app" envPrefix:"APP_"`
	Upload  UploadConfig  `yaml:"upload" envPrefix:"UPLOAD_"`
	Session SessionConfig `yaml:"session" envPrefix:"SESSION_"`
	Walk    WalkConfig    `yaml:"walk" envPrefix:"WALK_"`
}

// AppConfig configures the process and its logging.
type AppConfig struct {
	Name      string `yaml:"name" env:"NAME"`
	Port      int    `yaml:"port" env:"PORT"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
}

// UploadConfig limits uploaded files.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes" env:"MAX_BYTES"`
}

// SessionConfig controls how long idle sessions are kept.
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl" env:"TTL"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
	MaxSessions   int           `yaml:"max_sessions" env:"MAX"`
}

// WalkConfig parameterises the default random walk.
type WalkConfig struct {
	Length       int     `yaml:"length" env:"LENGTH"`
	StartPrice   float64 `yaml:"start_price" env:"START_PRICE"`
	StepMean     float64 `yaml:"step_mean" env:"STEP_MEAN"`
	StepStdDev   float64 `yaml:"step_stddev" env:"STEP_STDDEV"`
	Distribution string  `yaml:"distribution" env:"DISTRIBUTION"`
	Seed         int64   `yaml:"seed" env:"SEED"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	gen := mock.DefaultGeneratorConfig()
	storage := data.DefaultStorageConfig()
	return &Config{
		App: AppConfig{
			Name:      "random-walk-service",
			Port:      8080,
			LogLevel:  "info",
			LogFormat: "text",
		},
		Upload: UploadConfig{
			MaxBytes: core.DefaultMaxUploadBytes,
		},
		Session: SessionConfig{
			TTL:           storage.SessionTTL,
			SweepInterval: time.Minute,
			MaxSessions:   storage.MaxSessions,
		},
		Walk: WalkConfig{
			Length:       gen.Length,
			StartPrice:   gen.StartPrice,
			StepMean:     gen.StepMean,
			StepStdDev:   gen.StepStdDev,
			Distribution: gen.Distribution,
			Seed:         gen.Seed,
		},
	}
}

// Load starts from the defaults, applies the YAML file at path when it exists,
// then a .env file and finally environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(raw) > 0 {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Load .env file if it exists
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.App.Port < 0 || c.App.Port > 65535 {
		return fmt.Errorf("app port %d out of range", c.App.Port)
	}
	if _, err := ParseLevel(c.App.LogLevel); err != nil {
		return err
	}
	if c.App.LogFormat != "text" && c.App.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q (supported: text, json)", c.App.LogFormat)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload max bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session ttl must not be negative, got %s", c.Session.TTL)
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be positive, got %s", c.Session.SweepInterval)
	}
	if err := c.GeneratorConfig().Validate(); err != nil {
		return fmt.Errorf("walk: %w", err)
	}
	return nil
}

// GeneratorConfig converts the walk section for the generator.
func (c *Config) GeneratorConfig() mock.GeneratorConfig {
	return mock.GeneratorConfig{
		Length:       c.Walk.Length,
		StartPrice:   c.Walk.StartPrice,
		StepMean:     c.Walk.StepMean,
		StepStdDev:   c.Walk.StepStdDev,
		Distribution: c.Walk.Distribution,
		Seed:         c.Walk.Seed,
	}
}

// StorageConfig converts the session section for the session storage.
func (c *Config) StorageConfig() data.StorageConfig {
	return data.StorageConfig{
		MaxSessions: c.Session.MaxSessions,
		SessionTTL:  c.Session.TTL,
	}
}
