package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port     string `env:"PORT"       envDefault:"3000"`
	LogLevel string `env:"LOG_LEVEL"  envDefault:"info"`
	// LogFormat is "json" or "console".
	LogFormat      string        `env:"LOG_FORMAT"      envDefault:"json"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	AlexaVerify             bool          `env:"ALEXA_VERIFY"              envDefault:"true"`
	AlexaSkillID            string        `env:"ALEXA_SKILL_ID"`
	AlexaTimestampTolerance time.Duration `env:"ALEXA_TIMESTAMP_TOLERANCE" envDefault:"150s"`
	AlexaCertFetchTimeout   time.Duration `env:"ALEXA_CERT_FETCH_TIMEOUT"  envDefault:"5s"`

	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`
	OpsJWTSecret   string        `env:"OPS_JWT_SECRET"`
	OpsTokenTTL    time.Duration `env:"OPS_TOKEN_TTL"   envDefault:"24h"`
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load parses and validates the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration an empty environment would produce.
func Default() Config {
	return Config{
		Port:                    "3000",
		LogLevel:                "info",
		LogFormat:               "json",
		RequestTimeout:          10 * time.Second,
		AlexaVerify:             true,
		AlexaTimestampTolerance: 150 * time.Second,
		AlexaCertFetchTimeout:   5 * time.Second,
		MetricsEnabled:          true,
		OpsTokenTTL:             24 * time.Hour,
	}
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.AlexaTimestampTolerance <= 0 {
		errs = append(errs, errors.New("ALEXA_TIMESTAMP_TOLERANCE must be positive"))
	}
	if c.AlexaCertFetchTimeout <= 0 {
		errs = append(errs, errors.New("ALEXA_CERT_FETCH_TIMEOUT must be positive"))
	}
	if c.OpsTokenTTL <= 0 {
		errs = append(errs, errors.New("OPS_TOKEN_TTL must be positive"))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q: want json or console", c.LogFormat))
	}
	return errors.Join(errs...)
}
