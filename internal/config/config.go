// Package config loads service configuration from STARDOME_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every environment variable name.
const Prefix = "STARDOME_"

// Config is the complete service configuration.
type Config struct {
	HTTPAddr   string     `env:"HTTP_ADDR"   envDefault:":8080"`
	LogLevel   slog.Level `env:"LOG_LEVEL"   envDefault:"INFO"`
	TrustProxy bool       `env:"TRUST_PROXY" envDefault:"false"`

	Auth      Auth      `envPrefix:"AUTH_"`
	EOP       EOP       `envPrefix:"EOP_"`
	Transform Transform `envPrefix:"TRANSFORM_"`
}

// Auth controls the bearer-token guard on mutating endpoints.
type Auth struct {
	Enabled bool   `env:"ENABLED"`
	Token   string `env:"TOKEN"`
}

// EOP controls where Earth orientation data comes from.
type EOP struct {
	FetchEnabled bool          `env:"FETCH_ENABLED" envDefault:"true"`
	SourceURL    string        `env:"SOURCE_URL"`
	CacheDir     string        `env:"CACHE_DIR"     envDefault:"/tmp/stardome/eop"`
	MaxFiles     int           `env:"MAX_FILES"     envDefault:"3"`
	MaxAge       time.Duration `env:"MAX_AGE"       envDefault:"24h"`
}

// Transform bounds the work a single request may ask for.
type Transform struct {
	Workers      int `env:"WORKERS"`
	MaxPositions int `env:"MAX_POSITIONS" envDefault:"100000"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads the configuration from environ instead of the process
// environment. Keys carry the STARDOME_ prefix.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New(Prefix+"HTTP_ADDR must not be empty"))
	}
	if c.Auth.Enabled && c.Auth.Token == "" {
		errs = append(errs, errors.New(Prefix+"AUTH_TOKEN is required when auth is enabled"))
	}
	if c.EOP.MaxFiles < 1 {
		errs = append(errs, fmt.Errorf("%sEOP_MAX_FILES must be at least 1, got %d", Prefix, c.EOP.MaxFiles))
	}
	if c.EOP.MaxAge <= 0 {
		errs = append(errs, fmt.Errorf("%sEOP_MAX_AGE must be positive, got %s", Prefix, c.EOP.MaxAge))
	}
	if c.Transform.Workers < 0 {
		errs = append(errs, fmt.Errorf("%sTRANSFORM_WORKERS must not be negative, got %d", Prefix, c.Transform.Workers))
	}
	if c.Transform.MaxPositions < 1 {
		errs = append(errs, fmt.Errorf("%sTRANSFORM_MAX_POSITIONS must be at least 1, got %d", Prefix, c.Transform.MaxPositions))
	}
	return errors.Join(errs...)
}

// LogValue keeps the auth token out of logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("http_addr", c.HTTPAddr),
		slog.String("log_level", c.LogLevel.String()),
		slog.Bool("trust_proxy", c.TrustProxy),
		slog.Bool("auth_enabled", c.Auth.Enabled),
		slog.Bool("eop_fetch_enabled", c.EOP.FetchEnabled),
		slog.String("eop_source_url", c.EOP.SourceURL),
		slog.String("eop_cache_dir", c.EOP.CacheDir),
		slog.Int("eop_max_files", c.EOP.MaxFiles),
		slog.Duration("eop_max_age", c.EOP.MaxAge),
		slog.Int("transform_workers", c.Transform.Workers),
		slog.Int("transform_max_positions", c.Transform.MaxPositions),
	)
}
