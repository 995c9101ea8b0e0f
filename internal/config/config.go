package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	JWT       JWTConfig       `envconfig:"JWT"`
	Database  DatabaseConfig  `envconfig:"DATABASE"`
	Admin     AdminConfig     `envconfig:"ADMIN"`
	Export    ExportConfig    `envconfig:"EXPORT"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
	CORS      CORSConfig      `envconfig:"CORS"`
	Log       LogConfig       `envconfig:"LOG"`
	Metrics   MetricsConfig   `envconfig:"METRICS"`
}

type ServerConfig struct {
	// Port keeps its explicit tag on purpose: when SERVER_PORT is unset,
	// envconfig falls back to the bare tag name, so a platform-injected
	// $PORT (Heroku, Cloud Run) is honored. No other field carries a
	// single-word tag; the bare-name fallback would let ambient variables
	// leak into the config.
	Port         string        `envconfig:"PORT" default:"5000"`
	Environment  string        `default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

type JWTConfig struct {
	// Secret signs self-issued admin tokens. There is no default on purpose:
	// the process must not come up with a guessable signing key. Untagged so
	// a stray $SECRET in the environment cannot become the key; only
	// JWT_SECRET is read.
	Secret   string
	Issuer   string        `default:"rsvp-api"`
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"2h"`
}

type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" is accepted for tests.
	// Deliberately untagged: an explicit envconfig tag also resolves from
	// the bare, unprefixed variable, and $PATH is set in every environment.
	// The key derives from the field name under the prefix: DATABASE_PATH.
	Path string `default:"rsvp.db"`
}

type AdminConfig struct {
	// Username/Password seed the single admin credential on first boot when
	// the admins table is empty. Ignored afterwards. Untagged so that bare
	// $USERNAME or $PASSWORD can never leak in; only ADMIN_USERNAME and
	// ADMIN_PASSWORD are read.
	Username string `default:""`
	Password string `default:""`
}

type ExportConfig struct {
	// Dir receives the transient CSV files served by the export endpoint.
	Dir string `default:""`
}

type RateLimitConfig struct {
	// Applied to the public RSVP endpoint only.
	Max     int           `default:"10"`
	Window  time.Duration `default:"1m"`
	Enabled bool          `default:"true"`
}

type CORSConfig struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

type LogConfig struct {
	Level  string `default:"info"`
	Format string `default:"json"`
}

type MetricsConfig struct {
	// Untagged for the same reason as DatabaseConfig.Path: no fallback to
	// the ambient $PATH. The key is METRICS_PATH.
	Path string `default:"/metrics"`
}

func Load() (*Config, error) {
	// Local development parity with the dashboard tooling: a .env file is
	// optional, real environments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", cfg.Server.Port)
	}

	if cfg.JWT.TokenTTL <= 0 {
		return fmt.Errorf("invalid token TTL: %s", cfg.JWT.TokenTTL)
	}

	if cfg.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}

	return nil
}
