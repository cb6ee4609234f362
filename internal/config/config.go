package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultJWTSecret is only accepted outside production.
const DefaultJWTSecret = "change-me-winery-intranet-secret"

// Config holds runtime configuration read from the environment.
type Config struct {
	AppName string `envconfig:"APP_NAME" default:"Winery Supply Chain v1.0"`
	AppEnv  string `envconfig:"APP_ENV" default:"development"`
	Port    string `envconfig:"PORT" default:"3000"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	DBDriver        string `envconfig:"DB_DRIVER" default:"postgres"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DBHost          string `envconfig:"DB_HOST" default:"localhost"`
	DBUser          string `envconfig:"DB_USER" default:"postgres"`
	DBPassword      string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName          string `envconfig:"DB_NAME" default:"winery"`
	DBPort          string `envconfig:"DB_PORT" default:"5432"`
	DBDebug         bool   `envconfig:"DB_DEBUG" default:"false"`
	DBSQLMigrations bool   `envconfig:"DB_SQL_MIGRATIONS" default:"false"`

	JWTSecret          string        `envconfig:"JWT_SECRET" default:"change-me-winery-intranet-secret"`
	JWTTTL             time.Duration `envconfig:"JWT_TTL" default:"24h"`
	SessionIdleTimeout time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`

	CORSOrigins    string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	LoginRateLimit int    `envconfig:"LOGIN_RATE_LIMIT" default:"10"`

	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD" default:"admin123"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return errors.New("config: JWT_SECRET must be set in production")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("config: JWT_SECRET must be at least 16 characters")
	}
	if c.LoginRateLimit <= 0 {
		return errors.New("config: LOGIN_RATE_LIMIT must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// DSN returns DATABASE_URL or assembles one from the DB_* parts.
// For sqlite the DB_NAME is used as the file name.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBDriver == "sqlite" {
		return c.DBName + ".db"
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// AllowedOrigins normalizes the comma separated CORS origins list.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}
