package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	defaultJWTSigningKey = "dev-secret-key-change-in-production"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server   Server
	Database Database
	TLS      TLS
	CORS     CORS
	JWT      JWT
	Redis    Redis
	SendGrid SendGrid
}

type Server struct {
	Port string `env:"SERVER_PORT"`
}

type Database struct {
	URL                string        `env:"DATABASE_URL"`
	MaxConns           int           `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns           int           `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnIdleTime    time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	ApplySchemaOnStart bool          `env:"APPLY_SCHEMA_ON_START" envDefault:"true"`
	SchemaPath         string        `env:"SCHEMA_PATH"`
}

// TLS holds environment-driven TLS configuration.
type TLS struct {
	Enabled         bool   `env:"ENABLE_TLS" envDefault:"true"`
	CertPath        string `env:"TLS_CERT_PATH"`
	KeyPath         string `env:"TLS_KEY_PATH"`
	CertPEM         string `env:"TLS_CERT"`
	KeyPEM          string `env:"TLS_KEY"`
	AllowSelfSigned bool   `env:"TLS_SELF_SIGNED" envDefault:"true"`
}

type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
}

type JWT struct {
	SigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"raven"`
	TTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
}

// Redis is optional; an empty URL selects the in-process cache.
type Redis struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"1"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type SendGrid struct {
	APIKey      string `env:"SENDGRID_API_KEY"`
	SenderEmail string `env:"SENDGRID_SENDER_EMAIL"`
	SenderName  string `env:"SENDGRID_SENDER_NAME" envDefault:"Raven"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.AppEnv = strings.ToLower(strings.TrimSpace(c.AppEnv))
	if c.AppEnv == "" {
		c.AppEnv = EnvDevelopment
	}
	// TLS is always on in production.
	if c.AppEnv == EnvProduction {
		c.TLS.Enabled = true
	}

	origins := make([]string, 0, len(c.CORS.AllowedOrigins))
	for _, o := range c.CORS.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.CORS.AllowedOrigins = origins

	if c.Server.Port == "" {
		if c.TLS.Enabled {
			c.Server.Port = "8443"
		} else {
			c.Server.Port = "8080"
		}
	}
}

func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Validate ensures the settings are safe for the selected environment.
func (c Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if !c.TLS.Enabled {
		return errors.New("TLS must be enabled in production")
	}
	if c.TLS.CertPath == "" || c.TLS.KeyPath == "" {
		return errors.New("TLS_CERT_PATH and TLS_KEY_PATH are required in production")
	}
	if c.JWT.SigningKey == "" || c.JWT.SigningKey == defaultJWTSigningKey {
		return errors.New("JWT_SIGNING_KEY must be set in production")
	}
	return nil
}
