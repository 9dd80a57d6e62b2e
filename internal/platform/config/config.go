package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr               string `env:"APP_ADDR" envDefault:":8080"`
	DatabaseURL        string `env:"DATABASE_URL"`
	JWTSecret          string `env:"JWT_SECRET"`
	DataEncryptionKey  string `env:"DATA_ENCRYPTION_KEY"`
	FrontendDir        string `env:"FRONTEND_DIR" envDefault:"frontend/dist"`
	Environment        string `env:"APP_ENV" envDefault:"development"`
	SeedTenantName     string `env:"SEED_TENANT_NAME" envDefault:"Default Tenant"`
	SeedAdminEmail     string `env:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword  string `env:"SEED_ADMIN_PASSWORD"`
	RunMigrations      bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	RunSeed            bool   `env:"RUN_SEED" envDefault:"true"`
	MaxBodyBytes       int64  `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	MetricsEnabled     bool   `env:"METRICS_ENABLED" envDefault:"true"`
	DefaultLanguage    string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	DefaultPageSize    int    `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize        int    `env:"MAX_PAGE_SIZE" envDefault:"100"`
	Log                LogConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Output string `env:"LOG_OUTPUT" envDefault:"stdout"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.DefaultPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive")
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE must be at least DEFAULT_PAGE_SIZE")
	}
	return nil
}
