package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"

	"tidemark/internal/config"
)

const (
	defaultRunAddress      = ":8080"
	defaultTokenTTL        = 30 * 24 * time.Hour
	defaultShutdownTimeout = 10 * time.Second
	defaultTokenInfoURL    = "https://oauth2.googleapis.com/tokeninfo"
)

type Config struct {
	Env    string `mapstructure:"app_env"`
	DB     DB     `mapstructure:",squash"`
	Server Server `mapstructure:",squash"`
	Auth   Auth   `mapstructure:",squash"`
}

type DB struct {
	DatabaseURI string `mapstructure:"database_uri"`
	Migrations  string `mapstructure:"migrations_path"`
}

type Server struct {
	RunAddress      string        `mapstructure:"run_address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Auth struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	TokenInfoURL string        `mapstructure:"provider_tokeninfo_url"`
}

// MustLoad reads .env, then the environment. It exits on an invalid configuration.
func MustLoad() *Config {
	if _, err := config.LoadDotEnv(".env", "../../.env"); err != nil {
		log.Printf("dotenv: %v", err)
	}

	cfg, err := Load(viper.New())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Load builds the configuration from v after applying the defaults.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetDefault("app_env", config.EnvLocal)
	v.SetDefault("run_address", defaultRunAddress)
	v.SetDefault("shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("token_ttl", defaultTokenTTL)
	v.SetDefault("provider_tokeninfo_url", defaultTokenInfoURL)
	v.SetDefault("database_uri", "")
	v.SetDefault("migrations_path", "")
	v.SetDefault("jwt_secret", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !config.ValidEnv(c.Env) {
		return fmt.Errorf("app_env must be one of local, dev, prod, got %q", c.Env)
	}
	if c.DB.DatabaseURI == "" {
		return fmt.Errorf("database_uri is required")
	}
	if c.Auth.JWTSecret == "" {
		if c.IsProd() {
			return fmt.Errorf("jwt_secret is required in prod")
		}
		c.Auth.JWTSecret = "tidemark-dev-secret"
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.Env == config.EnvProd
}

func (c *Config) IsDev() bool {
	return c.Env == config.EnvDev
}

func (c *Config) IsLocal() bool {
	return c.Env == config.EnvLocal
}
