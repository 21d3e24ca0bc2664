package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"tidemark/internal/config"
)

const (
	appName              = "tidemark"
	defaultServerURL     = "http://localhost:8080"
	defaultPeerURL       = "http://127.0.0.1:47615"
	defaultPollInterval  = 4 * time.Second
	defaultProbeInterval = 10 * time.Second
	defaultProbeTimeout  = 3 * time.Second
	defaultPushTimeout   = 5 * time.Second
	defaultBufferLimit   = 100
	dbFileName           = "tidemark.db"
)

type Config struct {
	Env       string `mapstructure:"app_env"`
	ServerURL string `mapstructure:"server_url"`
	DataDir   string `mapstructure:"data_dir"`
	LogFile   string `mapstructure:"log_file"`
	Sync      Sync   `mapstructure:",squash"`
	Direct    Direct `mapstructure:",squash"`
}

type Sync struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type Direct struct {
	PeerURL       string        `mapstructure:"peer_url"`
	PeerListen    string        `mapstructure:"peer_listen"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	PushTimeout   time.Duration `mapstructure:"push_timeout"`
	BufferLimit   int           `mapstructure:"buffer_limit"`
}

// MustLoad reads .env, the optional config file and the environment. It exits on error.
func MustLoad(configFile string) *Config {
	if _, err := config.LoadDotEnv(".env", "../.env"); err != nil {
		log.Printf("dotenv: %v", err)
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			log.Fatalf("config file: %v", err)
		}
	}

	cfg, err := Load(v)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Load builds the configuration from v after applying the defaults.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetDefault("app_env", config.EnvLocal)
	v.SetDefault("server_url", defaultServerURL)
	v.SetDefault("data_dir", filepath.Join(xdg.DataHome, appName))
	v.SetDefault("log_file", "")
	v.SetDefault("poll_interval", defaultPollInterval)
	v.SetDefault("peer_url", defaultPeerURL)
	v.SetDefault("peer_listen", "")
	v.SetDefault("probe_interval", defaultProbeInterval)
	v.SetDefault("probe_timeout", defaultProbeTimeout)
	v.SetDefault("push_timeout", defaultPushTimeout)
	v.SetDefault("buffer_limit", defaultBufferLimit)

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
		return fmt.Errorf("unknown app_env %q", c.Env)
	}
	if _, err := url.ParseRequestURI(c.ServerURL); err != nil {
		return fmt.Errorf("server_url: %w", err)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.Sync.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.Direct.ProbeInterval <= 0 || c.Direct.ProbeTimeout <= 0 || c.Direct.PushTimeout <= 0 {
		return fmt.Errorf("probe_interval, probe_timeout and push_timeout must be positive")
	}
	if c.Direct.BufferLimit <= 0 {
		return fmt.Errorf("buffer_limit must be positive")
	}
	return nil
}

// DBPath is the sqlite file holding the entity store and the KV.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, dbFileName)
}

// EnsureDataDir creates the data directory with owner-only permissions.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}

func (c *Config) IsProd() bool {
	return c.Env == config.EnvProd
}

func (c *Config) IsDev() bool {
	return c.Env == config.EnvDev
}

func (c *Config) IsLocal() bool {
	return c.Env == config.EnvLocal || c.Env == ""
}
