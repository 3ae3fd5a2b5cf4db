/*
Package config loads server configuration.

PURPOSE:
  One place that knows where configuration comes from. Precedence, highest
  first:
    1. Environment variables (QUOTE_ prefix, e.g. QUOTE_PORT)
    2. Config file (quote-engine.yaml in the working directory or /etc/quote-engine)
    3. Built-in defaults

  A missing config file is fine; defaults make a bare `quoted` start a
  working server with a local SQLite file.

KEYS:
  port              HTTP listen port                     (default 8080)
  db_path           SQLite database path                 (default ./data/quotes.db)
  cors_origins      Allowed CORS origins                 (default *)
  quote_validity    How long a quote stays valid         (default 720h = 30 days)
  sweep_interval    How often stale quotes are expired   (default 1h)
  mail_sender       From address for quote emails        (default quotes@example.com)
  log_level         zap level: debug, info, warn, error  (default info)
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to start.
type Config struct {
	Port          int           `mapstructure:"port"`
	DBPath        string        `mapstructure:"db_path"`
	CORSOrigins   []string      `mapstructure:"cors_origins"`
	QuoteValidity time.Duration `mapstructure:"quote_validity"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MailSender    string        `mapstructure:"mail_sender"`
	LogLevel      string        `mapstructure:"log_level"`
}

// Load reads configuration from defaults, an optional config file, and
// QUOTE_-prefixed environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "./data/quotes.db")
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("quote_validity", "720h")
	v.SetDefault("sweep_interval", "1h")
	v.SetDefault("mail_sender", "quotes@example.com")
	v.SetDefault("log_level", "info")

	v.SetConfigName("quote-engine")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/quote-engine")

	v.SetEnvPrefix("QUOTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.QuoteValidity <= 0 {
		return fmt.Errorf("quote_validity must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
