package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envAliases maps config keys to the plain variable names older deployments
// put in their .env. The BOT_-prefixed name is listed first and wins.
var envAliases = map[string][]string{
	"telegram.token":        {"BOT_TELEGRAM_TOKEN", "BOT_TOKEN"},
	"promo.channel_url":     {"BOT_PROMO_CHANNEL_URL", "TELEGRAM_CHANNEL"},
	"promo.free_spin_url":   {"BOT_PROMO_FREE_SPIN_URL", "FREE_SPIN_URL"},
	"promo.free_credit_url": {"BOT_PROMO_FREE_CREDIT_URL", "FREE_CREDIT_URL"},
}

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. the YAML file at path (optional)
// 3. BOT_* environment variables (e.g. BOT_TELEGRAM_TOKEN) and the aliases
// in envAliases, read from the process environment or from a .env file
// next to the config file. Variables already set in the environment win
// over the .env file.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(dotEnvPath(path)); err != nil {
		return nil, fmt.Errorf("%w: failed to load .env file: %v", ErrConfiguration, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("%w: failed to bind %s: %v", ErrConfiguration, key, err)
		}
	}

	if err := readConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: failed to load config file: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

func dotEnvPath(configPath string) string {
	if configPath == "" {
		return ".env"
	}
	return filepath.Join(filepath.Dir(configPath), ".env")
}

// loadDotEnv exports the variables of the .env file at path into the process
// environment without overriding those already set. A missing file is fine.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return err
	}
	slog.Info("Loaded environment file", "path", path)
	return nil
}

// readConfigFile reads path into v. A missing file is not an error; the bot
// can be configured from the environment alone.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("Configuration file not found, using defaults and environment", "path", path)
			return nil
		}
		return err
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return v.ReadInConfig()
}

// Validate checks struct-level constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
