// Package config loads recap settings from a YAML file, RECAP_* environment
// variables (optionally from a .env file) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultBaseURL = "http://localhost:5000"

	// EnvAPIURL overrides the service base URL.
	EnvAPIURL = "RECAP_API_URL"

	FlagAPIURL    = "api-url"
	FlagLogLevel  = "log-level"
	FlagNoHistory = "no-history"
)

// Config is the complete recap configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api" json:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
	History HistoryConfig `mapstructure:"history" yaml:"history" json:"history"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-" yaml:"-" json:"-"`
}

// APIConfig points at the summarizer service.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"` // 0 waits forever
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level" json:"level"`
	File  string `mapstructure:"file" yaml:"file" json:"file"`
}

// HistoryConfig controls the local recipient history database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	DBPath  string `mapstructure:"db_path" yaml:"db_path" json:"db_path"`
}

// Options says where to look for settings.
type Options struct {
	Dir     string         // config directory, e.g. ~/.config/recap
	File    string         // explicit config file; must exist when set
	EnvFile string         // dotenv file; a missing file is ignored
	Flags   *pflag.FlagSet // flags registered with RegisterFlags
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagAPIURL, "", "summarizer service base URL (default "+DefaultBaseURL+")")
	fs.String(FlagLogLevel, "", "log level: debug, info, warn or error")
	fs.Bool(FlagNoHistory, false, "do not read or record recipient history")
}

// Load resolves the configuration. Precedence: flags, environment, config
// file, defaults.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if opts.Dir != "" {
			v.AddConfigPath(opts.Dir)
		}
	}

	v.SetEnvPrefix("RECAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.base_url", EnvAPIURL); err != nil {
		return nil, fmt.Errorf("binding %s: %w", EnvAPIURL, err)
	}

	setDefaults(v, opts.Dir)

	if opts.Flags != nil {
		for key, name := range map[string]string{
			"api.base_url":  FlagAPIURL,
			"logging.level": FlagLogLevel,
		} {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()

	if opts.Flags != nil {
		if off, err := opts.Flags.GetBool(FlagNoHistory); err == nil && off {
			cfg.History.Enabled = false
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", time.Duration(0))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	if dir != "" {
		v.SetDefault("logging.file", filepath.Join(dir, "recap.log"))
	}

	v.SetDefault("history.enabled", dir != "")
	v.SetDefault("history.db_path", "")
	if dir != "" {
		v.SetDefault("history.db_path", filepath.Join(dir, "recap.db"))
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", c.API.Timeout)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return errors.New("history.db_path is required when history is enabled")
	}
	return nil
}
