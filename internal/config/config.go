// Package config loads the command line configuration from defaults, an
// optional config file, MIRROR_* environment variables and bound flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/mirror/store"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. MIRROR_LOG_LEVEL or
// MIRROR_CACHE_DRIVER.
const EnvPrefix = "MIRROR"

// Config is the resolved configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	NoColor   bool   `mapstructure:"no_color"`

	// Globals are extra global names compiled units may reference, on top
	// of the script builtins. Each is bound to the environment variable of
	// the same name, or nil when it is unset.
	Globals []string `mapstructure:"globals"`

	Cache store.Config `mapstructure:"cache"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "auto")
	v.SetDefault("no_color", false)
	v.SetDefault("globals", []string{})
	v.SetDefault("cache.driver", "none")
	v.SetDefault("cache.size", store.DefaultMemorySize)
	v.SetDefault("cache.table", store.DefaultTable)
	v.SetDefault("cache.dsn", "")
	v.SetDefault("cache.bucket", "")
	v.SetDefault("cache.prefix", "")
	v.SetDefault("cache.region", "")
	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.ttl", "0s")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path into v, if given, and decodes the result. Without a path,
// a mirror.yaml in the working directory or ~/.config/mirror is used when
// present.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	} else {
		v.SetConfigName("mirror")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home + "/.config/mirror")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "auto", "console", "json":
	default:
		return nil, fmt.Errorf("config: unknown log format %q", cfg.LogFormat)
	}
	return &cfg, nil
}
