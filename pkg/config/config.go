// Package config loads mediatools settings from defaults, an optional YAML
// file, MEDIATOOLS_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chicogong/media-tools/pkg/storage"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "MEDIATOOLS"

// ErrInvalidConfig is returned when loaded settings fail validation
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all mediatools settings
type Config struct {
	LogLevel  string        `mapstructure:"log_level" validate:"oneof=trace debug info warn warning error"`
	LogFormat string        `mapstructure:"log_format" validate:"oneof=text json"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Progress  bool          `mapstructure:"progress"`

	// FFmpegPath and FFprobePath skip executable lookup when set
	FFmpegPath  string `mapstructure:"ffmpeg_path"`
	FFprobePath string `mapstructure:"ffprobe_path"`

	AllowPrivateNetworks bool `mapstructure:"allow_private_networks"`

	S3 storage.S3Config `mapstructure:"s3"`
}

// LoadOptions controls where Load looks for settings
type LoadOptions struct {
	// File is an explicit config file; it must exist when set
	File string

	// Flags are bound over every other source
	Flags *pflag.FlagSet
}

// flagKeys maps command-line flags onto config keys
var flagKeys = map[string]string{
	"log-level":  "log_level",
	"log-format": "log_format",
	"timeout":    "timeout",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("progress", true)
	v.SetDefault("ffmpeg_path", "")
	v.SetDefault("ffprobe_path", "")
	v.SetDefault("allow_private_networks", false)
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
}

// Load merges all configuration sources and validates the result
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", opts.File, err)
		}
	} else if path := defaultFile(); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for flag, key := range flagKeys {
			if f := opts.Flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: %w", err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// defaultFile returns the per-user config file if it exists
func defaultFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "mediatools", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// String returns a representation with credentials masked
func (c *Config) String() string {
	secret := ""
	if c.S3.SecretAccessKey != "" {
		secret = "***"
	}
	return fmt.Sprintf(
		"Config{LogLevel: %s, LogFormat: %s, Timeout: %s, Progress: %t, FFmpegPath: %s, FFprobePath: %s, AllowPrivateNetworks: %t, S3Region: %s, S3Endpoint: %s, S3SecretAccessKey: %s}",
		c.LogLevel,
		c.LogFormat,
		c.Timeout,
		c.Progress,
		c.FFmpegPath,
		c.FFprobePath,
		c.AllowPrivateNetworks,
		c.S3.Region,
		c.S3.Endpoint,
		secret,
	)
}
