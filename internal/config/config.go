// Package config loads server configuration from flags, environment, an optional
// YAML file and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mhpenta/imageedit"
	"github.com/spf13/viper"
)

const (
	envPrefix = "IMAGEEDIT"

	DefaultPort           = 8080
	DefaultSessionTTL     = 30 * time.Minute
	DefaultRequestTimeout = 2 * time.Minute
	DefaultLogLevel       = "info"
	DefaultGinMode        = "release"
)

// Config holds everything the server needs. APIKey never leaves the process.
type Config struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	Port           int           `mapstructure:"port"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	LogLevel       string        `mapstructure:"log_level"`
	LogConsole     bool          `mapstructure:"log_console"`
	GinMode        string        `mapstructure:"gin_mode"`
	ValidateKey    bool          `mapstructure:"validate_key"`
}

// New returns a viper instance with defaults and environment bindings applied.
// Callers may bind cobra flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("model", string(imageedit.ModelDefault))
	v.SetDefault("port", DefaultPort)
	v.SetDefault("session_ttl", DefaultSessionTTL)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("max_upload_bytes", imageedit.MaxImageSize)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_console", true)
	v.SetDefault("gin_mode", DefaultGinMode)
	v.SetDefault("validate_key", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// The conventional variable names used by Google's SDKs also work.
	_ = v.BindEnv("api_key", envPrefix+"_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	return v
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads the optional config file, unmarshals, and validates.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks required values. A missing API key is fatal at startup.
func (c *Config) Validate() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.APIKey == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY or %s_API_KEY", imageedit.ErrMissingAPIKey, envPrefix)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %v", c.SessionTTL)
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxUploadBytes <= 0 || c.MaxUploadBytes > imageedit.MaxImageSize {
		c.MaxUploadBytes = imageedit.MaxImageSize
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
