package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"github.com/tombowditch/codedump/client"
)

// Environment variables read by ApplyEnv.
const (
	EnvTokenKey    = "CODEDUMP_TOKEN_KEY"
	EnvTokenSecret = "CODEDUMP_TOKEN_SECRET"
	EnvBaseURL     = "CODEDUMP_BASE_URL"
	EnvTimeout     = "CODEDUMP_TIMEOUT"
	EnvPreCheck    = "CODEDUMP_PRECHECK"
	EnvLogLevel    = "LOG_LEVEL"
)

// Config holds the defaults a client is built with.
type Config struct {
	APIKey    string        `yaml:"api_key"`
	APISecret string        `yaml:"api_secret"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"-"`
	PreCheck  bool          `yaml:"precheck"`
	LogLevel  string        `yaml:"log_level"`
}

// Default returns the built-in configuration. It carries no credentials.
func Default() Config {
	return Config{
		BaseURL:  client.DefaultBaseURL,
		Timeout:  client.DefaultTimeout,
		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if len(data) == 0 {
		return cfg, errors.Errorf("config file %s is empty", path)
	}
	var raw struct {
		Config  `yaml:",inline"`
		Timeout string `yaml:"timeout"`
	}
	raw.Config = cfg
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	cfg = raw.Config
	if raw.Timeout != "" {
		d, err := str2duration.ParseDuration(raw.Timeout)
		if err != nil {
			return cfg, errors.Wrapf(err, "parsing timeout %q", raw.Timeout)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the process environment
// without overriding variables already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "loading %s", path)
}

// ApplyEnv overrides cfg with the CODEDUMP_* environment variables.
func ApplyEnv(cfg Config) Config {
	cfg.APIKey = ReadStringOrDefault(EnvTokenKey, cfg.APIKey)
	cfg.APISecret = ReadStringOrDefault(EnvTokenSecret, cfg.APISecret)
	cfg.BaseURL = ReadStringOrDefault(EnvBaseURL, cfg.BaseURL)
	cfg.Timeout = ReadDurationOrDefault(EnvTimeout, cfg.Timeout)
	cfg.PreCheck = ReadBooleanOrDefault(EnvPreCheck, cfg.PreCheck)
	cfg.LogLevel = ReadStringOrDefault(EnvLogLevel, cfg.LogLevel)
	return cfg
}

// ClientOptions converts cfg into client options.
func (c Config) ClientOptions() []client.Option {
	opts := []client.Option{
		client.WithCredentials(c.APIKey, c.APISecret),
		client.WithPreCheck(c.PreCheck),
	}
	if c.BaseURL != "" {
		opts = append(opts, client.WithBaseURL(c.BaseURL))
	}
	if c.Timeout > 0 {
		opts = append(opts, client.WithTimeout(c.Timeout))
	}
	return opts
}

// ReadStringOrDefault returns the environment variable key, or def when unset.
func ReadStringOrDefault(key, def string) string {
	env := os.Getenv(key)
	if env == "" {
		return def
	}
	return env
}

// ReadBooleanOrDefault returns the environment variable key parsed as a
// bool, or def when unset or malformed.
func ReadBooleanOrDefault(key string, def bool) bool {
	env := os.Getenv(key)
	if env == "" {
		return def
	}
	v, err := strconv.ParseBool(env)
	if err != nil {
		slog.Debug("could not parse boolean environment variable", "key", key, "error", err)
		return def
	}
	return v
}

// ReadDurationOrDefault parses durations such as "30s", "1m" or "1d".
func ReadDurationOrDefault(key string, def time.Duration) time.Duration {
	env := os.Getenv(key)
	if env == "" {
		return def
	}
	v, err := str2duration.ParseDuration(env)
	if err != nil {
		slog.Debug("could not parse duration environment variable", "key", key, "error", err)
		return def
	}
	return v
}
