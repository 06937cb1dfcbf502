// Package config loads stockroom configuration from a TOML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmcleod/stockroom/client"
	"github.com/jmcleod/stockroom/internal/logging"
)

// FileName is the configuration file looked up in the data directory.
const FileName = "stockroom.toml"

// Environment overrides.
const (
	EnvBaseURL         = "STOCKROOM_API_BASE_URL"
	EnvRefreshURL      = "STOCKROOM_API_REFRESH_URL"
	EnvTokenPath       = "STOCKROOM_API_TOKEN_PATH"
	EnvTimeout         = "STOCKROOM_API_TIMEOUT"
	EnvCoalesceRefresh = "STOCKROOM_API_COALESCE_REFRESH"
	EnvDataDir         = "STOCKROOM_DATA_DIR"
	EnvSessionSecret   = "STOCKROOM_SESSION_SECRET"
	EnvLogLevel        = "STOCKROOM_LOG_LEVEL"
	EnvLogFormat       = "STOCKROOM_LOG_FORMAT"
	EnvServerPort      = "STOCKROOM_SERVER_PORT"
)

// Config is the root configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Session SessionConfig `toml:"session"`
	Logging LoggingConfig `toml:"logging"`
	Server  ServerConfig  `toml:"server"`
}

// APIConfig locates the inventory REST API.
type APIConfig struct {
	BaseURL         string `toml:"base_url"`
	RefreshURL      string `toml:"refresh_url"`
	TokenPath       string `toml:"token_path"`
	Timeout         string `toml:"timeout"`
	CoalesceRefresh bool   `toml:"coalesce_refresh"`
}

// TimeoutDuration parses Timeout; an empty value means no timeout.
func (c *APIConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// SessionConfig controls where session credentials are kept.
type SessionConfig struct {
	DataDir string `toml:"data_dir"`
	// Secret, when set, seals stored tokens at rest.
	Secret string `toml:"secret"`
}

// StorePath is the bbolt file holding session credentials.
func (c *SessionConfig) StorePath() string {
	return filepath.Join(c.DataDir, "session.db")
}

type LoggingConfig struct {
	Level  logging.Level  `toml:"level"`
	Format logging.Format `toml:"format"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

// Default returns a configuration holding only defaults.
func Default() *Config {
	c := &Config{}
	c.loadDefaults()
	return c
}

// Load reads path when it exists, then applies defaults, environment
// overrides and validation. A missing file is not an error.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := c.Finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *Config) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) loadDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = client.DefaultBaseURL
	}
	if c.API.RefreshURL == "" {
		c.API.RefreshURL = client.DefaultRefreshURL
	}
	if c.API.TokenPath == "" {
		c.API.TokenPath = client.DefaultTokenPath
	}
	if c.Session.DataDir == "" {
		c.Session.DataDir = defaultDataDir()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = logging.LevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = logging.FormatText
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
}

func (c *Config) loadEnv() error {
	setString(&c.API.BaseURL, EnvBaseURL)
	setString(&c.API.RefreshURL, EnvRefreshURL)
	setString(&c.API.TokenPath, EnvTokenPath)
	setString(&c.API.Timeout, EnvTimeout)
	setString(&c.Session.DataDir, EnvDataDir)
	setString(&c.Session.Secret, EnvSessionSecret)
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = logging.Level(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = logging.Format(v)
	}
	if v := os.Getenv(EnvCoalesceRefresh); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCoalesceRefresh, err)
		}
		c.API.CoalesceRefresh = b
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvServerPort, err)
		}
		c.Server.Port = p
	}
	return nil
}

// Validate checks the configuration without applying defaults or overrides.
func (c *Config) Validate() error {
	if err := validateURL(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if err := validateURL(c.API.RefreshURL); err != nil {
		return fmt.Errorf("api.refresh_url: %w", err)
	}
	if c.API.Timeout != "" {
		d, err := time.ParseDuration(c.API.Timeout)
		if err != nil {
			return fmt.Errorf("api.timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("api.timeout: must not be negative")
		}
	}
	if err := c.Logging.Level.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Logging.Format.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q: missing host", raw)
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "stockroom")
	}
	return ".stockroom"
}
