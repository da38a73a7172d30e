package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// Config holds all application configuration.
type Config struct {
	Server  Server  `yaml:"server" json:"server"`
	Log     Log     `yaml:"log" json:"log"`
	Metrics Metrics `yaml:"metrics" json:"metrics"`
}

// Server configures the listener and the session runtime
type Server struct {
	Address          string `yaml:"address" json:"address" env:"FT_ADDRESS" env-default:"0.0.0.0" env-description:"bind address"`
	Port             int    `yaml:"port" json:"port" env:"FT_PORT" env-default:"8080" env-description:"bind port"`
	Threads          int    `yaml:"threads" json:"threads" env:"FT_THREADS" env-default:"0" env-description:"worker threads, 0 means NumCPU-2"`
	KeepAliveSeconds int    `yaml:"keep_alive_seconds" json:"keep_alive_seconds" env:"FT_KEEP_ALIVE_SECONDS" env-default:"5" env-description:"idle session timeout"`
	MaxConnections   int    `yaml:"max_connections" json:"max_connections" env:"FT_MAX_CONNECTIONS" env-default:"0" env-description:"concurrent sessions cap, 0 means unlimited"`
}

// Log configures the process logger
type Log struct {
	Level  string `yaml:"level" json:"level" env:"FT_LOG_LEVEL" env-default:"info" env-description:"trace, debug, info, warn or error"`
	Format string `yaml:"format" json:"format" env:"FT_LOG_FORMAT" env-default:"text" env-description:"text or json"`
}

// Metrics configures the Prometheus endpoint
type Metrics struct {
	Address string `yaml:"address" json:"address" env:"FT_METRICS_ADDRESS" env-description:"host:port for /metrics, empty disables it"`
}

var (
	logLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	logFormats = map[string]bool{"text": true, "json": true}
)

// Load reads path (yaml, json, toml or env by extension), overlays FT_*
// environment variables and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config file path is required")
	}

	cfg := &Config{}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a config from FT_* environment variables and defaults only
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "read env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	s := c.Server
	if s.Address == "" {
		return errors.Wrap(ErrInvalid, "server.address is empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		return errors.Wrapf(ErrInvalid, "server.port %d out of range", s.Port)
	}
	if s.Threads < 0 {
		return errors.Wrapf(ErrInvalid, "server.threads %d is negative", s.Threads)
	}
	if s.KeepAliveSeconds <= 0 {
		return errors.Wrapf(ErrInvalid, "server.keep_alive_seconds %d must be positive", s.KeepAliveSeconds)
	}
	if s.MaxConnections < 0 {
		return errors.Wrapf(ErrInvalid, "server.max_connections %d is negative", s.MaxConnections)
	}
	if !logLevels[c.Log.Level] {
		return errors.Wrapf(ErrInvalid, "log.level %q", c.Log.Level)
	}
	if !logFormats[c.Log.Format] {
		return errors.Wrapf(ErrInvalid, "log.format %q", c.Log.Format)
	}
	return nil
}

// KeepAlive returns the idle session timeout
func (s Server) KeepAlive() time.Duration {
	return time.Duration(s.KeepAliveSeconds) * time.Second
}

// EnvHelp describes every environment variable the config reads
func EnvHelp() string {
	help, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return err.Error()
	}
	return help
}
