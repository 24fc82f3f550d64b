// Package server provides configuration helpers that define runtime defaults,
// validation, and chat tuning for the shop and calc services.
package server

import (
	"strings"
	"time"

	"github.com/Tyrowin/shopchat/internal/calc"
	"github.com/Tyrowin/shopchat/internal/chat"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config holds the settings of both services.
type Config struct {
	Port            string        `envconfig:"SERVER_PORT" default:":8080"`
	CalcPort        string        `envconfig:"CALC_PORT" default:":8081"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	MaxMessageSize  int64         `envconfig:"MAX_MESSAGE_SIZE" default:"512"`
	SendBufferSize  int           `envconfig:"SEND_BUFFER_SIZE" default:"256"`
	WriteWait       time.Duration `envconfig:"CHAT_WRITE_WAIT" default:"10s"`
	PongWait        time.Duration `envconfig:"CHAT_PONG_WAIT" default:"60s"`
	CalcMaxArgument int64         `envconfig:"CALC_MAX_ARGUMENT" default:"10000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
}

func defaultConfig() Config {
	chatDefaults := chat.DefaultConfig()
	return Config{
		Port:     ":8080",
		CalcPort: ":8081",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize:  chatDefaults.MaxMessageSize,
		SendBufferSize:  chatDefaults.SendBufferSize,
		WriteWait:       chatDefaults.WriteWait,
		PongWait:        chatDefaults.PongWait,
		CalcMaxArgument: calc.DefaultMaxArgument,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
	}
}

// sanitizeConfig replaces unusable values with their defaults.
func sanitizeConfig(cfg Config) Config {
	defaults := defaultConfig()

	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = defaults.Port
	}
	if strings.TrimSpace(cfg.CalcPort) == "" {
		cfg.CalcPort = defaults.CalcPort
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaults.SendBufferSize
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaults.WriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = defaults.PongWait
	}
	if cfg.CalcMaxArgument <= 0 {
		cfg.CalcMaxArgument = defaults.CalcMaxArgument
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		cfg.LogLevel = defaults.LogLevel
	}
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// NewConfig creates a Config populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv reads the configuration from environment variables,
// falling back to defaults for anything unset or out of range.
func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "load configuration from environment")
	}
	cfg = sanitizeConfig(cfg)
	return &cfg, nil
}

// ChatConfig extracts the chat pump settings.
func (c Config) ChatConfig() chat.Config {
	return chat.Config{
		MaxMessageSize: c.MaxMessageSize,
		SendBufferSize: c.SendBufferSize,
		WriteWait:      c.WriteWait,
		PongWait:       c.PongWait,
	}
}

// Logger builds the process logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}
