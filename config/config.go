// Package config loads server settings from POWERFOUR_* environment
// variables, then lets command-line flags override them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds server configuration.
type Config struct {
	Port int    `env:"POWERFOUR_PORT" envDefault:"9000"`
	Addr string `env:"POWERFOUR_ADDR"`

	// Empty allows every origin.
	AllowedOrigins []string `env:"POWERFOUR_ALLOWED_ORIGINS" envSeparator:","`

	PingInterval   time.Duration `env:"POWERFOUR_PING_INTERVAL" envDefault:"60s"`
	PongWait       time.Duration `env:"POWERFOUR_PONG_WAIT" envDefault:"2m"`
	WriteWait      time.Duration `env:"POWERFOUR_WRITE_WAIT" envDefault:"10s"`
	SendBuffer     int           `env:"POWERFOUR_SEND_BUFFER" envDefault:"16"`
	MaxMessageSize int64         `env:"POWERFOUR_MAX_MESSAGE_SIZE" envDefault:"4096"`

	ShutdownTimeout time.Duration `env:"POWERFOUR_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	OTelEnabled  bool   `env:"POWERFOUR_OTEL_ENABLED" envDefault:"true"`
	OTelEndpoint string `env:"POWERFOUR_OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Parse reads the environment and then flags from args.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The game server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The game server listen address (overrides -port)")
	fs.DurationVar(&cfg.PingInterval, "ping-interval", cfg.PingInterval, "Interval between websocket pings")
	fs.DurationVar(&cfg.PongWait, "pong-wait", cfg.PongWait, "How long a connection may stay silent before it is dropped")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP/HTTP endpoint for traces (empty disables tracing)")
	fs.Func("origins", "Comma-separated list of allowed websocket origins", func(v string) error {
		cfg.AllowedOrigins = splitList(v)
		return nil
	})
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the websocket pumps cannot run with.
func (c Config) Validate() error {
	if c.PingInterval <= 0 || c.PongWait <= 0 {
		return errors.New("ping interval and pong wait must be positive")
	}
	if c.PingInterval >= c.PongWait {
		return fmt.Errorf("ping interval %s must be shorter than pong wait %s", c.PingInterval, c.PongWait)
	}
	if c.SendBuffer <= 0 {
		return errors.New("send buffer must be positive")
	}
	return nil
}

// ListenAddr returns Addr, falling back to all interfaces on Port.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return ":" + strconv.Itoa(c.Port)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
