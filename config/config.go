// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/capweb/session"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidParameter is returned when the file or environment can't be
	// read or decoded.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidConfig is returned when the loaded configuration fails
	// validation.
	ErrInvalidConfig = errors.New("invalid config")
)

const (
	DefaultAddr            = ":3000"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultCleanupInterval = 10 * time.Minute
	DefaultLogLevel        = "info"
)

// Config is the configuration of an application using capweb.
type Config struct {
	Auth0   auth0.Config `yaml:"auth0" envPrefix:"AUTH0_"`
	Session Session      `yaml:"session" envPrefix:"SESSION_"`
	Server  Server       `yaml:"server" envPrefix:"SERVER_"`
	Log     Log          `yaml:"log" envPrefix:"LOG_"`
}

// Session configures the session cookie and the memory store.
type Session struct {
	CookieName string        `yaml:"cookie_name" env:"COOKIE_NAME"`
	TTL        time.Duration `yaml:"ttl" env:"TTL"`
	Secure     bool          `yaml:"secure" env:"SECURE"`

	// CleanupInterval is how often expired sessions are purged.  Zero
	// disables the purge.
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"CLEANUP_INTERVAL"`
}

type Server struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type Log struct {
	Level string `yaml:"level" env:"LEVEL"`
	JSON  bool   `yaml:"json" env:"JSON"`
}

// Default returns a Config with every default set and no Auth0 tenant
// details.
func Default() *Config {
	return &Config{
		Auth0: *auth0.DefaultConfig(),
		Session: Session{
			CookieName:      session.DefaultCookieName,
			TTL:             session.DefaultTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Server: Server{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Log: Log{
			Level: DefaultLogLevel,
		},
	}
}

// Load builds a Config from the defaults, then the YAML file at path (skipped
// when path is empty), then the environment, and validates the result.
// Environment variables are prefixed by section: AUTH0_, SESSION_, SERVER_
// and LOG_, e.g. AUTH0_CLIENT_ID or SESSION_TTL.
//
// Supported options: WithEnvironment
func Load(path string, opt ...Option) (*Config, error) {
	const op = "config.Load"
	opts := getOpts(opt...)
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %s", op, ErrInvalidParameter, err)
		}
		if err := decodeYAML(data, c); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, path, err)
		}
	}
	envOpts := env.Options{}
	if opts.withEnvironment != nil {
		envOpts.Environment = opts.withEnvironment
	}
	if err := env.ParseWithOptions(c, envOpts); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrInvalidParameter, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// decodeYAML rejects unknown keys so a misspelled setting isn't silently
// ignored.
func decodeYAML(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, err)
	}
	return nil
}

// Validate checks every section and reports every problem found.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	var result *multierror.Error
	if err := c.Auth0.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		result = multierror.Append(result, errors.New("session cookie name is empty"))
	}
	if c.Session.TTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("session ttl %s must be greater than zero", c.Session.TTL))
	}
	if c.Session.CleanupInterval < 0 {
		result = multierror.Append(result, fmt.Errorf("session cleanup interval %s must not be negative", c.Session.CleanupInterval))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		result = multierror.Append(result, errors.New("server addr is empty"))
	}
	if c.Server.ShutdownTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("server shutdown timeout %s must not be negative", c.Server.ShutdownTimeout))
	}
	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("log level %q is unknown", c.Log.Level))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w: %s", op, ErrInvalidConfig, err)
	}
	return nil
}

// Logger returns a logger configured by the Log section.
func (c *Config) Logger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(c.Log.Level),
		JSONFormat: c.Log.JSON,
	})
}

// SessionOptions returns the session.Manager options configured by the
// Session section.
func (c *Config) SessionOptions() []session.Option {
	return []session.Option{
		session.WithCookieName(c.Session.CookieName),
		session.WithTTL(c.Session.TTL),
		session.WithSecure(c.Session.Secure),
	}
}
