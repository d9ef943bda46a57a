// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

// Package config loads runtime configuration from an optional YAML
// file with command-line flag overrides. The resulting Config struct
// is passed explicitly to the components that need it; there is no
// ambient configuration state.
package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Default values applied before any file or flag is read.
const (
	DefaultLogFormat   = "json"
	DefaultMetricsAddr = "127.0.0.1:9100"
)

// Config holds the runtime configuration. Keys are kebab-case in both
// the YAML file and the flag set.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. Falls back to
	// the DATABASE_URL environment variable when unset.
	DatabaseURL string `koanf:"database-url"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log-format"`

	// MetricsAddr is the metrics/health HTTP listen address. Empty
	// disables the observability server.
	MetricsAddr string `koanf:"metrics-addr"`

	// SeedProfile names the default-grant profile applied to newly
	// created resources. Empty selects the built-in "standard" profile.
	SeedProfile string `koanf:"seed-profile"`
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	return nil
}

// Load builds a Config from defaults, then an optional YAML file, then
// flag overrides, in increasing precedence. A missing file at an
// explicitly given path is an error; an empty path skips the file step.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	cfg := Config{
		LogFormat:   DefaultLogFormat,
		MetricsAddr: DefaultMetricsAddr,
	}

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RequireDatabaseURL returns the database URL or an error explaining
// how to provide one. Commands that touch the database call this.
func (c Config) RequireDatabaseURL() (string, error) {
	if c.DatabaseURL == "" {
		return "", fmt.Errorf("database URL is required: set database-url or the DATABASE_URL environment variable")
	}
	return c.DatabaseURL, nil
}
