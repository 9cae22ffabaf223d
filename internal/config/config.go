// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

// Package config loads the service configuration. Sources are layered in
// this order, later ones winning: built-in defaults, an optional YAML file,
// environment variables (EXPOHUB_* and DATABASE_URL) and command-line flags.
// A .env file in the working directory is loaded into the environment first.
package config

import (
	"errors"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/expohub/expohub/internal/account"
	"github.com/expohub/expohub/internal/logging"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "EXPOHUB_"

// Config is the full service configuration.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Metrics  Metrics  `koanf:"metrics"`
	Database Database `koanf:"database"`
	Log      Log      `koanf:"log"`
	Session  Session  `koanf:"session"`
	Password Password `koanf:"password"`
}

// HTTP configures the public API listener.
type HTTP struct {
	Addr        string   `koanf:"addr"`
	CORSOrigins []string `koanf:"cors_origins"`
}

// Metrics configures the observability listener. An empty Addr disables it.
type Metrics struct {
	Addr string `koanf:"addr"`
}

// Database configures the PostgreSQL connection.
type Database struct {
	URL            string        `koanf:"url"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// Log configures the process logger.
type Log struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Session configures bearer sessions.
type Session struct {
	TTL time.Duration `koanf:"ttl"`
}

// Password is the policy applied to new passwords.
type Password struct {
	MinLength     int  `koanf:"min_length"`
	RequireUpper  bool `koanf:"require_upper"`
	RequireLower  bool `koanf:"require_lower"`
	RequireDigit  bool `koanf:"require_digit"`
	RequireSymbol bool `koanf:"require_symbol"`
}

// Policy converts the configuration into an account.PasswordPolicy.
func (p Password) Policy() account.PasswordPolicy {
	return account.PasswordPolicy{
		MinLength:     p.MinLength,
		RequireUpper:  p.RequireUpper,
		RequireLower:  p.RequireLower,
		RequireDigit:  p.RequireDigit,
		RequireSymbol: p.RequireSymbol,
	}
}

// defaults maps every known key to its default value.
func defaults() map[string]any {
	return map[string]any{
		"http.addr":                "0.0.0.0:8080",
		"http.cors_origins":        []string{},
		"metrics.addr":             "127.0.0.1:9100",
		"database.url":             "",
		"database.connect_timeout": 30 * time.Second,
		"log.format":               "json",
		"log.level":                "info",
		"session.ttl":              account.DefaultSessionTimeout,
		"password.min_length":      account.CNILPolicy.MinLength,
		"password.require_upper":   account.CNILPolicy.RequireUpper,
		"password.require_lower":   account.CNILPolicy.RequireLower,
		"password.require_digit":   account.CNILPolicy.RequireDigit,
		"password.require_symbol":  account.CNILPolicy.RequireSymbol,
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"http-addr":    "http.addr",
	"cors-origins": "http.cors_origins",
	"metrics-addr": "metrics.addr",
	"database-url": "database.url",
	"log-format":   "log.format",
	"log-level":    "log.level",
	"session-ttl":  "session.ttl",
}

// RegisterFlags adds the flags that override configuration keys to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := defaults()
	fs.String("http-addr", d["http.addr"].(string), "public API listen address")
	fs.StringSlice("cors-origins", nil, "allowed CORS origins (comma-separated)")
	fs.String("metrics-addr", d["metrics.addr"].(string), "metrics/health HTTP address (empty = disabled)")
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.String("log-format", d["log.format"].(string), "log format (json or text)")
	fs.String("log-level", d["log.level"].(string), "log level (debug, info, warn, error)")
	fs.Duration("session-ttl", d["session.ttl"].(time.Duration), "session lifetime")
}

// Options controls Load.
type Options struct {
	// File is an optional YAML configuration file.
	File string
	// DotEnv is the .env file to load. Empty means ".env"; a missing file
	// is ignored.
	DotEnv string
	// Flags, when set, overrides keys with the flags the user changed.
	Flags *pflag.FlagSet
}

// Load builds a Config from every source and validates it.
func Load(opts Options) (*Config, error) {
	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Code("CONFIG_DOTENV_FAILED").With("file", dotenv).Wrap(err)
	}

	k := koanf.New(".")
	for key, val := range defaults() {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code("CONFIG_DEFAULTS_FAILED").With("key", key).Wrap(err)
		}
	}

	if opts.File != "" {
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").With("file", opts.File).Wrap(err)
		}
	}

	if err := k.Load(env.ProviderWithValue("DATABASE_URL", ".", func(key, value string) (string, any) {
		if key != "DATABASE_URL" || value == "" {
			return "", nil
		}
		return "database.url", value
	}), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	envKeys := envKeyMap()
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		name, ok := envKeys[key]
		if !ok {
			return "", nil
		}
		if name == "http.cors_origins" {
			return name, splitList(value)
		}
		return name, value
	}), nil); err != nil {
		return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_DECODE_FAILED").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKeyMap maps EXPOHUB_HTTP_ADDR style names to their keys.
func envKeyMap() map[string]string {
	m := make(map[string]string)
	for key := range defaults() {
		m[EnvPrefix+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))] = key
	}
	return m
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first invalid value.
func (c *Config) Validate() error {
	invalid := func(key string, value any, msg string) error {
		return oops.Code("CONFIG_INVALID").With("key", key).With("value", value).Errorf("%s: %s", key, msg)
	}

	if _, _, err := net.SplitHostPort(c.HTTP.Addr); err != nil {
		return invalid("http.addr", c.HTTP.Addr, "must be host:port")
	}
	if c.Metrics.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Addr); err != nil {
			return invalid("metrics.addr", c.Metrics.Addr, "must be host:port")
		}
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", c.Log.Format, "must be 'json' or 'text'")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", c.Log.Level, "must be debug, info, warn or error")
	}
	if c.Database.ConnectTimeout <= 0 {
		return invalid("database.connect_timeout", c.Database.ConnectTimeout, "must be positive")
	}
	if c.Session.TTL < time.Minute {
		return invalid("session.ttl", c.Session.TTL, "must be at least 1m")
	}
	if c.Password.MinLength < 8 {
		return invalid("password.min_length", c.Password.MinLength, "must be at least 8")
	}
	return nil
}

// RequireDatabase reports an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			With("key", "database.url").
			Errorf("database URL is required (DATABASE_URL, %sDATABASE_URL or --database-url)", EnvPrefix)
	}
	return nil
}
