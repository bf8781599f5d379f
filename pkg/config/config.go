// Package config loads railcdl settings from a TOML file and the environment.
//
// The file lives at $XDG_CONFIG_HOME/railcdl/config.toml (or
// ~/.config/railcdl/config.toml) unless a path is given explicitly:
//
//	[analysis]
//	threshold = 700.0
//	branch_policy = "first"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//	max_upload_bytes = 10485760
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "railcdl"
//
// Environment variables override the file: RAILCDL_THRESHOLD,
// RAILCDL_REDIS_ADDR (selects the redis cache backend) and RAILCDL_MONGO_URI
// (selects the mongo store backend).
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/railcdl/pkg/cdl"
	"github.com/matzehuels/railcdl/pkg/errors"
)

const appName = "railcdl"

// Environment variables read by [Load].
const (
	EnvThreshold = "RAILCDL_THRESHOLD"
	EnvRedisAddr = "RAILCDL_REDIS_ADDR"
	EnvMongoURI  = "RAILCDL_MONGO_URI"
)

// Defaults for settings the file leaves out.
const (
	DefaultAddr           = ":8080"
	DefaultMaxUploadBytes = 10 << 20
	DefaultDatabase       = "railcdl"
)

// validate is a singleton validator instance
var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds every setting of the CLI and the HTTP server.
type Config struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
}

// AnalysisConfig holds the defaults for zone analysis.
type AnalysisConfig struct {
	Threshold float64 `toml:"threshold" validate:"gt=0"`
	Branch    string  `toml:"branch_policy" validate:"oneof=first strict"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend     string   `toml:"backend" validate:"oneof=file redis none"`
	Dir         string   `toml:"dir"`
	TTL         Duration `toml:"ttl"`
	RedisAddr   string   `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB     int      `toml:"redis_db" validate:"gte=0"`
	RedisPrefix string   `toml:"redis_prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string `toml:"addr" validate:"required"`
	MaxUploadBytes int64  `toml:"max_upload_bytes" validate:"gt=0"`
}

// StoreConfig selects where saved stations live.
type StoreConfig struct {
	Backend  string `toml:"backend" validate:"oneof=memory mongo"`
	MongoURI string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	Database string `toml:"database" validate:"required"`
}

// Duration is a time.Duration written as a string such as "24h" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Threshold: cdl.DefaultThreshold,
			Branch:    cdl.BranchFirst.String(),
		},
		Cache: CacheConfig{
			Backend:     "file",
			RedisPrefix: appName + ":",
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Store: StoreConfig{
			Backend:  "memory",
			Database: DefaultDatabase,
		},
	}
}

// Path returns the default config file location.
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+appName, "config.toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// Load reads the config file at path over the defaults and applies the
// environment. An empty path selects [Path]; a missing default file is not
// an error, a missing explicit file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	} else if explicit {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a TOML document over the defaults without touching the
// environment.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config")
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode config %s", path)
	}
	return checkUndecoded(md)
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown config keys: %s", strings.Join(names, ", "))
}

// applyEnv overrides settings from the environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvThreshold); ok && v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidThreshold, err, "%s", EnvThreshold)
		}
		c.Analysis.Threshold = t
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Cache.Backend = "redis"
		c.Cache.RedisAddr = v
	}
	if v, ok := lookup(EnvMongoURI); ok && v != "" {
		c.Store.Backend = "mongo"
		c.Store.MongoURI = v
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, formatValidationError(err), "invalid config")
	}
	if _, err := cdl.ParseBranchPolicy(c.Analysis.Branch); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config")
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required", "required_if":
			return fmt.Errorf("%s: field is required", field)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, e.Param())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "oneof":
			return fmt.Errorf("%s: must be one of: %s", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
