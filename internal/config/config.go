// Package config loads railgen's settings.
//
// Sources, later ones winning:
//
//  1. built-in defaults
//  2. railgen.toml: the --config flag, else $RAILGEN_CONFIG, else
//     $XDG_CONFIG_HOME/railgen/railgen.toml when it exists
//  3. environment variables, including any read from ./.env
//  4. command-line flags, applied by the CLI
//
// Example file:
//
//	[server]
//	addr = ":8080"
//	cors_origins = ["https://maps.example.org"]
//
//	[cache]
//	ttl = "6h"
//	redis_url = "redis://localhost:6379/0"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//
//	[render]
//	stylesheet = "/static/rail-style.css"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/render/html"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "railgen.toml"

// Environment variables.
const (
	EnvConfig     = "RAILGEN_CONFIG"
	EnvAddr       = "RAILGEN_ADDR"
	EnvRedisURL   = "RAILGEN_REDIS_URL"
	EnvMongoURI   = "RAILGEN_MONGO_URI"
	EnvCacheTTL   = "RAILGEN_CACHE_TTL"
	EnvStylesheet = "RAILGEN_STYLESHEET"
)

// Config is the full settings tree.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Mongo  MongoConfig  `toml:"mongo"`
	Render RenderConfig `toml:"render"`

	// Path is the file the settings were read from, if any.
	Path string `toml:"-"`
}

type ServerConfig struct {
	Addr        string   `toml:"addr" validate:"required,hostname_port"`
	CORSOrigins []string `toml:"cors_origins" validate:"dive,required"`
}

type CacheConfig struct {
	// Dir overrides the CLI's file cache directory.
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl" validate:"gte=0"`
	RedisURL      string   `toml:"redis_url" validate:"omitempty,url"`
	MemoryEntries int      `toml:"memory_entries" validate:"gte=0"`
}

type MongoConfig struct {
	URI        string `toml:"uri" validate:"omitempty,url"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type RenderConfig struct {
	Stylesheet string `toml:"stylesheet"`
}

// Duration is a time.Duration written as a string such as "90m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: "localhost:8080", CORSOrigins: []string{"*"}},
		Cache:  CacheConfig{TTL: Duration(24 * time.Hour), MemoryEntries: 1024},
		Mongo:  MongoConfig{Database: "railgen", Collection: "snapshots"},
		Render: RenderConfig{Stylesheet: html.DefaultStylesheet},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load resolves and validates the configuration. An explicit path must
// exist; the fallback locations are optional.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidConfig, err, "read .env")
	}

	cfg := Default()
	file, explicit := resolve(path)
	if file != "" {
		if err := cfg.decodeFile(file, explicit); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolve(path string) (file string, explicit bool) {
	if path != "" {
		return path, true
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "railgen", FileName), false
}

func (c *Config) decodeFile(path string, explicit bool) error {
	md, err := toml.DecodeFile(path, c)
	if errors.Is(err, fs.ErrNotExist) {
		if explicit {
			return rgerrors.Wrap(rgerrors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil
	}
	if err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return rgerrors.New(rgerrors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	c.Path = path
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv(EnvStylesheet); v != "" {
		c.Render.Stylesheet = v
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		ttl, err := parseTTL(v)
		if err != nil {
			return rgerrors.Wrap(rgerrors.ErrCodeInvalidConfig, err, "%s", EnvCacheTTL)
		}
		c.Cache.TTL = Duration(ttl)
	}
	return nil
}

// parseTTL accepts a duration ("6h") or a bare number of seconds.
func parseTTL(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		return rgerrors.New(rgerrors.ErrCodeInvalidConfig, "%s fails %q (got %v)", f.Namespace(), f.Tag(), f.Value())
	}
	return rgerrors.Wrap(rgerrors.ErrCodeInvalidConfig, err, "config")
}
