// Package config loads the ridasset configuration file.
//
// The file lives at $XDG_CONFIG_HOME/ridasset/config.toml (falling back to
// ~/.config/ridasset/config.toml). A missing file is not an error: every
// setting has a default, and command-line flags override the file.
//
//	default_rid = "linux-x64"
//
//	[cache]
//	dir   = "/var/cache/ridasset"
//	redis = "redis://localhost:6379/0"
//	ttl   = "12h"
//
//	[server]
//	addr = "127.0.0.1:8080"
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ridasset/pkg/cache"
	"github.com/matzehuels/ridasset/pkg/errors"
)

// AppName names the configuration and cache directories.
const AppName = "ridasset"

const (
	// DefaultAddr is the listen address of "ridasset serve".
	DefaultAddr = "127.0.0.1:8080"
	// DefaultMaxBodyBytes limits API request bodies to 4 MB.
	DefaultMaxBodyBytes int64 = 4 << 20
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes, including SVG rendering.
	DefaultWriteTimeout = 30 * time.Second
)

// Config is the decoded configuration file.
type Config struct {
	// DefaultRID is used when a command is given neither --rid nor
	// --unknown-rid. Empty means detect the running platform.
	DefaultRID string       `toml:"default_rid"`
	Cache      CacheConfig  `toml:"cache"`
	Server     ServerConfig `toml:"server"`
}

// CacheConfig selects and tunes the result cache. Redis wins over Dir when
// both are set.
type CacheConfig struct {
	Dir      string   `toml:"dir"`
	Redis    string   `toml:"redis"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
	Disabled bool     `toml:"disabled"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "12h").
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

// Path returns the configuration file path.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the default file cache directory (~/.cache/ridasset/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the configuration at path and applies defaults. A missing file
// yields the defaults. Unknown keys are rejected so typos do not go unnoticed.
func Load(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Config{}.WithDefaults(), nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg.WithDefaults(), nil
}

// LoadDefault loads the configuration from [Path].
func LoadDefault() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}.WithDefaults(), nil
	}
	return Load(path)
}

// WithDefaults returns a copy with every unset field defaulted.
func (c Config) WithDefaults() Config {
	if c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = cache.DefaultTTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = DefaultReadTimeout
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = DefaultWriteTimeout
	}
	return c
}

// Validate checks the values that have a fixed shape.
func (c Config) Validate() error {
	if c.DefaultRID != "" {
		if err := errors.ValidateRID(c.DefaultRID); err != nil {
			return err
		}
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max_body_bytes must not be negative")
	}
	return nil
}
