// Package config loads user defaults from ~/.config/graphilizer/config.yaml.
//
// Every field is optional. Command-line flags override the file, and the
// GRAPHILIZER_REDIS_ADDR environment variable overrides cache.redis_addr.
//
//	layout:
//	  direction: LR
//	  node_spacing: 100
//	view:
//	  depth: 3
//	  step_duration: 2s
//	cache:
//	  backend: redis
//	  redis_addr: localhost:6379
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/graphilizer/pkg/errors"
	"github.com/matzehuels/graphilizer/pkg/focus"
	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/timeline"
)

const (
	appName = "graphilizer"

	// EnvRedisAddr overrides Cache.RedisAddr.
	EnvRedisAddr = "GRAPHILIZER_REDIS_ADDR"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config holds user defaults.
type Config struct {
	Layout LayoutConfig `yaml:"layout"`
	View   ViewConfig   `yaml:"view"`
	Cache  CacheConfig  `yaml:"cache"`
	Server ServerConfig `yaml:"server"`
}

// LayoutConfig overrides document layout settings. Zero values keep the
// document's own settings.
type LayoutConfig struct {
	Direction   string  `yaml:"direction,omitempty"`
	NodeSpacing float64 `yaml:"node_spacing,omitempty"`
	RankSpacing float64 `yaml:"rank_spacing,omitempty"`
}

// ViewConfig holds focus and playback defaults.
type ViewConfig struct {
	Depth        int           `yaml:"depth"`
	StepDuration time.Duration `yaml:"step_duration"`
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend     string `yaml:"backend"`
	RedisAddr   string `yaml:"redis_addr,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		View: ViewConfig{
			Depth:        focus.DefaultDepth,
			StepDuration: timeline.DefaultStepDuration,
		},
		Cache:  CacheConfig{Backend: BackendFile},
		Server: ServerConfig{Addr: "localhost:8080"},
	}
}

// Dir returns the config directory, honoring XDG_CONFIG_HOME.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the default config file. A missing file yields Default.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads path over the defaults. A missing file yields Default; a
// malformed or invalid one is an INVALID_INPUT error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config %s", path)
		}
	}
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		cfg.Cache.RedisAddr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and fills zero values with defaults.
func (c *Config) Validate() error {
	if _, ok := graph.ParseDirection(c.Layout.Direction); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "config: invalid direction %q", c.Layout.Direction)
	}
	if c.Layout.NodeSpacing < 0 || c.Layout.RankSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "config: spacing must not be negative")
	}
	if c.View.Depth == 0 {
		c.View.Depth = focus.DefaultDepth
	}
	c.View.Depth = focus.ClampDepth(c.View.Depth)
	if c.View.StepDuration <= 0 {
		c.View.StepDuration = timeline.DefaultStepDuration
	}
	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = BackendFile
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "config: redis cache needs redis_addr or %s", EnvRedisAddr)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "config: unknown cache backend %q (file, redis, none)", c.Cache.Backend)
	}
	return nil
}

// Save writes c to path, creating parent directories.
func Save(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
