// Package config loads the CLI settings from an optional formwizard.yaml,
// FORMWIZARD_* environment variables and command-line flags, in increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "formwizard"

// Config is the resolved application configuration.
type Config struct {
	API     APIConfig
	Cache   CacheConfig
	Schemas SchemasConfig
	Log     LogConfig
	Pool    PoolConfig
	Metrics MetricsConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CacheConfig struct {
	Path string
	TTL  time.Duration
}

type SchemasConfig struct {
	Dir string
}

type LogConfig struct {
	Level  string
	Format string
}

type PoolConfig struct {
	Size int
}

type MetricsConfig struct {
	Addr string
}

// flag name -> config key
var flagKeys = map[string]string{
	"api-url":      "api.base_url",
	"api-timeout":  "api.timeout",
	"cache-path":   "cache.path",
	"schemas":      "schemas.dir",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"pool-size":    "pool.size",
	"metrics-addr": "metrics.addr",
	"config":       "config",
}

// RegisterFlags declares the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a formwizard.yaml config file")
	fs.String("api-url", "", "backend base URL")
	fs.Duration("api-timeout", 0, "per-request timeout")
	fs.String("cache-path", "", "catalog cache database path")
	fs.String("schemas", "", "directory holding form schemas and grid configs")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-format", "", "text or json")
	fs.Int("pool-size", 0, "concurrent background requests")
	fs.String("metrics-addr", "", "serve prometheus metrics on this address")
}

func defaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("cache.path", defaultCachePath())
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("schemas.dir", "schemas")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("pool.size", 4)
	v.SetDefault("metrics.addr", "")
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "catalog_cache.db"
	}
	return filepath.Join(dir, "formwizard", "catalog_cache.db")
}

// Load resolves the configuration. fs may be nil; only flags the user set
// override file and environment values.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if flag := fs.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return Config{}, fmt.Errorf("config: bind --%s: %w", name, err)
				}
			}
		}
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("formwizard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "formwizard"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := Config{
		API: APIConfig{
			BaseURL: v.GetString("api.base_url"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Cache: CacheConfig{
			Path: v.GetString("cache.path"),
			TTL:  v.GetDuration("cache.ttl"),
		},
		Schemas: SchemasConfig{
			Dir: v.GetString("schemas.dir"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Pool: PoolConfig{
			Size: v.GetInt("pool.size"),
		},
		Metrics: MetricsConfig{
			Addr: v.GetString("metrics.addr"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the CLI cannot run with.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.API.BaseURL) == "" {
		problems = append(problems, "api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, "api.timeout must be positive")
	}
	if c.Cache.TTL <= 0 {
		problems = append(problems, "cache.ttl must be positive")
	}
	if c.Pool.Size < 1 {
		problems = append(problems, "pool.size must be at least 1")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not text or json", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

var (
	once     sync.Once
	instance Config
	loadErr  error
)

// LoadOnce resolves the configuration the first time it is called and
// returns the same result afterwards.
func LoadOnce(fs *pflag.FlagSet) (Config, error) {
	once.Do(func() {
		instance, loadErr = Load(fs)
	})
	return instance, loadErr
}
