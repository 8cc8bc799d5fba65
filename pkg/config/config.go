// Package config loads ucoursemap settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (by default $XDG_CONFIG_HOME/ucoursemap/config.toml)
//  3. a .env file in the working directory, if present
//  4. UCOURSEMAP_* environment variables
//
// Example config.toml:
//
//	[resolve]
//	max_depth = 4
//	high_school = ["MATH 30-1", "MATH 31"]
//	default_operator = "or"
//
//	[catalog]
//	backend = "postgres"
//	postgres_dsn = "postgres://localhost/courses"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/cache"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/closure"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// AppName names the config and cache directories.
const AppName = "ucoursemap"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "UCOURSEMAP_"

// Catalog backends.
const (
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
	CatalogMongo    = "mongo"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the complete application configuration.
type Config struct {
	Resolve ResolveConfig `toml:"resolve"`
	Catalog CatalogConfig `toml:"catalog"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

// ResolveConfig holds the engine options.
type ResolveConfig struct {
	MaxDepth        int      `toml:"max_depth"`
	HighSchool      []string `toml:"high_school"`
	CodePattern     string   `toml:"code_pattern"` // empty means the built-in pattern
	DefaultOperator string   `toml:"default_operator"`
	Memoize         bool     `toml:"memoize"`
}

// CatalogConfig selects and configures the catalog backend.
type CatalogConfig struct {
	Backend       string `toml:"backend"`
	File          string `toml:"file"`
	PostgresDSN   string `toml:"postgres_dsn"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	Concurrency   int    `toml:"concurrency"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"` // file backend; empty means the XDG cache dir
	Entries       int    `toml:"entries"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `toml:"addr"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Resolve: ResolveConfig{
			MaxDepth:        closure.DefaultMaxDepth,
			DefaultOperator: "or",
		},
		Catalog: CatalogConfig{
			Backend:       CatalogFile,
			File:          "courses.json",
			MongoDatabase: AppName,
			Concurrency:   8,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Entries: cache.DefaultMemoryEntries,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 30 * time.Second,
		},
	}
}

// Load builds the configuration from path, .env and the environment.
// An empty path means [DefaultPath]; a missing default file is not an error,
// a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
			}
		}
	}

	// .env is optional.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data on top of the defaults without consulting the
// environment.
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/ucoursemap/config.toml, falling back
// to ~/.config. It returns "" when no home directory is known.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName, "config.toml")
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidConfig, "%s%s: not an integer: %q", EnvPrefix, name, v)
		}
		*dst = n
		return nil
	}

	if err := num("MAX_DEPTH", &c.Resolve.MaxDepth); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "HIGH_SCHOOL"); ok {
		c.Resolve.HighSchool = splitList(v)
	}
	str("CODE_PATTERN", &c.Resolve.CodePattern)
	str("DEFAULT_OPERATOR", &c.Resolve.DefaultOperator)
	if v, ok := lookup(EnvPrefix + "MEMOIZE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidConfig, "%sMEMOIZE: not a boolean: %q", EnvPrefix, v)
		}
		c.Resolve.Memoize = b
	}

	str("CATALOG_BACKEND", &c.Catalog.Backend)
	str("CATALOG_FILE", &c.Catalog.File)
	str("POSTGRES_DSN", &c.Catalog.PostgresDSN)
	str("MONGO_URI", &c.Catalog.MongoURI)
	str("MONGO_DATABASE", &c.Catalog.MongoDatabase)

	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("CACHE_PREFIX", &c.Cache.Prefix)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)
	if err := num("REDIS_DB", &c.Cache.RedisDB); err != nil {
		return err
	}

	str("ADDR", &c.Server.Addr)
	if v, ok := lookup(EnvPrefix + "REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidConfig, "%sREQUEST_TIMEOUT: %v", EnvPrefix, err)
		}
		c.Server.RequestTimeout = d
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Resolve.MaxDepth < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "resolve.max_depth must be at least 1, got %d", c.Resolve.MaxDepth)
	}
	switch strings.ToLower(c.Resolve.DefaultOperator) {
	case "and", "or":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "resolve.default_operator must be \"and\" or \"or\", got %q", c.Resolve.DefaultOperator)
	}
	if _, err := c.CodePattern(); err != nil {
		return err
	}

	switch c.Catalog.Backend {
	case CatalogFile:
		if c.Catalog.File == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "catalog.file is required for the file backend")
		}
	case CatalogPostgres:
		if c.Catalog.PostgresDSN == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "catalog.postgres_dsn is required for the postgres backend")
		}
	case CatalogMongo:
		if c.Catalog.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "catalog.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown catalog backend %q", c.Catalog.Backend)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// CodePattern compiles Resolve.CodePattern, or returns nil when unset so
// callers fall back to the built-in pattern.
func (c *Config) CodePattern() (*regexp.Regexp, error) {
	if c.Resolve.CodePattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.Resolve.CodePattern)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve.code_pattern")
	}
	return re, nil
}

// HighSchoolCodes returns the allow-list normalized the way course codes are.
func (c *Config) HighSchoolCodes() []string {
	out := make([]string, 0, len(c.Resolve.HighSchool))
	for _, s := range c.Resolve.HighSchool {
		out = append(out, requirement.NormalizeCode(s))
	}
	return out
}

// CacheDir returns Cache.Dir or the XDG cache directory.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(home, ".cache", AppName), nil
}
