package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Resolve.MaxDepth)
	assert.Equal(t, "or", cfg.Resolve.DefaultOperator)
	assert.Equal(t, CatalogFile, cfg.Catalog.Backend)
	assert.Equal(t, CacheFile, cfg.Cache.Backend)
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[resolve]
max_depth = 6
high_school = ["Math 30-1", "math31"]
default_operator = "and"

[catalog]
backend = "postgres"
postgres_dsn = "postgres://localhost/courses"

[cache]
backend = "redis"
redis_addr = "localhost:6379"

[server]
request_timeout = "5s"
`)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Resolve.MaxDepth)
	assert.Equal(t, "and", cfg.Resolve.DefaultOperator)
	assert.Equal(t, []string{"MATH 30-1", "MATH 31"}, cfg.HighSchoolCodes())
	assert.Equal(t, CatalogPostgres, cfg.Catalog.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	// Unset keys keep their defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":           `[resolve`,
		"depth":            "[resolve]\nmax_depth = 0",
		"operator":         "[resolve]\ndefault_operator = \"xor\"",
		"pattern":          "[resolve]\ncode_pattern = \"([\"",
		"catalog backend":  "[catalog]\nbackend = \"sqlite\"",
		"postgres dsn":     "[catalog]\nbackend = \"postgres\"",
		"mongo uri":        "[catalog]\nbackend = \"mongo\"",
		"cache backend":    "[cache]\nbackend = \"memcached\"",
		"redis addr":       "[cache]\nbackend = \"redis\"",
		"empty file field": "[catalog]\nfile = \"\"",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"UCOURSEMAP_MAX_DEPTH":       "2",
		"UCOURSEMAP_HIGH_SCHOOL":     "MATH 30-1, ,Chem 30",
		"UCOURSEMAP_CATALOG_BACKEND": "mongo",
		"UCOURSEMAP_MONGO_URI":       "mongodb://localhost",
		"UCOURSEMAP_REDIS_DB":        "3",
		"UCOURSEMAP_MEMOIZE":         "true",
		"UCOURSEMAP_REQUEST_TIMEOUT": "1m",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2, cfg.Resolve.MaxDepth)
	assert.Equal(t, []string{"MATH 30-1", "Chem 30"}, cfg.Resolve.HighSchool)
	assert.Equal(t, CatalogMongo, cfg.Catalog.Backend)
	assert.Equal(t, "mongodb://localhost", cfg.Catalog.MongoURI)
	assert.Equal(t, 3, cfg.Cache.RedisDB)
	assert.True(t, cfg.Resolve.Memoize)
	assert.Equal(t, time.Minute, cfg.Server.RequestTimeout)
}

func TestApplyEnvInvalid(t *testing.T) {
	for _, kv := range [][2]string{
		{"UCOURSEMAP_MAX_DEPTH", "deep"},
		{"UCOURSEMAP_REDIS_DB", "x"},
		{"UCOURSEMAP_MEMOIZE", "maybe"},
		{"UCOURSEMAP_REQUEST_TIMEOUT", "soon"},
	} {
		lookup := func(k string) (string, bool) {
			if k == kv[0] {
				return kv[1], true
			}
			return "", false
		}
		err := Default().applyEnv(lookup)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "%s=%s: got %v", kv[0], kv[1], err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[resolve]\nmax_depth = 7\n"), 0o644))

	t.Setenv("UCOURSEMAP_MAX_DEPTH", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Resolve.MaxDepth)

	t.Setenv("UCOURSEMAP_MAX_DEPTH", "3")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Resolve.MaxDepth, "environment overrides the file")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))

	// A missing default file is fine.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestCodePattern(t *testing.T) {
	cfg := Default()
	re, err := cfg.CodePattern()
	require.NoError(t, err)
	assert.Nil(t, re)

	cfg.Resolve.CodePattern = `^[A-Z]{2,5} \d{3}$`
	re, err = cfg.CodePattern()
	require.NoError(t, err)
	assert.True(t, re.MatchString("CMPUT 301"))
}

func TestCacheDir(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = "/srv/cache"
	dir, err := cfg.CacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/srv/cache", dir)

	cfg.Cache.Dir = ""
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err = cfg.CacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), dir)
}
