package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/cache"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog/mongo"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog/postgres"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/config"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/pipeline"
)

// backend bundles the runner with the resources it was built from.
type backend struct {
	cfg    *config.Config
	runner *pipeline.Runner
	closer []func()
}

// Close releases the catalog connection and the cache.
func (b *backend) Close() {
	for i := len(b.closer) - 1; i >= 0; i-- {
		b.closer[i]()
	}
}

// defaults returns the pipeline options configured for this backend.
func (b *backend) defaults() (pipeline.Options, error) {
	pattern, err := b.cfg.CodePattern()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		MaxDepth:        b.cfg.Resolve.MaxDepth,
		HighSchool:      b.cfg.HighSchoolCodes(),
		CodePattern:     pattern,
		DefaultOperator: b.cfg.Resolve.DefaultOperator,
		Memoize:         b.cfg.Resolve.Memoize,
		Logger:          b.runner.Logger,
	}, nil
}

// openBackend loads the config and connects the configured catalog and cache.
func (c *CLI) openBackend(ctx context.Context, noCache bool) (*backend, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := c.logger(ctx)
	b := &backend{cfg: cfg}

	store, err := openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	b.closer = append(b.closer, func() { _ = store.Close() })

	cat, closeCat, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.closer = append(b.closer, closeCat)

	keyer := newKeyer(cfg)
	if cfg.Catalog.Backend != config.CatalogFile {
		cat = catalog.NewCached(cat, store,
			catalog.WithKeyer(keyer),
			catalog.WithConcurrency(cfg.Catalog.Concurrency),
			catalog.WithLogger(logger))
	}

	// The backend owns the cache; the runner must not close it twice.
	b.runner = pipeline.NewRunner(cat, store, keyer, logger)
	return b, nil
}

func newKeyer(cfg *config.Config) cache.Keyer {
	if cfg.Cache.Prefix != "" {
		return cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	return cache.NewDefaultKeyer()
}

// openCache builds the configured cache. noCache forces a NullCache.
func openCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(cfg.Cache.Entries)
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			// Without a cache directory the CLI still works, just slower.
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// openCatalog connects the configured catalog. The returned func releases
// the connection.
func openCatalog(ctx context.Context, cfg *config.Config, logger *log.Logger) (catalog.Catalog, func(), error) {
	switch cfg.Catalog.Backend {
	case config.CatalogPostgres:
		cat, pool, err := postgres.Open(ctx, cfg.Catalog.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres catalog: %w", err)
		}
		logger.Debug("connected catalog", "backend", "postgres")
		return cat, pool.Close, nil
	case config.CatalogMongo:
		cat, client, err := mongo.Open(ctx, cfg.Catalog.MongoURI, cfg.Catalog.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("open mongo catalog: %w", err)
		}
		logger.Debug("connected catalog", "backend", "mongo", "database", cfg.Catalog.MongoDatabase)
		return cat, func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		mem, err := catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return nil, nil, fmt.Errorf("load catalog: %w", err)
		}
		logger.Debug("loaded catalog", "file", cfg.Catalog.File, "courses", mem.Len())
		return mem, func() {}, nil
	}
}
